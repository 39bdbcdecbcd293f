// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import "fmt"

// Stage names the backing system an upstream failure came from.
type Stage string

const (
	StageCache    Stage = "cache"
	StageStore    Stage = "store"
	StageVideo    Stage = "video"
	StageStorage  Stage = "storage"
	StageDispatch Stage = "dispatch"
)

// ValidationError reports a missing or malformed required field. It is always
// raised before any I/O happens.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the client facing message.
func (e *ValidationError) Error() string {
	return e.Message
}

// AuthError reports a missing or rejected bearer credential.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "unauthorized: " + e.Reason
}

// UpstreamWriteError wraps a failed call to the cache, the durable store, the
// media storage or the analysis worker. Writes applied by earlier stages are
// not rolled back.
type UpstreamWriteError struct {
	Stage Stage
	Err   error
}

// Error names the stage and the cause.
func (e *UpstreamWriteError) Error() string {
	return fmt.Sprintf("%s write failed: %v", e.Stage, e.Err)
}

// Unwrap returns the cause.
func (e *UpstreamWriteError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}
