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

// Package commands provides the concrete steps of the ingestion and upload
// pipelines. Each command reads its input from a cor.Context key, records a
// typed error under its own name on failure and leaves its result in the
// context for the next step.
package commands

import (
	"fmt"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
)

// Context keys shared by the commands.
const (
	ParamVideoID        = "__VIDEO_ID__"
	ParamFrames         = "__FRAMES__"
	ParamInsertedFrames = "__INSERTED_FRAMES__"
	ParamUpload         = "__UPLOAD__"
	ParamFinalTitle     = "__FINAL_TITLE__"
	ParamMediaPath      = "__MEDIA_PATH__"
)

// getTyped reads key from the context as a T.
func getTyped[T any](context cor.Context, key string) (T, error) {
	var zero T
	raw := context.Get(key)
	value, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("context key %s holds %T, want %T", key, raw, zero)
	}
	return value, nil
}
