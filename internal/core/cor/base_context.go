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

package cor

import (
	"context"
	"errors"
	"log/slog"
	"os"
)

// BaseContext is the default map backed Context. It is not safe for
// concurrent use; each pipeline execution gets its own.
type BaseContext struct {
	data       map[string]any
	errors     map[string]error
	errorOrder []string // command names in the order their errors were recorded
	tempFiles  []string
	context    context.Context
}

// NewBaseContext returns an empty context. Callers set the Go context with
// SetContext and must call Close when the execution is done.
//
// Outputs:
//   - Context: The new context.
func NewBaseContext() Context {
	return &BaseContext{
		data:      make(map[string]any),
		errors:    make(map[string]error),
		tempFiles: make([]string, 0),
	}
}

// SetContext replaces the Go context carried by the execution.
func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

// GetContext returns the Go context used for I/O and spans.
func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// Close removes every registered temp file. Removal errors are logged and
// otherwise ignored.
func (c *BaseContext) Close() {
	for _, file := range c.GetTempFiles() {
		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove temporary file", "file", file, "error", err)
		}
	}
	c.tempFiles = c.tempFiles[:0]
}

// Add stores value under key, replacing any previous value.
//
// Inputs:
//   - key: The param name.
//   - value: The value; nil is stored as is.
//
// Outputs:
//   - Context: The same context.
func (c *BaseContext) Add(key string, value any) Context {
	c.data[key] = value
	return c
}

// AddTempFile registers a file for removal on Close.
func (c *BaseContext) AddTempFile(file string) {
	c.tempFiles = append(c.tempFiles, file)
}

// GetTempFiles returns the registered temp files.
func (c *BaseContext) GetTempFiles() []string {
	return c.tempFiles
}

// AddError records err for the command key. The first recorded error is the
// one GetError returns.
func (c *BaseContext) AddError(key string, err error) {
	if _, seen := c.errors[key]; !seen {
		c.errorOrder = append(c.errorOrder, key)
	}
	c.errors[key] = err
}

// GetErrors returns all recorded errors keyed by command name.
func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

// GetError returns the first recorded error, or nil.
//
// Outputs:
//   - error: The error of the first failed command.
func (c *BaseContext) GetError() error {
	if len(c.errorOrder) == 0 {
		return nil
	}
	return c.errors[c.errorOrder[0]]
}

// Get returns the value stored under key, or nil.
func (c *BaseContext) Get(key string) any {
	return c.data[key]
}

// Remove deletes key.
func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

// HasErrors reports whether any command failed.
func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}
