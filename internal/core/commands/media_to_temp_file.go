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

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
	"github.com/TheSuspect9702/emotion-flow-api/internal/media"
)

// MediaToTempFile copies the uploaded object out of media storage into a
// local temp file. The file is registered on the context and removed on Close.
type MediaToTempFile struct {
	cor.BaseCommand
	media      media.Store
	tempPrefix string
}

// NewMediaToTempFile builds the command.
//
// Inputs:
//   - name: The command name used for spans and counters.
//   - store: Media storage holding the uploaded object.
//   - tempPrefix: Prefix for the temp file name.
//
// Outputs:
//   - *MediaToTempFile: The command, ready to add to a chain.
func NewMediaToTempFile(name string, store media.Store, tempPrefix string) *MediaToTempFile {
	out := &MediaToTempFile{BaseCommand: *cor.NewBaseCommand(name), media: store, tempPrefix: tempPrefix}
	out.InputParamName = ParamUpload
	return out
}

// Execute copies the object named by the upload into a temp file and stores
// its path in ParamMediaPath.
//
// Inputs:
//   - context: The chain context of the current execution.
func (c *MediaToTempFile) Execute(context cor.Context) {
	upload, err := getTyped[*model.UploadRequest](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}

	path, err := c.copyToTemp(context, upload.FilePath)
	if err != nil {
		slog.ErrorContext(context.GetContext(), "failed to fetch uploaded media", "object", upload.FilePath, "error", err)
		c.Fail(context, &model.UpstreamWriteError{Stage: model.StageStorage, Err: err})
		return
	}
	c.Succeed(context)
	context.Add(ParamMediaPath, path)
}

func (c *MediaToTempFile) copyToTemp(context cor.Context, objectPath string) (string, error) {
	reader, err := c.media.Open(context.GetContext(), objectPath)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	file, err := os.CreateTemp("", c.tempPrefix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	context.AddTempFile(file.Name())
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", objectPath, err)
	}
	slog.DebugContext(context.GetContext(), "copied media to temp file", "object", objectPath, "file", file.Name(), "bytes", written)
	return file.Name(), nil
}
