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
	"log/slog"

	"github.com/TheSuspect9702/emotion-flow-api/internal/analysis"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
	"github.com/TheSuspect9702/emotion-flow-api/internal/media"
)

// MediaDispatch hands the upload to the analysis worker. It returns once the
// worker has accepted the job, not when analysis completes.
type MediaDispatch struct {
	cor.BaseCommand
	dispatcher analysis.Dispatcher
	media      media.Store
}

// NewMediaDispatch builds the command.
//
// Inputs:
//   - name: The command name used for spans and counters.
//   - dispatcher: The analysis worker client.
//   - store: Media storage, used to describe the object location.
//
// Outputs:
//   - *MediaDispatch: The command, ready to add to a chain.
func NewMediaDispatch(name string, dispatcher analysis.Dispatcher, store media.Store) *MediaDispatch {
	out := &MediaDispatch{BaseCommand: *cor.NewBaseCommand(name), dispatcher: dispatcher, media: store}
	out.InputParamName = ParamMediaPath
	return out
}

// Execute builds the analysis job from the upload, the final title and the
// local copy, then dispatches it. The job is written to the output param.
//
// Inputs:
//   - context: The chain context of the current execution.
func (c *MediaDispatch) Execute(context cor.Context) {
	localPath, err := getTyped[string](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}
	upload, err := getTyped[*model.UploadRequest](context, ParamUpload)
	if err != nil {
		c.Fail(context, err)
		return
	}
	title, err := getTyped[string](context, ParamFinalTitle)
	if err != nil {
		c.Fail(context, err)
		return
	}

	job := &model.AnalysisJob{
		VideoID:    upload.VideoID,
		Title:      title,
		ObjectPath: upload.FilePath,
		Location:   c.media.Location(upload.FilePath),
		LocalPath:  localPath,
	}
	if err := c.dispatcher.Dispatch(context.GetContext(), job); err != nil {
		slog.ErrorContext(context.GetContext(), "analysis dispatch failed", "video_id", job.VideoID, "location", job.Location, "error", err)
		c.Fail(context, &model.UpstreamWriteError{Stage: model.StageDispatch, Err: err})
		return
	}
	c.Succeed(context)
	context.Add(c.GetOutputParam(), job)
}
