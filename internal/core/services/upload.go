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

package services

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/commands"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
	"github.com/TheSuspect9702/emotion-flow-api/internal/media"
)

const StatusOK = "ok"

// UploadService accepts new media, either already in media storage or as a
// stream, and runs it through the intake workflow.
type UploadService struct {
	media    media.Store
	workflow cor.Command
}

// NewUploadService returns the upload service.
//
// Inputs:
//   - mediaStore: Where streamed uploads are saved.
//   - workflow: The intake workflow, normally a *workflow.MediaIntakeWorkflow.
//
// Outputs:
//   - *UploadService: The service.
func NewUploadService(mediaStore media.Store, workflow cor.Command) *UploadService {
	return &UploadService{media: mediaStore, workflow: workflow}
}

// IntakeReference handles an object that the client already put into media
// storage. The response is sent once the worker accepted the job.
//
// Inputs:
//   - ctx: The request context.
//   - req: filePath names the stored object, originalFilename the name the
//     versioned title is derived from. Both are required.
//
// Outputs:
//   - *model.UploadResult: The new video id and its final title.
//   - error: A *model.ValidationError for missing fields, otherwise a
//     *model.UpstreamWriteError. The video row is kept when only the media
//     copy or the dispatch failed.
func (s *UploadService) IntakeReference(ctx context.Context, req *model.UploadRequest) (*model.UploadResult, error) {
	if req == nil || strings.TrimSpace(req.FilePath) == "" || strings.TrimSpace(req.OriginalFilename) == "" {
		return nil, &model.ValidationError{Field: "filePath", Message: "Missing filePath or originalFilename in request body"}
	}

	upload := &model.UploadRequest{
		FilePath:         req.FilePath,
		OriginalFilename: req.OriginalFilename,
		VideoID:          uuid.NewString(),
	}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(commands.ParamUpload, upload)

	s.workflow.Execute(chainCtx)
	if err := chainCtx.GetError(); err != nil {
		slog.ErrorContext(ctx, "upload intake failed", "video_id", upload.VideoID, "file_path", upload.FilePath, "error", err)
		return nil, err
	}

	title, _ := chainCtx.Get(commands.ParamFinalTitle).(string)
	return &model.UploadResult{Status: StatusOK, VideoID: upload.VideoID, FinalTitle: title}, nil
}

// IntakeStream saves r into media storage and then continues as
// IntakeReference. originalFilename falls back to filename when empty.
func (s *UploadService) IntakeStream(ctx context.Context, filename string, originalFilename string, contentType string, r io.Reader) (*model.UploadResult, error) {
	if strings.TrimSpace(originalFilename) == "" {
		originalFilename = filename
	}
	if strings.TrimSpace(originalFilename) == "" {
		return nil, &model.ValidationError{Field: "originalFilename", Message: "Missing filePath or originalFilename in request body"}
	}

	objectPath, err := s.media.Save(ctx, originalFilename, contentType, r)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save uploaded media", "filename", originalFilename, "error", err)
		return nil, &model.UpstreamWriteError{Stage: model.StageStorage, Err: err}
	}
	slog.InfoContext(ctx, "saved uploaded media", "filename", originalFilename, "location", s.media.Location(objectPath))

	return s.IntakeReference(ctx, &model.UploadRequest{FilePath: objectPath, OriginalFilename: originalFilename})
}
