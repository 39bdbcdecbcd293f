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
	"errors"
	"log/slog"
	"strings"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/analytics"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
	"github.com/TheSuspect9702/emotion-flow-api/internal/store"
)

// DefaultFrameLimit caps the raw frames listing when no limit is given.
const DefaultFrameLimit = 1000

// MediaService is the read side over videos and their frames.
type MediaService struct {
	Store        store.Store
	DefaultLimit int // used by Frames when limit is zero
}

// NewMediaService returns the read service over s.
//
// Inputs:
//   - s: The durable store.
//   - defaultLimit: Frame listing size when the caller gives none. Values
//     below 1 fall back to DefaultFrameLimit.
//
// Outputs:
//   - *MediaService: The service.
func NewMediaService(s store.Store, defaultLimit int) *MediaService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultFrameLimit
	}
	return &MediaService{Store: s, DefaultLimit: defaultLimit}
}

// ListVideos returns every video as {id, title}, newest first.
func (s *MediaService) ListVideos(ctx context.Context) ([]*model.VideoSummary, error) {
	videos, err := s.Store.ListVideos(ctx)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = make([]*model.VideoSummary, 0)
	}
	return videos, nil
}

// Frames returns up to limit frames of a video ordered by frame number.
// A limit of zero uses DefaultLimit and a negative limit is rejected.
func (s *MediaService) Frames(ctx context.Context, videoID string, limit int) (*model.FrameListing, error) {
	if err := requireVideoID(videoID); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, &model.ValidationError{Field: "limit", Message: "Invalid limit"}
	}
	if limit == 0 {
		limit = s.DefaultLimit
	}

	frames, err := s.Store.ListFrames(ctx, videoID, limit)
	if err != nil {
		return nil, err
	}
	if frames == nil {
		frames = make([]*model.Frame, 0)
	}
	return &model.FrameListing{VideoID: videoID, Frames: frames}, nil
}

// Analytics builds the area and radar chart data for a video. The title is
// best effort: when it cannot be read, movieTitle is empty and the charts
// are still returned.
func (s *MediaService) Analytics(ctx context.Context, videoID string) (*model.Analytics, error) {
	if err := requireVideoID(videoID); err != nil {
		return nil, err
	}

	frames, err := s.Store.ListFrames(ctx, videoID, 0)
	if err != nil {
		return nil, err
	}

	out := analytics.Aggregate(frames)

	video, err := s.Store.GetVideo(ctx, videoID)
	if err != nil {
		var notFound *model.NotFoundError
		if errors.As(err, &notFound) {
			slog.WarnContext(ctx, "analytics requested for unknown video", "video_id", videoID)
		} else {
			slog.WarnContext(ctx, "failed to read video title", "video_id", videoID, "error", err)
		}
		return out, nil
	}
	out.MovieTitle = video.Title
	return out, nil
}

func requireVideoID(videoID string) error {
	if strings.TrimSpace(videoID) == "" {
		return &model.ValidationError{Field: "videoId", Message: "Invalid videoId"}
	}
	return nil
}
