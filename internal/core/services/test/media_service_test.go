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

package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/services"
)

func frame(videoID string, number int64, dist map[string]any) *model.Frame {
	return &model.Frame{VideoID: videoID, FrameNumber: number, TimestampMs: number * 40, EmotionDistribution: datatypes.JSONMap(dist)}
}

func TestListVideosNeverNil(t *testing.T) {
	svc := services.NewMediaService(&memoryStore{}, 0)

	videos, err := svc.ListVideos(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, videos)
	assert.Empty(t, videos)

	_, err = services.NewMediaService(&memoryStore{listErr: errBackend}, 0).ListVideos(context.Background())
	assert.ErrorIs(t, err, errBackend)
}

func TestFramesLimits(t *testing.T) {
	s := &memoryStore{frames: []*model.Frame{frame("v", 0, nil), frame("v", 1, nil), frame("w", 0, nil)}}
	svc := services.NewMediaService(s, 0)
	ctx := context.Background()

	out, err := svc.Frames(ctx, "v", 0)
	require.NoError(t, err)
	assert.Equal(t, services.DefaultFrameLimit, s.lastLimit)
	assert.Equal(t, "v", out.VideoID)
	assert.Len(t, out.Frames, 2)

	out, err = svc.Frames(ctx, "v", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.lastLimit)
	assert.Len(t, out.Frames, 1)

	out, err = svc.Frames(ctx, "none", 5)
	require.NoError(t, err)
	assert.NotNil(t, out.Frames)
	assert.Empty(t, out.Frames)

	var validation *model.ValidationError
	_, err = svc.Frames(ctx, "v", -1)
	assert.ErrorAs(t, err, &validation)
	_, err = svc.Frames(ctx, " ", 10)
	assert.ErrorAs(t, err, &validation)
}

func TestFramesCustomDefaultLimit(t *testing.T) {
	s := &memoryStore{}
	_, err := services.NewMediaService(s, 25).Frames(context.Background(), "v", 0)
	require.NoError(t, err)
	assert.Equal(t, 25, s.lastLimit)
}

func TestAnalytics(t *testing.T) {
	s := &memoryStore{
		videos: []*model.Video{{ID: "v", Title: "clip.mp4"}},
		frames: []*model.Frame{
			frame("v", 0, map[string]any{"happy": 0.863, "sad": 0.045}),
			frame("v", 1, map[string]any{"happy": 0.5, "sad": 0.5}),
		},
	}
	svc := services.NewMediaService(s, 0)

	out, err := svc.Analytics(context.Background(), "v")
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", out.MovieTitle)
	require.Len(t, out.Area, 2)
	assert.Equal(t, int64(86), out.Area[0]["happy"])
	assert.Equal(t, map[string]int64{"happy": 136, "sad": 55}, out.Radar)
	// All frames are aggregated, not just the default page.
	assert.Equal(t, 0, s.lastLimit)
}

func TestAnalyticsTitleIsBestEffort(t *testing.T) {
	ctx := context.Background()

	out, err := services.NewMediaService(&memoryStore{}, 0).Analytics(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, "", out.MovieTitle)
	assert.Empty(t, out.Area)
	assert.Empty(t, out.Radar)

	s := &memoryStore{getErr: errBackend, frames: []*model.Frame{frame("v", 0, map[string]any{"joy": 1})}}
	out, err = services.NewMediaService(s, 0).Analytics(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, "", out.MovieTitle)
	assert.Equal(t, map[string]int64{"joy": 100}, out.Radar)
}

func TestAnalyticsFrameReadFailure(t *testing.T) {
	_, err := services.NewMediaService(&memoryStore{listErr: errBackend}, 0).Analytics(context.Background(), "v")
	assert.ErrorIs(t, err, errBackend)
}
