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

package store_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/analytics"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/versioning"
	"github.com/TheSuspect9702/emotion-flow-api/internal/store"
	test "github.com/TheSuspect9702/emotion-flow-api/internal/testutil"
)

func TestCreateAndGetVideo(t *testing.T) {
	s := test.NewSQLStore(t)
	ctx := context.Background()

	video := model.NewVideo("clip.mp4")
	require.NoError(t, s.CreateVideo(ctx, video))

	got, err := s.GetVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", got.Title)

	assert.Error(t, s.CreateVideo(ctx, &model.Video{ID: video.ID, Title: "other.mp4"}))
}

func TestGetVideoNotFound(t *testing.T) {
	s := test.NewSQLStore(t)

	_, err := s.GetVideo(context.Background(), "missing")
	var notFound *model.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestEnsureVideoKeepsExistingTitle(t *testing.T) {
	s := test.NewSQLStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateVideo(ctx, &model.Video{ID: "vid-1", Title: "clip.mp4"}))
	require.NoError(t, s.EnsureVideo(ctx, "vid-1"))
	require.NoError(t, s.EnsureVideo(ctx, "vid-2"))
	require.NoError(t, s.EnsureVideo(ctx, "vid-2"))

	first, err := s.GetVideo(ctx, "vid-1")
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", first.Title)

	second, err := s.GetVideo(ctx, "vid-2")
	require.NoError(t, err)
	assert.Empty(t, second.Title)

	videos, err := s.ListVideos(ctx)
	require.NoError(t, err)
	assert.Len(t, videos, 2)
}

func TestFindTitlesByPrefix(t *testing.T) {
	s := test.NewSQLStore(t)
	ctx := context.Background()

	for _, title := range []string{"Clip.mp4", "clip_v2.mp4", "clipping.mov", "other.mp4", "100%_real.mp4"} {
		require.NoError(t, s.CreateVideo(ctx, model.NewVideo(title)))
	}

	titles, err := s.FindTitlesByPrefix(ctx, "clip")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Clip.mp4", "clip_v2.mp4", "clipping.mov"}, titles)

	titles, err = s.FindTitlesByPrefix(ctx, "100%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100%_real.mp4"}, titles)

	titles, err = s.FindTitlesByPrefix(ctx, "1%")
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestFindTitlesByPrefixNonASCII(t *testing.T) {
	s := test.NewSQLStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateVideo(ctx, model.NewVideo("Ärger.mp4")))
	require.NoError(t, s.CreateVideo(ctx, model.NewVideo("Ärger_v2.mp4")))
	require.NoError(t, s.CreateVideo(ctx, model.NewVideo("Arger.mp4")))

	titles, err := s.FindTitlesByPrefix(ctx, versioning.BaseName("Ärger.mp4"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Ärger.mp4", "Ärger_v2.mp4"}, titles)
	assert.Equal(t, "Ärger_v3.mp4", versioning.Resolve("Ärger.mp4", titles))

	titles, err = s.FindTitlesByPrefix(ctx, "日本")
	require.NoError(t, err)
	assert.Empty(t, titles)
	require.NoError(t, s.CreateVideo(ctx, model.NewVideo("日本.mov")))
	titles, err = s.FindTitlesByPrefix(ctx, "日本")
	require.NoError(t, err)
	assert.Equal(t, "日本_v2.mov", versioning.Resolve("日本.mov", titles))
}

func TestListVideosNewestFirst(t *testing.T) {
	s := test.NewSQLStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "middle", "new"} {
		video := &model.Video{ID: id, Title: id + ".mp4", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.CreateVideo(ctx, video))
	}

	videos, err := s.ListVideos(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 3)
	assert.Equal(t, "new", videos[0].ID)
	assert.Equal(t, "middle", videos[1].ID)
	assert.Equal(t, "old", videos[2].ID)
	assert.Equal(t, "new.mp4", videos[0].Title)
}

func TestInsertAndListFrames(t *testing.T) {
	s := test.NewSQLStore(t)
	ctx := context.Background()

	frames := test.SampleBatch("vid-1", 5).ToFrames()
	// Insert out of order; listing sorts by frame number.
	frames[0], frames[4] = frames[4], frames[0]
	require.NoError(t, s.InsertFrames(ctx, frames))
	require.NoError(t, s.InsertFrames(ctx, test.SampleBatch("vid-2", 2).ToFrames()))

	got, err := s.ListFrames(ctx, "vid-1", 0)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, f := range got {
		assert.Equal(t, int64(i), f.FrameNumber)
		assert.Equal(t, "vid-1", f.VideoID)
	}
	require.Len(t, got[0].Actors, 1)
	assert.Equal(t, "joy", got[0].Actors[0].Emotion)
	assert.Equal(t, []string{"person"}, got[0].Objects)
	joy, ok := got[0].EmotionDistribution["joy"].(json.Number)
	require.True(t, ok, "distribution values are read back as json.Number")
	joyValue, err := joy.Float64()
	require.NoError(t, err)
	assert.InDelta(t, 0.8, joyValue, 1e-9)

	charts := analytics.Aggregate(got)
	require.Len(t, charts.Area, 5)
	assert.Equal(t, int64(80), charts.Area[0]["joy"])
	assert.Equal(t, int64(20), charts.Area[0]["sadness"])
	assert.Equal(t, int64(76), charts.Area[4]["joy"])
	assert.Equal(t, map[string]int64{"joy": 390, "sadness": 110}, charts.Radar)

	limited, err := s.ListFrames(ctx, "vid-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Equal(t, int64(1), limited[1].FrameNumber)
}

func TestInsertFramesAppendsDuplicates(t *testing.T) {
	s := test.NewSQLStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertFrames(ctx, test.SampleBatch("vid-1", 2).ToFrames()))
	require.NoError(t, s.InsertFrames(ctx, test.SampleBatch("vid-1", 2).ToFrames()))

	got, err := s.ListFrames(ctx, "vid-1", 0)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestNewUnknownDriver(t *testing.T) {
	config := test.GetConfig()
	copied := *config
	copied.Store.Driver = "mongo"
	_, err := store.New(context.Background(), &copied, nil)
	assert.Error(t, err)

	copied.Store.Driver = store.DriverBigQuery
	_, err = store.New(context.Background(), &copied, nil)
	assert.Error(t, err)
}
