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

package store

import (
	"testing"
	"time"

	"github.com/zeebo/assert"
	"gorm.io/datatypes"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

func TestBigQueryFrameRoundTrip(t *testing.T) {
	name := "Alice"
	score := 0.42
	dominant := "sad"
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	in := &model.Frame{
		VideoID:             "vid-1",
		FrameNumber:         3,
		TimestampMs:         120,
		Actors:              []model.ActorEmotion{{Name: &name, Emotion: "sad", Confidence: 0.7}},
		Objects:             []string{"chair"},
		SceneScore:          &score,
		EmotionDominant:     &dominant,
		EmotionDistribution: datatypes.JSONMap{"sad": 0.7, "happy": 0.3},
		CreatedAt:           created,
	}

	row, err := toBigQueryFrame(in)
	assert.Nil(t, err)
	assert.Equal(t, row.Actors, `[{"name":"Alice","emotion":"sad","confidence":0.7}]`)
	assert.Equal(t, row.Objects, `["chair"]`)
	assert.Equal(t, row.SceneScore.Valid, true)
	assert.Equal(t, row.EmotionDistribution.Valid, true)

	out, err := fromBigQueryFrame(row)
	assert.Nil(t, err)
	assert.Equal(t, out.VideoID, "vid-1")
	assert.Equal(t, out.FrameNumber, int64(3))
	assert.Equal(t, *out.SceneScore, 0.42)
	assert.Equal(t, *out.EmotionDominant, "sad")
	assert.Equal(t, *out.Actors[0].Name, "Alice")
	assert.Equal(t, out.EmotionDistribution["sad"], 0.7)
	assert.Equal(t, out.CreatedAt, created)
}

func TestBigQueryFrameOptionalFields(t *testing.T) {
	row, err := toBigQueryFrame(&model.Frame{VideoID: "vid-1", FrameNumber: 0})
	assert.Nil(t, err)
	assert.Equal(t, row.Actors, "[]")
	assert.Equal(t, row.Objects, "[]")
	assert.Equal(t, row.SceneScore.Valid, false)
	assert.Equal(t, row.EmotionDominant.Valid, false)
	assert.Equal(t, row.EmotionDistribution.Valid, false)
	assert.Equal(t, row.CreatedAt.IsZero(), false)

	out, err := fromBigQueryFrame(row)
	assert.Nil(t, err)
	assert.Equal(t, out.SceneScore == nil, true)
	assert.Equal(t, out.EmotionDominant == nil, true)
	assert.Equal(t, out.EmotionDistribution == nil, true)
	assert.Equal(t, len(out.Actors), 0)
}
