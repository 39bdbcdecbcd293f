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

package analytics_test

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/analytics"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

func frame(number int64, dist map[string]any) *model.Frame {
	return &model.Frame{
		VideoID:             "video-1",
		FrameNumber:         number,
		TimestampMs:         number * 40,
		EmotionDistribution: datatypes.JSONMap(dist),
	}
}

func TestAggregateSingleFrame(t *testing.T) {
	out := analytics.Aggregate([]*model.Frame{frame(0, map[string]any{"joy": 0.863, "anger": 0.045})})

	require.Len(t, out.Area, 1)
	assert.Equal(t, int64(86), out.Area[0]["joy"])
	assert.Equal(t, int64(5), out.Area[0]["anger"])
	assert.Equal(t, int64(0), out.Area[0][analytics.FrameKey])
	assert.Equal(t, int64(0), out.Area[0][analytics.TimestampKey])
	assert.Equal(t, map[string]int64{"joy": 86, "anger": 5}, out.Radar)
	assert.Empty(t, out.MovieTitle)
}

func TestAggregateEmpty(t *testing.T) {
	out := analytics.Aggregate(nil)
	assert.NotNil(t, out.Area)
	assert.NotNil(t, out.Radar)
	assert.Empty(t, out.Area)
	assert.Empty(t, out.Radar)

	body, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"area":[],"radar":{},"movieTitle":""}`, string(body))
}

func TestAggregateKeepsOrderAndSparseKeys(t *testing.T) {
	out := analytics.Aggregate([]*model.Frame{
		frame(1, map[string]any{"joy": 0.5}),
		frame(2, map[string]any{"joy": 0.25, "amusement": 0.75}),
		frame(3, nil),
	})

	require.Len(t, out.Area, 3)
	assert.Equal(t, int64(1), out.Area[0][analytics.FrameKey])
	assert.Equal(t, int64(2), out.Area[1][analytics.FrameKey])
	assert.Equal(t, int64(3), out.Area[2][analytics.FrameKey])
	assert.NotContains(t, out.Area[0], "amusement")
	assert.Len(t, out.Area[2], 2)
	assert.Equal(t, map[string]int64{"joy": 75, "amusement": 75}, out.Radar)
}

func TestAggregateSkipsNonNumeric(t *testing.T) {
	out := analytics.Aggregate([]*model.Frame{
		frame(0, map[string]any{
			"joy":     "0.9",
			"fear":    nil,
			"anger":   math.NaN(),
			"sadness": json.Number("0.125"),
			"calm":    1,
		}),
	})

	require.Len(t, out.Area, 1)
	assert.NotContains(t, out.Area[0], "joy")
	assert.NotContains(t, out.Area[0], "fear")
	assert.NotContains(t, out.Area[0], "anger")
	assert.Equal(t, int64(13), out.Area[0]["sadness"])
	assert.Equal(t, int64(100), out.Area[0]["calm"])
	assert.Equal(t, map[string]int64{"sadness": 13, "calm": 100}, out.Radar)
}

func TestPercentRoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, int64(1), analytics.Percent(0.005))
	assert.Equal(t, int64(3), analytics.Percent(0.025))
	assert.Equal(t, int64(-1), analytics.Percent(-0.005))
	assert.Equal(t, int64(50), analytics.Percent(0.5))
}

// Radar totals equal the column sums of the area series.
func TestAggregateRadarMatchesAreaSums(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	emotions := []string{"joy", "sadness", "anger", "fear", "surprise"}

	frames := make([]*model.Frame, 0, 200)
	for i := 0; i < 200; i++ {
		dist := map[string]any{}
		for _, e := range emotions {
			if rng.Intn(3) > 0 {
				dist[e] = rng.Float64()
			}
		}
		frames = append(frames, frame(int64(i), dist))
	}

	out := analytics.Aggregate(frames)
	sums := map[string]int64{}
	for _, point := range out.Area {
		for key, value := range point {
			if key == analytics.FrameKey || key == analytics.TimestampKey {
				continue
			}
			sums[key] += value.(int64)
		}
	}
	assert.Equal(t, sums, out.Radar)
}

func TestAggregateSkipsOutOfRange(t *testing.T) {
	out := analytics.Aggregate([]*model.Frame{
		frame(0, map[string]any{
			"joy":     1e300,
			"sadness": -1e16,
			"anger":   json.Number("1e20"),
			"calm":    0.25,
		}),
	})

	require.Len(t, out.Area, 1)
	assert.NotContains(t, out.Area[0], "joy")
	assert.NotContains(t, out.Area[0], "sadness")
	assert.NotContains(t, out.Area[0], "anger")
	assert.Equal(t, map[string]int64{"calm": 25}, out.Radar)
}

func TestAggregateRadarSaturates(t *testing.T) {
	frames := make([]*model.Frame, 0, 100)
	for i := 0; i < 100; i++ {
		frames = append(frames, frame(int64(i), map[string]any{"joy": analytics.MaxFraction, "fear": -analytics.MaxFraction}))
	}

	out := analytics.Aggregate(frames)
	assert.Equal(t, int64(1e17), out.Area[0]["joy"])
	assert.Equal(t, int64(math.MaxInt64), out.Radar["joy"])
	assert.Equal(t, int64(math.MinInt64), out.Radar["fear"])
}

func TestPercentClamps(t *testing.T) {
	assert.Equal(t, int64(1e17), analytics.Percent(1e300))
	assert.Equal(t, int64(-1e17), analytics.Percent(math.Inf(-1)))
	assert.Equal(t, int64(0), analytics.Percent(math.NaN()))
}
