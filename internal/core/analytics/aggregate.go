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

// Package analytics turns stored per-frame emotion distributions into the
// area (time series) and radar (cumulative totals) chart data.
package analytics

import (
	"encoding/json"
	"math"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

const (
	FrameKey     = "frame"
	TimestampKey = "timestamp"

	// MaxFraction bounds the magnitude of a distribution value that is
	// aggregated. Larger values are skipped like non-numeric ones.
	MaxFraction = 1e15
)

// Aggregate expects frames ordered by frame number. Each distribution value
// becomes round(v*100), rounding half away from zero. Non-numeric,
// non-finite and out of range (|v| > MaxFraction) values are skipped. Radar
// holds the per-emotion sum of those percentages across all frames, saturating
// at the int64 bounds.
func Aggregate(frames []*model.Frame) *model.Analytics {
	out := &model.Analytics{
		Area:  make([]model.AreaPoint, 0, len(frames)),
		Radar: make(map[string]int64),
	}

	for _, f := range frames {
		if f == nil {
			continue
		}
		point := model.AreaPoint{
			FrameKey:     f.FrameNumber,
			TimestampKey: f.TimestampMs,
		}
		for emotion, raw := range f.EmotionDistribution {
			fraction, ok := numeric(raw)
			if !ok {
				continue
			}
			percent := Percent(fraction)
			point[emotion] = percent
			out.Radar[emotion] = addSaturating(out.Radar[emotion], percent)
		}
		out.Area = append(out.Area, point)
	}
	return out
}

// Percent converts a fraction to a whole percentage. Fractions beyond
// ±MaxFraction are clamped to it and NaN yields 0.
func Percent(fraction float64) int64 {
	switch {
	case math.IsNaN(fraction):
		return 0
	case fraction > MaxFraction:
		fraction = MaxFraction
	case fraction < -MaxFraction:
		fraction = -MaxFraction
	}
	return int64(math.Round(fraction * 100))
}

// addSaturating adds b to a, sticking at the int64 bounds instead of wrapping.
func addSaturating(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	if b < 0 && a < math.MinInt64-b {
		return math.MinInt64
	}
	return a + b
}

func numeric(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > MaxFraction {
		return 0, false
	}
	return f, true
}
