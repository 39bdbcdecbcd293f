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

// Package test holds helpers shared by the test suites: the test
// configuration, throwaway backends and sample worker payloads.
package test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/TheSuspect9702/emotion-flow-api/internal/cloud"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
	"github.com/TheSuspect9702/emotion-flow-api/internal/store"
)

type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is set.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ConfigDir returns the absolute path of the repository configs directory.
func ConfigDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "configs")
}

// SetupOS points the config loader at configs/ with the test overlay.
func SetupOS() (err error) {
	if err = os.Setenv(cloud.EnvConfigFilePrefix, ConfigDir()); err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, "test")
}

// GetConfig loads the test configuration once per test binary.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load test configuration: %v\n", err)
		}
		state.config = config
	}
	return state.config
}

// NewSQLStore opens a migrated SQLite store in a temp directory that is
// removed with the test.
func NewSQLStore(t *testing.T) *store.SQLStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "emotion-flow.db")
	s, err := store.OpenSQLStore(store.DriverSQLite, dsn)
	HandleErr(err, t)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// NewRedis starts an in-memory Redis and a client connected to it.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

// SampleBatch builds a batch of n frames numbered from zero, 40ms apart,
// with a joy/sadness split that shifts by one percent per frame.
func SampleBatch(videoID string, n int) *model.FrameBatch {
	batch := &model.FrameBatch{VideoID: videoID}
	for i := 0; i < n; i++ {
		number := int64(i)
		score := 0.5
		dominant := "joy"
		joy := 0.8 - float64(i)/100
		name := fmt.Sprintf("actor-%d", i)
		batch.Frames = append(batch.Frames, &model.FramePayload{
			FrameNumber: &number,
			TimestampMs: int64(i) * 40,
			Actors: []model.ActorEmotion{
				{Name: &name, Emotion: "joy", Confidence: 0.9},
			},
			Objects:         []string{"person"},
			SceneScore:      &score,
			EmotionDominant: &dominant,
			EmotionDistribution: map[string]any{
				"joy":     joy,
				"sadness": 1 - joy,
			},
		})
	}
	return batch
}

// GetTestFrameBatchText is a worker payload in the batch shape with three
// frames sent out of order.
func GetTestFrameBatchText(videoID string) string {
	return strings.ReplaceAll(`{
  "video_id": "VIDEO_ID",
  "frames": [
    {
      "frame_number": 2,
      "timestamp_ms": 80,
      "actors": [{"name": "Alice", "emotion": "sad", "confidence": 0.71}],
      "objects": ["person", "chair"],
      "scene_score": 0.42,
      "emotion_dominant": "sad",
      "emotion_distribution": {"happy": 0.1, "sad": 0.7, "neutral": 0.2}
    },
    {
      "frame_number": 0,
      "timestamp_ms": 0,
      "actors": [{"name": null, "emotion": "happy", "confidence": 0.93}],
      "objects": ["person"],
      "scene_score": 0.9,
      "emotion_dominant": "happy",
      "emotion_distribution": {"happy": 0.863, "sad": 0.045, "neutral": 0.092}
    },
    {
      "frame_number": 1,
      "timestamp_ms": 40,
      "actors": [],
      "emotion_dominant": null,
      "emotion_distribution": {"happy": 0.5, "sad": 0.25, "neutral": 0.25}
    }
  ]
}`, "VIDEO_ID", videoID)
}

// GetTestSingleFrameText is a worker payload in the single frame shape.
func GetTestSingleFrameText(videoID string) string {
	return strings.ReplaceAll(`{
  "video_id": "VIDEO_ID",
  "frame_number": 7,
  "timestamp_ms": 280,
  "actors": [{"name": "Bob", "emotion": "angry", "confidence": 0.66}],
  "objects": ["car"],
  "scene_score": 0.3,
  "emotion_dominant": "angry",
  "emotion_distribution": {"angry": 0.6, "neutral": 0.4}
}`, "VIDEO_ID", videoID)
}
