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

// Package cache holds the low latency projection of ingested frames. Each frame
// is a Redis hash at `video:{video_id}:frame:{frame_number}`; writing a frame
// again replaces its fields.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

// FrameCache is the write side of the frame projection.
type FrameCache interface {
	// WriteFrames sends every frame of the batch in one pipeline. The
	// pipeline is not atomic; on error some frames may have been written.
	WriteFrames(ctx context.Context, videoID string, frames []*model.Frame) error
}

// RedisFrameCache implements FrameCache on go-redis.
type RedisFrameCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisFrameCache returns a cache writing through client. A zero ttl keeps
// entries until they are overwritten.
func NewRedisFrameCache(client redis.Cmdable, ttl time.Duration) *RedisFrameCache {
	return &RedisFrameCache{client: client, ttl: ttl}
}

// FrameKey is the cache key of one frame.
func FrameKey(videoID string, frameNumber int64) string {
	return fmt.Sprintf("video:%s:frame:%d", videoID, frameNumber)
}

// FrameFields flattens a frame into hash fields. Nested values are JSON text
// and absent optional values are empty strings.
func FrameFields(videoID string, f *model.Frame) (map[string]any, error) {
	actors := f.Actors
	if actors == nil {
		actors = []model.ActorEmotion{}
	}
	actorsJSON, err := json.Marshal(actors)
	if err != nil {
		return nil, fmt.Errorf("failed to encode actors: %w", err)
	}

	objects := f.Objects
	if objects == nil {
		objects = []string{}
	}
	objectsJSON, err := json.Marshal(objects)
	if err != nil {
		return nil, fmt.Errorf("failed to encode objects: %w", err)
	}

	distributionJSON := []byte("{}")
	if f.EmotionDistribution != nil {
		distributionJSON, err = json.Marshal(f.EmotionDistribution)
		if err != nil {
			return nil, fmt.Errorf("failed to encode emotion distribution: %w", err)
		}
	}

	sceneScore := ""
	if f.SceneScore != nil {
		sceneScore = strconv.FormatFloat(*f.SceneScore, 'f', -1, 64)
	}
	dominant := ""
	if f.EmotionDominant != nil {
		dominant = *f.EmotionDominant
	}

	return map[string]any{
		"video_id":             videoID,
		"frame_number":         strconv.FormatInt(f.FrameNumber, 10),
		"timestamp_ms":         strconv.FormatInt(f.TimestampMs, 10),
		"actors":               string(actorsJSON),
		"objects":              string(objectsJSON),
		"scene_score":          sceneScore,
		"emotion_dominant":     dominant,
		"emotion_distribution": string(distributionJSON),
	}, nil
}

// WriteFrames queues one HSET per frame, plus an EXPIRE when a TTL is set,
// and sends them in a single pipeline round trip.
//
// Inputs:
//   - ctx: The request context.
//   - videoID: The video the frames belong to.
//   - frames: The validated frames of one batch.
//
// Outputs:
//   - error: The first failed command or the transport error. Frames sent
//     before the failure stay in the cache.
func (c *RedisFrameCache) WriteFrames(ctx context.Context, videoID string, frames []*model.Frame) error {
	if len(frames) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, f := range frames {
		fields, err := FrameFields(videoID, f)
		if err != nil {
			pipe.Discard()
			return fmt.Errorf("frame %d: %w", f.FrameNumber, err)
		}
		key := FrameKey(videoID, f.FrameNumber)
		pipe.HSet(ctx, key, fields)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}
