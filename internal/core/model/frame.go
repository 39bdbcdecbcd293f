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

package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// ActorEmotion is a single per-actor detection inside a frame.
type ActorEmotion struct {
	Name       *string `json:"name,omitempty"`
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// Frame is one timestamped analysis sample for a video as it is stored.
// The pair (VideoID, FrameNumber) identifies the frame in the cache; the
// durable store appends a row per ingestion and does not enforce uniqueness.
type Frame struct {
	ID                  uint64            `gorm:"primaryKey;autoIncrement" json:"-"`
	VideoID             string            `gorm:"type:varchar(64);not null;index:idx_frames_video_frame,priority:1" json:"video_id"`
	FrameNumber         int64             `gorm:"not null;index:idx_frames_video_frame,priority:2" json:"frame_number"`
	TimestampMs         int64             `gorm:"not null;default:0" json:"timestamp_ms"`
	Actors              []ActorEmotion    `gorm:"type:text;serializer:json" json:"actors"`
	Objects             []string          `gorm:"type:text;serializer:json" json:"objects"`
	SceneScore          *float64          `json:"scene_score"`
	EmotionDominant     *string           `gorm:"type:varchar(64)" json:"emotion_dominant"`
	EmotionDistribution datatypes.JSONMap `json:"emotion_distribution"`
	CreatedAt           time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

// TableName pins the relational table name independent of the naming strategy.
func (Frame) TableName() string {
	return "frames"
}

// FramePayload is a frame as received from the analysis worker. FrameNumber is a
// pointer so that a missing value can be told apart from frame zero.
type FramePayload struct {
	FrameNumber         *int64         `json:"frame_number"`
	TimestampMs         int64          `json:"timestamp_ms"`
	Actors              []ActorEmotion `json:"actors"`
	Objects             []string       `json:"objects,omitempty"`
	SceneScore          *float64       `json:"scene_score,omitempty"`
	EmotionDominant     *string        `json:"emotion_dominant,omitempty"`
	EmotionDistribution map[string]any `json:"emotion_distribution,omitempty"`
}

// ToFrame converts the payload into a storable frame for the given video.
// Callers must have validated the batch first.
func (p *FramePayload) ToFrame(videoID string) *Frame {
	f := &Frame{
		VideoID:         videoID,
		TimestampMs:     p.TimestampMs,
		Actors:          p.Actors,
		Objects:         p.Objects,
		SceneScore:      p.SceneScore,
		EmotionDominant: p.EmotionDominant,
	}
	if p.FrameNumber != nil {
		f.FrameNumber = *p.FrameNumber
	}
	if p.EmotionDistribution != nil {
		f.EmotionDistribution = datatypes.JSONMap(p.EmotionDistribution)
	}
	return f
}

// FrameBatch is a set of frames for a single video, the unit of ingestion.
type FrameBatch struct {
	VideoID string          `json:"video_id"`
	Frames  []*FramePayload `json:"frames"`
}

// Validate checks the batch without touching any backing store.
func (b *FrameBatch) Validate() error {
	if b == nil {
		return &ValidationError{Field: "frames", Message: "request body is required"}
	}
	if b.VideoID == "" {
		return &ValidationError{Field: "video_id", Message: "video_id is required"}
	}
	if len(b.Frames) == 0 {
		return &ValidationError{Field: "frames", Message: "frames must be a non-empty array"}
	}
	for i, f := range b.Frames {
		field := fmt.Sprintf("frames[%d].frame_number", i)
		if f == nil || f.FrameNumber == nil {
			return &ValidationError{Field: field, Message: field + " is required"}
		}
		if *f.FrameNumber < 0 {
			return &ValidationError{Field: field, Message: field + " must be non-negative"}
		}
	}
	return nil
}

// ToFrames converts every payload in the batch into a storable frame.
func (b *FrameBatch) ToFrames() []*Frame {
	out := make([]*Frame, 0, len(b.Frames))
	for _, p := range b.Frames {
		out = append(out, p.ToFrame(b.VideoID))
	}
	return out
}

// IngestRequest is the body accepted by the ingest endpoint and the frame
// results subscription. It is either a batch (`frames` set) or a single frame
// whose fields sit next to `video_id`.
type IngestRequest struct {
	VideoID string          `json:"video_id"`
	Frames  json.RawMessage `json:"frames,omitempty"`
	FramePayload
}

// ToBatch normalises both request shapes into a FrameBatch. The result still
// needs to be validated.
func (r *IngestRequest) ToBatch() (*FrameBatch, error) {
	batch := &FrameBatch{VideoID: r.VideoID}
	switch {
	case len(r.Frames) > 0 && string(r.Frames) != "null":
		if err := json.Unmarshal(r.Frames, &batch.Frames); err != nil {
			return nil, &ValidationError{Field: "frames", Message: "frames must be an array of frame records"}
		}
	case r.FrameNumber != nil:
		single := r.FramePayload
		batch.Frames = []*FramePayload{&single}
	}
	return batch, nil
}

// FrameListing is the response body of the raw frames endpoint.
type FrameListing struct {
	VideoID string   `json:"video_id"`
	Frames  []*Frame `json:"frames"`
}
