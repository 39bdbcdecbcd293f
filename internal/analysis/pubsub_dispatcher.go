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

package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/pubsub"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

// PubSubDispatcher publishes the job as JSON for workers that pull the media
// from storage themselves.
type PubSubDispatcher struct {
	topic *pubsub.Topic
}

// NewPubSubDispatcher publishes jobs to topic.
func NewPubSubDispatcher(topic *pubsub.Topic) *PubSubDispatcher {
	return &PubSubDispatcher{topic: topic}
}

// Dispatch publishes the job as JSON with a video_id attribute and waits for
// the server to accept it.
func (d *PubSubDispatcher) Dispatch(ctx context.Context, job *model.AnalysisJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode analysis job: %w", err)
	}
	result := d.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{VideoIDField: job.VideoID},
	})
	// Block until the server acknowledges so failures reach the caller.
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish analysis job to %s: %w", d.topic.ID(), err)
	}
	slog.InfoContext(ctx, "published analysis job", "topic", d.topic.ID(), "message_id", id, "video_id", job.VideoID)
	return nil
}
