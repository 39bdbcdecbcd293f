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

// Package analysis hands uploaded media to the external analysis worker. The
// worker later publishes frame batches back to the ingestion pipeline; this
// package only covers the outbound leg.
package analysis

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/TheSuspect9702/emotion-flow-api/internal/cloud"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

const (
	DispatchHTTP   = "http"
	DispatchPubSub = "pubsub"
)

// Dispatcher delivers one analysis job. Returning nil means the worker
// accepted the job, not that analysis finished.
type Dispatcher interface {
	Dispatch(ctx context.Context, job *model.AnalysisJob) error
}

// New builds the dispatcher selected by config.Worker, wrapped in a rate
// limiter when requests_per_second is set.
func New(config *cloud.Config, pubsubClient *pubsub.Client) (Dispatcher, error) {
	var d Dispatcher
	switch config.Worker.Dispatch {
	case DispatchHTTP, "":
		if config.Worker.URL == "" {
			return nil, fmt.Errorf("worker.url is required for %s dispatch", DispatchHTTP)
		}
		d = NewHTTPDispatcher(config.Worker.URL, time.Duration(config.Worker.TimeoutSeconds)*time.Second)
	case DispatchPubSub:
		if pubsubClient == nil {
			return nil, fmt.Errorf("%s dispatch requires a pubsub client", DispatchPubSub)
		}
		d = NewPubSubDispatcher(pubsubClient.Topic(config.Worker.Topic))
	default:
		return nil, fmt.Errorf("unknown worker dispatch %q", config.Worker.Dispatch)
	}

	if config.Worker.RequestsPerSecond > 0 {
		d = NewQuotaAwareDispatcher(d, config.Worker.RequestsPerSecond, config.Worker.Burst)
	}
	return d, nil
}
