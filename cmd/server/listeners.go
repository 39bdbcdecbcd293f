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

package main

import (
	"context"
	"log/slog"

	"github.com/TheSuspect9702/emotion-flow-api/internal/cloud"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/workflow"
)

// FrameResultsListener is the [topic_subscriptions] key of the subscription
// the analysis worker publishes frame batches to.
const FrameResultsListener = "FrameResults"

// SetupListeners starts the Pub/Sub listeners and returns channels closed
// when each one has stopped.
func SetupListeners(ctx context.Context, cloudClients *cloud.ServiceClients, frameResults *workflow.FrameResultsWorkflow) []<-chan struct{} {
	var done []<-chan struct{}
	for name, listener := range cloudClients.PubSubListeners {
		if name != FrameResultsListener {
			slog.Warn("no workflow for subscription, not listening", "listener", name)
			continue
		}
		listener.SetCommand(frameResults)
		done = append(done, listener.Listen(ctx))
	}
	return done
}
