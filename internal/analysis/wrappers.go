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
	"fmt"

	"golang.org/x/time/rate"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

// QuotaAwareDispatcher decorates a Dispatcher with a token bucket so bursts of
// uploads do not overrun the worker.
type QuotaAwareDispatcher struct {
	wrapped Dispatcher
	limiter *rate.Limiter
}

// NewQuotaAwareDispatcher allows requestsPerSecond dispatches with bursts of
// up to burst. A burst below one is raised to one.
func NewQuotaAwareDispatcher(wrapped Dispatcher, requestsPerSecond float64, burst int) *QuotaAwareDispatcher {
	if burst < 1 {
		burst = 1
	}
	return &QuotaAwareDispatcher{
		wrapped: wrapped,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Dispatch waits for a token, or for ctx to end, before delegating.
func (q *QuotaAwareDispatcher) Dispatch(ctx context.Context, job *model.AnalysisJob) error {
	if err := q.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("dispatch rate limit wait: %w", err)
	}
	return q.wrapped.Dispatch(ctx, job)
}
