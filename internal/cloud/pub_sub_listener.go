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

package cloud

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

// PubSubListener runs a command for every message of a subscription. The
// message body is placed in cor.CtxIn as a string. Messages are acked when the
// command succeeds or fails validation (redelivery cannot fix those) and
// nacked otherwise.
type PubSubListener struct {
	client       *pubsub.Client
	subscription *pubsub.Subscription
	command      cor.Command
}

// NewPubSubListener binds a listener to an existing subscription.
//
// Inputs:
//   - pubsubClient: The Pub/Sub client.
//   - subscriptionID: The subscription to receive from.
//   - command: The command run per message. It may be nil and set later
//     with SetCommand.
//
// Outputs:
//   - *PubSubListener: The listener, not yet receiving.
//   - error: An error when the subscription cannot be resolved.
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	subscriptionID string,
	command cor.Command,
) (cmd *PubSubListener, err error) {
	sub := pubsubClient.Subscription(subscriptionID)

	cmd = &PubSubListener{
		client:       pubsubClient,
		subscription: sub,
		command:      command,
	}
	return cmd, nil
}

// SetCommand assigns the command once; later calls are ignored.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen starts receiving in a background goroutine until ctx is cancelled.
// The returned channel is closed when Receive returns.
func (m *PubSubListener) Listen(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	slog.Info("listening", "subscription", m.subscription.ID())

	go func() {
		defer close(done)
		tracer := otel.Tracer("message-listener")

		err := m.subscription.Receive(ctx, func(msgCtx context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(msgCtx, "receive-message")
			defer span.End()
			span.SetAttributes(
				attribute.String("message.id", msg.ID),
				attribute.Int("message.bytes", len(msg.Data)),
			)

			chainCtx := cor.NewBaseContext()
			defer chainCtx.Close()
			chainCtx.SetContext(spanCtx)
			chainCtx.Add(cor.CtxIn, string(msg.Data))

			m.command.Execute(chainCtx)

			err := chainCtx.GetError()
			if err == nil {
				span.SetStatus(codes.Ok, "success")
				msg.Ack()
				return
			}

			span.SetStatus(codes.Error, "failed")
			for name, e := range chainCtx.GetErrors() {
				slog.ErrorContext(spanCtx, "error executing chain", "command", name, "message_id", msg.ID, "error", e)
			}
			var validationErr *model.ValidationError
			if errors.As(err, &validationErr) {
				msg.Ack()
				return
			}
			msg.Nack()
		})

		if err != nil {
			slog.Error("error receiving data", "subscription", m.subscription.ID(), "error", err)
		}
	}()
	return done
}
