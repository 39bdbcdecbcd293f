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

package cloud_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheSuspect9702/emotion-flow-api/internal/cloud"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
	test "github.com/TheSuspect9702/emotion-flow-api/internal/testutil"
)

// scriptedCommand fails according to the message body.
type scriptedCommand struct {
	cor.BaseCommand
	mu   sync.Mutex
	seen []string
}

func (c *scriptedCommand) Execute(context cor.Context) {
	body := context.Get(cor.CtxIn).(string)
	c.mu.Lock()
	c.seen = append(c.seen, body)
	c.mu.Unlock()

	switch body {
	case "invalid":
		c.Fail(context, &model.ValidationError{Field: "body", Message: "bad"})
	case "retry":
		c.Fail(context, errors.New("store unavailable"))
	default:
		c.Succeed(context)
	}
}

// deliveries counts how often body reached the command.
func (c *scriptedCommand) deliveries(body string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.seen {
		if b == body {
			n++
		}
	}
	return n
}

func message(server *pstest.Server, id string) *pstest.Message {
	m := server.Message(id)
	if m == nil {
		return &pstest.Message{}
	}
	return m
}

func TestPubSubListenerAcksAndNacks(t *testing.T) {
	server, client := test.NewPubSub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	topic, err := client.CreateTopic(ctx, "frame-results")
	require.NoError(t, err)
	t.Cleanup(topic.Stop)
	_, err = client.CreateSubscription(ctx, "frame-results-sub", pubsub.SubscriptionConfig{
		Topic:       topic,
		AckDeadline: 10 * time.Second,
	})
	require.NoError(t, err)

	command := &scriptedCommand{BaseCommand: *cor.NewBaseCommand("scripted")}
	listener, err := cloud.NewPubSubListener(client, "frame-results-sub", nil)
	require.NoError(t, err)
	listener.SetCommand(command)
	done := listener.Listen(ctx)

	ids := map[string]string{}
	for _, body := range []string{"ok", "invalid", "retry"} {
		id, err := topic.Publish(ctx, &pubsub.Message{Data: []byte(body)}).Get(ctx)
		require.NoError(t, err)
		ids[body] = id
	}

	// The command sees every body; a nacked one comes back.
	require.Eventually(t, func() bool {
		return command.deliveries("ok") >= 1 && command.deliveries("invalid") >= 1
	}, 30*time.Second, 50*time.Millisecond, "listener never ran the command for ok and invalid")
	require.Eventually(t, func() bool {
		return command.deliveries("retry") >= 2
	}, 30*time.Second, 50*time.Millisecond, "nacked message was not redelivered")

	// Acks are flushed by the client in batches, so each one is awaited on its own.
	for _, body := range []string{"ok", "invalid"} {
		id := ids[body]
		assert.Eventually(t, func() bool {
			return message(server, id).Acks >= 1
		}, 30*time.Second, 50*time.Millisecond, "%s was not acked", body)
	}
	assert.Equal(t, 0, message(server, ids["retry"]).Acks)

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("listener did not stop after cancel")
	}
}
