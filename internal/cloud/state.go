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
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"
)

// ServiceClients holds the long lived clients shared by the whole process.
// Google clients are only created when the configuration needs them, so a
// local setup runs with Redis alone.
type ServiceClients struct {
	StorageClient   *storage.Client
	PubsubClient    *pubsub.Client
	BigQueryClient  *bigquery.Client
	RedisClient     *redis.Client
	PubSubListeners map[string]*PubSubListener // keyed by the logical name in [topic_subscriptions]
}

// Close releases every client that was created. Close errors are ignored.
func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
	if c.BigQueryClient != nil {
		_ = c.BigQueryClient.Close()
	}
	if c.RedisClient != nil {
		_ = c.RedisClient.Close()
	}
}

// NewRedisClient connects to the configured Redis and verifies it answers.
func NewRedisClient(ctx context.Context, config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Cache.Addr,
		Password: config.Cache.Password,
		DB:       config.Cache.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", config.Cache.Addr, err)
	}
	return client, nil
}

func needsPubSub(config *Config) bool {
	return len(config.TopicSubscriptions) > 0 || config.Worker.Dispatch == "pubsub"
}

// NewCloudServiceClients creates the clients the configuration asks for.
// Redis is always connected; GCS, BigQuery and Pub/Sub only when a backend
// or subscription uses them.
//
// Inputs:
//   - ctx: Used for client creation and the Redis ping.
//   - config: The loaded application configuration.
//
// Outputs:
//   - *ServiceClients: The clients and one listener per topic subscription.
//   - error: The first creation failure. Clients made before it are closed.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	cloud = &ServiceClients{PubSubListeners: make(map[string]*PubSubListener)}
	defer func() {
		if err != nil {
			cloud.Close()
			cloud = nil
		}
	}()

	cloud.RedisClient, err = NewRedisClient(ctx, config)
	if err != nil {
		return cloud, err
	}

	if config.Storage.Backend == "gcs" {
		cloud.StorageClient, err = storage.NewClient(ctx)
		if err != nil {
			return cloud, err
		}
	}

	if config.Store.Driver == "bigquery" {
		cloud.BigQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId)
		if err != nil {
			return cloud, err
		}
	}

	if needsPubSub(config) {
		cloud.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId)
		if err != nil {
			return cloud, err
		}
		for subKey, values := range config.TopicSubscriptions {
			listener, err := NewPubSubListener(cloud.PubsubClient, values.Name, nil)
			if err != nil {
				return cloud, err
			}
			cloud.PubSubListeners[subKey] = listener
		}
	}

	slog.Info("cloud clients initialized",
		"project", config.Application.GoogleProjectId,
		"storage", cloud.StorageClient != nil,
		"bigquery", cloud.BigQueryClient != nil,
		"pubsub", cloud.PubsubClient != nil)
	return cloud, nil
}
