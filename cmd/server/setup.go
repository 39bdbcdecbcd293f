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
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/TheSuspect9702/emotion-flow-api/internal/analysis"
	"github.com/TheSuspect9702/emotion-flow-api/internal/api"
	"github.com/TheSuspect9702/emotion-flow-api/internal/cache"
	"github.com/TheSuspect9702/emotion-flow-api/internal/cloud"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/services"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/workflow"
	"github.com/TheSuspect9702/emotion-flow-api/internal/media"
	"github.com/TheSuspect9702/emotion-flow-api/internal/store"
)

type StateManager struct {
	config       *cloud.Config
	cloud        *cloud.ServiceClients
	store        store.Store
	frameResults *workflow.FrameResultsWorkflow
	deps         *api.Dependencies
}

var state = &StateManager{}

// SetupOS loads a .env file when one exists and defaults the config
// location to ./configs with the local runtime overlay.
func SetupOS() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	defaults := map[string]string{
		cloud.EnvConfigFilePrefix: "configs",
		cloud.EnvConfigRuntime:    "local",
	}
	for key, value := range defaults {
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

// GetConfig loads the layered configuration on first use and returns the
// cached copy afterwards. Environment secrets override the TOML values.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load configuration: %v\n", err)
		}
		cloud.ApplyEnvOverrides(config)
		state.config = config
	}
	return state.config
}

// InitState creates the clients, backends, workflows and services.
func InitState(ctx context.Context) error {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return err
	}
	state.cloud = cloudClients

	durable, err := store.New(ctx, config, cloudClients.BigQueryClient)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", config.Store.Driver, err)
	}
	state.store = durable

	mediaStore, err := media.New(config, cloudClients.StorageClient)
	if err != nil {
		return err
	}

	dispatcher, err := analysis.New(config, cloudClients.PubsubClient)
	if err != nil {
		return err
	}

	frameCache := cache.NewRedisFrameCache(cloudClients.RedisClient, time.Duration(config.Cache.TTLSeconds)*time.Second)

	ingestion := workflow.NewFrameIngestionWorkflow(durable, durable, frameCache)
	intake := workflow.NewMediaIntakeWorkflow(durable, mediaStore, dispatcher)
	state.frameResults = workflow.NewFrameResultsWorkflow(ingestion)

	if config.Application.IngestionAPIKey == "" {
		slog.Warn("no ingestion secret configured, the ingest endpoint rejects every request", "env", cloud.EnvIngestionAPIKey)
	}

	state.deps = &api.Dependencies{
		ServiceName:    config.Application.Name,
		Ingestion:      services.NewIngestionService(ingestion),
		Upload:         services.NewUploadService(mediaStore, intake),
		Media:          services.NewMediaService(durable, config.Store.DefaultFrameLimit),
		Verifier:       api.NewStaticSecretVerifier(config.Application.IngestionAPIKey),
		MaxUploadBytes: config.Application.MaxUploadBytes,
	}
	return nil
}

// CloseState releases the store and every client.
func CloseState() {
	if state.store != nil {
		if err := state.store.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}
	if state.cloud != nil {
		state.cloud.Close()
	}
}
