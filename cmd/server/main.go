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

// Package main runs the emotion-flow API: the HTTP server and, when
// configured, the Pub/Sub listener for frame results.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TheSuspect9702/emotion-flow-api/internal/api"
	"github.com/TheSuspect9702/emotion-flow-api/internal/telemetry"
)

func main() {
	config := GetConfig()

	closeLog, err := telemetry.SetupLogging(config.Application.LogFile)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		os.Exit(1)
	}

	if err := InitState(ctx); err != nil {
		slog.Error("Failed to initialize state", "error", err)
		CloseState()
		os.Exit(1)
	}
	slog.Info("Initialized State")

	listenersDone := SetupListeners(ctx, state.cloud, state.frameResults)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Application.Port),
		Handler:      api.NewEngine(state.deps),
		ReadTimeout:  time.Duration(config.Application.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(config.Application.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen", "error", err)
			cancel()
		}
	}()
	slog.Info("Server ready", "port", config.Application.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed", "error", err)
	}

	cancel()
	for _, done := range listenersDone {
		<-done
	}
	CloseState()

	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown failed", "error", err)
	}
	slog.Info("Server exiting")
}
