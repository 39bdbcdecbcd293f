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

// Package api wires the HTTP surface of the service onto gin.
//
// Routes:
//   - POST /api/frame/result          ingest a frame batch (bearer token)
//   - POST /api/movie                 upload intake, JSON reference or multipart stream
//   - GET  /api/movies                list videos, newest first
//   - GET  /api/video/:videoId/charts area and radar chart data
//   - GET  /api/video/:videoId/frames raw frames, ?limit= defaults to 1000
//   - GET  /healthz                   liveness
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/services"
)

// DefaultMaxUploadBytes bounds multipart uploads when no limit is configured.
const DefaultMaxUploadBytes int64 = 2 << 30

// Dependencies are the services the handlers call into.
type Dependencies struct {
	ServiceName    string
	Ingestion      *services.IngestionService
	Upload         *services.UploadService
	Media          *services.MediaService
	Verifier       CredentialVerifier
	MaxUploadBytes int64
}

// CORSConfig allows any origin with the methods and headers browser clients
// of the dashboard send.
func CORSConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders: []string{
			"Content-Type", "Authorization", "X-CSRF-Token", "X-Requested-With", "Accept",
			"Accept-Version", "Content-Length", "Content-MD5", "Date", "X-Api-Version",
		},
	}
}

// NewEngine builds the gin engine with tracing, CORS and every route.
func NewEngine(deps *Dependencies) *gin.Engine {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if deps.ServiceName == "" {
		deps.ServiceName = "emotion-flow-api"
	}

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(otelgin.Middleware(deps.ServiceName))
	r.Use(cors.New(CORSConfig()))

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	Health(r)

	apiGroup := r.Group("/api")
	{
		FrameRouter(apiGroup, deps)
		MovieRouter(apiGroup, deps)
		VideoRouter(apiGroup, deps)
	}
	return r
}
