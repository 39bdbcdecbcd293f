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

// Package store is the durable source of truth for videos and frames. Two
// backends are provided: a GORM relational store (SQLite or Postgres) and a
// BigQuery store.
package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/TheSuspect9702/emotion-flow-api/internal/cloud"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBigQuery = "bigquery"
)

// VideoStore persists Video rows.
type VideoStore interface {
	// CreateVideo inserts a new row and fails if the id already exists.
	CreateVideo(ctx context.Context, video *model.Video) error
	// EnsureVideo creates an untitled row for id when none exists.
	EnsureVideo(ctx context.Context, id string) error
	// FindTitlesByPrefix returns titles starting with prefix, case-insensitive.
	FindTitlesByPrefix(ctx context.Context, prefix string) ([]string, error)
	// GetVideo returns a *model.NotFoundError when the id is unknown.
	GetVideo(ctx context.Context, id string) (*model.Video, error)
	// ListVideos returns every video, newest first.
	ListVideos(ctx context.Context) ([]*model.VideoSummary, error)
}

// FrameStore persists Frame rows. It is append only.
type FrameStore interface {
	// InsertFrames writes the whole batch or reports an error.
	InsertFrames(ctx context.Context, frames []*model.Frame) error
	// ListFrames returns a video's frames by ascending frame number. A limit
	// of zero or less returns every frame.
	ListFrames(ctx context.Context, videoID string, limit int) ([]*model.Frame, error)
}

// Store is a VideoStore and FrameStore sharing one backend.
type Store interface {
	VideoStore
	FrameStore
	Close() error
}

// New opens the backend selected by config.Store.Driver. The BigQuery client is
// only used by the bigquery driver and may be nil otherwise.
func New(ctx context.Context, config *cloud.Config, bq *bigquery.Client) (Store, error) {
	switch config.Store.Driver {
	case DriverSQLite, DriverPostgres, "":
		driver := config.Store.Driver
		if driver == "" {
			driver = DriverSQLite
		}
		return OpenSQLStore(driver, config.Store.DSN)
	case DriverBigQuery:
		if bq == nil {
			return nil, fmt.Errorf("store driver %q requires a bigquery client", DriverBigQuery)
		}
		return NewBigQueryStore(ctx, bq, config.Store.Dataset, config.Store.VideoTable, config.Store.FrameTable)
	default:
		return nil, fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}
}
