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

package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

// InsertBatchSize bounds the rows per INSERT statement within one bulk insert.
const InsertBatchSize = 500

// SQLStore is the GORM backed Store.
type SQLStore struct {
	db     *gorm.DB
	driver string
}

// OpenSQLStore connects with the given driver ("sqlite" or "postgres") and
// migrates the videos and frames tables.
func OpenSQLStore(driver string, dsn string) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	gormLogger := logger.New(
		log.Default(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite serialises writers; a single connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&model.Video{}, &model.Frame{}); err != nil {
		return nil, fmt.Errorf("auto migrate failed: %w", err)
	}
	slog.Info("sql store ready", "driver", driver)
	return &SQLStore{db: db, driver: driver}, nil
}

// DB exposes the underlying handle for tests and administrative tasks.
func (s *SQLStore) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateVideo inserts video and fails on a duplicate id.
func (s *SQLStore) CreateVideo(ctx context.Context, video *model.Video) error {
	return s.db.WithContext(ctx).Create(video).Error
}

// EnsureVideo inserts an untitled row for id with ON CONFLICT DO NOTHING, so
// an existing title is never overwritten.
func (s *SQLStore) EnsureVideo(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&model.Video{ID: id}).Error
}

// FindTitlesByPrefix returns every title starting with prefix, ignoring case.
// Both sides are folded by the database: ILIKE on postgres, LOWER on sqlite.
// SQLite only folds ASCII letters, so non-ASCII titles match when their case
// is identical.
func (s *SQLStore) FindTitlesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	titles := make([]string, 0)
	pattern := escapeLike(prefix) + "%"
	condition := `LOWER(title) LIKE LOWER(?) ESCAPE '\'`
	if s.driver == DriverPostgres {
		condition = `title ILIKE ? ESCAPE '\'`
	}
	err := s.db.WithContext(ctx).
		Model(&model.Video{}).
		Where(condition, pattern).
		Pluck("title", &titles).Error
	return titles, err
}

// GetVideo returns a *model.NotFoundError when no row matches.
func (s *SQLStore) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	video := &model.Video{}
	err := s.db.WithContext(ctx).Where("id = ?", id).First(video).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Resource: "video", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return video, nil
}

// ListVideos returns {id, title} by created_at descending.
func (s *SQLStore) ListVideos(ctx context.Context) ([]*model.VideoSummary, error) {
	videos := make([]*model.VideoSummary, 0)
	err := s.db.WithContext(ctx).
		Model(&model.Video{}).
		Select("id", "title").
		Order("created_at desc").
		Find(&videos).Error
	return videos, err
}

// InsertFrames writes the batch in one transaction, InsertBatchSize rows per
// statement.
//
// Inputs:
//   - ctx: Bounds the transaction.
//   - frames: The rows to write. An empty batch is a no-op.
//
// Outputs:
//   - error: The insert error; nothing is written when it is set.
func (s *SQLStore) InsertFrames(ctx context.Context, frames []*model.Frame) error {
	if len(frames) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(frames, InsertBatchSize).Error
	})
}

// ListFrames returns a video's frames ordered by frame number and then by
// insertion, up to limit when it is positive.
func (s *SQLStore) ListFrames(ctx context.Context, videoID string, limit int) ([]*model.Frame, error) {
	frames := make([]*model.Frame, 0)
	q := s.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("frame_number asc").
		Order("id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&frames).Error
	return frames, err
}

// escapeLike makes LIKE wildcards in user supplied text literal.
func escapeLike(in string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(in)
}
