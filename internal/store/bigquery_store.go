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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

const (
	qryEnsureVideo = "MERGE `%s` T USING (SELECT @id AS id) S ON T.id = S.id " +
		"WHEN NOT MATCHED THEN INSERT (id, title, created_at) VALUES (S.id, '', CURRENT_TIMESTAMP())"
	qryTitlesByPrefix = "SELECT title FROM `%s` WHERE STARTS_WITH(LOWER(title), LOWER(@prefix))"
	qryVideoById      = "SELECT id, title, created_at FROM `%s` WHERE id = @id LIMIT 1"
	qryListVideos     = "SELECT id, title FROM `%s` ORDER BY created_at DESC"
	qryListFrames     = "SELECT * FROM `%s` WHERE video_id = @video_id ORDER BY frame_number ASC, created_at ASC"
)

// BigQueryStore keeps videos and frames in two BigQuery tables. Frame inserts
// use the streaming API, which may apply a batch partially; any row error is
// reported as a failure of the whole batch.
type BigQueryStore struct {
	client     *bigquery.Client
	dataset    string
	videoTable string
	frameTable string
}

// NewBigQueryStore creates any missing table with a schema inferred from the
// row types.
func NewBigQueryStore(ctx context.Context, client *bigquery.Client, dataset, videoTable, frameTable string) (*BigQueryStore, error) {
	s := &BigQueryStore{client: client, dataset: dataset, videoTable: videoTable, frameTable: frameTable}
	if err := s.ensureTable(ctx, videoTable, bigQueryVideo{}); err != nil {
		return nil, err
	}
	if err := s.ensureTable(ctx, frameTable, bigQueryFrame{}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *BigQueryStore) ensureTable(ctx context.Context, table string, row any) error {
	ref := s.client.Dataset(s.dataset).Table(table)
	_, err := ref.Metadata(ctx)
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return fmt.Errorf("failed to read metadata for table %s: %w", table, err)
	}
	schema, err := bigquery.InferSchema(row)
	if err != nil {
		return err
	}
	slog.Info("creating bigquery table", "dataset", s.dataset, "table", table)
	return ref.Create(ctx, &bigquery.TableMetadata{Schema: schema})
}

// fqn returns the table name formatted for standard SQL.
func (s *BigQueryStore) fqn(table string) string {
	fqn := s.client.Dataset(s.dataset).Table(table).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", 1)
}

// Close is a no-op; the client is owned by cloud.ServiceClients.
func (s *BigQueryStore) Close() error {
	// The client is owned by cloud.ServiceClients.
	return nil
}

// CreateVideo streams one row into the videos table.
func (s *BigQueryStore) CreateVideo(ctx context.Context, video *model.Video) error {
	row := &bigQueryVideo{ID: video.ID, Title: video.Title, CreatedAt: video.CreatedAt}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return s.client.Dataset(s.dataset).Table(s.videoTable).Inserter().Put(ctx, row)
}

// EnsureVideo inserts an untitled row with a MERGE so an existing row is left
// untouched.
func (s *BigQueryStore) EnsureVideo(ctx context.Context, id string) error {
	q := s.client.Query(fmt.Sprintf(qryEnsureVideo, s.fqn(s.videoTable)))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}
	job, err := q.Run(ctx)
	if err != nil {
		return err
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return err
	}
	return status.Err()
}

// FindTitlesByPrefix queries titles whose lowercase form starts with the
// lowercase prefix.
func (s *BigQueryStore) FindTitlesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	q := s.client.Query(fmt.Sprintf(qryTitlesByPrefix, s.fqn(s.videoTable)))
	q.Parameters = []bigquery.QueryParameter{{Name: "prefix", Value: prefix}}
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0)
	for {
		var row bigQueryVideo
		err := itr.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		titles = append(titles, row.Title)
	}
	return titles, nil
}

// GetVideo returns a *model.NotFoundError when no row matches.
func (s *BigQueryStore) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	q := s.client.Query(fmt.Sprintf(qryVideoById, s.fqn(s.videoTable)))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	var row bigQueryVideo
	err = itr.Next(&row)
	if errors.Is(err, iterator.Done) {
		return nil, &model.NotFoundError{Resource: "video", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &model.Video{ID: row.ID, Title: row.Title, CreatedAt: row.CreatedAt}, nil
}

// ListVideos returns {id, title} by created_at descending.
func (s *BigQueryStore) ListVideos(ctx context.Context) ([]*model.VideoSummary, error) {
	itr, err := s.client.Query(fmt.Sprintf(qryListVideos, s.fqn(s.videoTable))).Read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.VideoSummary, 0)
	for {
		var row model.VideoSummary
		err := itr.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, &row)
	}
	return out, nil
}

// InsertFrames streams the batch into the frames table.
//
// Inputs:
//   - ctx: Bounds the insert.
//   - frames: The rows to write.
//
// Outputs:
//   - error: The insert error. Streaming inserts are not transactional, so
//     part of the batch may be written.
func (s *BigQueryStore) InsertFrames(ctx context.Context, frames []*model.Frame) error {
	if len(frames) == 0 {
		return nil
	}
	rows := make([]*bigQueryFrame, 0, len(frames))
	for _, f := range frames {
		row, err := toBigQueryFrame(f)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return s.client.Dataset(s.dataset).Table(s.frameTable).Inserter().Put(ctx, rows)
}

// ListFrames returns a video's frames by frame number, up to limit when positive.
func (s *BigQueryStore) ListFrames(ctx context.Context, videoID string, limit int) ([]*model.Frame, error) {
	queryText := fmt.Sprintf(qryListFrames, s.fqn(s.frameTable))
	params := []bigquery.QueryParameter{{Name: "video_id", Value: videoID}}
	if limit > 0 {
		queryText += " LIMIT @limit"
		params = append(params, bigquery.QueryParameter{Name: "limit", Value: limit})
	}
	q := s.client.Query(queryText)
	q.Parameters = params

	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Frame, 0)
	for {
		var row bigQueryFrame
		err := itr.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		f, err := fromBigQueryFrame(&row)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

type bigQueryVideo struct {
	ID        string    `bigquery:"id"`
	Title     string    `bigquery:"title"`
	CreatedAt time.Time `bigquery:"created_at"`
}

// bigQueryFrame is the table row for a frame. Nested values are stored as JSON
// text so the table schema does not depend on the emotion label set.
type bigQueryFrame struct {
	VideoID             string               `bigquery:"video_id"`
	FrameNumber         int64                `bigquery:"frame_number"`
	TimestampMs         int64                `bigquery:"timestamp_ms"`
	Actors              string               `bigquery:"actors"`
	Objects             string               `bigquery:"objects"`
	SceneScore          bigquery.NullFloat64 `bigquery:"scene_score"`
	EmotionDominant     bigquery.NullString  `bigquery:"emotion_dominant"`
	EmotionDistribution bigquery.NullString  `bigquery:"emotion_distribution"`
	CreatedAt           time.Time            `bigquery:"created_at"`
}

func toBigQueryFrame(f *model.Frame) (*bigQueryFrame, error) {
	actors, err := json.Marshal(nonNilActors(f.Actors))
	if err != nil {
		return nil, fmt.Errorf("failed to encode actors for frame %d: %w", f.FrameNumber, err)
	}
	objects, err := json.Marshal(nonNilObjects(f.Objects))
	if err != nil {
		return nil, fmt.Errorf("failed to encode objects for frame %d: %w", f.FrameNumber, err)
	}

	row := &bigQueryFrame{
		VideoID:     f.VideoID,
		FrameNumber: f.FrameNumber,
		TimestampMs: f.TimestampMs,
		Actors:      string(actors),
		Objects:     string(objects),
		CreatedAt:   f.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if f.SceneScore != nil {
		row.SceneScore = bigquery.NullFloat64{Float64: *f.SceneScore, Valid: true}
	}
	if f.EmotionDominant != nil {
		row.EmotionDominant = bigquery.NullString{StringVal: *f.EmotionDominant, Valid: true}
	}
	if f.EmotionDistribution != nil {
		dist, err := json.Marshal(f.EmotionDistribution)
		if err != nil {
			return nil, fmt.Errorf("failed to encode emotion distribution for frame %d: %w", f.FrameNumber, err)
		}
		row.EmotionDistribution = bigquery.NullString{StringVal: string(dist), Valid: true}
	}
	return row, nil
}

func fromBigQueryFrame(row *bigQueryFrame) (*model.Frame, error) {
	f := &model.Frame{
		VideoID:     row.VideoID,
		FrameNumber: row.FrameNumber,
		TimestampMs: row.TimestampMs,
		CreatedAt:   row.CreatedAt,
	}
	if row.Actors != "" {
		if err := json.Unmarshal([]byte(row.Actors), &f.Actors); err != nil {
			return nil, fmt.Errorf("failed to decode actors for frame %d: %w", row.FrameNumber, err)
		}
	}
	if row.Objects != "" {
		if err := json.Unmarshal([]byte(row.Objects), &f.Objects); err != nil {
			return nil, fmt.Errorf("failed to decode objects for frame %d: %w", row.FrameNumber, err)
		}
	}
	if row.SceneScore.Valid {
		score := row.SceneScore.Float64
		f.SceneScore = &score
	}
	if row.EmotionDominant.Valid {
		dominant := row.EmotionDominant.StringVal
		f.EmotionDominant = &dominant
	}
	if row.EmotionDistribution.Valid {
		if err := json.Unmarshal([]byte(row.EmotionDistribution.StringVal), &f.EmotionDistribution); err != nil {
			return nil, fmt.Errorf("failed to decode emotion distribution for frame %d: %w", row.FrameNumber, err)
		}
	}
	return f, nil
}

func nonNilActors(in []model.ActorEmotion) []model.ActorEmotion {
	if in == nil {
		return []model.ActorEmotion{}
	}
	return in
}

func nonNilObjects(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
