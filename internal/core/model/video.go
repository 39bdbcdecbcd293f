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

// Package model defines the core data structures for the application.
// This file holds the persistent Video record and the lightweight
// projections of it returned by the listing endpoint.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Video is the parent record for every analysed frame. It is created once when
// an upload is accepted (or lazily by the ingestion pipeline) and never mutated.
type Video struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id" bigquery:"id"`
	Title     string    `gorm:"type:varchar(512);not null;default:'';index" json:"title" bigquery:"title"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at" bigquery:"created_at"`
}

// TableName pins the relational table name independent of the naming strategy.
func (Video) TableName() string {
	return "videos"
}

// NewVideo creates a video with a random identifier and the given title.
func NewVideo(title string) *Video {
	return &Video{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
}

// VideoSummary is the `{id, title}` projection used by the list endpoint.
type VideoSummary struct {
	ID    string `json:"id" bigquery:"id"`
	Title string `json:"title" bigquery:"title"`
}
