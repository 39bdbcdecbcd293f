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

package model

// These objects are used in memory via workflows and responses, but are not persisted.

// UploadRequest references a media object that is already in media storage.
type UploadRequest struct {
	FilePath         string `json:"filePath"`
	OriginalFilename string `json:"originalFilename"`
	// VideoID is assigned by the upload service, never by the client.
	VideoID string `json:"-"`
}

// UploadResult is returned once the video row exists and the media has been
// handed to the analysis worker.
type UploadResult struct {
	Status     string `json:"status"`
	VideoID    string `json:"video_id"`
	FinalTitle string `json:"final_title"`
}

// AnalysisJob is what the analysis worker receives for one uploaded video.
type AnalysisJob struct {
	VideoID    string `json:"video_id"`
	Title      string `json:"title"`
	ObjectPath string `json:"object"`
	Location   string `json:"location,omitempty"`
	// LocalPath is the downloaded copy of the media, when one exists.
	LocalPath string `json:"-"`
}

// AreaPoint is one entry of the analytics time series:
// `{frame, timestamp, <emotion>: percent, ...}`.
type AreaPoint map[string]any

// Analytics is the chart-ready summary of a video's frames.
type Analytics struct {
	Area       []AreaPoint      `json:"area"`
	Radar      map[string]int64 `json:"radar"`
	MovieTitle string           `json:"movieTitle"`
}
