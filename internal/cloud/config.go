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

// Package cloud defines the application configuration loaded from TOML files
// and the shared clients (Cloud Storage, Pub/Sub, BigQuery, Redis) built from it.
//
// Structs:
//   - Application: server and project settings.
//   - Store: durable store driver and table names.
//   - Cache: Redis connection for the frame projection.
//   - Storage: media storage backend.
//   - Worker: how uploads are dispatched to the analysis worker.
//   - TopicSubscription: a Pub/Sub subscription, keyed by a logical name.
//   - Telemetry: exporter selection.
package cloud

type Application struct {
	Name                string `toml:"name"`
	Port                int    `toml:"port"`
	LogFile             string `toml:"log_file"` // optional second log sink next to stdout
	GoogleProjectId     string `toml:"google_project_id"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
	MaxUploadBytes      int64  `toml:"max_upload_bytes"`
	// IngestionAPIKey is the bearer secret of the ingest endpoint. Leave it
	// out of TOML files; it is read from INGESTION_API_KEY.
	IngestionAPIKey string `toml:"ingestion_api_key"`
}

type Store struct {
	Driver            string `toml:"driver"` // sqlite, postgres or bigquery
	DSN               string `toml:"dsn"`
	Dataset           string `toml:"dataset"`
	VideoTable        string `toml:"video_table"`
	FrameTable        string `toml:"frame_table"`
	DefaultFrameLimit int    `toml:"default_frame_limit"`
}

type Cache struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"` // 0 keeps entries until overwritten
}

type Storage struct {
	Backend   string `toml:"backend"` // gcs or local
	Bucket    string `toml:"bucket"`
	LocalPath string `toml:"local_path"`
}

type Worker struct {
	Dispatch          string  `toml:"dispatch"` // http or pubsub
	URL               string  `toml:"url"`
	Topic             string  `toml:"topic"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"` // 0 disables rate limiting
	Burst             int     `toml:"burst"`
}

type TopicSubscription struct {
	Name string `toml:"name"`
}

type Telemetry struct {
	Exporter string `toml:"exporter"` // gcp or none
}

type Config struct {
	Application        Application                  `toml:"application"`
	Store              Store                        `toml:"store"`
	Cache              Cache                        `toml:"cache"`
	Storage            Storage                      `toml:"storage"`
	Worker             Worker                       `toml:"worker"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`
	Telemetry          Telemetry                    `toml:"telemetry"`
}

// NewConfig returns a Config holding the defaults that TOML files override.
func NewConfig() *Config {
	return &Config{
		Application: Application{
			Name:                "emotion-flow-api",
			Port:                8080,
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 120,
			MaxUploadBytes:      2 << 30,
		},
		Store: Store{
			Driver:            "sqlite",
			DSN:               "emotion-flow.db",
			VideoTable:        "videos",
			FrameTable:        "frames",
			DefaultFrameLimit: 1000,
		},
		Cache: Cache{
			Addr: "localhost:6379",
		},
		Storage: Storage{
			Backend: "local",
			Bucket:  "videos",
		},
		Worker: Worker{
			Dispatch:       "http",
			TimeoutSeconds: 300,
			Burst:          1,
		},
		TopicSubscriptions: make(map[string]TopicSubscription),
		Telemetry: Telemetry{
			Exporter: "none",
		},
	}
}
