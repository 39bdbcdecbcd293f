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

package cloud_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheSuspect9702/emotion-flow-api/internal/cloud"
	test "github.com/TheSuspect9702/emotion-flow-api/internal/testutil"
)

func TestLoadConfigLayersRuntimeOverBase(t *testing.T) {
	dir := t.TempDir()
	base := `
[application]
name = "base"
port = 9000

[store]
driver = "postgres"
default_frame_limit = 250

[topic_subscriptions.FrameResults]
name = "frame-results-sub"
`
	overlay := `
[application]
port = 9100

[store]
driver = "sqlite"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(base), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.unit.toml"), []byte(overlay), 0o600))

	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "unit")

	config := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(config))

	assert.Equal(t, "base", config.Application.Name)
	assert.Equal(t, 9100, config.Application.Port)
	assert.Equal(t, "sqlite", config.Store.Driver)
	assert.Equal(t, 250, config.Store.DefaultFrameLimit)
	assert.Equal(t, "frame-results-sub", config.TopicSubscriptions["FrameResults"].Name)
	// Untouched keys keep their defaults.
	assert.Equal(t, "local", config.Storage.Backend)
}

func TestLoadConfigMissingFilesKeepsDefaults(t *testing.T) {
	t.Setenv(cloud.EnvConfigFilePrefix, t.TempDir())
	t.Setenv(cloud.EnvConfigRuntime, "nowhere")

	config := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(config))
	assert.Equal(t, cloud.NewConfig(), config)
}

func TestLoadConfigRejectsBadToml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte("[application\nport = "), 0o600))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)

	assert.Error(t, cloud.LoadConfig(cloud.NewConfig()))
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(cloud.EnvIngestionAPIKey, "s3cret")
	t.Setenv(cloud.EnvDatabaseDSN, "postgres://u:p@db/emotion")
	t.Setenv(cloud.EnvRedisPassword, "")

	config := cloud.NewConfig()
	config.Cache.Password = "from-toml"
	cloud.ApplyEnvOverrides(config)

	assert.Equal(t, "s3cret", config.Application.IngestionAPIKey)
	assert.Equal(t, "postgres://u:p@db/emotion", config.Store.DSN)
	assert.Equal(t, "from-toml", config.Cache.Password)
}

func TestRepositoryTestConfig(t *testing.T) {
	config := test.GetConfig()
	assert.Equal(t, "emotion-flow-api-test", config.Application.Name)
	assert.Equal(t, "sqlite", config.Store.Driver)
	assert.Equal(t, 1000, config.Store.DefaultFrameLimit)
	assert.Equal(t, "none", config.Telemetry.Exporter)
}

func TestParseGCSURI(t *testing.T) {
	obj, ok := cloud.ParseGCSURI("gs://videos/2024/clip.mp4")
	require.True(t, ok)
	assert.Equal(t, "videos", obj.Bucket)
	assert.Equal(t, "2024/clip.mp4", obj.Name)
	assert.Equal(t, "gs://videos/2024/clip.mp4", obj.URI())

	for _, in := range []string{"clip.mp4", "gs://videos", "gs:///clip.mp4", "https://videos/clip.mp4"} {
		_, ok := cloud.ParseGCSURI(in)
		assert.False(t, ok, in)
	}
}
