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

package cloud

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	ConfigFileBaseName  = ".env"
	ConfigFileExtension = ".toml"
	ConfigSeparator     = "."
	EnvConfigFilePrefix = "EMOTION_FLOW_CONFIG_PREFIX" // directory holding the TOML files
	EnvConfigRuntime    = "EMOTION_FLOW_RUNTIME"       // runtime overlay, e.g. local, test, prod

	// Secrets never live in TOML files that get committed.
	EnvIngestionAPIKey = "INGESTION_API_KEY"
	EnvDatabaseDSN     = "DATABASE_DSN"
	EnvRedisPassword   = "REDIS_PASSWORD"

	DefaultRuntime = "test"
)

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig decodes `.env.toml` and then `.env.<runtime>.toml` from the
// directory in EMOTION_FLOW_CONFIG_PREFIX into baseConfig. Missing files are
// skipped; keys in the runtime file win.
func LoadConfig(baseConfig any) error {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = DefaultRuntime
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension

	for _, name := range []string{baseConfigFileName, envConfigFileName} {
		if !fileExists(name) {
			slog.Debug("configuration file not found, skipping", "file", name)
			continue
		}
		if _, err := toml.DecodeFile(name, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", name, err)
		}
		slog.Info("loaded configuration file", "file", name)
	}
	return nil
}

// ApplyEnvOverrides copies secrets from the environment into config.
func ApplyEnvOverrides(config *Config) {
	if v, ok := os.LookupEnv(EnvIngestionAPIKey); ok {
		config.Application.IngestionAPIKey = v
	}
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		config.Store.DSN = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		config.Cache.Password = v
	}
}
