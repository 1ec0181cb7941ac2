/*
 *     Copyright 2024 The Netanomaly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"errors"
	"net"
	"time"

	"github.com/netanomaly/netanomaly/cmd/dependency/base"
	"github.com/netanomaly/netanomaly/pkg/types"
	"github.com/netanomaly/netanomaly/trainer/models"
)

type Config struct {
	// Base options.
	base.Options `yaml:",inline" mapstructure:",squash"`

	// Server configuration.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Model configuration.
	Model ModelConfig `yaml:"model" mapstructure:"model"`

	// Metrics configuration.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

type ServerConfig struct {
	// ListenIP is listen ip, like: 0.0.0.0, 192.168.0.1.
	ListenIP net.IP `yaml:"listenIP" mapstructure:"listenIP"`

	// Server port.
	Port int `yaml:"port" mapstructure:"port"`

	// WorkDir is the directory searched first for the model and the dataset,
	// its parent is searched next. Defaults to the process working directory.
	WorkDir string `yaml:"workDir" mapstructure:"workDir"`

	// StaticDir serves files from this directory when set.
	StaticDir string `yaml:"staticDir" mapstructure:"staticDir"`

	// ShutdownTimeout is the timeout of graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" mapstructure:"shutdownTimeout"`

	// Server log directory.
	LogDir string `yaml:"logDir" mapstructure:"logDir"`

	// Maximum size in megabytes of log files before rotation (default: 1024)
	LogMaxSize int `yaml:"logMaxSize" mapstructure:"logMaxSize"`

	// Maximum number of days to retain old log files (default: 7)
	LogMaxAge int `yaml:"logMaxAge" mapstructure:"logMaxAge"`

	// Maximum number of old log files to keep (default: 20)
	LogMaxBackups int `yaml:"logMaxBackups" mapstructure:"logMaxBackups"`
}

type ModelConfig struct {
	// Filename is the file name of the model artifact.
	Filename string `yaml:"filename" mapstructure:"filename"`

	// DatasetFilename is the file name of the labeled dataset.
	DatasetFilename string `yaml:"datasetFilename" mapstructure:"datasetFilename"`

	// Trees is the number of trees fitted when the model is trained on startup.
	Trees int `yaml:"trees" mapstructure:"trees"`

	// Seed is the seed used when the model is trained on startup.
	Seed int64 `yaml:"seed" mapstructure:"seed"`
}

type MetricsConfig struct {
	// Enable metrics service.
	Enable bool `yaml:"enable" mapstructure:"enable"`

	// Metrics service address.
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// New default configuration.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultServerPort,
			ShutdownTimeout: DefaultServerShutdownTimeout,
			LogMaxSize:      DefaultLogRotateMaxSize,
			LogMaxAge:       DefaultLogRotateMaxAge,
			LogMaxBackups:   DefaultLogRotateMaxBackups,
		},
		Model: ModelConfig{
			Filename:        types.DefaultModelFilename,
			DatasetFilename: types.DefaultDatasetFilename,
			Trees:           models.DefaultTrees,
			Seed:            models.DefaultSeed,
		},
		Metrics: MetricsConfig{
			Enable: false,
			Addr:   DefaultMetricsAddr,
		},
	}
}

// Validate config parameters.
func (cfg *Config) Validate() error {
	if cfg.Server.ListenIP == nil {
		return errors.New("server requires parameter listenIP")
	}

	if cfg.Server.Port <= 0 {
		return errors.New("server requires parameter port")
	}

	if cfg.Server.ShutdownTimeout <= 0 {
		return errors.New("server requires parameter shutdownTimeout")
	}

	if cfg.Model.Filename == "" {
		return errors.New("model requires parameter filename")
	}

	if cfg.Model.DatasetFilename == "" {
		return errors.New("model requires parameter datasetFilename")
	}

	if cfg.Model.Trees <= 0 {
		return errors.New("model requires parameter trees")
	}

	if cfg.Metrics.Enable {
		if cfg.Metrics.Addr == "" {
			return errors.New("metrics requires parameter addr")
		}
	}

	return nil
}

func (cfg *Config) Convert() error {
	if cfg.Server.ListenIP == nil {
		cfg.Server.ListenIP = net.IPv4zero
	}

	return nil
}
