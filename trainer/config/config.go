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
	"net/url"

	"github.com/netanomaly/netanomaly/cmd/dependency/base"
	"github.com/netanomaly/netanomaly/pkg/types"
	"github.com/netanomaly/netanomaly/trainer/models"
	"github.com/netanomaly/netanomaly/trainer/training"
)

type Config struct {
	// Base options.
	base.Options `yaml:",inline" mapstructure:",squash"`

	// Server configuration.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Training configuration.
	Training TrainingConfig `yaml:"training" mapstructure:"training"`

	// Metrics configuration.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

type ServerConfig struct {
	// WorkDir resolves relative dataset and output paths, defaults to the process working directory.
	WorkDir string `yaml:"workDir" mapstructure:"workDir"`

	// Server log directory.
	LogDir string `yaml:"logDir" mapstructure:"logDir"`

	// Maximum size in megabytes of log files before rotation (default: 1024)
	LogMaxSize int `yaml:"logMaxSize" mapstructure:"logMaxSize"`

	// Maximum number of days to retain old log files (default: 7)
	LogMaxAge int `yaml:"logMaxAge" mapstructure:"logMaxAge"`

	// Maximum number of old log files to keep (default: 20)
	LogMaxBackups int `yaml:"logMaxBackups" mapstructure:"logMaxBackups"`
}

type TrainingConfig struct {
	// Dataset is the path of the labeled dataset.
	Dataset string `yaml:"dataset" mapstructure:"dataset"`

	// Output is the path of the model artifact.
	Output string `yaml:"output" mapstructure:"output"`

	// Trees is the number of trees.
	Trees int `yaml:"trees" mapstructure:"trees"`

	// MaxFeatures is the number of features sampled at every split, zero means square root.
	MaxFeatures int `yaml:"maxFeatures" mapstructure:"maxFeatures"`

	// MaxDepth is the maximum tree depth, zero means unlimited.
	MaxDepth int `yaml:"maxDepth" mapstructure:"maxDepth"`

	// MinSamplesSplit is the minimum number of samples required to split a node.
	MinSamplesSplit int `yaml:"minSamplesSplit" mapstructure:"minSamplesSplit"`

	// Seed drives the holdout split, bootstrap and feature sampling.
	Seed int64 `yaml:"seed" mapstructure:"seed"`

	// TestPercent is the percent of rows held out for evaluation.
	TestPercent float64 `yaml:"testPercent" mapstructure:"testPercent"`
}

type MetricsConfig struct {
	// PushGateway is the address of the prometheus pushgateway, metrics are not pushed when empty.
	PushGateway string `yaml:"pushGateway" mapstructure:"pushGateway"`
}

// New default configuration.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			LogMaxSize:    DefaultLogRotateMaxSize,
			LogMaxAge:     DefaultLogRotateMaxAge,
			LogMaxBackups: DefaultLogRotateMaxBackups,
		},
		Training: TrainingConfig{
			Dataset:         types.DefaultDatasetFilename,
			Output:          types.DefaultModelFilename,
			Trees:           models.DefaultTrees,
			MinSamplesSplit: models.DefaultMinSamplesSplit,
			Seed:            models.DefaultSeed,
			TestPercent:     training.HoldoutTestPercent,
		},
	}
}

// Validate config parameters.
func (cfg *Config) Validate() error {
	if cfg.Training.Dataset == "" {
		return errors.New("training requires parameter dataset")
	}

	if cfg.Training.Output == "" {
		return errors.New("training requires parameter output")
	}

	if cfg.Training.Trees <= 0 {
		return errors.New("training requires parameter trees")
	}

	if cfg.Training.MaxFeatures < 0 {
		return errors.New("training requires parameter maxFeatures")
	}

	if cfg.Training.MaxDepth < 0 {
		return errors.New("training requires parameter maxDepth")
	}

	if cfg.Training.TestPercent < 0 || cfg.Training.TestPercent >= 1 {
		return errors.New("training requires parameter testPercent")
	}

	if cfg.Metrics.PushGateway != "" {
		if _, err := url.ParseRequestURI(cfg.Metrics.PushGateway); err != nil {
			return errors.New("metrics requires parameter pushGateway")
		}
	}

	return nil
}

// TrainOptions returns the training options of the config.
func (cfg *Config) TrainOptions() []training.TrainOptionFunc {
	return []training.TrainOptionFunc{
		training.WithTrees(cfg.Training.Trees),
		training.WithMaxFeatures(cfg.Training.MaxFeatures),
		training.WithMaxDepth(cfg.Training.MaxDepth),
		training.WithMinSamplesSplit(cfg.Training.MinSamplesSplit),
		training.WithSeed(cfg.Training.Seed),
		training.WithTestPercent(cfg.Training.TestPercent),
	}
}
