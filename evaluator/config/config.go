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
	"time"

	"github.com/netanomaly/netanomaly/cmd/dependency/base"
	"github.com/netanomaly/netanomaly/pkg/types"
)

type Config struct {
	// Base options.
	base.Options `yaml:",inline" mapstructure:",squash"`

	// Client configuration.
	Client ClientConfig `yaml:"client" mapstructure:"client"`

	// Dataset is the path of the labeled dataset replayed against the classifier.
	Dataset string `yaml:"dataset" mapstructure:"dataset"`

	// Mismatches is the path of a csv file receiving every mismatch, not written when empty.
	Mismatches string `yaml:"mismatches" mapstructure:"mismatches"`

	// Progress shows a progress bar on stderr.
	Progress bool `yaml:"progress" mapstructure:"progress"`
}

type ClientConfig struct {
	// URL of the prediction endpoint.
	URL string `yaml:"url" mapstructure:"url"`

	// Timeout of a single request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// QPS limits the requests sent per second, zero means unlimited.
	QPS float64 `yaml:"qps" mapstructure:"qps"`
}

// New default configuration.
func New() *Config {
	return &Config{
		Client: ClientConfig{
			URL:     DefaultPredictURL,
			Timeout: DefaultClientTimeout,
		},
		Dataset:  types.DefaultDatasetFilename,
		Progress: true,
	}
}

// Validate config parameters.
func (cfg *Config) Validate() error {
	if cfg.Client.URL == "" {
		return errors.New("client requires parameter url")
	}

	if _, err := url.ParseRequestURI(cfg.Client.URL); err != nil {
		return errors.New("client requires parameter url")
	}

	if cfg.Client.Timeout <= 0 {
		return errors.New("client requires parameter timeout")
	}

	if cfg.Client.QPS < 0 {
		return errors.New("client requires parameter qps")
	}

	if cfg.Dataset == "" {
		return errors.New("evaluator requires parameter dataset")
	}

	return nil
}
