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
	"os"
	"testing"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/netanomaly/netanomaly/cmd/dependency/base"
)

func TestConfig_Load(t *testing.T) {
	config := &Config{
		Options: base.Options{
			Console: true,
			Verbose: true,
		},
		Client: ClientConfig{
			URL:     "http://127.0.0.1:5001/api/predict",
			Timeout: 3 * time.Second,
			QPS:     50,
		},
		Dataset:    "foo.csv",
		Mismatches: "bar.csv",
		Progress:   false,
	}

	evaluatorConfigYAML := New()
	contentYAML, err := os.ReadFile("./testdata/evaluator.yaml")
	require.NoError(t, err)

	var dataYAML map[string]any
	if err := yaml.Unmarshal(contentYAML, &dataYAML); err != nil {
		t.Fatal(err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     evaluatorConfigYAML,
	})
	require.NoError(t, err)
	require.NoError(t, decoder.Decode(dataYAML))

	assert := assert.New(t)
	assert.EqualValues(config, evaluatorConfigYAML)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		mock   func(cfg *Config)
		expect func(t *testing.T, err error)
	}{
		{
			name:   "valid config",
			config: New(),
			mock:   func(cfg *Config) {},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.NoError(err)
			},
		},
		{
			name:   "client requires parameter url",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Client.URL = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "client requires parameter url")
			},
		},
		{
			name:   "client url is not absolute",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Client.URL = "api/predict"
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "client requires parameter url")
			},
		},
		{
			name:   "client requires parameter timeout",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Client.Timeout = 0
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "client requires parameter timeout")
			},
		},
		{
			name:   "client requires parameter qps",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Client.QPS = -1
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "client requires parameter qps")
			},
		},
		{
			name:   "evaluator requires parameter dataset",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Dataset = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "evaluator requires parameter dataset")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mock(tc.config)
			tc.expect(t, tc.config.Validate())
		})
	}
}
