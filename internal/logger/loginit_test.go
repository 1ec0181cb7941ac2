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

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLogger_InitClassifier(t *testing.T) {
	defer func() {
		require.NoError(t, InitEvaluator(false))
	}()

	dir := t.TempDir()
	require.NoError(t, InitClassifier(false, false, dir, LogRotateConfig{}))

	Infof("model %s loaded", "foo")
	WithDataset("bar.csv").Warn("dataset found")
	GinLogger.Info("GET /healthy")
	Debug("hidden")

	core, err := os.ReadFile(filepath.Join(dir, "classifier", CoreLogFileName))
	require.NoError(t, err)
	assert := assert.New(t)
	assert.Contains(string(core), "model foo loaded")
	assert.Contains(string(core), `"datasetPath":"bar.csv"`)
	assert.NotContains(string(core), "hidden")

	gin, err := os.ReadFile(filepath.Join(dir, "classifier", GinLogFileName))
	require.NoError(t, err)
	assert.Contains(string(gin), "GET /healthy")
}

func TestLogger_InitTrainer(t *testing.T) {
	defer func() {
		require.NoError(t, InitEvaluator(false))
	}()

	dir := t.TempDir()
	require.NoError(t, InitTrainer(true, false, dir, LogRotateConfig{MaxSize: 1, MaxAge: 1, MaxBackups: 1}))

	WithRow(3).Debugf("row %s", "parsed")
	core, err := os.ReadFile(filepath.Join(dir, "trainer", CoreLogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(core), "row parsed")
	assert.NoFileExists(t, filepath.Join(dir, "trainer", GinLogFileName))
}

func TestLogger_SetLevel(t *testing.T) {
	defer func() {
		require.NoError(t, InitEvaluator(false))
	}()

	assert := assert.New(t)
	require.NoError(t, InitEvaluator(false))
	assert.False(IsDebug())

	SetLevel(zapcore.DebugLevel)
	assert.True(IsDebug())

	SetLevel(zapcore.InfoLevel)
	assert.False(IsDebug())
}
