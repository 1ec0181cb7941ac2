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

package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netanomaly/netanomaly/pkg/feature"
)

func TestDataset_Write(t *testing.T) {
	d, err := Open("./testdata/dataset.csv")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, d.Write(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, d.Samples, loaded.Samples)
}

func TestDataset_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	d := Synthetic(16, 1)
	require.NoError(t, d.WriteFile(path))

	loaded, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, d.Samples, loaded.Samples)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSynthetic(t *testing.T) {
	assert := assert.New(t)
	d := Synthetic(100, 7)
	assert.Equal(100, d.Len())
	assert.Equal(d, Synthetic(100, 7))
	assert.NotEqual(d, Synthetic(100, 8))

	anomalies := 0
	for _, s := range d.Samples {
		assert.Len(s.Vector, len(feature.Features))
		if s.Label == feature.LabelAnomaly {
			anomalies++
			assert.Greater(s.Vector[0], 100000.0)
		} else {
			assert.Less(s.Vector[0], 100000.0)
		}
	}
	assert.Equal(25, anomalies)
}
