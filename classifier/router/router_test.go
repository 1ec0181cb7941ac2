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

package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netanomaly/netanomaly/classifier/config"
	"github.com/netanomaly/netanomaly/classifier/middlewares"
	"github.com/netanomaly/netanomaly/classifier/service"
	"github.com/netanomaly/netanomaly/pkg/dataset"
	"github.com/netanomaly/netanomaly/pkg/feature"
	"github.com/netanomaly/netanomaly/trainer/models"
)

func newService(t *testing.T) service.Service {
	d := dataset.Synthetic(120, 1)
	d.Samples = append(d.Samples, dataset.Sample{
		Vector: feature.Vector{500000, 200000, 80.0, 30.0},
		Label:  feature.LabelAnomaly,
	})
	grid, err := d.Instances()
	require.NoError(t, err)

	model := models.NewRandomForest(models.WithTrees(10))
	require.NoError(t, model.Fit(grid))
	return service.New(model, &service.ModelInfo{Source: "trained", Model: model})
}

func serve(t *testing.T, cfg *config.Config, svc service.Service, req *http.Request) *httptest.ResponseRecorder {
	r, err := Init(cfg, svc)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func predictRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRouter_Predict(t *testing.T) {
	svc := newService(t)
	tests := []struct {
		name   string
		body   string
		expect func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name: "anomaly",
			body: `{"inbound_rate": 500000, "outbound_rate": 200000, "inbound_util": 80.0, "outbound_util": 30.0}`,
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusOK, w.Code)
				assert.JSONEq(`{"prediction": 1, "label": "Anomaly"}`, w.Body.String())
			},
		},
		{
			name: "normal",
			body: `{"inbound_rate": 20000, "outbound_rate": 10000, "inbound_util": 5, "outbound_util": 4}`,
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusOK, w.Code)
				assert.JSONEq(`{"prediction": 0, "label": "Normal"}`, w.Body.String())
			},
		},
		{
			name: "invalid value",
			body: `{"inbound_rate": "abc", "outbound_rate": 1, "inbound_util": 1, "outbound_util": 1}`,
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusBadRequest, w.Code)
				assert.Contains(w.Body.String(), service.ErrInvalidInput.Message)
				assert.Contains(w.Body.String(), `"detail"`)
			},
		},
		{
			name: "empty object",
			body: `{}`,
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusBadRequest, w.Code)
				assert.JSONEq(`{"error": "JSON body required"}`, w.Body.String())
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.expect(t, serve(t, config.New(), svc, predictRequest(tc.body)))
		})
	}
}

func TestRouter_WithoutModel(t *testing.T) {
	assert := assert.New(t)
	svc := service.New(nil, nil)

	w := serve(t, config.New(), svc, predictRequest(`{"inbound_rate": 1}`))
	assert.Equal(http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(`{"error": "Model not loaded. Add model or CSV and restart."}`, w.Body.String())

	w = serve(t, config.New(), svc, httptest.NewRequest(http.MethodGet, "/healthy", nil))
	assert.Equal(http.StatusOK, w.Code)

	w = serve(t, config.New(), svc, httptest.NewRequest(http.MethodGet, "/api/model", nil))
	assert.Equal(http.StatusOK, w.Code)
	assert.JSONEq(`{"loaded": false}`, w.Body.String())
}

func TestRouter_Model(t *testing.T) {
	assert := assert.New(t)
	w := serve(t, config.New(), newService(t), httptest.NewRequest(http.MethodGet, "/api/model", nil))
	assert.Equal(http.StatusOK, w.Code)
	assert.Contains(w.Body.String(), `"loaded":true`)
	assert.Contains(w.Body.String(), `"trees":10`)
	assert.NotEmpty(w.Header().Get(middlewares.ServerVersion))
}

func TestRouter_Static(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("foo"), 0600))

	cfg := config.New()
	w := serve(t, cfg, newService(t), httptest.NewRequest(http.MethodGet, "/style.css", nil))
	assert.Equal(http.StatusNotFound, w.Code)

	cfg.Server.StaticDir = dir
	w = serve(t, cfg, newService(t), httptest.NewRequest(http.MethodGet, "/style.css", nil))
	assert.Equal(http.StatusOK, w.Code)
	assert.Equal("foo", w.Body.String())

	w = serve(t, cfg, newService(t), httptest.NewRequest(http.MethodGet, "/healthy", nil))
	assert.Equal(http.StatusOK, w.Code)
}
