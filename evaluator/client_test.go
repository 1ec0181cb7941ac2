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

package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-http-utils/headers"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/netanomaly/netanomaly/pkg/feature"
)

const testPredictURL = "http://127.0.0.1:5000/api/predict"

func TestClient_Predict(t *testing.T) {
	tests := []struct {
		name   string
		mock   func()
		expect func(t *testing.T, prediction int, err error)
	}{
		{
			name: "predict anomaly",
			mock: func() {
				httpmock.RegisterResponder(http.MethodPost, testPredictURL, func(req *http.Request) (*http.Response, error) {
					if req.Header.Get(headers.ContentType) != "application/json" {
						return httpmock.NewStringResponse(http.StatusBadRequest, `{"error":"JSON body required"}`), nil
					}

					var inputs map[string]float64
					if err := json.NewDecoder(req.Body).Decode(&inputs); err != nil {
						return nil, err
					}

					if inputs["inbound_rate"] != 500000 || inputs["outbound_util"] != 30 {
						return httpmock.NewStringResponse(http.StatusBadRequest, `{"error":"unexpected inputs"}`), nil
					}

					return httpmock.NewJsonResponse(http.StatusOK, map[string]any{"prediction": 1, "label": "Anomaly"})
				})
			},
			expect: func(t *testing.T, prediction int, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(1, prediction)
			},
		},
		{
			name: "service unavailable",
			mock: func() {
				httpmock.RegisterResponder(http.MethodPost, testPredictURL,
					httpmock.NewStringResponder(http.StatusServiceUnavailable, `{"error":"Model not loaded. Add model or CSV and restart."}`))
			},
			expect: func(t *testing.T, prediction int, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "HTTP 503: Model not loaded. Add model or CSV and restart.")
			},
		},
		{
			name: "bad request with detail",
			mock: func() {
				httpmock.RegisterResponder(http.MethodPost, testPredictURL,
					httpmock.NewStringResponder(http.StatusBadRequest, `{"error":"Invalid input","detail":"missing key"}`))
			},
			expect: func(t *testing.T, prediction int, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "HTTP 400: Invalid input: missing key")
			},
		},
		{
			name: "error without json body",
			mock: func() {
				httpmock.RegisterResponder(http.MethodPost, testPredictURL,
					httpmock.NewStringResponder(http.StatusBadGateway, "bad gateway\n"))
			},
			expect: func(t *testing.T, prediction int, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "HTTP 502: bad gateway")
			},
		},
		{
			name: "invalid response body",
			mock: func() {
				httpmock.RegisterResponder(http.MethodPost, testPredictURL,
					httpmock.NewStringResponder(http.StatusOK, "foo"))
			},
			expect: func(t *testing.T, prediction int, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "decode response")
			},
		},
		{
			name: "response without prediction",
			mock: func() {
				httpmock.RegisterResponder(http.MethodPost, testPredictURL,
					httpmock.NewStringResponder(http.StatusOK, `{"label":"Normal"}`))
			},
			expect: func(t *testing.T, prediction int, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "response has no prediction")
			},
		},
		{
			name: "transport error",
			mock: func() {
				httpmock.RegisterResponder(http.MethodPost, testPredictURL,
					httpmock.NewErrorResponder(errors.New("connection refused")))
			},
			expect: func(t *testing.T, prediction int, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "connection refused")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			httpmock.Activate()
			defer httpmock.DeactivateAndReset()
			tc.mock()

			client := NewClient(testPredictURL, time.Second)
			prediction, err := client.Predict(context.Background(), feature.Vector{500000, 200000, 80, 30})
			tc.expect(t, prediction, err)
		})
	}
}
