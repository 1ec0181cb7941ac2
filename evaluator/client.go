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

//go:generate mockgen -destination mocks/client_mock.go -source client.go -package mocks

package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-http-utils/headers"

	"github.com/netanomaly/netanomaly/classifier/middlewares"
	"github.com/netanomaly/netanomaly/pkg/feature"
)

const (
	// contentTypeJSON is the content type of the prediction request.
	contentTypeJSON = "application/json"

	// maxErrorBodySize bounds the error body kept in an error message.
	maxErrorBodySize = 512
)

// Client sends a single sample to the prediction endpoint.
type Client interface {
	// Predict returns the prediction of the classifier for the vector.
	Predict(context.Context, feature.Vector) (int, error)
}

type client struct {
	url        string
	httpClient *http.Client
}

// NewClient returns a client posting to url, every request is bounded by timeout.
func NewClient(url string, timeout time.Duration) Client {
	return &client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Predict posts the vector keyed by short keys and decodes the prediction.
func (c *client) Predict(ctx context.Context, v feature.Vector) (int, error) {
	body, err := json.Marshal(feature.Inputs(v))
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set(headers.ContentType, contentTypeJSON)
	req.Header.Set(headers.Accept, contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return 0, statusError(resp)
	}

	var result struct {
		Prediction *int `json:"prediction"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	if result.Prediction == nil {
		return 0, errors.New("response has no prediction")
	}

	return *result.Prediction, nil
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	var e middlewares.ErrorResponse
	if err := json.Unmarshal(b, &e); err == nil && e.Error != "" {
		if e.Detail != "" {
			return fmt.Errorf("HTTP %d: %s: %s", resp.StatusCode, e.Error, e.Detail)
		}

		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, e.Error)
	}

	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(b))
}
