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

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sjwhitworth/golearn/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netanomaly/netanomaly/internal/errordefs"
	"github.com/netanomaly/netanomaly/pkg/dataset"
	"github.com/netanomaly/netanomaly/pkg/feature"
	"github.com/netanomaly/netanomaly/trainer/models"
	modelsmocks "github.com/netanomaly/netanomaly/trainer/models/mocks"
)

var mockBody = map[string]any{
	"inbound_rate":  500000.0,
	"outbound_rate": 200000.0,
	"inbound_util":  80.0,
	"outbound_util": 30.0,
}

// predictionGrid returns a one row prediction grid holding class.
func predictionGrid(t *testing.T, class int) base.FixedDataGrid {
	grid, err := feature.NewInstances([]feature.Vector{{0, 0, 0, 0}}, []int{class})
	require.NoError(t, err)
	return grid
}

func TestService_New(t *testing.T) {
	tests := []struct {
		name   string
		model  models.Classifier
		info   *ModelInfo
		expect func(t *testing.T, s Service)
	}{
		{
			name:  "new service without model",
			model: nil,
			info:  nil,
			expect: func(t *testing.T, s Service) {
				assert := assert.New(t)
				assert.Equal(&ModelInfo{}, s.ModelInfo())
				assert.Equal(ErrModelNotLoaded, s.Available())
			},
		},
		{
			name:  "new service with model",
			model: models.NewRandomForest(),
			info:  &ModelInfo{Source: "artifact", Path: "foo"},
			expect: func(t *testing.T, s Service) {
				assert := assert.New(t)
				assert.Equal(&ModelInfo{Loaded: true, Source: "artifact", Path: "foo"}, s.ModelInfo())
				assert.NoError(s.Available())
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.expect(t, New(tc.model, tc.info))
		})
	}
}

func TestService_Predict(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]any
		mock   func(t *testing.T, m *modelsmocks.MockClassifierMockRecorder)
		expect func(t *testing.T, result *PredictionResult, err error)
	}{
		{
			name: "anomaly",
			body: mockBody,
			mock: func(t *testing.T, m *modelsmocks.MockClassifierMockRecorder) {
				m.Predict(gomock.Any()).Return(predictionGrid(t, feature.LabelAnomaly), nil).Times(1)
			},
			expect: func(t *testing.T, result *PredictionResult, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(&PredictionResult{Prediction: 1, Label: "Anomaly"}, result)
			},
		},
		{
			name: "normal with numeric strings",
			body: map[string]any{
				"inbound_rate":  "1000",
				"outbound_rate": " 2000 ",
				"inbound_util":  "1.5",
				"outbound_util": 2,
			},
			mock: func(t *testing.T, m *modelsmocks.MockClassifierMockRecorder) {
				m.Predict(gomock.Any()).DoAndReturn(func(X base.FixedDataGrid) (base.FixedDataGrid, error) {
					_, rows := X.Size()
					assert.Equal(t, 1, rows)

					spec, err := X.GetAttribute(X.AllAttributes()[1])
					require.NoError(t, err)
					assert.Equal(t, 2000.0, base.UnpackBytesToFloat(X.Get(spec, 0)))
					return predictionGrid(t, feature.LabelNormal), nil
				}).Times(1)
			},
			expect: func(t *testing.T, result *PredictionResult, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(&PredictionResult{Prediction: 0, Label: "Normal"}, result)
			},
		},
		{
			name: "extra keys are ignored",
			body: map[string]any{
				"inbound_rate":  1,
				"outbound_rate": 2,
				"inbound_util":  3,
				"outbound_util": 4,
				"foo":           "bar",
			},
			mock: func(t *testing.T, m *modelsmocks.MockClassifierMockRecorder) {
				m.Predict(gomock.Any()).Return(predictionGrid(t, feature.LabelNormal), nil).Times(1)
			},
			expect: func(t *testing.T, result *PredictionResult, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("Normal", result.Label)
			},
		},
		{
			name: "empty body",
			body: map[string]any{},
			mock: func(t *testing.T, m *modelsmocks.MockClassifierMockRecorder) {},
			expect: func(t *testing.T, result *PredictionResult, err error) {
				assert := assert.New(t)
				assert.Equal(ErrJSONBodyRequired, err)
				assert.Nil(result)
			},
		},
		{
			name: "nil body",
			body: nil,
			mock: func(t *testing.T, m *modelsmocks.MockClassifierMockRecorder) {},
			expect: func(t *testing.T, result *PredictionResult, err error) {
				assert.Equal(t, ErrJSONBodyRequired, err)
			},
		},
		{
			name: "missing key",
			body: map[string]any{
				"inbound_rate":  1,
				"outbound_rate": 2,
				"inbound_util":  3,
			},
			mock: func(t *testing.T, m *modelsmocks.MockClassifierMockRecorder) {},
			expect: func(t *testing.T, result *PredictionResult, err error) {
				assert := assert.New(t)
				e, ok := errordefs.As(err)
				require.True(t, ok)
				assert.Equal(errordefs.CodeBadRequest, e.Code)
				assert.Equal(ErrInvalidInput.Message, e.Message)
				assert.Equal(`missing key "outbound_util"`, e.Detail)
			},
		},
		{
			name: "value is not a number",
			body: map[string]any{
				"inbound_rate":  "abc",
				"outbound_rate": 2,
				"inbound_util":  3,
				"outbound_util": 4,
			},
			mock: func(t *testing.T, m *modelsmocks.MockClassifierMockRecorder) {},
			expect: func(t *testing.T, result *PredictionResult, err error) {
				assert := assert.New(t)
				e, ok := errordefs.As(err)
				require.True(t, ok)
				assert.Equal(errordefs.CodeBadRequest, e.Code)
				assert.Contains(e.Detail, `invalid value for "inbound_rate"`)
				assert.Nil(result)
			},
		},
		{
			name: "value is not finite",
			body: map[string]any{
				"inbound_rate":  1,
				"outbound_rate": 2,
				"inbound_util":  "Infinity",
				"outbound_util": 4,
			},
			mock: func(t *testing.T, m *modelsmocks.MockClassifierMockRecorder) {},
			expect: func(t *testing.T, result *PredictionResult, err error) {
				assert := assert.New(t)
				e, ok := errordefs.As(err)
				require.True(t, ok)
				assert.Equal(errordefs.CodeBadRequest, e.Code)
				assert.Equal(`invalid value for "inbound_util": not a finite number`, e.Detail)
				assert.Nil(result)
			},
		},
		{
			name: "null value",
			body: map[string]any{
				"inbound_rate":  nil,
				"outbound_rate": 2,
				"inbound_util":  3,
				"outbound_util": 4,
			},
			mock: func(t *testing.T, m *modelsmocks.MockClassifierMockRecorder) {},
			expect: func(t *testing.T, result *PredictionResult, err error) {
				assert.True(t, errordefs.CheckError(err, errordefs.CodeBadRequest))
			},
		},
		{
			name: "model failed",
			body: mockBody,
			mock: func(t *testing.T, m *modelsmocks.MockClassifierMockRecorder) {
				m.Predict(gomock.Any()).Return(nil, errors.New("foo")).Times(1)
			},
			expect: func(t *testing.T, result *PredictionResult, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "foo")
				assert.Nil(result)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()
			model := modelsmocks.NewMockClassifier(ctl)
			tc.mock(t, model.EXPECT())

			result, err := New(model, nil).Predict(context.Background(), tc.body)
			tc.expect(t, result, err)
		})
	}
}

func TestService_PredictWithoutModel(t *testing.T) {
	assert := assert.New(t)
	s := New(nil, nil)

	for _, body := range []map[string]any{mockBody, {}, {"inbound_rate": "abc"}} {
		result, err := s.Predict(context.Background(), body)
		assert.Nil(result)
		assert.Equal(ErrModelNotLoaded, err)
		assert.Equal(503, ErrModelNotLoaded.Code.HTTPStatus())
	}
}

func TestService_PredictWithRandomForest(t *testing.T) {
	d := dataset.Synthetic(120, 1)
	d.Samples = append(d.Samples, dataset.Sample{
		Vector: feature.Vector{500000, 200000, 80.0, 30.0},
		Label:  feature.LabelAnomaly,
	})
	grid, err := d.Instances()
	require.NoError(t, err)

	model := models.NewRandomForest(models.WithTrees(10))
	require.NoError(t, model.Fit(grid))

	s := New(model, &ModelInfo{Model: model})
	result, err := s.Predict(context.Background(), mockBody)
	assert.NoError(t, err)
	assert.Equal(t, &PredictionResult{Prediction: 1, Label: "Anomaly"}, result)

	_, err = s.Predict(context.Background(), map[string]any{"foo": 1})
	assert.Error(t, err)

	info := s.ModelInfo()
	assert.True(t, info.Loaded)
	assert.Equal(t, int64(1), info.Predictions)
	assert.Equal(t, int64(1), info.Anomalies)
}
