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

//go:generate mockgen -destination mocks/service_mock.go -source service.go -package mocks

package service

import (
	"context"

	"github.com/sjwhitworth/golearn/base"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"

	"github.com/netanomaly/netanomaly/classifier/config"
	"github.com/netanomaly/netanomaly/classifier/metrics"
	"github.com/netanomaly/netanomaly/internal/errordefs"
	"github.com/netanomaly/netanomaly/internal/logger"
	"github.com/netanomaly/netanomaly/pkg/feature"
	"github.com/netanomaly/netanomaly/trainer/models"
)

// tracer is a global tracer for service.
var tracer = otel.Tracer("classifier-service")

var (
	// ErrModelNotLoaded is returned while the service runs without a model.
	ErrModelNotLoaded = errordefs.New(errordefs.CodeServiceUnavailable, "Model not loaded. Add model or CSV and restart.")

	// ErrJSONBodyRequired is returned for an empty request body.
	ErrJSONBodyRequired = errordefs.New(errordefs.CodeBadRequest, "JSON body required")

	// ErrInvalidInput is returned when the request body is not a valid feature vector.
	ErrInvalidInput = errordefs.New(errordefs.CodeBadRequest, "Invalid input. Send: inbound_rate, outbound_rate, inbound_util, outbound_util (numbers).")
)

// PredictionResult is the classification of a single sample.
type PredictionResult struct {
	Prediction int    `json:"prediction"`
	Label      string `json:"label"`
}

// ModelInfo describes the loaded model.
type ModelInfo struct {
	Loaded      bool                 `json:"loaded"`
	Source      string               `json:"source,omitempty"`
	Path        string               `json:"path,omitempty"`
	DatasetPath string               `json:"dataset_path,omitempty"`
	Model       *models.RandomForest `json:"model,omitempty"`
	Predictions int64                `json:"predictions,omitempty"`
	Anomalies   int64                `json:"anomalies,omitempty"`
}

// Service is the interface of the prediction service.
type Service interface {
	// Available returns ErrModelNotLoaded when no model is loaded.
	Available() error

	// Predict classifies the sample carried by a decoded json object.
	Predict(context.Context, map[string]any) (*PredictionResult, error)

	// ModelInfo describes the loaded model.
	ModelInfo() *ModelInfo
}

type service struct {
	model models.Classifier
	info  *ModelInfo

	predictions *atomic.Int64
	anomalies   *atomic.Int64
}

// New returns a new Service. A nil model runs the service without a model,
// every prediction then fails with ErrModelNotLoaded.
func New(model models.Classifier, info *ModelInfo) Service {
	if info == nil {
		info = &ModelInfo{}
	}
	info.Loaded = model != nil

	return &service{
		model:       model,
		info:        info,
		predictions: atomic.NewInt64(0),
		anomalies:   atomic.NewInt64(0),
	}
}

// Available returns ErrModelNotLoaded when no model is loaded.
func (s *service) Available() error {
	if s.model == nil {
		return ErrModelNotLoaded
	}

	return nil
}

// Predict classifies the sample carried by a decoded json object.
func (s *service) Predict(ctx context.Context, body map[string]any) (*PredictionResult, error) {
	_, span := tracer.Start(ctx, config.SpanPredict, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	result, err := s.predict(body)
	if err != nil {
		code := errordefs.CodeInternal
		if e, ok := errordefs.As(err); ok {
			code = e.Code
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.PredictFailureCount.WithLabelValues(code.String()).Inc()
		return nil, err
	}

	s.predictions.Inc()
	if result.Prediction == feature.LabelAnomaly {
		s.anomalies.Inc()
	}

	span.SetAttributes(config.AttributePrediction.Int(result.Prediction))
	metrics.PredictCount.WithLabelValues(result.Label).Inc()
	return result, nil
}

func (s *service) predict(body map[string]any) (*PredictionResult, error) {
	if err := s.Available(); err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, ErrJSONBodyRequired
	}

	v, err := feature.ParseInputs(body)
	if err != nil {
		return nil, ErrInvalidInput.WithDetail(err.Error())
	}

	grid, err := feature.NewInstances([]feature.Vector{v}, nil)
	if err != nil {
		return nil, err
	}

	out, err := s.model.Predict(grid)
	if err != nil {
		logger.Errorf("predict failed: %s", err.Error())
		return nil, err
	}

	prediction, err := firstClass(out)
	if err != nil {
		return nil, err
	}

	return &PredictionResult{
		Prediction: prediction,
		Label:      feature.LabelName(prediction),
	}, nil
}

// ModelInfo describes the loaded model with the number of predictions served.
func (s *service) ModelInfo() *ModelInfo {
	info := *s.info
	info.Predictions = s.predictions.Load()
	info.Anomalies = s.anomalies.Load()
	return &info
}

// firstClass returns the class predicted for the first row of out.
func firstClass(out base.FixedDataGrid) (int, error) {
	classAttrs := out.AllClassAttributes()
	if len(classAttrs) == 0 {
		return 0, errordefs.New(errordefs.CodeInternal, "prediction has no class attribute")
	}

	spec, err := out.GetAttribute(classAttrs[0])
	if err != nil {
		return 0, err
	}

	if _, rows := out.Size(); rows == 0 {
		return 0, errordefs.New(errordefs.CodeInternal, "prediction is empty")
	}

	return int(base.UnpackBytesToFloat(out.Get(spec, 0))), nil
}
