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

package resolver

import (
	"context"
	"errors"

	"github.com/netanomaly/netanomaly/classifier/metrics"
	"github.com/netanomaly/netanomaly/classifier/storage"
	"github.com/netanomaly/netanomaly/internal/errordefs"
	"github.com/netanomaly/netanomaly/internal/logger"
	"github.com/netanomaly/netanomaly/trainer/models"
	"github.com/netanomaly/netanomaly/trainer/training"
)

// Source tells where a resolved model came from.
type Source string

const (
	// SourceArtifact is a model loaded from a persisted artifact.
	SourceArtifact Source = "artifact"

	// SourceTrained is a model fitted on the dataset during resolution.
	SourceTrained Source = "trained"
)

// Result is a resolved model.
type Result struct {
	// Model is the resolved model.
	Model *models.RandomForest

	// Source tells where the model came from.
	Source Source

	// ModelPath is the path of the model artifact.
	ModelPath string

	// DatasetPath is the path of the dataset the model was fitted on, empty for artifacts.
	DatasetPath string
}

// Resolver locates or trains the model.
type Resolver interface {
	// Resolve returns the persisted model, or fits and persists one from the dataset.
	Resolve(context.Context) (*Result, error)
}

type resolver struct {
	storage  storage.Storage
	training training.Training
}

// New returns a new Resolver.
func New(storage storage.Storage, training training.Training) Resolver {
	return &resolver{
		storage:  storage,
		training: training,
	}
}

// Resolve returns the persisted model, or fits and persists one from the dataset.
// The artifact is returned as is, without checking how it was trained.
func (r *resolver) Resolve(ctx context.Context) (*Result, error) {
	result, err := r.resolve(ctx)
	if err != nil {
		metrics.ModelResolveFailureCount.Inc()
		return nil, err
	}

	metrics.ModelResolveCount.WithLabelValues(string(result.Source)).Inc()
	return result, nil
}

func (r *resolver) resolve(ctx context.Context) (*Result, error) {
	modelPath, err := r.storage.FindModel()
	if err == nil {
		model, err := r.storage.LoadModel(modelPath)
		if err != nil {
			return nil, err
		}

		logger.WithModel(modelPath, string(SourceArtifact)).Info("model loaded")
		return &Result{
			Model:     model,
			Source:    SourceArtifact,
			ModelPath: modelPath,
		}, nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	datasetPath, err := r.storage.FindDataset()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errordefs.Newf(errordefs.CodeResourceNotFound,
				"neither %s nor %s found in the working directory or its parent, run the trainer or add the dataset",
				r.storage.ModelFilename(), r.storage.DatasetFilename())
		}

		return nil, err
	}

	log := logger.WithDataset(datasetPath)
	log.Info("model not found, training on dataset")

	d, err := r.storage.OpenDataset(datasetPath)
	if err != nil {
		return nil, err
	}

	trained, err := r.training.Train(ctx, d)
	if err != nil {
		return nil, err
	}

	modelPath, err = r.storage.SaveModel(trained.Model)
	if err != nil {
		return nil, err
	}

	log.With("modelPath", modelPath).Infof("model trained on %d rows", trained.TrainRows)
	return &Result{
		Model:       trained.Model,
		Source:      SourceTrained,
		ModelPath:   modelPath,
		DatasetPath: datasetPath,
	}, nil
}
