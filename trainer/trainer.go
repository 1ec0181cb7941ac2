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

package trainer

import (
	"context"
	"path/filepath"
	"time"

	"github.com/netanomaly/netanomaly/classifier/storage"
	"github.com/netanomaly/netanomaly/internal/logger"
	"github.com/netanomaly/netanomaly/pkg/dataset"
	"github.com/netanomaly/netanomaly/pkg/workpath"
	"github.com/netanomaly/netanomaly/trainer/config"
	"github.com/netanomaly/netanomaly/trainer/metrics"
	"github.com/netanomaly/netanomaly/trainer/training"
)

// Result is the outcome of one training run.
type Result struct {
	*training.Result

	// DatasetPath is the dataset the model was fitted on.
	DatasetPath string

	// ModelPath is where the model artifact was written.
	ModelPath string
}

type Trainer struct {
	// Trainer configuration.
	config *config.Config

	// Training interface.
	training training.Training

	// Storage of the model artifact.
	storage storage.Storage

	// Absolute path of the dataset.
	datasetPath string
}

// New returns a trainer, relative dataset and output paths are resolved against the work directory.
func New(cfg *config.Config, w workpath.Workpath) (*Trainer, error) {
	output := absPath(w.WorkDir(), cfg.Training.Output)
	store, err := storage.New(filepath.Dir(output), storage.WithModelFilename(filepath.Base(output)))
	if err != nil {
		return nil, err
	}

	return &Trainer{
		config:      cfg,
		training:    training.New(cfg.TrainOptions()...),
		storage:     store,
		datasetPath: absPath(w.WorkDir(), cfg.Training.Dataset),
	}, nil
}

// Run fits the model on the dataset, evaluates it on the holdout rows and
// persists it. Metrics are pushed whatever the outcome.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	metrics.TrainingCount.Inc()

	result, err := t.run(ctx)
	metrics.TrainingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TrainingFailureCount.Inc()
	} else if result.TestRows > 0 {
		metrics.TrainingAccuracy.Set(result.Accuracy)
	}

	if err := metrics.Push(&t.config.Metrics); err != nil {
		logger.Warnf("push metrics to %s failed: %s", t.config.Metrics.PushGateway, err.Error())
	}

	return result, err
}

func (t *Trainer) run(ctx context.Context) (*Result, error) {
	log := logger.WithDataset(t.datasetPath)
	d, err := dataset.Open(t.datasetPath)
	if err != nil {
		log.Errorf("open dataset failed: %s", err.Error())
		return nil, err
	}
	log.Infof("dataset loaded with %d rows", d.Len())

	result, err := t.training.Train(ctx, d)
	if err != nil {
		log.Errorf("train failed: %s", err.Error())
		return nil, err
	}

	if result.TestRows > 0 {
		log.Infof("Accuracy: %.4f", result.Accuracy)
	}
	log.Infof("oob score: %.4f", result.Model.OOBScore)

	path, err := t.storage.SaveModel(result.Model)
	if err != nil {
		log.Errorf("save model failed: %s", err.Error())
		return nil, err
	}

	return &Result{
		Result:      result,
		DatasetPath: t.datasetPath,
		ModelPath:   path,
	}, nil
}

func absPath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}
