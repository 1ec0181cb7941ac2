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

package training

//go:generate mockgen -destination mocks/training_mock.go -source training.go -package mocks

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/evaluation"

	"github.com/netanomaly/netanomaly/internal/logger"
	"github.com/netanomaly/netanomaly/pkg/dataset"
	"github.com/netanomaly/netanomaly/trainer/models"
)

// Result is a fitted model with its holdout evaluation.
type Result struct {
	// Model is the fitted random forest.
	Model *models.RandomForest

	// TrainRows is the number of rows the model was fitted on.
	TrainRows int

	// TestRows is the number of held out rows, zero when nothing was held out.
	TestRows int

	// Accuracy on the held out rows, valid when TestRows is not zero.
	Accuracy float64

	// ConfusionMatrix on the held out rows.
	ConfusionMatrix evaluation.ConfusionMatrix
}

// Training defines the interface to fit the anomaly model.
type Training interface {
	// Train fits a model on the dataset and evaluates it on the held out rows.
	Train(context.Context, *dataset.Dataset) (*Result, error)
}

// training implements Training interface.
type training struct {
	options *TrainOptions
}

// New returns a new Training.
func New(options ...TrainOptionFunc) Training {
	o := defaultTrainOptions()
	for _, opt := range options {
		opt(o)
	}

	return &training{options: o}
}

// Train fits a model on the dataset and evaluates it on the held out rows.
func (t *training) Train(ctx context.Context, d *dataset.Dataset) (*Result, error) {
	if d == nil || d.Len() == 0 {
		return nil, dataset.ErrEmptyDataset
	}

	grid, err := d.Instances()
	if err != nil {
		return nil, err
	}

	train, test, err := Split(grid, t.options.TestPercent, t.options.Seed)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model := models.NewRandomForest(t.options.modelOptions()...)
	if err := model.Fit(train); err != nil {
		return nil, err
	}

	_, trainRows := train.Size()
	result := &Result{
		Model:     model,
		TrainRows: trainRows,
	}

	if test == nil {
		logger.Infof("model fitted on %d rows", trainRows)
		return result, nil
	}

	out, err := model.Predict(test)
	if err != nil {
		return nil, err
	}

	cm, err := evaluation.GetConfusionMatrix(test, out)
	if err != nil {
		return nil, err
	}

	_, result.TestRows = test.Size()
	result.ConfusionMatrix = cm
	result.Accuracy = evaluation.GetAccuracy(cm)
	logger.Infof("model fitted on %d rows, evaluated on %d rows", result.TrainRows, result.TestRows)
	return result, nil
}

// Split shuffles the rows of grid with seed and holds out testPercent of them.
// The test grid is nil when testPercent is not positive.
func Split(grid base.FixedDataGrid, testPercent float64, seed int64) (base.FixedDataGrid, base.FixedDataGrid, error) {
	if testPercent <= 0 {
		return grid, nil, nil
	}

	if testPercent >= 1 {
		return nil, nil, fmt.Errorf("invalid test percent %v", testPercent)
	}

	_, rows := grid.Size()
	// Ceil with a tolerance so that 0.3 of 100 rows stays 30.
	testRows := int(math.Ceil(testPercent*float64(rows) - 1e-9))
	if testRows >= rows {
		return nil, nil, fmt.Errorf("%d rows are too few to hold out %v of them", rows, testPercent)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(rows)
	attrs := grid.AllAttributes()
	test := base.NewInstancesViewFromVisible(grid, perm[:testRows], attrs)
	train := base.NewInstancesViewFromVisible(grid, perm[testRows:], attrs)
	return train, test, nil
}
