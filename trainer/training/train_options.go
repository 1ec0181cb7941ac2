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

import (
	"github.com/netanomaly/netanomaly/trainer/models"
)

const (
	// DefaultTestPercent is the default percent of the holdout test set, zero fits on every row.
	DefaultTestPercent = 0

	// HoldoutTestPercent is the percent of the holdout test set used by the offline trainer.
	HoldoutTestPercent = 0.3
)

// TrainOptions provides hyperparameters of the random forest and the holdout split.
type TrainOptions struct {
	// Trees is the number of trees.
	Trees int

	// MaxFeatures is the number of features sampled at every split, zero means square root.
	MaxFeatures int

	// MaxDepth is the maximum tree depth, zero means unlimited.
	MaxDepth int

	// MinSamplesSplit is the minimum number of samples required to split a node.
	MinSamplesSplit int

	// Seed drives the holdout split, bootstrap and feature sampling.
	Seed int64

	// TestPercent is the percent of rows held out for evaluation.
	TestPercent float64
}

// TrainOptionFunc is a functional option for configuring training.
type TrainOptionFunc func(options *TrainOptions)

// WithTrees sets the number of trees.
func WithTrees(n int) TrainOptionFunc {
	return func(options *TrainOptions) {
		options.Trees = n
	}
}

// WithMaxFeatures sets the number of features sampled at every split.
func WithMaxFeatures(n int) TrainOptionFunc {
	return func(options *TrainOptions) {
		options.MaxFeatures = n
	}
}

// WithMaxDepth sets the maximum tree depth.
func WithMaxDepth(n int) TrainOptionFunc {
	return func(options *TrainOptions) {
		options.MaxDepth = n
	}
}

// WithMinSamplesSplit sets the minimum number of samples required to split a node.
func WithMinSamplesSplit(n int) TrainOptionFunc {
	return func(options *TrainOptions) {
		options.MinSamplesSplit = n
	}
}

// WithSeed sets the seed.
func WithSeed(seed int64) TrainOptionFunc {
	return func(options *TrainOptions) {
		options.Seed = seed
	}
}

// WithTestPercent sets the percent of rows held out for evaluation.
func WithTestPercent(percent float64) TrainOptionFunc {
	return func(options *TrainOptions) {
		options.TestPercent = percent
	}
}

func defaultTrainOptions() *TrainOptions {
	return &TrainOptions{
		Trees:           models.DefaultTrees,
		MinSamplesSplit: models.DefaultMinSamplesSplit,
		Seed:            models.DefaultSeed,
		TestPercent:     DefaultTestPercent,
	}
}

func (o *TrainOptions) modelOptions() []models.Option {
	return []models.Option{
		models.WithTrees(o.Trees),
		models.WithMaxFeatures(o.MaxFeatures),
		models.WithMaxDepth(o.MaxDepth),
		models.WithMinSamplesSplit(o.MinSamplesSplit),
		models.WithSeed(o.Seed),
	}
}
