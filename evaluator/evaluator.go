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
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"github.com/netanomaly/netanomaly/internal/logger"
	"github.com/netanomaly/netanomaly/pkg/dataset"
)

// Option is a functional option for configuring the evaluator.
type Option func(e *Evaluator)

// WithProgress renders a progress bar to w.
func WithProgress(w io.Writer) Option {
	return func(e *Evaluator) {
		e.progress = w
	}
}

// WithQPS limits the number of requests sent per second, zero means unlimited.
func WithQPS(qps float64) Option {
	return func(e *Evaluator) {
		if qps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(qps), 1)
		}
	}
}

// Evaluator replays a dataset against the prediction endpoint.
type Evaluator struct {
	client   Client
	progress io.Writer
	limiter  *rate.Limiter
}

// New returns an evaluator sending requests with client.
func New(client Client, options ...Option) *Evaluator {
	e := &Evaluator{client: client}
	for _, opt := range options {
		opt(e)
	}

	return e
}

// Run sends one request per sample, in order. A failed request is recorded
// as a mismatch and the run goes on, requests are never retried.
func (e *Evaluator) Run(ctx context.Context, d *dataset.Dataset) *Report {
	report := &Report{Total: d.Len()}
	bar := e.newProgressBar(d.Len())

	for _, sample := range d.Samples {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				logger.Warnf("wait for rate limiter failed: %s", err.Error())
			}
		}

		start := time.Now()
		prediction, err := e.client.Predict(ctx, sample.Vector)
		report.Latencies = append(report.Latencies, time.Since(start))
		switch {
		case err != nil:
			logger.WithRow(sample.Row).Debugf("predict failed: %s", err.Error())
			report.Mismatches = append(report.Mismatches, Mismatch{
				Row:       sample.Row,
				TrueLabel: sample.Label,
				Detail:    err.Error(),
				Inputs:    sample.Vector,
			})
		case prediction != sample.Label:
			p := prediction
			report.Mismatches = append(report.Mismatches, Mismatch{
				Row:       sample.Row,
				TrueLabel: sample.Label,
				Predicted: &p,
				Inputs:    sample.Vector,
			})
		default:
			report.Correct++
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				logger.Warnf("update progress bar failed: %s", err.Error())
			}
		}
	}

	return report
}

func (e *Evaluator) newProgressBar(n int) *progressbar.ProgressBar {
	if e.progress == nil {
		return nil
	}

	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(e.progress),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("evaluating"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(e.progress)
		}),
	)
}
