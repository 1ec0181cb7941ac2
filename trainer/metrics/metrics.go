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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/netanomaly/netanomaly/pkg/types"
	"github.com/netanomaly/netanomaly/trainer/config"
	"github.com/netanomaly/netanomaly/version"
)

// Variables declared for metrics.
var (
	TrainingCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.TrainerMetricsName,
		Name:      "training_total",
		Help:      "Counter of the number of the training.",
	})

	TrainingFailureCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.TrainerMetricsName,
		Name:      "training_failure_total",
		Help:      "Counter of the number of failed of the training.",
	})

	TrainingAccuracy = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.TrainerMetricsName,
		Name:      "training_accuracy",
		Help:      "Accuracy of the latest model on the holdout set.",
	})

	TrainingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.TrainerMetricsName,
		Name:      "training_duration_seconds",
		Help:      "Histogram of the time each training took.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	})

	VersionGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.TrainerMetricsName,
		Name:      "version",
		Help:      "Version info of the service.",
	}, []string{"major", "minor", "git_version", "git_commit", "platform", "build_time", "go_version", "go_tags", "go_gcflags"})
)

// Push pushes the trainer metrics to the pushgateway, it is a no-op when no pushgateway is configured.
func Push(cfg *config.MetricsConfig) error {
	if cfg.PushGateway == "" {
		return nil
	}

	VersionGauge.WithLabelValues(version.Major, version.Minor, version.GitVersion, version.GitCommit, version.Platform, version.BuildTime, version.GoVersion, version.Gotags, version.Gogcflags).Set(1)
	return push.New(cfg.PushGateway, types.TrainerName).
		Collector(TrainingCount).
		Collector(TrainingFailureCount).
		Collector(TrainingAccuracy).
		Collector(TrainingDuration).
		Collector(VersionGauge).
		Push()
}
