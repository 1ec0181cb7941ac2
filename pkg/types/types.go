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

package types

const (
	// ClassifierName is name of classifier.
	ClassifierName = "classifier"

	// TrainerName is name of trainer.
	TrainerName = "trainer"

	// EvaluatorName is name of evaluator.
	EvaluatorName = "evaluator"
)

const (
	// MetricsNamespace is namespace of metrics.
	MetricsNamespace = "netanomaly"

	// ClassifierMetricsName is name of classifier metrics.
	ClassifierMetricsName = "classifier"

	// TrainerMetricsName is name of trainer metrics.
	TrainerMetricsName = "trainer"
)

const (
	// DefaultModelFilename is the file name of the persisted model artifact.
	DefaultModelFilename = "network_anomaly_model.gob"

	// DefaultDatasetFilename is the file name of the labeled dataset.
	DefaultDatasetFilename = "networkanomalydataset.csv"
)
