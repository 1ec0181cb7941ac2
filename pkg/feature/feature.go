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

// Package feature defines the ordered feature contract shared by training and serving.
package feature

import (
	"fmt"
	"math"
	"strings"

	"github.com/sjwhitworth/golearn/base"
	"github.com/spf13/cast"
)

// Feature binds a canonical dataset column to the short key used by callers.
type Feature struct {
	// Name is the canonical column name used in the dataset and the model.
	Name string

	// Key is the short key expected in a prediction request.
	Key string
}

// Features is the ordered feature table, the position of each entry is
// the position of its value in every Vector.
var Features = []Feature{
	{Name: "Inbound Rate(bit/s)", Key: "inbound_rate"},
	{Name: "Outbound Rate(bit/s)", Key: "outbound_rate"},
	{Name: "Inbound Bandwidth Utilization(%)", Key: "inbound_util"},
	{Name: "Outbound Bandwidth Utilization(%)", Key: "outbound_util"},
}

const (
	// LabelColumn is the dataset column holding the label.
	LabelColumn = "Label"

	// LabelNormal is the label of normal traffic.
	LabelNormal = 0

	// LabelAnomaly is the label of anomalous traffic.
	LabelAnomaly = 1
)

const (
	normalName  = "Normal"
	anomalyName = "Anomaly"
)

// LabelName maps a prediction to its display label.
func LabelName(prediction int) string {
	if prediction == LabelAnomaly {
		return anomalyName
	}

	return normalName
}

// Names returns the canonical names in table order.
func Names() []string {
	names := make([]string, len(Features))
	for i, f := range Features {
		names[i] = f.Name
	}

	return names
}

// Keys returns the short keys in table order.
func Keys() []string {
	keys := make([]string, len(Features))
	for i, f := range Features {
		keys[i] = f.Key
	}

	return keys
}

// Vector is a feature vector in table order.
type Vector []float64

// ParseInputs builds a vector from a request body keyed by short keys.
// Finite numbers and numeric strings are accepted.
func ParseInputs(inputs map[string]any) (Vector, error) {
	v := make(Vector, len(Features))
	for i, f := range Features {
		raw, ok := inputs[f.Key]
		if !ok || raw == nil {
			return nil, fmt.Errorf("missing key %q", f.Key)
		}

		if s, ok := raw.(string); ok {
			raw = strings.TrimSpace(s)
		}

		x, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %q: %w", f.Key, err)
		}

		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("invalid value for %q: not a finite number", f.Key)
		}
		v[i] = x
	}

	return v, nil
}

// Inputs returns the vector keyed by short keys.
func Inputs(v Vector) map[string]float64 {
	inputs := make(map[string]float64, len(Features))
	for i, f := range Features {
		if i < len(v) {
			inputs[f.Key] = v[i]
		}
	}

	return inputs
}

// NewInstances builds a grid with one float attribute per feature in table order
// and the label as class attribute. A nil labels slice leaves every label at LabelNormal.
func NewInstances(vectors []Vector, labels []int) (*base.DenseInstances, error) {
	if labels != nil && len(labels) != len(vectors) {
		return nil, fmt.Errorf("got %d vectors and %d labels", len(vectors), len(labels))
	}

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(Features))
	for i, f := range Features {
		specs[i] = inst.AddAttribute(base.NewFloatAttribute(f.Name))
	}

	cls := base.NewFloatAttribute(LabelColumn)
	clsSpec := inst.AddAttribute(cls)
	if err := inst.AddClassAttribute(cls); err != nil {
		return nil, err
	}

	if err := inst.Extend(len(vectors)); err != nil {
		return nil, err
	}

	for row, v := range vectors {
		if len(v) != len(Features) {
			return nil, fmt.Errorf("row %d has %d features, want %d", row, len(v), len(Features))
		}

		for i, spec := range specs {
			inst.Set(spec, row, base.PackFloatToBytes(v[i]))
		}

		label := LabelNormal
		if labels != nil {
			label = labels[row]
		}
		inst.Set(clsSpec, row, base.PackFloatToBytes(float64(label)))
	}

	return inst, nil
}
