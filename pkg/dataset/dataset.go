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

package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/sjwhitworth/golearn/base"
	"github.com/spf13/cast"

	"github.com/netanomaly/netanomaly/pkg/feature"
)

// firstSampleRow is the csv line number of the first sample, line 1 is the header.
const firstSampleRow = 2

var (
	// ErrEmptyDataset is returned when the csv file has no sample.
	ErrEmptyDataset = errors.New("empty dataset given")
)

// Sample is a labeled feature vector.
type Sample struct {
	// Row is the csv line number of the sample.
	Row int

	// Vector is the feature vector in feature table order.
	Vector feature.Vector

	// Label is feature.LabelNormal or feature.LabelAnomaly.
	Label int
}

// Dataset is an ordered, read-only list of samples.
type Dataset struct {
	// Path is the file the dataset was loaded from, empty if loaded from a reader.
	Path string

	// Samples in file order.
	Samples []Sample
}

// Open loads the dataset stored at path.
func Open(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	d, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	d.Path = path

	return d, nil
}

// Load reads a csv with a header row. Feature columns are selected by canonical
// name, so extra columns and column order are irrelevant.
func Load(r io.Reader) (*Dataset, error) {
	records, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	columns := append(feature.Names(), feature.LabelColumn)
	for _, column := range columns {
		if _, ok := records[0][column]; !ok {
			return nil, fmt.Errorf("missing column %q", column)
		}
	}

	samples := make([]Sample, 0, len(records))
	for i, record := range records {
		row := i + firstSampleRow
		v := make(feature.Vector, len(feature.Features))
		for j, f := range feature.Features {
			x, err := parseValue(record[f.Name])
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", row, f.Name, err)
			}
			v[j] = x
		}

		label, err := parseLabel(record[feature.LabelColumn])
		if err != nil {
			return nil, fmt.Errorf("row %d column %q: %w", row, feature.LabelColumn, err)
		}

		samples = append(samples, Sample{
			Row:    row,
			Vector: v,
			Label:  label,
		})
	}

	return &Dataset{Samples: samples}, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Samples)
}

// Vectors returns the feature vectors in sample order.
func (d *Dataset) Vectors() []feature.Vector {
	vectors := make([]feature.Vector, len(d.Samples))
	for i, s := range d.Samples {
		vectors[i] = s.Vector
	}

	return vectors
}

// Labels returns the labels in sample order.
func (d *Dataset) Labels() []int {
	labels := make([]int, len(d.Samples))
	for i, s := range d.Samples {
		labels[i] = s.Label
	}

	return labels
}

// Instances converts the dataset to a golearn grid.
func (d *Dataset) Instances() (*base.DenseInstances, error) {
	return feature.NewInstances(d.Vectors(), d.Labels())
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty value")
	}

	x, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("invalid value %q: not a finite number", s)
	}

	return x, nil
}

func parseLabel(s string) (int, error) {
	x, err := parseValue(s)
	if err != nil {
		return 0, err
	}

	if x != math.Trunc(x) || (int(x) != feature.LabelNormal && int(x) != feature.LabelAnomaly) {
		return 0, fmt.Errorf("invalid label %q, want %d or %d", s, feature.LabelNormal, feature.LabelAnomaly)
	}

	return int(x), nil
}
