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
	"encoding/csv"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/netanomaly/netanomaly/pkg/feature"
)

// Write stores the dataset as csv with a header row in feature table order.
func (d *Dataset) Write(w io.Writer) error {
	writer := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
	if err := writer.Write(append(feature.Names(), feature.LabelColumn)); err != nil {
		return err
	}

	for _, s := range d.Samples {
		record := make([]string, 0, len(s.Vector)+1)
		for _, x := range s.Vector {
			record = append(record, strconv.FormatFloat(x, 'f', -1, 64))
		}
		record = append(record, strconv.Itoa(s.Label))

		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile stores the dataset at path.
func (d *Dataset) WriteFile(path string) error {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	return d.Write(file)
}

// Synthetic generates n samples of separable traffic, every fourth sample is an anomaly.
// The same seed always yields the same dataset.
func Synthetic(n int, seed int64) *Dataset {
	r := rand.New(rand.NewSource(seed))
	uniform := func(min, max float64) float64 {
		return min + r.Float64()*(max-min)
	}

	samples := make([]Sample, n)
	for i := range samples {
		s := Sample{Row: i + firstSampleRow, Label: feature.LabelNormal}
		if i%4 == 3 {
			s.Label = feature.LabelAnomaly
			s.Vector = feature.Vector{
				uniform(400000, 900000),
				uniform(150000, 400000),
				uniform(70, 99),
				uniform(20, 95),
			}
		} else {
			s.Vector = feature.Vector{
				uniform(10000, 100000),
				uniform(5000, 60000),
				uniform(1, 40),
				uniform(1, 35),
			}
		}
		samples[i] = s
	}

	return &Dataset{Samples: samples}
}
