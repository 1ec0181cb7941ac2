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
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"

	"github.com/netanomaly/netanomaly/pkg/feature"
)

// maxPrintedMismatches is the number of mismatches printed by Report.Print.
const maxPrintedMismatches = 20

// Mismatch is a sample whose prediction differs from its label or could not be obtained.
type Mismatch struct {
	// Row is the csv line number of the sample.
	Row int

	// TrueLabel is the label of the sample.
	TrueLabel int

	// Predicted is nil when the request failed.
	Predicted *int

	// Detail is the error of a failed request.
	Detail string

	// Inputs of the request.
	Inputs feature.Vector
}

// Report summarizes an evaluation run.
type Report struct {
	Total      int
	Correct    int
	Mismatches []Mismatch

	// Latencies of the requests in dataset order.
	Latencies []time.Duration
}

// LatencySummary is the distribution of the request latencies.
type LatencySummary struct {
	Mean time.Duration
	P50  time.Duration
	P99  time.Duration
	Max  time.Duration
}

// LatencySummary returns the distribution of the request latencies.
func (r *Report) LatencySummary() (*LatencySummary, error) {
	data := make(stats.Float64Data, len(r.Latencies))
	for i, d := range r.Latencies {
		data[i] = float64(d)
	}

	mean, err := data.Mean()
	if err != nil {
		return nil, err
	}

	p50, err := data.Percentile(50)
	if err != nil {
		return nil, err
	}

	p99, err := data.Percentile(99)
	if err != nil {
		return nil, err
	}

	max, err := data.Max()
	if err != nil {
		return nil, err
	}

	return &LatencySummary{
		Mean: time.Duration(mean),
		P50:  time.Duration(p50),
		P99:  time.Duration(p99),
		Max:  time.Duration(max),
	}, nil
}

// Accuracy returns the percent of correct predictions.
func (r *Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}

	return 100 * float64(r.Correct) / float64(r.Total)
}

// Print writes the summary and the first mismatches to w.
func (r *Report) Print(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Total rows tested: %d\n", r.Total)
	fmt.Fprintf(&b, "Correct: %d\n", r.Correct)
	fmt.Fprintf(&b, "Accuracy: %.2f%%\n", r.Accuracy())

	if len(r.Mismatches) == 0 {
		b.WriteString("\nAll predictions matched the dataset labels.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("\nMismatches/errors (first 20):\n")
	for i, m := range r.Mismatches {
		if i == maxPrintedMismatches {
			fmt.Fprintf(&b, "  ... and %d more\n", len(r.Mismatches)-maxPrintedMismatches)
			break
		}

		fmt.Fprintf(&b, "  Row %d: true=%d, pred=%s, payload/err=%s\n", m.Row, m.TrueLabel, m.predicted(), m.payloadOrErr())
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// mismatchColumns precede the feature keys in every csv line of Report.WriteCSV.
var mismatchColumns = []string{"row", "true", "pred", "error"}

// WriteCSV writes every mismatch to w as csv, one column per feature key in table order.
func (r *Report) WriteCSV(w io.Writer) error {
	writer := gocsv.DefaultCSVWriter(w)
	if err := writer.Write(append(append([]string{}, mismatchColumns...), feature.Keys()...)); err != nil {
		return err
	}

	for _, m := range r.Mismatches {
		record := make([]string, 0, len(mismatchColumns)+len(feature.Features))
		record = append(record, strconv.Itoa(m.Row), strconv.Itoa(m.TrueLabel), "", m.Detail)
		if m.Predicted != nil {
			record[2] = strconv.Itoa(*m.Predicted)
		}

		for i := range feature.Features {
			var x float64
			if i < len(m.Inputs) {
				x = m.Inputs[i]
			}
			record = append(record, strconv.FormatFloat(x, 'f', -1, 64))
		}

		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (m Mismatch) predicted() string {
	if m.Predicted == nil {
		return "None"
	}

	return strconv.Itoa(*m.Predicted)
}

func (m Mismatch) payloadOrErr() string {
	if m.Predicted == nil {
		return m.Detail
	}

	values := make([]string, len(m.Inputs))
	for i, x := range m.Inputs {
		values[i] = strconv.FormatFloat(x, 'f', -1, 64)
	}

	return "[" + strings.Join(values, ", ") + "]"
}
