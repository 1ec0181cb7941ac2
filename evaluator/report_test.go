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
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/netanomaly/netanomaly/pkg/feature"
)

func TestReport_Print(t *testing.T) {
	one := 1
	tests := []struct {
		name   string
		report *Report
		expect func(t *testing.T, output string)
	}{
		{
			name:   "all predictions matched",
			report: &Report{Total: 4, Correct: 4},
			expect: func(t *testing.T, output string) {
				assert := assert.New(t)
				assert.Equal("Total rows tested: 4\nCorrect: 4\nAccuracy: 100.00%\n\nAll predictions matched the dataset labels.\n", output)
			},
		},
		{
			name: "mismatch and error",
			report: &Report{
				Total:   3,
				Correct: 1,
				Mismatches: []Mismatch{
					{Row: 2, TrueLabel: 0, Predicted: &one, Inputs: feature.Vector{50000, 20000.5, 10, 12}},
					{Row: 4, TrueLabel: 1, Detail: "HTTP 503: Model not loaded. Add model or CSV and restart."},
				},
			},
			expect: func(t *testing.T, output string) {
				assert := assert.New(t)
				assert.Equal("Total rows tested: 3\nCorrect: 1\nAccuracy: 33.33%\n\n"+
					"Mismatches/errors (first 20):\n"+
					"  Row 2: true=0, pred=1, payload/err=[50000, 20000.5, 10, 12]\n"+
					"  Row 4: true=1, pred=None, payload/err=HTTP 503: Model not loaded. Add model or CSV and restart.\n", output)
			},
		},
		{
			name: "more than 20 mismatches",
			report: func() *Report {
				r := &Report{Total: 25}
				for i := 0; i < 25; i++ {
					r.Mismatches = append(r.Mismatches, Mismatch{Row: i + 2, Detail: "timeout"})
				}
				return r
			}(),
			expect: func(t *testing.T, output string) {
				assert := assert.New(t)
				assert.Contains(output, "Accuracy: 0.00%\n")
				assert.Equal(20, strings.Count(output, "  Row "))
				assert.Contains(output, "  Row 21: true=0, pred=None, payload/err=timeout\n")
				assert.NotContains(output, "  Row 22:")
				assert.True(strings.HasSuffix(output, "  ... and 5 more\n"))
			},
		},
		{
			name:   "empty dataset",
			report: &Report{},
			expect: func(t *testing.T, output string) {
				assert := assert.New(t)
				assert.Contains(output, "Accuracy: 0.00%\n")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.NoError(t, tc.report.Print(&buf))
			tc.expect(t, buf.String())
		})
	}
}

func TestReport_WriteCSV(t *testing.T) {
	assert := assert.New(t)
	zero := 0
	report := &Report{
		Total: 2,
		Mismatches: []Mismatch{
			{Row: 2, TrueLabel: 1, Predicted: &zero, Inputs: feature.Vector{500000, 200000, 80, 30}},
			{Row: 3, TrueLabel: 0, Detail: "timeout", Inputs: feature.Vector{1, 2, 3, 4}},
		},
	}

	var buf bytes.Buffer
	assert.NoError(report.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(lines, 3)
	assert.Equal("row,true,pred,error,inbound_rate,outbound_rate,inbound_util,outbound_util", lines[0])
	assert.Equal("2,1,0,,500000,200000,80,30", lines[1])
	assert.Equal("3,0,,timeout,1,2,3,4", lines[2])
}

func TestReport_WriteCSVFeatureColumns(t *testing.T) {
	assert := assert.New(t)
	report := &Report{
		Total:      1,
		Mismatches: []Mismatch{{Row: 5, TrueLabel: 1, Detail: "HTTP 400: Invalid input", Inputs: feature.Vector{0.5, 1e6}}},
	}

	var buf bytes.Buffer
	assert.NoError(report.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(lines, 2)

	header := strings.Split(lines[0], ",")
	assert.Equal(feature.Keys(), header[len(header)-len(feature.Features):])
	assert.Equal("5,1,,HTTP 400: Invalid input,0.5,1000000,0,0", lines[1])
}

func TestReport_LatencySummary(t *testing.T) {
	tests := []struct {
		name      string
		latencies []time.Duration
		expect    func(t *testing.T, summary *LatencySummary, err error)
	}{
		{
			name:      "summarize latencies",
			latencies: []time.Duration{4 * time.Millisecond, time.Millisecond, 3 * time.Millisecond, 2 * time.Millisecond},
			expect: func(t *testing.T, summary *LatencySummary, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(&LatencySummary{
					Mean: 2500 * time.Microsecond,
					P50:  2 * time.Millisecond,
					P99:  3500 * time.Microsecond,
					Max:  4 * time.Millisecond,
				}, summary)
			},
		},
		{
			name: "no latency",
			expect: func(t *testing.T, summary *LatencySummary, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.Nil(summary)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &Report{Latencies: tc.latencies}
			summary, err := r.LatencySummary()
			tc.expect(t, summary, err)
		})
	}
}
