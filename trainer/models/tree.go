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

package models

import (
	"math"
	"math/rand"
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// treeBuilder grows one CART tree on a bootstrap sample of x.
type treeBuilder struct {
	x               [][]float64
	y               []int
	r               *rand.Rand
	maxFeatures     int
	maxDepth        int
	minSamplesSplit int
	nodes           []Node
}

// build grows the tree and returns the rows drawn into its bootstrap sample.
func (b *treeBuilder) build() (*Tree, *bitset.BitSet) {
	n := len(b.y)
	inBag := bitset.New(uint(n))
	sample := make([]int, n)
	for i := range sample {
		sample[i] = b.r.Intn(n)
		inBag.Set(uint(sample[i]))
	}

	b.grow(sample, 0)
	return &Tree{Nodes: b.nodes}, inBag
}

// grow appends the node for samples idx and its subtree, returning the node index.
func (b *treeBuilder) grow(idx []int, depth int) int {
	positives := 0
	for _, i := range idx {
		positives += b.y[i]
	}

	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{
		Leaf:        true,
		Probability: float64(positives) / float64(len(idx)),
	})

	if positives == 0 || positives == len(idx) || len(idx) < b.minSamplesSplit {
		return id
	}

	if b.maxDepth > 0 && depth >= b.maxDepth {
		return id
	}

	feature, threshold, ok := b.split(idx)
	if !ok {
		return id
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	if len(left) == 0 || len(right) == 0 {
		return id
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[id] = Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      l,
		Right:     r,
	}

	return id
}

// split finds the split with the lowest weighted gini impurity among maxFeatures
// randomly drawn features. When none of them can separate the samples the
// remaining features are tried as well.
func (b *treeBuilder) split(idx []int) (int, float64, bool) {
	var (
		found         bool
		bestFeature   int
		bestThreshold float64
		bestImpurity  float64
	)

	sorted := make([]int, len(idx))
	for k, feature := range b.r.Perm(len(b.x[0])) {
		if k >= b.maxFeatures && found {
			break
		}

		copy(sorted, idx)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.x[sorted[i]][feature] < b.x[sorted[j]][feature]
		})

		total := len(sorted)
		totalPositives := 0
		for _, i := range sorted {
			totalPositives += b.y[i]
		}

		leftPositives := 0
		for s := 0; s < total-1; s++ {
			leftPositives += b.y[sorted[s]]

			current, next := b.x[sorted[s]][feature], b.x[sorted[s+1]][feature]
			if current == next || math.IsNaN(current) || math.IsNaN(next) {
				continue
			}

			leftCount := s + 1
			rightCount := total - leftCount
			impurity := float64(leftCount)*gini(leftPositives, leftCount) +
				float64(rightCount)*gini(totalPositives-leftPositives, rightCount)

			if !found || impurity < bestImpurity {
				// Halve before adding, current+(next-current)/2 is NaN for -Inf.
				threshold := current/2 + next/2
				if math.IsNaN(threshold) || threshold >= next {
					threshold = current
				}

				found = true
				bestFeature = feature
				bestThreshold = threshold
				bestImpurity = impurity
			}
		}
	}

	return bestFeature, bestThreshold, found
}

// gini is the gini impurity of a binary node.
func gini(positives, count int) float64 {
	p := float64(positives) / float64(count)
	return 2 * p * (1 - p)
}
