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

//go:generate mockgen -destination mocks/models_mock.go -source random_forest.go -package mocks

package models

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"runtime"

	"github.com/bits-and-blooms/bitset"
	"github.com/mitchellh/mapstructure"
	"github.com/sjwhitworth/golearn/base"
	"golang.org/x/sync/errgroup"

	"github.com/netanomaly/netanomaly/internal/logger"
)

const (
	// DefaultTrees is the default number of trees in the forest.
	DefaultTrees = 100

	// DefaultMinSamplesSplit is the default minimum number of samples required to split a node.
	DefaultMinSamplesSplit = 2

	// DefaultSeed is the default seed of bootstrap and feature sampling.
	DefaultSeed = 42

	// decisionThreshold is the averaged class 1 probability a prediction has to exceed.
	decisionThreshold = 0.5
)

var (
	// ErrNotFitted is returned when predicting with a model that has not been fitted.
	ErrNotFitted = errors.New("no fitted model")
)

// Classifier is a fitted binary classifier. Implementations must be safe for concurrent use.
type Classifier interface {
	// Predict returns a grid holding one predicted class per row of X.
	Predict(X base.FixedDataGrid) (base.FixedDataGrid, error)
}

// Option is a functional option for configuring the random forest.
type Option func(rf *RandomForest)

// WithTrees sets the number of trees.
func WithTrees(n int) Option {
	return func(rf *RandomForest) {
		rf.NumTrees = n
	}
}

// WithMaxFeatures sets the number of features sampled at every split,
// zero means the square root of the feature count.
func WithMaxFeatures(n int) Option {
	return func(rf *RandomForest) {
		rf.MaxFeatures = n
	}
}

// WithMaxDepth sets the maximum depth of every tree, zero means unlimited.
func WithMaxDepth(n int) Option {
	return func(rf *RandomForest) {
		rf.MaxDepth = n
	}
}

// WithMinSamplesSplit sets the minimum number of samples required to split a node.
func WithMinSamplesSplit(n int) Option {
	return func(rf *RandomForest) {
		rf.MinSamplesSplit = n
	}
}

// WithSeed sets the seed of bootstrap and feature sampling.
func WithSeed(seed int64) Option {
	return func(rf *RandomForest) {
		rf.Seed = seed
	}
}

// Node is a node of a decision tree. Leaf nodes carry the fraction of
// class 1 samples that reached them.
type Node struct {
	Leaf        bool
	Feature     int
	Threshold   float64
	Left        int
	Right       int
	Probability float64
}

// Tree is a decision tree stored as a flat node slice, node 0 is the root.
type Tree struct {
	Nodes []Node
}

// probability walks the tree down to a leaf.
func (t *Tree) probability(v []float64) float64 {
	n := t.Nodes[0]
	for !n.Leaf {
		if v[n.Feature] <= n.Threshold {
			n = t.Nodes[n.Left]
		} else {
			n = t.Nodes[n.Right]
		}
	}

	return n.Probability
}

// RandomForest is a bagged ensemble of gini decision trees for binary classification.
type RandomForest struct {
	Fitted          bool     `mapstructure:"fitted"`
	NumTrees        int      `mapstructure:"trees"`
	MaxFeatures     int      `mapstructure:"max_features"`
	MaxDepth        int      `mapstructure:"max_depth"`
	MinSamplesSplit int      `mapstructure:"min_samples_split"`
	Seed            int64    `mapstructure:"seed"`
	Features        []string `mapstructure:"features"`
	ClassName       string   `mapstructure:"class"`
	OOBScore        float64  `mapstructure:"oob_score"`
	Trees           []*Tree  `mapstructure:"-"`
}

// NewRandomForest returns an unfitted random forest.
func NewRandomForest(options ...Option) *RandomForest {
	rf := &RandomForest{
		NumTrees:        DefaultTrees,
		MinSamplesSplit: DefaultMinSamplesSplit,
		Seed:            DefaultSeed,
	}

	for _, opt := range options {
		opt(rf)
	}

	return rf
}

// Fit trains the forest on the float attributes of inst against its single class attribute.
// Class values must be 0 or 1.
func (rf *RandomForest) Fit(inst base.FixedDataGrid) error {
	if rf.NumTrees <= 0 {
		return fmt.Errorf("invalid number of trees %d", rf.NumTrees)
	}

	_, rows := inst.Size()
	if rows == 0 {
		return errors.New("no rows to fit")
	}

	classAttrs := inst.AllClassAttributes()
	if len(classAttrs) != 1 {
		return errors.New("only 1 class variable is permitted")
	}
	classAttrSpecs := base.ResolveAttributes(inst, classAttrs)

	attrs := make([]base.Attribute, 0)
	for _, a := range base.NonClassAttributes(inst) {
		if _, ok := a.(*base.FloatAttribute); ok {
			attrs = append(attrs, a)
		}
	}
	if len(attrs) == 0 {
		return errors.New("no float attribute to fit")
	}
	attrSpecs := base.ResolveAttributes(inst, attrs)

	x := make([][]float64, rows)
	y := make([]int, rows)
	for i := 0; i < rows; i++ {
		x[i] = make([]float64, len(attrSpecs))
		for j, spec := range attrSpecs {
			x[i][j] = base.UnpackBytesToFloat(inst.Get(spec, i))
		}

		switch cls := base.UnpackBytesToFloat(inst.Get(classAttrSpecs[0], i)); cls {
		case 0:
			y[i] = 0
		case 1:
			y[i] = 1
		default:
			return fmt.Errorf("row %d has class %v, want 0 or 1", i, cls)
		}
	}

	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(len(attrs))))
	}
	if maxFeatures < 1 {
		maxFeatures = 1
	}
	if maxFeatures > len(attrs) {
		maxFeatures = len(attrs)
	}

	minSamplesSplit := rf.MinSamplesSplit
	if minSamplesSplit < 2 {
		minSamplesSplit = 2
	}

	// Draw every tree seed up front so the result does not depend on scheduling.
	r := rand.New(rand.NewSource(rf.Seed))
	seeds := make([]int64, rf.NumTrees)
	for i := range seeds {
		seeds[i] = r.Int63()
	}

	trees := make([]*Tree, rf.NumTrees)
	inBags := make([]*bitset.BitSet, rf.NumTrees)
	eg := errgroup.Group{}
	eg.SetLimit(runtime.NumCPU())
	for i := range trees {
		i := i
		eg.Go(func() error {
			b := &treeBuilder{
				x:               x,
				y:               y,
				r:               rand.New(rand.NewSource(seeds[i])),
				maxFeatures:     maxFeatures,
				maxDepth:        rf.MaxDepth,
				minSamplesSplit: minSamplesSplit,
			}
			trees[i], inBags[i] = b.build()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	rf.Trees = trees
	rf.OOBScore = oobScore(trees, inBags, x, y)
	rf.Features = make([]string, len(attrs))
	for i, a := range attrs {
		rf.Features[i] = a.GetName()
	}
	rf.ClassName = classAttrs[0].GetName()
	rf.Fitted = true
	logger.Debugf("random forest fitted with %d trees on %d rows, oob score %.4f", len(trees), rows, rf.OOBScore)
	return nil
}

// Predict predicts the class of every row of X. X must hold every feature the forest was fitted on.
func (rf *RandomForest) Predict(X base.FixedDataGrid) (base.FixedDataGrid, error) {
	if !rf.Fitted {
		logger.Info("no fitted model")
		return nil, ErrNotFitted
	}

	attrSpecs, err := rf.resolveFeatures(X)
	if err != nil {
		return nil, err
	}

	ret := base.GeneratePredictionVector(X)
	classAttrs := ret.AllClassAttributes()
	if len(classAttrs) == 0 {
		return nil, errors.New("grid has no class attribute")
	}
	clsSpec, err := ret.GetAttribute(classAttrs[0])
	if err != nil {
		logger.Infof("RandomForest error happens, error is %v", err)
		return nil, err
	}

	err = X.MapOverRows(attrSpecs, func(row [][]byte, i int) (bool, error) {
		v := make([]float64, len(row))
		for j, r := range row {
			v[j] = base.UnpackBytesToFloat(r)
		}

		ret.Set(clsSpec, i, base.PackFloatToBytes(float64(rf.predict(v))))
		return true, nil
	})
	if err != nil {
		logger.Infof("RandomForest error happens, error is %v", err)
		return nil, err
	}

	return ret, nil
}

// PredictVector predicts the class of a single feature vector in fitted feature order.
func (rf *RandomForest) PredictVector(v []float64) (int, error) {
	if !rf.Fitted {
		return 0, ErrNotFitted
	}

	if len(v) != len(rf.Features) {
		return 0, fmt.Errorf("got %d features, want %d", len(v), len(rf.Features))
	}

	return rf.predict(v), nil
}

// Probability returns the averaged class 1 probability of a feature vector.
func (rf *RandomForest) Probability(v []float64) (float64, error) {
	if !rf.Fitted {
		return 0, ErrNotFitted
	}

	if len(v) != len(rf.Features) {
		return 0, fmt.Errorf("got %d features, want %d", len(v), len(rf.Features))
	}

	return rf.probability(v), nil
}

func (rf *RandomForest) predict(v []float64) int {
	if rf.probability(v) > decisionThreshold {
		return 1
	}

	return 0
}

func (rf *RandomForest) probability(v []float64) float64 {
	var sum float64
	for _, t := range rf.Trees {
		sum += t.probability(v)
	}

	return sum / float64(len(rf.Trees))
}

// resolveFeatures finds the fitted features in X by attribute name.
func (rf *RandomForest) resolveFeatures(X base.FixedDataGrid) ([]base.AttributeSpec, error) {
	byName := make(map[string]base.Attribute)
	for _, a := range X.AllAttributes() {
		byName[a.GetName()] = a
	}

	specs := make([]base.AttributeSpec, len(rf.Features))
	for i, name := range rf.Features {
		a, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("missing attribute %q", name)
		}

		spec, err := X.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}

	return specs, nil
}

// oobScore is the accuracy of the forest on every row, voted only by the trees
// that did not draw the row. Rows drawn by every tree are skipped.
func oobScore(trees []*Tree, inBags []*bitset.BitSet, x [][]float64, y []int) float64 {
	var evaluated, correct int
	for i := range x {
		var (
			votes int
			sum   float64
		)
		for t, tree := range trees {
			if inBags[t].Test(uint(i)) {
				continue
			}

			sum += tree.probability(x[i])
			votes++
		}

		if votes == 0 {
			continue
		}

		prediction := 0
		if sum/float64(votes) > 0.5 {
			prediction = 1
		}

		evaluated++
		if prediction == y[i] {
			correct++
		}
	}

	if evaluated == 0 {
		return 0
	}

	return float64(correct) / float64(evaluated)
}

// Save writes the fitted forest as an opaque binary artifact.
func (rf *RandomForest) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(rf)
}

// Load reads a forest written by Save.
func Load(r io.Reader) (*RandomForest, error) {
	rf := &RandomForest{}
	if err := gob.NewDecoder(r).Decode(rf); err != nil {
		return nil, err
	}

	return rf, nil
}

// MarshalJSON encodes the forest summary, trees are not included.
func (rf *RandomForest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"fitted":            rf.Fitted,
		"trees":             rf.NumTrees,
		"max_features":      rf.MaxFeatures,
		"max_depth":         rf.MaxDepth,
		"min_samples_split": rf.MinSamplesSplit,
		"seed":              rf.Seed,
		"features":          rf.Features,
		"class":             rf.ClassName,
		"oob_score":         rf.OOBScore,
	})
}

// UnmarshalJSON decodes a forest summary produced by MarshalJSON.
func (rf *RandomForest) UnmarshalJSON(data []byte) error {
	var d map[string]interface{}
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           rf,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(d)
}
