package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/gameaccess/internal/domain/inference"
)

// Objectives understood by Booster.
const (
	ObjectiveMulticlass    = "multiclass"
	ObjectiveMulticlassOVA = "multiclassova"
	ObjectiveBinary        = "binary"
)

// Missing value handling recorded on each split.
const (
	missingNone = "None"
	missingZero = "Zero"
	missingNaN  = "NaN"
)

// zeroThreshold matches LightGBM's kZeroThreshold.
const zeroThreshold = 1e-35

// Booster evaluates a gradient boosted tree ensemble exported with LightGBM's
// dump_model().
type Booster struct {
	objective     string
	sigmoid       float64
	numClass      int
	treesPerIter  int
	averageOutput bool
	numFeatures   int
	trees         []*treeNode
}

type dumpedModel struct {
	Name                string       `json:"name"`
	Version             string       `json:"version"`
	NumClass            int          `json:"num_class"`
	NumTreePerIteration int          `json:"num_tree_per_iteration"`
	MaxFeatureIdx       int          `json:"max_feature_idx"`
	Objective           string       `json:"objective"`
	AverageOutput       bool         `json:"average_output"`
	FeatureNames        []string     `json:"feature_names"`
	TreeInfo            []dumpedTree `json:"tree_info"`
}

type dumpedTree struct {
	TreeIndex     int         `json:"tree_index"`
	NumLeaves     int         `json:"num_leaves"`
	Shrinkage     float64     `json:"shrinkage"`
	TreeStructure *dumpedNode `json:"tree_structure"`
}

type dumpedNode struct {
	SplitFeature *int            `json:"split_feature"`
	Threshold    json.RawMessage `json:"threshold"`
	DecisionType string          `json:"decision_type"`
	DefaultLeft  bool            `json:"default_left"`
	MissingType  string          `json:"missing_type"`
	LeftChild    *dumpedNode     `json:"left_child"`
	RightChild   *dumpedNode     `json:"right_child"`
	LeafValue    *float64        `json:"leaf_value"`
}

type treeNode struct {
	leaf  bool
	value float64

	feature     int
	threshold   float64
	categorical bool
	cats        map[int]struct{}
	defaultLeft bool
	missing     string
	left, right *treeNode
}

// ParseBooster decodes and validates a dumped LightGBM model.
func ParseBooster(data []byte) (*Booster, error) {
	var d dumpedModel
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: classifier: %w", ErrInvalidArtifact, err)
	}

	b := &Booster{
		sigmoid:       1,
		numClass:      d.NumClass,
		treesPerIter:  d.NumTreePerIteration,
		averageOutput: d.AverageOutput,
		numFeatures:   d.MaxFeatureIdx + 1,
	}
	if err := b.parseObjective(d.Objective); err != nil {
		return nil, fmt.Errorf("%w: classifier: %w", ErrInvalidArtifact, err)
	}

	if b.treesPerIter <= 0 {
		b.treesPerIter = 1
		if b.objective != ObjectiveBinary {
			b.treesPerIter = b.numClass
		}
	}
	switch b.objective {
	case ObjectiveBinary:
		if b.treesPerIter != 1 {
			return nil, fmt.Errorf("%w: classifier: binary model with %d trees per iteration", ErrInvalidArtifact, b.treesPerIter)
		}
	default:
		if b.numClass < 2 || b.treesPerIter != b.numClass {
			return nil, fmt.Errorf("%w: classifier: num_class %d with %d trees per iteration", ErrInvalidArtifact, b.numClass, b.treesPerIter)
		}
	}
	if len(d.TreeInfo) == 0 || len(d.TreeInfo)%b.treesPerIter != 0 {
		return nil, fmt.Errorf("%w: classifier: %d trees is not a multiple of %d", ErrInvalidArtifact, len(d.TreeInfo), b.treesPerIter)
	}

	b.trees = make([]*treeNode, len(d.TreeInfo))
	for i, t := range d.TreeInfo {
		n, err := compileNode(t.TreeStructure, b.numFeatures)
		if err != nil {
			return nil, fmt.Errorf("%w: classifier: tree %d: %w", ErrInvalidArtifact, t.TreeIndex, err)
		}
		b.trees[i] = n
	}
	return b, nil
}

// parseObjective reads strings such as "multiclass num_class:5" or
// "binary sigmoid:1".
func (b *Booster) parseObjective(s string) error {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return fmt.Errorf("objective is empty")
	}
	b.objective = fields[0]
	switch b.objective {
	case ObjectiveMulticlass, ObjectiveMulticlassOVA, ObjectiveBinary:
	default:
		return fmt.Errorf("unsupported objective %q", b.objective)
	}
	for _, f := range fields[1:] {
		k, v, ok := strings.Cut(f, ":")
		if !ok || k != "sigmoid" {
			continue
		}
		sig, err := strconv.ParseFloat(v, 64)
		if err != nil || sig <= 0 {
			return fmt.Errorf("invalid sigmoid %q", v)
		}
		b.sigmoid = sig
	}
	return nil
}

func compileNode(d *dumpedNode, numFeatures int) (*treeNode, error) {
	if d == nil {
		return nil, fmt.Errorf("missing node")
	}
	if d.LeftChild == nil && d.RightChild == nil {
		if d.LeafValue == nil {
			return nil, fmt.Errorf("leaf without value")
		}
		return &treeNode{leaf: true, value: *d.LeafValue}, nil
	}
	if d.SplitFeature == nil {
		return nil, fmt.Errorf("split without feature")
	}

	n := &treeNode{
		feature:     *d.SplitFeature,
		defaultLeft: d.DefaultLeft,
		missing:     d.MissingType,
	}
	if n.feature < 0 || n.feature >= numFeatures {
		return nil, fmt.Errorf("split feature %d outside [0,%d)", n.feature, numFeatures)
	}
	switch n.missing {
	case "":
		n.missing = missingNone
	case missingNone, missingZero, missingNaN:
	default:
		return nil, fmt.Errorf("unknown missing_type %q", d.MissingType)
	}

	switch d.DecisionType {
	case "<=", "":
		if err := json.Unmarshal(d.Threshold, &n.threshold); err != nil {
			return nil, fmt.Errorf("numerical threshold: %w", err)
		}
	case "==":
		cats, err := parseCategories(d.Threshold)
		if err != nil {
			return nil, err
		}
		n.categorical = true
		n.cats = cats
	default:
		return nil, fmt.Errorf("unsupported decision_type %q", d.DecisionType)
	}

	var err error
	if n.left, err = compileNode(d.LeftChild, numFeatures); err != nil {
		return nil, err
	}
	if n.right, err = compileNode(d.RightChild, numFeatures); err != nil {
		return nil, err
	}
	return n, nil
}

// parseCategories reads a categorical threshold, "1||3||7" or a bare number.
func parseCategories(raw json.RawMessage) (map[int]struct{}, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("categorical threshold: %s", raw)
		}
		s = strconv.Itoa(int(f))
	}
	cats := map[int]struct{}{}
	for _, p := range strings.Split(s, "||") {
		c, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("categorical threshold %q: %w", s, err)
		}
		cats[c] = struct{}{}
	}
	return cats, nil
}

func (n *treeNode) eval(x []float64) float64 {
	for !n.leaf {
		if n.goLeft(x[n.feature]) {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func (n *treeNode) goLeft(v float64) bool {
	if n.categorical {
		if math.IsNaN(v) {
			if n.missing == missingNaN {
				return false
			}
			v = 0
		}
		if v < 0 {
			return false
		}
		_, ok := n.cats[int(v)]
		return ok
	}

	if math.IsNaN(v) && n.missing != missingNaN {
		v = 0
	}
	if (n.missing == missingZero && math.Abs(v) <= zeroThreshold) ||
		(n.missing == missingNaN && math.IsNaN(v)) {
		return n.defaultLeft
	}
	return v <= n.threshold
}

// NumClasses is the length of every probability vector.
func (b *Booster) NumClasses() int {
	if b.objective == ObjectiveBinary {
		return 2
	}
	return b.numClass
}

// NumFeatures is the minimum matrix width the model reads.
func (b *Booster) NumFeatures() int { return b.numFeatures }

// Objective reports the model objective.
func (b *Booster) Objective() string { return b.objective }

func (b *Booster) raw(x []float64) ([]float64, error) {
	if len(x) < b.numFeatures {
		return nil, fmt.Errorf("%w: got %d features, model reads %d", ErrFeatureCount, len(x), b.numFeatures)
	}
	score := make([]float64, b.treesPerIter)
	for i, t := range b.trees {
		score[i%b.treesPerIter] += t.eval(x)
	}
	if b.averageOutput {
		iters := float64(len(b.trees) / b.treesPerIter)
		for k := range score {
			score[k] /= iters
		}
	}
	return score, nil
}

func (b *Booster) proba(x []float64) ([]float64, error) {
	score, err := b.raw(x)
	if err != nil {
		return nil, err
	}
	switch b.objective {
	case ObjectiveBinary:
		p := sigmoid(b.sigmoid * score[0])
		return []float64{1 - p, p}, nil
	case ObjectiveMulticlassOVA:
		for k := range score {
			score[k] = sigmoid(b.sigmoid * score[k])
		}
		return score, nil
	}
	return softmax(score), nil
}

// PredictProba implements inference.Classifier.
func (b *Booster) PredictProba(m inference.Matrix) ([][]float64, error) {
	out := make([][]float64, len(m))
	for i, x := range m {
		p, err := b.proba(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// Predict implements inference.Classifier. The class is the arg max of the
// probability vector; ties go to the lowest index.
func (b *Booster) Predict(m inference.Matrix) ([]int, error) {
	probs, err := b.PredictProba(m)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(probs))
	for i, p := range probs {
		best := 0
		for k := 1; k < len(p); k++ {
			if p[k] > p[best] {
				best = k
			}
		}
		out[i] = best
	}
	return out, nil
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func softmax(x []float64) []float64 {
	hi := math.Inf(-1)
	for _, v := range x {
		hi = math.Max(hi, v)
	}
	sum := 0.0
	out := make([]float64, len(x))
	for k, v := range x {
		out[k] = math.Exp(v - hi)
		sum += out[k]
	}
	for k := range out {
		out[k] /= sum
	}
	return out
}
