package artifacts_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/gameaccess/internal/adapters/artifacts"
	"github.com/okian/gameaccess/internal/adapters/artifacts/artifactstest"
	"github.com/okian/gameaccess/internal/domain/inference"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	sppbColumn = 8
	skiColumn  = 12 + 9
)

func fixtureRow(sppbScaled float64, ski bool) []float64 {
	x := make([]float64, 32)
	x[sppbColumn] = sppbScaled
	if ski {
		x[skiColumn] = 1
	}
	return x
}

func TestBoosterMulticlass(t *testing.T) {
	Convey("Given the fitted multiclass booster", t, func() {
		b, err := artifacts.ParseBooster(artifactstest.File(artifacts.DefaultClassifierFile))
		So(err, ShouldBeNil)
		So(b.NumClasses(), ShouldEqual, 5)
		So(b.NumFeatures(), ShouldEqual, 32)
		So(b.Objective(), ShouldEqual, artifacts.ObjectiveMulticlass)

		m := inference.Matrix{
			fixtureRow(-2, false),
			fixtureRow(2, false),
			fixtureRow(-2, true),
			fixtureRow(0, false),
		}

		Convey("When probabilities are predicted", func() {
			probs, err := b.PredictProba(m)

			Convey("Then each row is a softmax over the class scores", func() {
				So(err, ShouldBeNil)
				So(probs, ShouldHaveLength, 4)
				for _, p := range probs {
					So(p, ShouldHaveLength, 5)
					sum := 0.0
					for _, v := range p {
						sum += v
					}
					So(sum, ShouldAlmostEqual, 1, 1e-9)
				}
				e := math.E
				So(probs[0][4], ShouldAlmostEqual, e*e/(e*e+4/e), 1e-9)
				So(probs[1][0], ShouldAlmostEqual, e*e/(e*e+1+3/e), 1e-9)
			})
		})

		Convey("When classes are predicted", func() {
			classes, err := b.Predict(m)

			Convey("Then low SPPB, high SPPB and Ski map to their classes", func() {
				So(err, ShouldBeNil)
				// Scaled SPPB of exactly 0 falls on the left of the split.
				So(classes, ShouldResemble, []int{4, 0, 3, 4})
			})
		})

		Convey("When a row is narrower than the model", func() {
			_, err := b.Predict(inference.Matrix{make([]float64, 10)})

			Convey("Then the prediction is rejected", func() {
				So(errors.Is(err, artifacts.ErrFeatureCount), ShouldBeTrue)
			})
		})
	})
}

const binaryModel = `{
  "num_class": 1,
  "num_tree_per_iteration": 1,
  "max_feature_idx": 1,
  "objective": "binary sigmoid:1",
  "tree_info": [
    {"tree_index": 0, "num_leaves": 2, "shrinkage": 1, "tree_structure": {
      "split_index": 0, "split_feature": 0, "threshold": 1.5, "decision_type": "<=",
      "default_left": false, "missing_type": "NaN",
      "left_child": {"leaf_index": 0, "leaf_value": 2.0},
      "right_child": {"leaf_index": 1, "leaf_value": -2.0}
    }},
    {"tree_index": 1, "num_leaves": 2, "shrinkage": 1, "tree_structure": {
      "split_index": 0, "split_feature": 1, "threshold": "1||3", "decision_type": "==",
      "default_left": false, "missing_type": "None",
      "left_child": {"leaf_index": 0, "leaf_value": 1.0},
      "right_child": {"leaf_index": 1, "leaf_value": 0.0}
    }}
  ]
}`

func TestBoosterBinary(t *testing.T) {
	Convey("Given a binary booster with a categorical split", t, func() {
		b, err := artifacts.ParseBooster([]byte(binaryModel))
		So(err, ShouldBeNil)
		So(b.NumClasses(), ShouldEqual, 2)

		sig := func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

		Convey("When rows reach each side of the splits", func() {
			probs, err := b.PredictProba(inference.Matrix{
				{1, 3},          // left, in category set
				{1, 2},          // left, not in set
				{math.NaN(), 1}, // NaN goes right
				{5, -1},         // right, negative category
			})

			Convey("Then the sigmoid of the summed leaves is the positive class", func() {
				So(err, ShouldBeNil)
				So(probs[0][1], ShouldAlmostEqual, sig(3), 1e-9)
				So(probs[1][1], ShouldAlmostEqual, sig(2), 1e-9)
				So(probs[2][1], ShouldAlmostEqual, sig(-1), 1e-9)
				So(probs[3][1], ShouldAlmostEqual, sig(-2), 1e-9)
				So(probs[0][0]+probs[0][1], ShouldAlmostEqual, 1, 1e-9)
			})

			Convey("Then the class follows the larger probability", func() {
				classes, err := b.Predict(inference.Matrix{{1, 3}, {5, -1}})
				So(err, ShouldBeNil)
				So(classes, ShouldResemble, []int{1, 0})
			})
		})
	})
}

func TestBoosterMissingZero(t *testing.T) {
	Convey("Given a split that routes zero as missing", t, func() {
		b, err := artifacts.ParseBooster([]byte(`{
		  "num_class": 3, "num_tree_per_iteration": 3, "max_feature_idx": 0,
		  "objective": "multiclassova num_class:3 sigmoid:2",
		  "tree_info": [
		    {"tree_index": 0, "tree_structure": {"split_feature": 0, "threshold": -0.5, "decision_type": "<=",
		      "default_left": true, "missing_type": "Zero",
		      "left_child": {"leaf_value": 1.0}, "right_child": {"leaf_value": -1.0}}},
		    {"tree_index": 1, "tree_structure": {"leaf_value": 0.0}},
		    {"tree_index": 2, "tree_structure": {"leaf_value": -0.5}}
		  ]
		}`))
		So(err, ShouldBeNil)
		So(b.Objective(), ShouldEqual, artifacts.ObjectiveMulticlassOVA)

		Convey("When the feature is zero", func() {
			probs, err := b.PredictProba(inference.Matrix{{0}, {3}})

			Convey("Then it follows the default direction", func() {
				So(err, ShouldBeNil)
				So(probs[0][0], ShouldAlmostEqual, 1/(1+math.Exp(-2)), 1e-9)
				So(probs[1][0], ShouldAlmostEqual, 1/(1+math.Exp(2)), 1e-9)
				So(probs[0][1], ShouldAlmostEqual, 0.5, 1e-9)
			})
		})
	})
}

func TestBoosterInvalid(t *testing.T) {
	Convey("Given malformed models", t, func() {
		cases := []struct{ name, model string }{
			{"syntax", `{`},
			{"objective", `{"num_class":1,"objective":"lambdarank","max_feature_idx":0,"tree_info":[{"tree_structure":{"leaf_value":1}}]}`},
			{"no trees", `{"num_class":1,"objective":"binary","max_feature_idx":0,"tree_info":[]}`},
			{"tree count", `{"num_class":3,"num_tree_per_iteration":3,"objective":"multiclass","max_feature_idx":0,
				"tree_info":[{"tree_structure":{"leaf_value":1}}]}`},
			{"feature", `{"num_class":1,"objective":"binary","max_feature_idx":0,"tree_info":[{"tree_structure":{
				"split_feature":4,"threshold":1,"decision_type":"<=","left_child":{"leaf_value":1},"right_child":{"leaf_value":0}}}]}`},
			{"decision", `{"num_class":1,"objective":"binary","max_feature_idx":0,"tree_info":[{"tree_structure":{
				"split_feature":0,"threshold":1,"decision_type":">","left_child":{"leaf_value":1},"right_child":{"leaf_value":0}}}]}`},
			{"leaf", `{"num_class":1,"objective":"binary","max_feature_idx":0,"tree_info":[{"tree_structure":{}}]}`},
			{"sigmoid", `{"num_class":1,"objective":"binary sigmoid:-1","max_feature_idx":0,"tree_info":[{"tree_structure":{"leaf_value":1}}]}`},
		}

		for _, c := range cases {
			Convey("Then a bad "+c.name+" is reported as an invalid artifact", func() {
				_, err := artifacts.ParseBooster([]byte(c.model))
				So(errors.Is(err, artifacts.ErrInvalidArtifact), ShouldBeTrue)
			})
		}
	})
}
