package inference_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/gameaccess/internal/domain/catalog"
	"github.com/okian/gameaccess/internal/domain/features"
	"github.com/okian/gameaccess/internal/domain/inference"
	"github.com/okian/gameaccess/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

// gameIndexTransformer encodes each row as its catalog position so the fake
// classifier can tell rows apart.
type gameIndexTransformer struct {
	cat      catalog.Catalog
	dropLast bool
	err      error
}

func (t gameIndexTransformer) Transform(rows []features.Row) (inference.Matrix, error) {
	if t.err != nil {
		return nil, t.err
	}
	m := make(inference.Matrix, 0, len(rows))
	for _, r := range rows {
		m = append(m, []float64{float64(t.cat.Position(r.Game))})
	}
	if t.dropLast {
		m = m[:len(m)-1]
	}
	return m, nil
}

// lookupClassifier predicts classes[position] for each row.
type lookupClassifier struct {
	classes []int
	probs   func(class int) []float64
}

func (c lookupClassifier) Predict(m inference.Matrix) ([]int, error) {
	out := make([]int, len(m))
	for i, row := range m {
		out[i] = c.classes[int(row[0])]
	}
	return out, nil
}

func (c lookupClassifier) PredictProba(m inference.Matrix) ([][]float64, error) {
	classes, _ := c.Predict(m)
	out := make([][]float64, len(m))
	for i, k := range classes {
		out[i] = c.probs(k)
	}
	return out, nil
}

type sliceDecoder []string

func (d sliceDecoder) InverseTransform(classes []int) ([]string, error) {
	out := make([]string, len(classes))
	for i, k := range classes {
		if k < 0 || k >= len(d) {
			return nil, errors.New("unseen class")
		}
		out[i] = d[k]
	}
	return out, nil
}

func peaked(class int) []float64 {
	p := []float64{0.05, 0.05, 0.05, 0.05, 0.05}
	p[class] = 0.8
	return p
}

func TestPredict(t *testing.T) {
	defer goleak.VerifyNone(t)

	Convey("Given rows expanded from a profile", t, func() {
		ctx := context.Background()
		cat := catalog.Default()
		rows, err := features.Expand(profile.Minimum("Ada", profile.Male, profile.No, profile.Yes), cat)
		So(err, ShouldBeNil)

		classes := make([]int, cat.Len())
		for i := range classes {
			classes[i] = i % 5
		}
		decoder := sliceDecoder{"001", "011", "101", "110", "111"}
		clf := lookupClassifier{classes: classes, probs: peaked}

		Convey("When the pipeline accepts the batch", func() {
			preds, err := inference.Predict(ctx, rows, gameIndexTransformer{cat: cat}, clf, decoder)

			Convey("Then predictions should stay aligned with catalog order", func() {
				So(err, ShouldBeNil)
				So(len(preds), ShouldEqual, len(rows))

				got := make([]string, len(preds))
				want := make([]string, len(preds))
				for i, p := range preds {
					got[i] = p.Label
					want[i] = decoder[i%5]
				}
				So(cmp.Diff(want, got), ShouldBeEmpty)
			})

			Convey("And confidence should be the row maximum", func() {
				for _, p := range preds {
					So(p.Confidence, ShouldEqual, 0.8)
					So(p.Confidence, ShouldBeBetweenOrEqual, 0, 1)
					So(p.Probabilities[p.Class], ShouldEqual, p.Confidence)
				}
			})
		})

		Convey("When the transformer rejects the batch", func() {
			_, err := inference.Predict(ctx, rows, gameIndexTransformer{cat: cat, err: errors.New("bad shape")}, clf, decoder)

			Convey("Then an inference error should be returned", func() {
				So(errors.Is(err, inference.ErrInference), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "transform")
			})
		})

		Convey("When the transformer drops a row", func() {
			_, err := inference.Predict(ctx, rows, gameIndexTransformer{cat: cat, dropLast: true}, clf, decoder)

			Convey("Then misalignment should be reported", func() {
				So(errors.Is(err, inference.ErrInference), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "19 rows for a batch of 20")
			})
		})

		Convey("When the decoder sees an unknown class", func() {
			_, err := inference.Predict(ctx, rows, gameIndexTransformer{cat: cat}, clf, sliceDecoder{"001"})

			Convey("Then decoding should fail the batch", func() {
				So(errors.Is(err, inference.ErrInference), ShouldBeTrue)
			})
		})

		Convey("When probabilities fall outside [0,1]", func() {
			bad := lookupClassifier{classes: classes, probs: func(int) []float64 { return []float64{1.2, -0.2} }}
			_, err := inference.Predict(ctx, rows, gameIndexTransformer{cat: cat}, bad, decoder)

			Convey("Then the batch should be rejected", func() {
				So(errors.Is(err, inference.ErrInference), ShouldBeTrue)
				So(errors.Is(err, inference.ErrProbabilityRange), ShouldBeTrue)
			})
		})

		Convey("When the batch is empty", func() {
			_, err := inference.Predict(ctx, nil, gameIndexTransformer{cat: cat}, clf, decoder)
			So(errors.Is(err, inference.ErrInference), ShouldBeTrue)
		})

		Convey("When an artifact is missing", func() {
			_, err := inference.Predict(ctx, rows, nil, clf, decoder)
			So(errors.Is(err, inference.ErrInference), ShouldBeTrue)
		})
	})
}

func TestConfidence(t *testing.T) {
	Convey("Given probability vectors", t, func() {
		Convey("Then the maximum entry should be returned", func() {
			c, err := inference.Confidence([]float64{0.1, 0.6, 0.3})
			So(err, ShouldBeNil)
			So(c, ShouldEqual, 0.6)
		})

		Convey("And an empty vector should be rejected", func() {
			_, err := inference.Confidence(nil)
			So(err, ShouldEqual, inference.ErrEmptyProbabilities)
		})
	})
}
