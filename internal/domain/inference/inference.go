// Package inference runs the expanded rows through the feature transformer,
// classifier and label decoder as one batch.
package inference

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/gameaccess/internal/domain/features"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/okian/gameaccess/internal/domain/inference"

// Matrix is a dense row-major feature matrix.
type Matrix [][]float64

// Transformer turns feature rows into the numeric matrix the classifier expects.
// Output row i must correspond to input row i.
type Transformer interface {
	Transform(rows []features.Row) (Matrix, error)
}

// Classifier predicts a class index and a probability vector per matrix row.
type Classifier interface {
	Predict(m Matrix) ([]int, error)
	PredictProba(m Matrix) ([][]float64, error)
}

// Decoder maps class indices back to the original label strings.
type Decoder interface {
	InverseTransform(classes []int) ([]string, error)
}

// Prediction is the decoded classifier output for one row.
type Prediction struct {
	Class         int
	Label         string
	Probabilities []float64
	// Confidence is the largest entry of Probabilities.
	Confidence float64
}

// Predict transforms, classifies and decodes rows as a single batch. The
// returned predictions are index-aligned with rows.
func Predict(ctx context.Context, rows []features.Row, t Transformer, c Classifier, d Decoder) ([]Prediction, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "inference.Predict",
		trace.WithAttributes(attribute.Int("rows", len(rows))))
	defer span.End()

	preds, err := predict(ctx, rows, t, c, d)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return preds, nil
}

func predict(ctx context.Context, rows []features.Row, t Transformer, c Classifier, d Decoder) ([]Prediction, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrInference)
	}
	if t == nil || c == nil || d == nil {
		return nil, fmt.Errorf("%w: pipeline is missing an artifact", ErrInference)
	}
	n := len(rows)

	m, err := step(ctx, "transform", func() (Matrix, error) { return t.Transform(rows) })
	if err != nil {
		return nil, wrap("transform", err)
	}
	if len(m) != n {
		return nil, misaligned("transform", n, len(m))
	}

	classes, err := step(ctx, "predict", func() ([]int, error) { return c.Predict(m) })
	if err != nil {
		return nil, wrap("predict", err)
	}
	if len(classes) != n {
		return nil, misaligned("predict", n, len(classes))
	}

	probs, err := step(ctx, "predict_proba", func() ([][]float64, error) { return c.PredictProba(m) })
	if err != nil {
		return nil, wrap("predict_proba", err)
	}
	if len(probs) != n {
		return nil, misaligned("predict_proba", n, len(probs))
	}

	labels, err := step(ctx, "decode", func() ([]string, error) { return d.InverseTransform(classes) })
	if err != nil {
		return nil, wrap("decode", err)
	}
	if len(labels) != n {
		return nil, misaligned("decode", n, len(labels))
	}

	out := make([]Prediction, n)
	for i := range out {
		conf, err := Confidence(probs[i])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrInference, i, err)
		}
		out[i] = Prediction{
			Class:         classes[i],
			Label:         labels[i],
			Probabilities: probs[i],
			Confidence:    conf,
		}
	}
	return out, nil
}

// Confidence returns the maximum entry of a probability vector. Entries must be
// finite and within [0,1].
func Confidence(probs []float64) (float64, error) {
	if len(probs) == 0 {
		return 0, ErrEmptyProbabilities
	}
	best := math.Inf(-1)
	for j, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return 0, fmt.Errorf("%w: class %d = %v", ErrProbabilityRange, j, p)
		}
		best = math.Max(best, p)
	}
	return best, nil
}

func step[T any](ctx context.Context, name string, fn func() (T, error)) (T, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "inference."+name)
	defer span.End()
	v, err := fn()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return v, err
}

func wrap(stage string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInference, stage, err)
}

func misaligned(stage string, want, got int) error {
	return fmt.Errorf("%w: %s returned %d rows for a batch of %d", ErrInference, stage, got, want)
}
