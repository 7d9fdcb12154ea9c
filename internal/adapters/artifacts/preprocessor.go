package artifacts

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/okian/gameaccess/internal/domain/features"
	"github.com/okian/gameaccess/internal/domain/inference"
)

// Transformer step kinds.
const (
	KindStandardScaler = "standard_scaler"
	KindOneHot         = "one_hot"
	KindPassthrough    = "passthrough"
)

// One-hot handling of values outside the fitted categories.
const (
	HandleUnknownError  = "error"
	HandleUnknownIgnore = "ignore"
)

// Step is one fitted column transformer entry.
type Step struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Columns []string `json:"columns"`

	// standard_scaler
	Mean  []float64 `json:"mean,omitempty"`
	Scale []float64 `json:"scale,omitempty"`

	// one_hot
	Categories    [][]string `json:"categories,omitempty"`
	HandleUnknown string     `json:"handle_unknown,omitempty"`
}

// ColumnTransformer applies its steps to every row and concatenates their
// outputs in step order.
type ColumnTransformer struct {
	steps []Step
	width int
}

type transformerFile struct {
	Transformers []Step `json:"transformers"`
}

// ParseColumnTransformer decodes and validates a fitted transformer.
func ParseColumnTransformer(data []byte) (*ColumnTransformer, error) {
	var f transformerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: transformer: %w", ErrInvalidArtifact, err)
	}
	if len(f.Transformers) == 0 {
		return nil, fmt.Errorf("%w: transformer has no steps", ErrInvalidArtifact)
	}

	ct := &ColumnTransformer{steps: f.Transformers}
	for i, st := range ct.steps {
		w, err := validateStep(st)
		if err != nil {
			return nil, fmt.Errorf("%w: transformer step %d (%s): %w", ErrInvalidArtifact, i, st.Name, err)
		}
		ct.width += w
	}
	return ct, nil
}

func validateStep(st Step) (int, error) {
	if len(st.Columns) == 0 {
		return 0, fmt.Errorf("no columns")
	}
	for _, c := range st.Columns {
		if !slices.Contains(features.Columns, c) {
			return 0, fmt.Errorf("unknown column %q", c)
		}
	}

	switch st.Kind {
	case KindStandardScaler:
		if len(st.Mean) != len(st.Columns) || len(st.Scale) != len(st.Columns) {
			return 0, fmt.Errorf("mean/scale length does not match %d columns", len(st.Columns))
		}
		if slices.Contains(st.Columns, features.ColumnGame) {
			return 0, fmt.Errorf("cannot scale column %q", features.ColumnGame)
		}
		return len(st.Columns), nil
	case KindPassthrough:
		if slices.Contains(st.Columns, features.ColumnGame) {
			return 0, fmt.Errorf("cannot pass through column %q", features.ColumnGame)
		}
		return len(st.Columns), nil
	case KindOneHot:
		if len(st.Categories) != len(st.Columns) {
			return 0, fmt.Errorf("categories length does not match %d columns", len(st.Columns))
		}
		switch st.HandleUnknown {
		case "", HandleUnknownError, HandleUnknownIgnore:
		default:
			return 0, fmt.Errorf("unknown handle_unknown %q", st.HandleUnknown)
		}
		w := 0
		for _, cats := range st.Categories {
			if len(cats) == 0 {
				return 0, fmt.Errorf("empty category list")
			}
			w += len(cats)
		}
		return w, nil
	}
	return 0, fmt.Errorf("unknown kind %q", st.Kind)
}

// Width is the number of output columns per row.
func (t *ColumnTransformer) Width() int { return t.width }

// Transform implements inference.Transformer.
func (t *ColumnTransformer) Transform(rows []features.Row) (inference.Matrix, error) {
	m := make(inference.Matrix, len(rows))
	for i, r := range rows {
		out := make([]float64, 0, t.width)
		for _, st := range t.steps {
			var err error
			out, err = st.apply(r, out)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		m[i] = out
	}
	return m, nil
}

func (st Step) apply(r features.Row, out []float64) ([]float64, error) {
	switch st.Kind {
	case KindStandardScaler:
		for j, c := range st.Columns {
			v, err := r.Numeric(c)
			if err != nil {
				return nil, err
			}
			scale := st.Scale[j]
			// A constant column is fitted with scale 0; it is centred only.
			if scale == 0 {
				scale = 1
			}
			out = append(out, (v-st.Mean[j])/scale)
		}
	case KindPassthrough:
		for _, c := range st.Columns {
			v, err := r.Numeric(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	case KindOneHot:
		for j, c := range st.Columns {
			v, err := r.Categorical(c)
			if err != nil {
				return nil, err
			}
			cats := st.Categories[j]
			hit := slices.Index(cats, v)
			if hit < 0 && st.HandleUnknown != HandleUnknownIgnore {
				return nil, fmt.Errorf("%w: %s=%q", ErrUnknownCategory, c, v)
			}
			for k := range cats {
				if k == hit {
					out = append(out, 1)
				} else {
					out = append(out, 0)
				}
			}
		}
	}
	return out, nil
}
