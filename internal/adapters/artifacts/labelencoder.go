package artifacts

import (
	"encoding/json"
	"fmt"
	"slices"
)

// LabelEncoder maps class indices to the labels the classifier was fitted on.
type LabelEncoder struct {
	classes []string
}

type labelEncoderFile struct {
	Classes []string `json:"classes"`
}

// ParseLabelEncoder decodes a fitted label encoder.
func ParseLabelEncoder(data []byte) (*LabelEncoder, error) {
	var f labelEncoderFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: decoder: %w", ErrInvalidArtifact, err)
	}
	if len(f.Classes) == 0 {
		return nil, fmt.Errorf("%w: decoder has no classes", ErrInvalidArtifact)
	}
	seen := make(map[string]struct{}, len(f.Classes))
	for _, c := range f.Classes {
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: decoder class %q repeated", ErrInvalidArtifact, c)
		}
		seen[c] = struct{}{}
	}
	return &LabelEncoder{classes: f.Classes}, nil
}

// Classes returns the fitted labels in index order.
func (e *LabelEncoder) Classes() []string { return slices.Clone(e.classes) }

// InverseTransform implements inference.Decoder.
func (e *LabelEncoder) InverseTransform(classes []int) ([]string, error) {
	out := make([]string, len(classes))
	for i, c := range classes {
		if c < 0 || c >= len(e.classes) {
			return nil, fmt.Errorf("%w: %d (have %d classes)", ErrUnseenClass, c, len(e.classes))
		}
		out[i] = e.classes[c]
	}
	return out, nil
}
