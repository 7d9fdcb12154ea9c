// Package profile contains the user assessment captured from one form submission.
package profile

import (
	"fmt"
	"strings"
)

// Sex is the categorical sex field as captured. Values other than Male and
// Female (such as the form placeholder) are kept verbatim.
type Sex string

// Answer is a captured yes/no value.
type Answer string

// Categorical values accepted by the encoder.
const (
	Male   Sex    = "Male"
	Female Sex    = "Female"
	Yes    Answer = "Yes"
	No     Answer = "No"

	// Unselected is the placeholder the form submits for untouched selects.
	Unselected = "Select..."
)

// Profile is one user's demographic and clinical assessment.
type Profile struct {
	Name            string  `json:"name" koanf:"name"`
	Age             int     `json:"age" koanf:"age"`
	CareLevel       int     `json:"care_level" koanf:"care_level"`
	BMI             float64 `json:"bmi" koanf:"bmi"`
	EducationLevel  int     `json:"education_level" koanf:"education_level"`
	Sex             Sex     `json:"sex" koanf:"sex"`
	MobilityAid     Answer  `json:"mobility_aid" koanf:"mobility_aid"`
	PriorExperience Answer  `json:"prior_experience" koanf:"prior_experience"`
	SPPB            int     `json:"sppb" koanf:"sppb"`
	BalanceScore    int     `json:"balance_score" koanf:"balance_score"`
	GaitSpeed       int     `json:"gait_speed" koanf:"gait_speed"`
	StandUpScore    int     `json:"stand_up_score" koanf:"stand_up_score"`
	QMCI            float64 `json:"qmci" koanf:"qmci"`
}

// Bounds is an inclusive numeric range for one field.
type Bounds struct {
	Min, Max float64
}

// Field bounds enforced at capture time.
var (
	AgeBounds            = Bounds{18, 100}
	CareLevelBounds      = Bounds{0, 12}
	BMIBounds            = Bounds{10, 50}
	EducationLevelBounds = Bounds{0, 30}
	SPPBBounds           = Bounds{0, 12}
	BalanceScoreBounds   = Bounds{0, 4}
	GaitSpeedBounds      = Bounds{0, 4}
	StandUpScoreBounds   = Bounds{0, 4}
	QMCIBounds           = Bounds{0, 100}
)

// Minimum returns a profile with every numeric field at its lower bound.
func Minimum(name string, sex Sex, mobility, experience Answer) Profile {
	return Profile{
		Name:            name,
		Age:             int(AgeBounds.Min),
		CareLevel:       int(CareLevelBounds.Min),
		BMI:             BMIBounds.Min,
		EducationLevel:  int(EducationLevelBounds.Min),
		Sex:             sex,
		MobilityAid:     mobility,
		PriorExperience: experience,
		SPPB:            int(SPPBBounds.Min),
		BalanceScore:    int(BalanceScoreBounds.Min),
		GaitSpeed:       int(GaitSpeedBounds.Min),
		StandUpScore:    int(StandUpScoreBounds.Min),
		QMCI:            QMCIBounds.Min,
	}
}

// Validate checks the numeric ranges. Categorical fields are not checked here;
// the row expander rejects values outside its encoding table.
func (p Profile) Validate() error {
	var fields []FieldError
	check := func(name string, v float64, b Bounds) {
		if v < b.Min || v > b.Max {
			fields = append(fields, FieldError{Field: name, Value: v, Bounds: b})
		}
	}
	check("age", float64(p.Age), AgeBounds)
	check("care_level", float64(p.CareLevel), CareLevelBounds)
	check("bmi", p.BMI, BMIBounds)
	check("education_level", float64(p.EducationLevel), EducationLevelBounds)
	check("sppb", float64(p.SPPB), SPPBBounds)
	check("balance_score", float64(p.BalanceScore), BalanceScoreBounds)
	check("gait_speed", float64(p.GaitSpeed), GaitSpeedBounds)
	check("stand_up_score", float64(p.StandUpScore), StandUpScoreBounds)
	check("qmci", p.QMCI, QMCIBounds)
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// FieldError describes one out-of-range field.
type FieldError struct {
	Field  string
	Value  float64
	Bounds Bounds
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s must be between %g and %g, got %g", e.Field, e.Bounds.Min, e.Bounds.Max, e.Value)
}

// ValidationError collects every out-of-range field of a profile.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return ErrOutOfRange.Error() + ": " + strings.Join(msgs, "; ")
}

// Unwrap exposes ErrOutOfRange to errors.Is.
func (e *ValidationError) Unwrap() error { return ErrOutOfRange }

// Field returns the error for field, if any.
func (e *ValidationError) Field(name string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldError{}, false
}
