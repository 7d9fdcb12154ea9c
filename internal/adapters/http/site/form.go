package site

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/gameaccess/internal/domain/profile"
)

// Input kinds rendered by the form template.
const (
	kindText   = "text"
	kindInt    = "int"
	kindFloat  = "float"
	kindSelect = "select"
)

// field describes one form control. Name matches the profile JSON key.
type field struct {
	Name    string
	Label   string
	Kind    string
	Bounds  profile.Bounds
	Step    string
	Options []string
}

type section struct {
	Title   string
	Columns [][]field
}

var yesNo = []string{profile.Unselected, string(profile.Yes), string(profile.No)}

var layout = []section{
	{
		Columns: [][]field{
			{
				{Name: "name", Label: "Name", Kind: kindText},
				{Name: "age", Label: "Age", Kind: kindInt, Bounds: profile.AgeBounds, Step: "1"},
				{Name: "care_level", Label: "Care Level (0-12)", Kind: kindInt, Bounds: profile.CareLevelBounds, Step: "1"},
				{Name: "bmi", Label: "BMI", Kind: kindFloat, Bounds: profile.BMIBounds, Step: "0.1"},
				{Name: "education_level", Label: "Education Level", Kind: kindInt, Bounds: profile.EducationLevelBounds, Step: "1"},
			},
			{
				{Name: "sex", Label: "Sex", Kind: kindSelect, Options: []string{profile.Unselected, string(profile.Male), string(profile.Female)}},
				{Name: "mobility_aid", Label: "Mobility Type", Kind: kindSelect, Options: []string{profile.Unselected, string(profile.No), string(profile.Yes)}},
				{Name: "prior_experience", Label: "Previous Gaming Experience", Kind: kindSelect, Options: yesNo},
			},
		},
	},
	{
		Title: "Cognitive & Physical Values",
		Columns: [][]field{
			{
				{Name: "sppb", Label: "SPPB (0–12)", Kind: kindInt, Bounds: profile.SPPBBounds, Step: "1"},
				{Name: "balance_score", Label: "Balance Score (0–4)", Kind: kindInt, Bounds: profile.BalanceScoreBounds, Step: "1"},
				{Name: "gait_speed", Label: "Gait Speed (0–4)", Kind: kindInt, Bounds: profile.GaitSpeedBounds, Step: "1"},
				{Name: "stand_up_score", Label: "Stand Up Score (0–4)", Kind: kindInt, Bounds: profile.StandUpScoreBounds, Step: "1"},
			},
			{
				{Name: "qmci", Label: "Qmci Score (0-100)", Kind: kindFloat, Bounds: profile.QMCIBounds, Step: "0.1"},
			},
		},
	},
}

func eachField(fn func(f field)) {
	for _, s := range layout {
		for _, col := range s.Columns {
			for _, f := range col {
				fn(f)
			}
		}
	}
}

// defaultValues starts numeric inputs at their lower bound and selects at the
// placeholder.
func defaultValues() map[string]string {
	out := make(map[string]string)
	eachField(func(f field) {
		switch f.Kind {
		case kindText:
			out[f.Name] = ""
		case kindSelect:
			out[f.Name] = profile.Unselected
		default:
			out[f.Name] = strconv.FormatFloat(f.Bounds.Min, 'f', -1, 64)
		}
	})
	return out
}

func formValues(form url.Values) map[string]string {
	out := make(map[string]string)
	eachField(func(f field) {
		out[f.Name] = strings.TrimSpace(form.Get(f.Name))
	})
	return out
}

// parseProfile converts submitted values into a profile. Select values pass
// through unchecked; the row expander rejects unknown categories.
func parseProfile(values map[string]string) (profile.Profile, map[string]string) {
	var p profile.Profile
	errs := make(map[string]string)
	ints := make(map[string]int)
	floats := make(map[string]float64)

	eachField(func(f field) {
		raw := values[f.Name]
		switch f.Kind {
		case kindInt:
			if raw == "" {
				errs[f.Name] = "Required."
				return
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				errs[f.Name] = "Must be a whole number."
				return
			}
			ints[f.Name] = n
		case kindFloat:
			if raw == "" {
				errs[f.Name] = "Required."
				return
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				errs[f.Name] = "Must be a number."
				return
			}
			floats[f.Name] = v
		}
	})

	p.Name = values["name"]
	p.Sex = profile.Sex(values["sex"])
	p.MobilityAid = profile.Answer(values["mobility_aid"])
	p.PriorExperience = profile.Answer(values["prior_experience"])
	p.Age = ints["age"]
	p.CareLevel = ints["care_level"]
	p.BMI = floats["bmi"]
	p.EducationLevel = ints["education_level"]
	p.SPPB = ints["sppb"]
	p.BalanceScore = ints["balance_score"]
	p.GaitSpeed = ints["gait_speed"]
	p.StandUpScore = ints["stand_up_score"]
	p.QMCI = floats["qmci"]

	if err := p.Validate(); err != nil {
		if ve, ok := err.(*profile.ValidationError); ok {
			for _, fe := range ve.Fields {
				if _, seen := errs[fe.Field]; !seen {
					errs[fe.Field] = "Must be between " + fmtBound(fe.Bounds.Min) + " and " + fmtBound(fe.Bounds.Max) + "."
				}
			}
		}
	}
	return p, errs
}

func fmtBound(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
