// Package features expands one profile into the per-game feature rows the
// classifier was trained on.
package features

import (
	"fmt"

	"github.com/okian/gameaccess/internal/domain/catalog"
	"github.com/okian/gameaccess/internal/domain/profile"
)

// Column names as they appear in the training frame, plus SPPB.
const (
	ColumnSex             = "Sex"
	ColumnAge             = "Age"
	ColumnPriorExperience = "Previous experience"
	ColumnEducationLevel  = "Education Level"
	ColumnBMI             = "BMI"
	ColumnCareLevel       = "Care level"
	ColumnQMCI            = "QMCI Points"
	ColumnGaitSpeed       = "4 m Gehtest"
	ColumnStandUp         = "Stand-up-Test"
	ColumnMobilityAid     = "Mobility Aids"
	ColumnBalance         = "Balance-Test"
	ColumnSPPB            = "SPPB"
	ColumnGame            = "Game"
)

// Columns lists every column in frame order. SPPB is carried even though the
// training frame has no such column; transformers select what they use.
var Columns = []string{
	ColumnSex, ColumnAge, ColumnPriorExperience, ColumnEducationLevel, ColumnBMI,
	ColumnCareLevel, ColumnQMCI, ColumnGaitSpeed, ColumnStandUp, ColumnMobilityAid,
	ColumnBalance, ColumnSPPB, ColumnGame,
}

// Row is one (profile, game) pair with categorical fields encoded.
type Row struct {
	Sex             int
	Age             int
	PriorExperience int
	EducationLevel  int
	BMI             float64
	CareLevel       int
	QMCI            float64
	GaitSpeed       int
	StandUp         int
	MobilityAid     int
	Balance         int
	SPPB            int
	Game            string
}

// Numeric returns the value of a numeric column.
func (r Row) Numeric(column string) (float64, error) {
	switch column {
	case ColumnSex:
		return float64(r.Sex), nil
	case ColumnAge:
		return float64(r.Age), nil
	case ColumnPriorExperience:
		return float64(r.PriorExperience), nil
	case ColumnEducationLevel:
		return float64(r.EducationLevel), nil
	case ColumnBMI:
		return r.BMI, nil
	case ColumnCareLevel:
		return float64(r.CareLevel), nil
	case ColumnQMCI:
		return r.QMCI, nil
	case ColumnGaitSpeed:
		return float64(r.GaitSpeed), nil
	case ColumnStandUp:
		return float64(r.StandUp), nil
	case ColumnMobilityAid:
		return float64(r.MobilityAid), nil
	case ColumnBalance:
		return float64(r.Balance), nil
	case ColumnSPPB:
		return float64(r.SPPB), nil
	}
	return 0, fmt.Errorf("%w: %q is not numeric", ErrUnknownColumn, column)
}

// Categorical returns the value of a string column. Numeric columns are
// rendered in decimal so that encoders keyed on codes keep working.
func (r Row) Categorical(column string) (string, error) {
	if column == ColumnGame {
		return r.Game, nil
	}
	v, err := r.Numeric(column)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%g", v), nil
}

// Expand produces one row per catalog game, in catalog order. All rows share the
// encoded profile fields and differ only in Game.
func Expand(p profile.Profile, c catalog.Catalog) ([]Row, error) {
	sex, err := EncodeSex(p.Sex)
	if err != nil {
		return nil, err
	}
	mobility, err := EncodeAnswer(ColumnMobilityAid, p.MobilityAid)
	if err != nil {
		return nil, err
	}
	experience, err := EncodeAnswer(ColumnPriorExperience, p.PriorExperience)
	if err != nil {
		return nil, err
	}

	base := Row{
		Sex:             sex,
		Age:             p.Age,
		PriorExperience: experience,
		EducationLevel:  p.EducationLevel,
		BMI:             p.BMI,
		CareLevel:       p.CareLevel,
		QMCI:            p.QMCI,
		GaitSpeed:       p.GaitSpeed,
		StandUp:         p.StandUpScore,
		MobilityAid:     mobility,
		Balance:         p.BalanceScore,
		SPPB:            p.SPPB,
	}

	games := c.Games()
	rows := make([]Row, len(games))
	for i, g := range games {
		rows[i] = base
		rows[i].Game = g
	}
	return rows, nil
}
