package smoketest

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/gameaccess/internal/domain/profile"
	"github.com/okian/gameaccess/pkg/logger"
)

// randomFloatDivisor sets the resolution of randomFloat.
const randomFloatDivisor = 1000000

// randomFloat returns a value in [0, 1) using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomInt returns a value in [b.Min, b.Max].
func randomInt(b profile.Bounds) int {
	span := int64(b.Max-b.Min) + 1
	n, _ := rand.Int(rand.Reader, big.NewInt(span))
	return int(b.Min) + int(n.Int64())
}

// randomTenths returns a value in [b.Min, b.Max] rounded to one decimal.
func randomTenths(b profile.Bounds) float64 {
	v := b.Min + randomFloat()*(b.Max-b.Min)
	return float64(int(v*10)) / 10
}

func pick[T any](options ...T) T {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(options))))
	return options[n.Int64()]
}

// generateProfiles creates config.Profiles random profiles that pass range
// validation and carry only encodable categorical values.
func generateProfiles(ctx context.Context, config *Config, stats *Stats) ([]profile.Profile, error) {
	logger.Get().Info(ctx, "generating profiles", logger.Int("profiles", config.Profiles))

	out := make([]profile.Profile, config.Profiles)
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during profile generation: %w", err)
		}
		out[i] = generateSingleProfile(i)
	}

	stats.Generated = len(out)
	return out, nil
}

func generateSingleProfile(index int) profile.Profile {
	return profile.Profile{
		Name:            fmt.Sprintf("smoke-%d-%s", index, uuid.NewString()[:8]),
		Age:             randomInt(profile.AgeBounds),
		CareLevel:       randomInt(profile.CareLevelBounds),
		BMI:             randomTenths(profile.BMIBounds),
		EducationLevel:  randomInt(profile.EducationLevelBounds),
		Sex:             pick(profile.Male, profile.Female),
		MobilityAid:     pick(profile.Yes, profile.No),
		PriorExperience: pick(profile.Yes, profile.No),
		SPPB:            randomInt(profile.SPPBBounds),
		BalanceScore:    randomInt(profile.BalanceScoreBounds),
		GaitSpeed:       randomInt(profile.GaitSpeedBounds),
		StandUpScore:    randomInt(profile.StandUpScoreBounds),
		QMCI:            randomTenths(profile.QMCIBounds),
	}
}
