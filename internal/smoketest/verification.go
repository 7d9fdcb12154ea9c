package smoketest

import (
	"fmt"

	"github.com/okian/gameaccess/internal/domain/outcome"
	"github.com/okian/gameaccess/internal/domain/profile"
)

// verifyResponse checks one classification against the catalog: every game
// appears exactly once, groups are keyed by known descriptions matching
// their label, and games keep catalog order within a group.
func verifyResponse(p profile.Profile, resp ClassifyResponse, games []string) error {
	if resp.Name != p.Name {
		return fmt.Errorf("%w: name %q, want %q", ErrVerification, resp.Name, p.Name)
	}
	if len(resp.Groups) == 0 {
		return fmt.Errorf("%w: no groups", ErrVerification)
	}

	position := make(map[string]int, len(games))
	for i, g := range games {
		position[g] = i
	}

	seen := make(map[string]bool, len(games))
	descs := make(map[string]bool, len(resp.Groups))
	for _, grp := range resp.Groups {
		want, err := outcome.Describe(grp.Label)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrVerification, err)
		}
		if grp.Description != want {
			return fmt.Errorf("%w: label %s described as %q, want %q", ErrVerification, grp.Label, grp.Description, want)
		}
		if descs[grp.Description] {
			return fmt.Errorf("%w: description %q appears twice", ErrVerification, grp.Description)
		}
		descs[grp.Description] = true
		if len(grp.Entries) == 0 {
			return fmt.Errorf("%w: group %q is empty", ErrVerification, grp.Description)
		}

		last := -1
		for _, e := range grp.Entries {
			pos, ok := position[e.Game]
			if !ok {
				return fmt.Errorf("%w: unknown game %q", ErrVerification, e.Game)
			}
			if seen[e.Game] {
				return fmt.Errorf("%w: game %q listed twice", ErrVerification, e.Game)
			}
			if pos < last {
				return fmt.Errorf("%w: game %q out of catalog order", ErrVerification, e.Game)
			}
			if e.Confidence < 0 || e.Confidence > 1 {
				return fmt.Errorf("%w: game %q confidence %g outside [0,1]", ErrVerification, e.Game, e.Confidence)
			}
			seen[e.Game] = true
			last = pos
		}
	}

	if len(seen) != len(games) {
		return fmt.Errorf("%w: %d of %d games classified", ErrVerification, len(seen), len(games))
	}
	return nil
}
