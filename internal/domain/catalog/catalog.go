// Package catalog holds the fixed, ordered list of games every profile is
// evaluated against.
package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// defaultGames is the build-time catalog. Order is significant: rows, predictions
// and grouped output all follow it.
var defaultGames = []string{
	"Rocket", "Simple", "Divided", "Birds", "Habitats", "Snake", "Targets", "Sams Garden",
	"Ladybug", "Ski", "Cloudy", "Lumina", "Hexagon", "Evolve", "Flexi", "Drops", "Simon",
	"React", "Arrows", "Flaneur",
}

// Catalog is an immutable ordered set of game identifiers.
type Catalog struct {
	games []string
	index map[string]int
}

// Default returns the build-time catalog of 20 games.
func Default() Catalog {
	c, err := New(defaultGames...)
	if err != nil {
		panic(err)
	}
	return c
}

// New builds a catalog from the given games, rejecting blanks and duplicates.
func New(games ...string) (Catalog, error) {
	if len(games) == 0 {
		return Catalog{}, ErrEmpty
	}
	c := Catalog{
		games: make([]string, 0, len(games)),
		index: make(map[string]int, len(games)),
	}
	for _, g := range games {
		if strings.TrimSpace(g) == "" {
			return Catalog{}, fmt.Errorf("%w: blank game at position %d", ErrInvalidGame, len(c.games))
		}
		if _, dup := c.index[g]; dup {
			return Catalog{}, fmt.Errorf("%w: %q", ErrDuplicateGame, g)
		}
		c.index[g] = len(c.games)
		c.games = append(c.games, g)
	}
	return c, nil
}

// Games returns a copy of the games in catalog order.
func (c Catalog) Games() []string {
	return slices.Clone(c.games)
}

// Len returns the number of games.
func (c Catalog) Len() int { return len(c.games) }

// Position returns the catalog position of game, or -1 when absent.
func (c Catalog) Position(game string) int {
	if i, ok := c.index[game]; ok {
		return i
	}
	return -1
}

// Contains reports whether game belongs to the catalog.
func (c Catalog) Contains(game string) bool {
	_, ok := c.index[game]
	return ok
}
