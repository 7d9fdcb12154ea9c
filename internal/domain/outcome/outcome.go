// Package outcome maps decoded support labels to descriptions and groups
// games by the support they need.
package outcome

import (
	"fmt"

	"github.com/okian/gameaccess/internal/domain/features"
	"github.com/okian/gameaccess/internal/domain/inference"
)

// Support labels produced by the label decoder.
const (
	LabelNotAble           = "110"
	LabelVerbalAndPhysical = "111"
	LabelPhysicalOnly      = "101"
	LabelVerbalOnly        = "011"
	LabelWithoutSupport    = "001"
)

var descriptions = map[string]string{
	LabelNotAble:           "Not able to play the game",
	LabelVerbalAndPhysical: "Needs verbal and physical support",
	LabelPhysicalOnly:      "Needs physical support only",
	LabelVerbalOnly:        "Needs verbal support only",
	LabelWithoutSupport:    "Able to play without support",
}

// Labels returns every known label in table order.
func Labels() []string {
	return []string{LabelNotAble, LabelVerbalAndPhysical, LabelPhysicalOnly, LabelVerbalOnly, LabelWithoutSupport}
}

// Describe returns the description for label. Lookup is exact.
func Describe(label string) (string, error) {
	d, ok := descriptions[label]
	if !ok {
		return "", &LabelError{Label: label}
	}
	return d, nil
}

// Entry is one game and the classifier's confidence for it.
type Entry struct {
	Game       string  `json:"game"`
	Confidence float64 `json:"confidence"`
}

// Group holds the games sharing one description, in catalog order.
type Group struct {
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Entries     []Entry `json:"games"`
}

// Games returns the group's game identifiers.
func (g Group) Games() []string {
	out := make([]string, len(g.Entries))
	for i, e := range g.Entries {
		out[i] = e.Game
	}
	return out
}

// Outcome is the grouped result for one submission. Groups appear in order of
// first occurrence along the catalog.
type Outcome struct {
	Groups []Group `json:"groups"`
}

// Lookup returns the group with the given description.
func (o Outcome) Lookup(description string) (Group, bool) {
	for _, g := range o.Groups {
		if g.Description == description {
			return g, true
		}
	}
	return Group{}, false
}

// Descriptions returns the group descriptions in display order.
func (o Outcome) Descriptions() []string {
	out := make([]string, len(o.Groups))
	for i, g := range o.Groups {
		out[i] = g.Description
	}
	return out
}

// Len returns the total number of games across groups.
func (o Outcome) Len() int {
	n := 0
	for _, g := range o.Groups {
		n += len(g.Entries)
	}
	return n
}

// GroupRows builds the outcome from index-aligned rows and predictions. Any label
// outside the table fails the whole call.
func GroupRows(rows []features.Row, preds []inference.Prediction) (Outcome, error) {
	if len(rows) != len(preds) {
		return Outcome{}, fmt.Errorf("%w: %d rows, %d predictions", ErrMisaligned, len(rows), len(preds))
	}

	var out Outcome
	index := make(map[string]int)
	for i, p := range preds {
		desc, ok := descriptions[p.Label]
		if !ok {
			return Outcome{}, &LabelError{Label: p.Label, Game: rows[i].Game}
		}
		gi, seen := index[desc]
		if !seen {
			gi = len(out.Groups)
			index[desc] = gi
			out.Groups = append(out.Groups, Group{Label: p.Label, Description: desc})
		}
		out.Groups[gi].Entries = append(out.Groups[gi].Entries, Entry{Game: rows[i].Game, Confidence: p.Confidence})
	}
	return out, nil
}
