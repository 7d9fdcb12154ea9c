package smoketest

import (
	"errors"
	"testing"

	"github.com/okian/gameaccess/internal/domain/outcome"
	"github.com/okian/gameaccess/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

func TestVerifyResponse(t *testing.T) {
	Convey("Given a three game catalog", t, func() {
		games := []string{"Boxing", "Bowling", "Ski"}
		p := profile.Profile{Name: "Ada"}
		good := func() ClassifyResponse {
			return ClassifyResponse{Name: "Ada", Groups: []outcome.Group{
				{Label: outcome.LabelVerbalAndPhysical, Description: "Needs verbal and physical support", Entries: []outcome.Entry{
					{Game: "Boxing", Confidence: 0.9}, {Game: "Bowling", Confidence: 0.8},
				}},
				{Label: outcome.LabelNotAble, Description: "Not able to play the game", Entries: []outcome.Entry{
					{Game: "Ski", Confidence: 0.7},
				}},
			}}
		}

		Convey("Then a complete response passes", func() {
			So(verifyResponse(p, good(), games), ShouldBeNil)
		})

		cases := []struct {
			name   string
			mutate func(*ClassifyResponse)
		}{
			{"wrong name", func(r *ClassifyResponse) { r.Name = "Bob" }},
			{"missing game", func(r *ClassifyResponse) { r.Groups = r.Groups[:1] }},
			{"unknown game", func(r *ClassifyResponse) { r.Groups[1].Entries[0].Game = "Chess" }},
			{"duplicate game", func(r *ClassifyResponse) { r.Groups[1].Entries[0].Game = "Boxing" }},
			{"catalog order", func(r *ClassifyResponse) {
				r.Groups[0].Entries[0], r.Groups[0].Entries[1] = r.Groups[0].Entries[1], r.Groups[0].Entries[0]
			}},
			{"unknown label", func(r *ClassifyResponse) { r.Groups[0].Label = "999" }},
			{"description mismatch", func(r *ClassifyResponse) { r.Groups[0].Description = "Able to play without support" }},
			{"confidence range", func(r *ClassifyResponse) { r.Groups[1].Entries[0].Confidence = 1.5 }},
		}
		for _, tc := range cases {
			Convey("Then a response with "+tc.name+" is rejected", func() {
				r := good()
				tc.mutate(&r)
				err := verifyResponse(p, r, games)
				So(errors.Is(err, ErrVerification), ShouldBeTrue)
			})
		}
	})
}
