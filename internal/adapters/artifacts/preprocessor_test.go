package artifacts_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/gameaccess/internal/adapters/artifacts"
	"github.com/okian/gameaccess/internal/adapters/artifacts/artifactstest"
	"github.com/okian/gameaccess/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

func TestColumnTransformer(t *testing.T) {
	Convey("Given the fitted column transformer", t, func() {
		ct, err := artifacts.ParseColumnTransformer(artifactstest.File(artifacts.DefaultTransformerFile))
		So(err, ShouldBeNil)
		So(ct.Width(), ShouldEqual, 32)

		row := features.Row{
			Age: 88, BMI: 30, CareLevel: 5, EducationLevel: 13, QMCI: 75,
			GaitSpeed: 3, StandUp: 1, Balance: 2, SPPB: 9,
			Sex: 1, PriorExperience: 0, MobilityAid: 1,
			Game: "Birds",
		}

		Convey("When a row is transformed", func() {
			m, err := ct.Transform([]features.Row{row})

			Convey("Then scaled, passthrough and one-hot columns are concatenated", func() {
				So(err, ShouldBeNil)
				So(m, ShouldHaveLength, 1)
				So(m[0], ShouldHaveLength, 32)

				want := []float64{1, 1, 1, 1, 1, 1, -1, 0, 1, 1, 0, 1}
				So(cmp.Diff(want, m[0][:12]), ShouldBeEmpty)

				hot := 0.0
				for _, v := range m[0][12:] {
					hot += v
				}
				So(hot, ShouldEqual, 1)
				So(m[0][12+3], ShouldEqual, 1)
			})
		})

		Convey("When a row names a game outside the fitted categories", func() {
			row.Game = "Chess"
			_, err := ct.Transform([]features.Row{row})

			Convey("Then the transform is rejected", func() {
				So(errors.Is(err, artifacts.ErrUnknownCategory), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Chess")
			})
		})

		Convey("When an empty batch is transformed", func() {
			m, err := ct.Transform(nil)

			Convey("Then an empty matrix is returned", func() {
				So(err, ShouldBeNil)
				So(m, ShouldBeEmpty)
			})
		})
	})
}

func TestColumnTransformerOptions(t *testing.T) {
	Convey("Given hand-written transformers", t, func() {
		Convey("When unknown one-hot values are ignored", func() {
			ct, err := artifacts.ParseColumnTransformer([]byte(`{"transformers":[
				{"name":"game","kind":"one_hot","columns":["Game"],"categories":[["Ski","Snake"]],"handle_unknown":"ignore"},
				{"name":"sex","kind":"one_hot","columns":["Sex"],"categories":[["0","1"]]}
			]}`))
			So(err, ShouldBeNil)

			m, err := ct.Transform([]features.Row{{Game: "Chess", Sex: 1}})

			Convey("Then the game block is all zeros", func() {
				So(err, ShouldBeNil)
				So(cmp.Diff([]float64{0, 0, 0, 1}, m[0]), ShouldBeEmpty)
			})
		})

		Convey("When a scaler was fitted on a constant column", func() {
			ct, err := artifacts.ParseColumnTransformer([]byte(`{"transformers":[
				{"name":"num","kind":"standard_scaler","columns":["Age"],"mean":[70],"scale":[0]}
			]}`))
			So(err, ShouldBeNil)

			m, err := ct.Transform([]features.Row{{Age: 72}})

			Convey("Then the value is only centred", func() {
				So(err, ShouldBeNil)
				So(m[0][0], ShouldEqual, 2)
			})
		})

		Convey("When the artifact is malformed", func() {
			cases := []string{
				`{`,
				`{"transformers":[]}`,
				`{"transformers":[{"name":"x","kind":"pca","columns":["Age"]}]}`,
				`{"transformers":[{"name":"x","kind":"passthrough","columns":["Height"]}]}`,
				`{"transformers":[{"name":"x","kind":"passthrough","columns":["Game"]}]}`,
				`{"transformers":[{"name":"x","kind":"standard_scaler","columns":["Age","BMI"],"mean":[1],"scale":[1,1]}]}`,
				`{"transformers":[{"name":"x","kind":"one_hot","columns":["Game"],"categories":[[]]}]}`,
				`{"transformers":[{"name":"x","kind":"one_hot","columns":["Game"],"categories":[["Ski"]],"handle_unknown":"infrequent"}]}`,
			}

			Convey("Then every case is an invalid artifact", func() {
				for _, c := range cases {
					_, err := artifacts.ParseColumnTransformer([]byte(c))
					So(errors.Is(err, artifacts.ErrInvalidArtifact), ShouldBeTrue)
				}
			})
		})
	})
}
