package profile_test

import (
	"errors"
	"testing"

	"github.com/okian/gameaccess/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProfile_Validate(t *testing.T) {
	Convey("Given a profile at the minimum bounds", t, func() {
		p := profile.Minimum("Ada", profile.Male, profile.No, profile.Yes)

		Convey("Then it should validate", func() {
			So(p.Validate(), ShouldBeNil)
		})

		Convey("When every field sits on its upper bound", func() {
			p.Age, p.CareLevel, p.BMI, p.EducationLevel = 100, 12, 50, 30
			p.SPPB, p.BalanceScore, p.GaitSpeed, p.StandUpScore, p.QMCI = 12, 4, 4, 4, 100

			Convey("Then it should still validate", func() {
				So(p.Validate(), ShouldBeNil)
			})
		})

		Convey("When age and qmci are out of range", func() {
			p.Age = 17
			p.QMCI = 100.5

			err := p.Validate()

			Convey("Then both fields should be reported", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, profile.ErrOutOfRange), ShouldBeTrue)

				var verr *profile.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(len(verr.Fields), ShouldEqual, 2)

				age, ok := verr.Field("age")
				So(ok, ShouldBeTrue)
				So(age.Bounds, ShouldResemble, profile.AgeBounds)
				So(err.Error(), ShouldContainSubstring, "qmci must be between 0 and 100, got 100.5")
			})
		})

		Convey("When a categorical field holds the placeholder", func() {
			p.Sex = profile.Unselected

			Convey("Then range validation should not reject it", func() {
				So(p.Validate(), ShouldBeNil)
			})
		})
	})
}
