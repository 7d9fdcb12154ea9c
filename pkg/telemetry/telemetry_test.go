package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/gameaccess/pkg/telemetry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSetup(t *testing.T) {
	Convey("Given tracing options", t, func() {
		ctx := context.Background()

		Convey("When tracing is disabled", func() {
			shutdown, err := telemetry.Setup(ctx, telemetry.Options{Endpoint: "http://localhost:4318"})

			Convey("Then a no-op shutdown is returned", func() {
				So(err, ShouldBeNil)
				So(shutdown(ctx), ShouldBeNil)
			})

			Convey("Then the no-op shutdown ignores a cancelled context", func() {
				cctx, cancel := context.WithCancel(ctx)
				cancel()
				So(shutdown(cctx), ShouldBeNil)
			})
		})

		Convey("When tracing is enabled without an endpoint", func() {
			shutdown, err := telemetry.Setup(ctx, telemetry.Options{Enabled: true})

			Convey("Then setup is rejected", func() {
				So(errors.Is(err, telemetry.ErrMissingEndpoint), ShouldBeTrue)
				So(shutdown(ctx), ShouldBeNil)
			})
		})

		Convey("When tracing is enabled with an endpoint", func() {
			// Non-routable address so no export happens.
			shutdown, err := telemetry.Setup(ctx, telemetry.Options{
				Enabled:     true,
				Endpoint:    "http://192.0.2.1:4318",
				ServiceName: "gameaccess-test",
			})

			Convey("Then the provider flushes cleanly on shutdown", func() {
				So(err, ShouldBeNil)
				So(shutdown(ctx), ShouldBeNil)
			})
		})
	})
}
