package logger_test

import (
	"context"
	"testing"

	"github.com/pulsetrack/pulsetrack/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			// Should not panic at any level.
			ctx := context.Background()
			l.Debug(ctx, "debug line", logger.String("k", "v"))
			l.Info(ctx, "info line", logger.Int("n", 1))
			l.Warn(ctx, "warn line", logger.Float64("f", 1.5))
			l.Error(ctx, "error line", logger.Any("x", struct{}{}))
		})

		Convey("And Named returns a scoped logger", func() {
			So(logger.Named("component"), ShouldNotBeNil)
		})

		Convey("And Sync never fails", func() {
			So(logger.Sync(), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given the level parser", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Then known names parse", func() {
			for _, lvl := range []string{"debug", "info", "WARN", "warning", "error", ""} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("And unknown names are rejected", func() {
			So(logger.SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}
