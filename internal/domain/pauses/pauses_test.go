package pauses_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/pulsetrack/pulsetrack/internal/domain/pauses"
	"github.com/pulsetrack/pulsetrack/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

func rowsFor(durations ...string) []pauses.Row {
	rows := make([]pauses.Row, len(durations))
	for i, d := range durations {
		rows[i] = pauses.Row{pauses.DurationColumn: d}
	}
	return rows
}

func TestParseValidReport(t *testing.T) {
	Convey("Given a pause report with three pauses, one over ten seconds", t, func() {
		rows := rowsFor("2.0", "3.0", "11.0")

		Convey("When parsed", func() {
			s := pauses.Parse(context.Background(), rows)

			Convey("Then the summary reduces correctly", func() {
				So(*s.Count, ShouldEqual, 3)
				So(*s.MeanDurationS, ShouldEqual, 5.33)
				So(*s.MaxDurationS, ShouldEqual, 11.0)
				So(*s.Over10sCount, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a larger report", t, func() {
		var rows []pauses.Row
		over := 0
		for i := 1; i <= 40; i++ {
			d := float64(i) / 2.0 // 0.5..20.0
			if d > 10.0 {
				over++
			}
			rows = append(rows, pauses.Row{pauses.DurationColumn: strconv.FormatFloat(d, 'f', -1, 64)})
		}

		Convey("Then count and long-pause tally round-trip", func() {
			s := pauses.Parse(context.Background(), rows)
			So(*s.Count, ShouldEqual, 40)
			So(*s.Over10sCount, ShouldEqual, over)
			So(*s.MeanDurationS, ShouldBeLessThanOrEqualTo, *s.MaxDurationS)
		})
	})

	Convey("Given a pause exactly at the ten second threshold", t, func() {
		s := pauses.Parse(context.Background(), rowsFor("10.0", "10.01"))

		Convey("Then only strictly longer pauses count", func() {
			So(*s.Over10sCount, ShouldEqual, 1)
		})
	})
}

func TestParseHeaderTolerance(t *testing.T) {
	Convey("Given a report whose header differs in case and spacing", t, func() {
		rows := []pauses.Row{
			{"  total PAUSE duration   (sec) ": "4.5"},
			{"  total PAUSE duration   (sec) ": "6.5"},
		}

		Convey("Then the column is still recognized", func() {
			s := pauses.Parse(context.Background(), rows)
			So(*s.Count, ShouldEqual, 2)
			So(*s.MeanDurationS, ShouldEqual, 5.5)
		})
	})
}

func TestParseDegenerateInputs(t *testing.T) {
	Convey("Given no rows at all", t, func() {
		s := pauses.Parse(context.Background(), nil)

		Convey("Then the summary is all-null", func() {
			So(s.Empty(), ShouldBeTrue)
		})
	})

	Convey("Given rows without the duration column", t, func() {
		rows := []pauses.Row{{"Pause start": "00:01:10"}, {"Pause start": "00:02:40"}}

		Convey("Then the schema mismatch yields all-null, not partial data", func() {
			s := pauses.Parse(context.Background(), rows)
			So(s.Empty(), ShouldBeTrue)
		})
	})

	Convey("Given rows with only blank durations", t, func() {
		s := pauses.Parse(context.Background(), rowsFor("", "   ", ""))

		Convey("Then no data is distinguished from zero pauses", func() {
			So(s.Empty(), ShouldBeTrue)
		})
	})

	Convey("Given a mix of valid, blank and garbage durations", t, func() {
		s := pauses.Parse(context.Background(), rowsFor("2.0", "n/a", "", "4.0", "--"))

		Convey("Then only the valid rows are counted", func() {
			So(*s.Count, ShouldEqual, 2)
			So(*s.MeanDurationS, ShouldEqual, 3.0)
			So(*s.MaxDurationS, ShouldEqual, 4.0)
			So(*s.Over10sCount, ShouldEqual, 0)
		})
	})
}
