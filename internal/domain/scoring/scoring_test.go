package scoring_test

import (
	"testing"

	"github.com/pulsetrack/pulsetrack/internal/domain/model"
	"github.com/pulsetrack/pulsetrack/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreFullSession(t *testing.T) {
	Convey("Given a real-call session with every metric present", t, func() {
		m := model.MetricRecord{
			DepthCompliancePct:      model.Float(53.5),
			RateCompliancePct:       model.Float(87.4),
			CombinedCompliancePct:   model.Float(47.7),
			CompressionFractionPct:  model.Float(93.6),
			MeanPauseDurationS:      model.Float(6.4),
			PausesOver10sCount:      model.Int(0),
			MeanReleaseVelocity:     model.Float(394.6),
			ReleaseVelocityStddev:   model.Float(87.2),
			TimeToFirstCompressionS: model.Float(93.4),
		}

		Convey("When scored with a non-shockable rhythm and no shock time", func() {
			b := scoring.Score(m, model.Int(0))

			Convey("Then every tier lands on its expected award", func() {
				So(b.Tiers[0].Earned, ShouldEqual, 43) // 12 + 15 + 16
				So(b.Tiers[0].Max, ShouldEqual, 55)
				So(b.Tiers[1].Earned, ShouldEqual, 21) // 15 + 2 + 4
				So(b.Tiers[1].Max, ShouldEqual, 25)
				So(b.Tiers[2].Earned, ShouldEqual, 6)
				So(b.Tiers[2].Max, ShouldEqual, 10)
				So(b.Tiers[3].Earned, ShouldEqual, 3) // 0 + neutral 3
				So(b.Tiers[3].Max, ShouldEqual, 10)
			})

			Convey("And the composite score is 73, yellow", func() {
				So(b.RawPoints, ShouldEqual, 73)
				So(b.AvailablePoints, ShouldEqual, 100)
				So(b.Score, ShouldEqual, 73)
				So(b.ColorBand, ShouldEqual, model.BandYellow)
			})
		})
	})
}

func TestScoreEmptySession(t *testing.T) {
	Convey("Given a session with no metrics at all", t, func() {
		b := scoring.Score(model.MetricRecord{}, nil)

		Convey("Then nothing is earned and nothing is available", func() {
			So(b.Score, ShouldEqual, 0)
			So(b.RawPoints, ShouldEqual, 0)
			So(b.AvailablePoints, ShouldEqual, 0)
			So(b.ColorBand, ShouldEqual, model.BandRed)
		})

		Convey("And every sub-metric is excluded, not zeroed", func() {
			for _, tier := range b.Tiers {
				So(tier.Max, ShouldEqual, 0)
				for _, sub := range tier.SubMetrics {
					So(sub.Earned, ShouldEqual, 0)
					So(sub.Max, ShouldEqual, 0)
					So(sub.Value, ShouldBeNil)
				}
			}
		})
	})
}

func TestScorePerfectSession(t *testing.T) {
	Convey("Given a session at the top band of every sub-metric", t, func() {
		m := model.MetricRecord{
			DepthCompliancePct:      model.Float(80),
			RateCompliancePct:       model.Float(85),
			CombinedCompliancePct:   model.Float(60),
			CompressionFractionPct:  model.Float(85),
			MeanPauseDurationS:      model.Float(4.0),
			PausesOver10sCount:      model.Int(0),
			MeanReleaseVelocity:     model.Float(400),
			ReleaseVelocityStddev:   model.Float(99),
			TimeToFirstCompressionS: model.Float(30),
			TimeToFirstShockS:       model.Float(120),
		}
		b := scoring.Score(m, model.Int(2))

		Convey("Then the score is exactly 100 and green", func() {
			So(b.RawPoints, ShouldEqual, 100)
			So(b.AvailablePoints, ShouldEqual, 100)
			So(b.Score, ShouldEqual, 100)
			So(b.ColorBand, ShouldEqual, model.BandGreen)
		})
	})
}

func TestMissingMetricRescaling(t *testing.T) {
	Convey("Given a session missing one sub-metric", t, func() {
		base := model.MetricRecord{
			DepthCompliancePct:      model.Float(80),
			RateCompliancePct:       model.Float(85),
			CombinedCompliancePct:   model.Float(60),
			CompressionFractionPct:  model.Float(85),
			MeanPauseDurationS:      model.Float(4.0),
			PausesOver10sCount:      model.Int(0),
			MeanReleaseVelocity:     model.Float(400),
			ReleaseVelocityStddev:   model.Float(50),
			TimeToFirstCompressionS: model.Float(30),
			TimeToFirstShockS:       model.Float(120),
		}
		full := scoring.Score(base, model.Int(1))

		Convey("When depth compliance is dropped", func() {
			m := base
			m.DepthCompliancePct = nil
			b := scoring.Score(m, model.Int(1))

			Convey("Then the denominator shrinks by exactly that sub-metric's max", func() {
				So(b.AvailablePoints, ShouldEqual, full.AvailablePoints-20)
			})

			Convey("And the remaining sub-metrics keep their points", func() {
				So(b.RawPoints, ShouldEqual, full.RawPoints-20)
				So(b.Score, ShouldEqual, 100) // rescaled, not penalized
			})
		})

		Convey("When the shock time is dropped with shocks delivered", func() {
			m := base
			m.TimeToFirstShockS = nil
			b := scoring.Score(m, model.Int(1))

			Convey("Then the shock sub-metric is excluded entirely", func() {
				So(b.AvailablePoints, ShouldEqual, full.AvailablePoints-5)
				So(b.Tiers[3].SubMetrics[1].Max, ShouldEqual, 0)
			})
		})

		Convey("When the shock time is dropped and shock status is unknown", func() {
			m := base
			m.TimeToFirstShockS = nil
			b := scoring.Score(m, nil)

			Convey("Then the shock sub-metric is excluded, not given the neutral award", func() {
				So(b.Tiers[3].SubMetrics[1].Earned, ShouldEqual, 0)
				So(b.Tiers[3].SubMetrics[1].Max, ShouldEqual, 0)
			})
		})
	})
}

func TestReleaseVelocityEdges(t *testing.T) {
	Convey("Given the release velocity rules", t, func() {
		score := func(mean, sd *float64) (int, int) {
			b := scoring.Score(model.MetricRecord{
				MeanReleaseVelocity:   mean,
				ReleaseVelocityStddev: sd,
			}, nil)
			sub := b.Tiers[2].SubMetrics[0]
			return sub.Earned, sub.Max
		}

		Convey("A fast, consistent release earns the full ten", func() {
			earned, max := score(model.Float(420), model.Float(80))
			So(earned, ShouldEqual, 10)
			So(max, ShouldEqual, 10)
		})

		Convey("A fast but inconsistent release degrades to eight", func() {
			earned, _ := score(model.Float(420), model.Float(140))
			So(earned, ShouldEqual, 8)
		})

		Convey("A missing stddev also degrades to eight", func() {
			earned, _ := score(model.Float(420), nil)
			So(earned, ShouldEqual, 8)
		})

		Convey("A missing mean excludes the sub-metric even with a stddev", func() {
			earned, max := score(nil, model.Float(50))
			So(earned, ShouldEqual, 0)
			So(max, ShouldEqual, 0)
		})
	})
}

func TestBandTablesAreMonotonic(t *testing.T) {
	Convey("Given every band table in the rubric", t, func() {
		tables := map[string]scoring.BandTable{
			"depth_compliance":          scoring.DepthComplianceBands,
			"rate_compliance":           scoring.RateComplianceBands,
			"combined_compliance":       scoring.CombinedComplianceBands,
			"compression_fraction":      scoring.CompressionFractionBands,
			"mean_pause":                scoring.MeanPauseBands,
			"long_pauses":               scoring.LongPauseBands,
			"release_velocity":          scoring.ReleaseVelocityBands,
			"time_to_first_compression": scoring.TimeToFirstCompressionBands,
			"time_to_first_shock":       scoring.TimeToFirstShockBands,
		}

		Convey("Then bands are ordered best-first with strictly decreasing awards", func() {
			for name, table := range tables {
				prevPoints := table.Max + 1
				for i, band := range table.Bands {
					So(band.Points, ShouldBeLessThan, prevPoints)
					So(band.Points, ShouldBeLessThanOrEqualTo, table.Max)
					prevPoints = band.Points
					if i > 0 {
						prev := table.Bands[i-1]
						if table.Dir == scoring.HigherIsBetter {
							So(band.Limit, ShouldBeLessThan, prev.Limit)
						} else {
							So(band.Limit, ShouldBeGreaterThan, prev.Limit)
						}
					}
				}
				So(table.Else, ShouldBeLessThan, prevPoints)
				So(name, ShouldNotBeBlank)
			}
		})

		Convey("And a better value never earns fewer points", func() {
			for _, table := range tables {
				probes := []float64{0}
				for _, band := range table.Bands {
					probes = append(probes, band.Limit-0.01, band.Limit, band.Limit+0.01)
				}
				for _, a := range probes {
					for _, b := range probes {
						better, worse := a, b
						if table.Dir == scoring.HigherIsBetter && a < b {
							better, worse = b, a
						}
						if table.Dir == scoring.LowerIsBetter && a > b {
							better, worse = b, a
						}
						be, _ := table.Score(&better)
						we, _ := table.Score(&worse)
						So(be, ShouldBeGreaterThanOrEqualTo, we)
					}
				}
			}
		})
	})
}

func TestBreakdownInvariants(t *testing.T) {
	Convey("Given a handful of partially filled sessions", t, func() {
		records := []model.MetricRecord{
			{DepthCompliancePct: model.Float(72.3)},
			{RateCompliancePct: model.Float(41), MeanPauseDurationS: model.Float(9.9)},
			{
				CompressionFractionPct: model.Float(61.2),
				PausesOver10sCount:     model.Int(3),
				MeanReleaseVelocity:    model.Float(280),
			},
			{TimeToFirstCompressionS: model.Float(200), TimeToFirstShockS: model.Float(300)},
		}

		Convey("Then tier sums always reconcile with the totals", func() {
			for _, m := range records {
				b := scoring.Score(m, nil)
				raw, available := 0, 0
				for _, tier := range b.Tiers {
					subEarned, subMax := 0, 0
					for _, sub := range tier.SubMetrics {
						So(sub.Earned, ShouldBeGreaterThanOrEqualTo, 0)
						So(sub.Earned, ShouldBeLessThanOrEqualTo, sub.Max)
						subEarned += sub.Earned
						subMax += sub.Max
					}
					So(tier.Earned, ShouldEqual, subEarned)
					So(tier.Max, ShouldEqual, subMax)
					raw += tier.Earned
					available += tier.Max
				}
				So(b.RawPoints, ShouldEqual, raw)
				So(b.AvailablePoints, ShouldEqual, available)
				So(b.Score, ShouldBeBetweenOrEqual, 0, 100)
			}
		})
	})
}
