package scoring

import (
	"math"

	"github.com/pulsetrack/pulsetrack/internal/domain/model"
)

// Score thresholds for the color bands.
const (
	greenFloor  = 80
	yellowFloor = 60
)

// Scale of the composite score.
const maxScore = 100

// Tier display names.
const (
	tierCompression = "Compression Quality"
	tierPerfusion   = "Perfusion Continuity"
	tierRecoil      = "Recoil Quality"
	tierSystem      = "System Performance"
)

// Neutral award for time-to-first-shock on a confirmed non-shockable
// rhythm: no shock was indicated, so the crew is neither rewarded nor
// penalized for shock timing.
const nonShockableNeutralPoints = 3

// Score computes the JcLS breakdown for one session's metrics. Pure and
// deterministic: no side effects, total over its input domain. A nil
// metric excludes its sub-metric from both numerator and denominator —
// missing data rescales the score, it never counts as zero.
//
// shocksDelivered comes from the session record, not the metric set: a
// known zero marks a non-shockable rhythm and earns the neutral shock-
// timing award when no shock time exists.
func Score(m model.MetricRecord, shocksDelivered *int) model.ScoreBreakdown {
	depth := subMetric("depth_compliance", m.DepthCompliancePct, DepthComplianceBands)
	rate := subMetric("rate_compliance", m.RateCompliancePct, RateComplianceBands)
	combined := subMetric("combined_compliance", m.CombinedCompliancePct, CombinedComplianceBands)

	ccf := subMetric("ccf", m.CompressionFractionPct, CompressionFractionBands)
	pauseMean := subMetric("mean_pause", m.MeanPauseDurationS, MeanPauseBands)
	pauseLong := subMetric("no_long_pauses", intValue(m.PausesOver10sCount), LongPauseBands)

	recoil := scoreReleaseVelocity(m.MeanReleaseVelocity, m.ReleaseVelocityStddev)

	ttfc := subMetric("time_to_first_compression", m.TimeToFirstCompressionS, TimeToFirstCompressionBands)
	ttfs := scoreTimeToFirstShock(m.TimeToFirstShockS, shocksDelivered)

	tiers := [4]model.TierResult{
		tier(tierCompression, depth, rate, combined),
		tier(tierPerfusion, ccf, pauseMean, pauseLong),
		tier(tierRecoil, recoil),
		tier(tierSystem, ttfc, ttfs),
	}

	raw, available := 0, 0
	for _, t := range tiers {
		raw += t.Earned
		available += t.Max
	}

	score := 0
	if available > 0 {
		score = int(math.Round(float64(raw) / float64(available) * maxScore))
	}

	return model.ScoreBreakdown{
		Score:           score,
		ColorBand:       colorBand(score),
		RawPoints:       raw,
		AvailablePoints: available,
		Tiers:           tiers,
	}
}

func colorBand(score int) model.ColorBand {
	switch {
	case score >= greenFloor:
		return model.BandGreen
	case score >= yellowFloor:
		return model.BandYellow
	default:
		return model.BandRed
	}
}

// subMetric maps one optional value through its band table.
func subMetric(name string, value *float64, table BandTable) model.SubMetricResult {
	earned, max := table.Score(value)
	return model.SubMetricResult{Name: name, Value: value, Earned: earned, Max: max}
}

// scoreReleaseVelocity handles the one sub-metric whose top band spans
// two inputs: full points need mean >= 400 with stddev under 100. A
// missing stddev degrades to the mean-only bands, same as "not < 100".
func scoreReleaseVelocity(mean, stddev *float64) model.SubMetricResult {
	r := model.SubMetricResult{Name: "release_velocity", Value: mean}
	if mean == nil {
		return r
	}
	r.Max = ReleaseVelocityBands.Max
	if *mean >= 400 && stddev != nil && *stddev < 100 {
		r.Earned = ReleaseVelocityBands.Max
		return r
	}
	r.Earned, _ = ReleaseVelocityBands.Score(mean)
	return r
}

// scoreTimeToFirstShock distinguishes "no shock was indicated" from
// "shock data is missing". A confirmed non-shockable rhythm (zero
// shocks delivered, no shock time) earns a neutral award; truly
// missing data is excluded.
func scoreTimeToFirstShock(value *float64, shocksDelivered *int) model.SubMetricResult {
	r := model.SubMetricResult{Name: "time_to_first_shock", Value: value}
	if value == nil {
		if shocksDelivered != nil && *shocksDelivered == 0 {
			r.Earned = nonShockableNeutralPoints
			r.Max = TimeToFirstShockBands.Max
		}
		return r
	}
	r.Earned, r.Max = TimeToFirstShockBands.Score(value)
	return r
}

func tier(name string, subs ...model.SubMetricResult) model.TierResult {
	t := model.TierResult{Name: name, SubMetrics: subs}
	for _, s := range subs {
		t.Earned += s.Earned
		t.Max += s.Max
	}
	return t
}

func intValue(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
