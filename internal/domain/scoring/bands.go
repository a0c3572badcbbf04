// Package scoring implements the JcLS composite score: a 100-point
// weighted rubric mapping per-session CPR metrics into banded point
// awards across four tiers. Thresholds derive from published adjusted
// odds ratios for neurologically intact survival after OHCA.
package scoring

// Direction states which end of a metric's range is better.
type Direction int

// Band directions.
const (
	// HigherIsBetter bands match the first threshold the value meets or
	// exceeds (inclusive lower bound).
	HigherIsBetter Direction = iota
	// LowerIsBetter bands match the first threshold the value is at or
	// under (inclusive upper bound).
	LowerIsBetter
)

// Band is a single threshold rule: a limit and the points it awards.
type Band struct {
	Limit  float64
	Points int
}

// BandTable is an ordered piecewise-constant scoring curve for one
// sub-metric. Bands are evaluated top-down, best band first; Else is
// the award when no band matches. Tables are data, not logic, so tests
// can walk them directly.
type BandTable struct {
	Max   int
	Dir   Direction
	Bands []Band
	Else  int
}

// Score maps a value through the table. A nil value excludes the
// sub-metric entirely: zero earned out of zero available.
func (t BandTable) Score(value *float64) (earned, max int) {
	if value == nil {
		return 0, 0
	}
	v := *value
	for _, b := range t.Bands {
		if t.Dir == HigherIsBetter && v >= b.Limit {
			return b.Points, t.Max
		}
		if t.Dir == LowerIsBetter && v <= b.Limit {
			return b.Points, t.Max
		}
	}
	return t.Else, t.Max
}

// Tier 1 — Compression Quality (55 pts).
var (
	// DepthComplianceBands scores % of compressions at target depth.
	DepthComplianceBands = BandTable{
		Max: 20,
		Dir: HigherIsBetter,
		Bands: []Band{
			{Limit: 80, Points: 20},
			{Limit: 65, Points: 16},
			{Limit: 50, Points: 12},
			{Limit: 35, Points: 7},
		},
		Else: 3,
	}

	// RateComplianceBands scores % of compressions at target rate.
	RateComplianceBands = BandTable{
		Max: 15,
		Dir: HigherIsBetter,
		Bands: []Band{
			{Limit: 85, Points: 15},
			{Limit: 70, Points: 12},
			{Limit: 55, Points: 8},
			{Limit: 40, Points: 4},
		},
		Else: 1,
	}

	// CombinedComplianceBands scores CiT, the % meeting depth and rate
	// targets simultaneously. Thresholds sit lower than the individual
	// compliance tables because joint compliance is much harder.
	CombinedComplianceBands = BandTable{
		Max: 20,
		Dir: HigherIsBetter,
		Bands: []Band{
			{Limit: 60, Points: 20},
			{Limit: 45, Points: 16},
			{Limit: 35, Points: 12},
			{Limit: 25, Points: 7},
		},
		Else: 3,
	}
)

// Tier 2 — Perfusion Continuity (25 pts).
var (
	// CompressionFractionBands scores CCF, the % of incident time spent
	// actively compressing.
	CompressionFractionBands = BandTable{
		Max: 15,
		Dir: HigherIsBetter,
		Bands: []Band{
			{Limit: 85, Points: 15},
			{Limit: 80, Points: 12},
			{Limit: 70, Points: 8},
			{Limit: 60, Points: 4},
		},
		Else: 1,
	}

	// MeanPauseBands scores the mean pause duration in seconds.
	MeanPauseBands = BandTable{
		Max: 6,
		Dir: LowerIsBetter,
		Bands: []Band{
			{Limit: 4.0, Points: 6},
			{Limit: 6.0, Points: 4},
			{Limit: 8.0, Points: 2},
		},
		Else: 0,
	}

	// LongPauseBands scores the count of pauses over ten seconds.
	LongPauseBands = BandTable{
		Max: 4,
		Dir: LowerIsBetter,
		Bands: []Band{
			{Limit: 0, Points: 4},
			{Limit: 1, Points: 2},
		},
		Else: 0,
	}
)

// Tier 3 — Recoil Quality (10 pts).
var (
	// ReleaseVelocityBands scores mean release velocity in mm/s. The
	// full 10 points additionally require a stddev under 100; see
	// scoreReleaseVelocity.
	ReleaseVelocityBands = BandTable{
		Max: 10,
		Dir: HigherIsBetter,
		Bands: []Band{
			{Limit: 400, Points: 8},
			{Limit: 350, Points: 6},
			{Limit: 300, Points: 3},
		},
		Else: 1,
	}
)

// Tier 4 — System Performance (10 pts).
var (
	// TimeToFirstCompressionBands scores seconds from device power-on
	// to the first compression.
	TimeToFirstCompressionBands = BandTable{
		Max: 5,
		Dir: LowerIsBetter,
		Bands: []Band{
			{Limit: 30, Points: 5},
			{Limit: 60, Points: 4},
			{Limit: 90, Points: 2},
		},
		Else: 0,
	}

	// TimeToFirstShockBands scores seconds to the first defibrillation
	// when a shock time exists; absence is handled by scoreTimeToFirstShock.
	TimeToFirstShockBands = BandTable{
		Max: 5,
		Dir: LowerIsBetter,
		Bands: []Band{
			{Limit: 120, Points: 5},
			{Limit: 180, Points: 3},
		},
		Else: 1,
	}
)
