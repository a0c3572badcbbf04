package model

// ColorBand buckets a composite score for at-a-glance display.
type ColorBand string

// Color bands.
const (
	BandGreen  ColorBand = "green"
	BandYellow ColorBand = "yellow"
	BandRed    ColorBand = "red"
)

// SubMetricResult is one sub-metric's contribution to a tier. An excluded
// sub-metric (missing input) has Earned == Max == 0 and a nil Value.
type SubMetricResult struct {
	Name   string   `json:"name"`
	Value  *float64 `json:"source_value"`
	Earned int      `json:"earned"`
	Max    int      `json:"max"`
}

// TierResult is one of the four weighted rubric categories.
type TierResult struct {
	Name       string            `json:"name"`
	Earned     int               `json:"earned"`
	Max        int               `json:"max"`
	SubMetrics []SubMetricResult `json:"sub_metrics"`
}

// ScoreBreakdown is the full output of the JcLS scorer, immutable once
// computed and stored on the owning session.
//
// Invariants: 0 <= Earned <= Max at every level, the tier sums equal
// RawPoints/AvailablePoints, and Score is RawPoints/AvailablePoints
// rescaled to 100 (or 0 when nothing was measurable).
type ScoreBreakdown struct {
	Score           int           `json:"score"`
	ColorBand       ColorBand     `json:"color_band"`
	RawPoints       int           `json:"raw_points"`
	AvailablePoints int           `json:"available_points"`
	Tiers           [4]TierResult `json:"tiers"`
}
