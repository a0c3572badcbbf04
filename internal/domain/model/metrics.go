package model

// MetricRecord holds the per-session measurements the scorer consumes.
// Every field is optional: a nil pointer means "not measured", which is
// distinct from zero. Percentages are clamped to [0,100] by upstream
// extraction; no field is ever negative.
type MetricRecord struct {
	DepthCompliancePct      *float64 `json:"depth_compliance_pct,omitempty"`
	RateCompliancePct       *float64 `json:"rate_compliance_pct,omitempty"`
	CombinedCompliancePct   *float64 `json:"combined_compliance_pct,omitempty"`
	CompressionFractionPct  *float64 `json:"compression_fraction_pct,omitempty"`
	MeanPauseDurationS      *float64 `json:"mean_pause_duration_s,omitempty"`
	MaxPauseDurationS       *float64 `json:"max_pause_duration_s,omitempty"`
	PauseCount              *int     `json:"pause_count,omitempty"`
	PausesOver10sCount      *int     `json:"pauses_over_10s_count,omitempty"`
	MeanReleaseVelocity     *float64 `json:"mean_release_velocity,omitempty"`
	ReleaseVelocityStddev   *float64 `json:"release_velocity_stddev,omitempty"`
	TimeToFirstCompressionS *float64 `json:"time_to_first_compression_s,omitempty"`
	TimeToFirstShockS       *float64 `json:"time_to_first_shock_s,omitempty"`

	// Device summary figures not used by the scorer but carried for
	// dashboard and ranking averages.
	MeanCompressionRate    *float64 `json:"mean_compression_rate,omitempty"`
	MeanCompressionDepthCM *float64 `json:"mean_compression_depth_cm,omitempty"`
	DurationS              *float64 `json:"duration_s,omitempty"`
}

// ApplyPauseSummary copies a pause summary into the record's pause fields.
func (m *MetricRecord) ApplyPauseSummary(p PauseSummary) {
	m.PauseCount = p.Count
	m.MeanPauseDurationS = p.MeanDurationS
	m.MaxPauseDurationS = p.MaxDurationS
	m.PausesOver10sCount = p.Over10sCount
}

// PauseSummary reduces a pause report to summary statistics. All fields
// are nil when no pause data exists: "no data" is not the same set of
// values as "zero pauses".
//
// Invariants when populated: Over10sCount <= Count and
// MeanDurationS <= MaxDurationS.
type PauseSummary struct {
	Count         *int     `json:"count"`
	MeanDurationS *float64 `json:"mean_duration_s"`
	MaxDurationS  *float64 `json:"max_duration_s"`
	Over10sCount  *int     `json:"over_10s_count"`
}

// Empty reports whether the summary carries no data.
func (p PauseSummary) Empty() bool {
	return p.Count == nil && p.MeanDurationS == nil && p.MaxDurationS == nil && p.Over10sCount == nil
}

// Float returns a pointer to v. Convenience for building optional fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
