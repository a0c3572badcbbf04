package rankings

import "github.com/pulsetrack/pulsetrack/internal/domain/model"

// MetricAverages is the department-wide average block shown per
// session population on the dashboard.
type MetricAverages struct {
	AvgDepthCompliance     *float64 `json:"avg_depth_compliance"`
	AvgRateCompliance      *float64 `json:"avg_rate_compliance"`
	AvgCompressionFraction *float64 `json:"avg_compression_fraction"`
}

// KPIs is the dashboard summary computed fresh on every query.
type KPIs struct {
	TotalSessions     int `json:"total_sessions"`
	RealCallSessions  int `json:"real_call_sessions"`
	SimulatedSessions int `json:"simulated_sessions"`
	ScoredSessions    int `json:"scored_sessions"`
	TotalShocks       int `json:"total_shocks"`

	AvgScore *float64 `json:"avg_score"`

	RealCalls MetricAverages `json:"real_calls"`
	Simulated MetricAverages `json:"simulated"`
	Overall   MetricAverages `json:"overall"`
}

// DashboardKPIs reduces the full session list to the dashboard figures.
func DashboardKPIs(sessions []model.Session) KPIs {
	k := KPIs{}

	var real, sim []model.Session
	for _, s := range sessions {
		if s.Status != model.StatusComplete {
			continue
		}
		k.TotalSessions++
		if s.Type == model.SessionTypeRealCall {
			k.RealCallSessions++
			real = append(real, s)
			if s.ShocksDelivered != nil {
				k.TotalShocks += *s.ShocksDelivered
			}
		} else {
			k.SimulatedSessions++
			sim = append(sim, s)
		}
	}

	everything := func(model.Session) []string { return []string{"all"} }
	if all := Aggregate(sessions, everything)["all"]; all != nil {
		k.ScoredSessions = all.ScoredCount
		k.AvgScore = all.AvgScore
		k.Overall = averagesOf(all)
	}
	if r := Aggregate(real, everything)["all"]; r != nil {
		k.RealCalls = averagesOf(r)
	}
	if s := Aggregate(sim, everything)["all"]; s != nil {
		k.Simulated = averagesOf(s)
	}
	return k
}

func averagesOf(s *Stats) MetricAverages {
	return MetricAverages{
		AvgDepthCompliance:     s.AvgDepthCompliance,
		AvgRateCompliance:      s.AvgRateCompliance,
		AvgCompressionFraction: s.AvgCompressionFraction,
	}
}
