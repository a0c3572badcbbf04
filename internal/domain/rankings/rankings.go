// Package rankings computes per-provider and per-team aggregate
// statistics and orders them for leaderboard views. Aggregation is
// recomputed fresh from the session list on every query; given the
// same input it is deterministic, and it holds no state of its own.
package rankings

import (
	"math"
	"sort"

	"github.com/pulsetrack/pulsetrack/internal/domain/model"
)

const roundPlaces = 1

// Stats is the aggregate row for one provider or team.
//
// AvgScore is nil when no scored session exists for the group; it is
// never zero-filled, so a group without data cannot be confused with a
// group that earned a real zero.
type Stats struct {
	Key          string   `json:"key"`
	Rank         int      `json:"rank,omitempty"`
	SessionCount int      `json:"session_count"`
	ScoredCount  int      `json:"scored_count"`
	AvgScore     *float64 `json:"avg_score"`

	// Raw-metric averages. Each denominator is independent: a session
	// missing one metric still contributes to the others.
	AvgDepthCompliance     *float64 `json:"avg_depth_compliance"`
	AvgRateCompliance      *float64 `json:"avg_rate_compliance"`
	AvgCompressionFraction *float64 `json:"avg_compression_fraction"`
	AvgCompressionRate     *float64 `json:"avg_compression_rate"`
	AvgCompressionDepthCM  *float64 `json:"avg_compression_depth_cm"`
}

// KeyFunc maps a session to the group keys it contributes to. Returning
// several keys lets one incident count for every participating provider.
type KeyFunc func(s model.Session) []string

// ByProvider groups sessions under their provider name.
func ByProvider(s model.Session) []string {
	if s.ProviderName == "" {
		return nil
	}
	return []string{s.ProviderName}
}

// ByTeam groups sessions under their team id.
func ByTeam(s model.Session) []string {
	if s.TeamID == "" {
		return nil
	}
	return []string{s.TeamID}
}

// accumulator collects sums before the final average pass.
type accumulator struct {
	key      string
	sessions int

	scoreSum float64
	scoreN   int

	sums   map[string]float64
	counts map[string]int
}

// Metric keys inside the accumulator maps.
const (
	mDepth    = "depth"
	mRate     = "rate"
	mCCF      = "ccf"
	mCompRate = "comp_rate"
	mDepthCM  = "depth_cm"
)

// Aggregate computes per-group stats over the given sessions.
//
// Incomplete sessions never contribute. Score averages draw only from
// real-call sessions carrying a score; raw-metric averages draw from
// every complete session handed in, so callers control the by-type
// views simply by pre-filtering the slice.
func Aggregate(sessions []model.Session, keyFn KeyFunc) map[string]*Stats {
	acc := map[string]*accumulator{}

	for i := range sessions {
		s := &sessions[i]
		if s.Status != model.StatusComplete {
			continue
		}
		for _, key := range keyFn(*s) {
			a, ok := acc[key]
			if !ok {
				a = &accumulator{key: key, sums: map[string]float64{}, counts: map[string]int{}}
				acc[key] = a
			}
			a.sessions++

			if s.Type == model.SessionTypeRealCall && s.Score != nil {
				a.scoreSum += float64(*s.Score)
				a.scoreN++
			}

			if s.Metrics == nil {
				continue
			}
			a.add(mDepth, s.Metrics.DepthCompliancePct)
			a.add(mRate, s.Metrics.RateCompliancePct)
			a.add(mCCF, s.Metrics.CompressionFractionPct)
			a.add(mCompRate, s.Metrics.MeanCompressionRate)
			a.add(mDepthCM, s.Metrics.MeanCompressionDepthCM)
		}
	}

	out := make(map[string]*Stats, len(acc))
	for key, a := range acc {
		out[key] = a.stats()
	}
	return out
}

func (a *accumulator) add(metric string, v *float64) {
	if v == nil {
		return
	}
	a.sums[metric] += *v
	a.counts[metric]++
}

func (a *accumulator) avg(metric string) *float64 {
	n := a.counts[metric]
	if n == 0 {
		return nil
	}
	return model.Float(round(a.sums[metric] / float64(n)))
}

func (a *accumulator) stats() *Stats {
	s := &Stats{
		Key:                    a.key,
		SessionCount:           a.sessions,
		ScoredCount:            a.scoreN,
		AvgDepthCompliance:     a.avg(mDepth),
		AvgRateCompliance:      a.avg(mRate),
		AvgCompressionFraction: a.avg(mCCF),
		AvgCompressionRate:     a.avg(mCompRate),
		AvgCompressionDepthCM:  a.avg(mDepthCM),
	}
	if a.scoreN > 0 {
		s.AvgScore = model.Float(round(a.scoreSum / float64(a.scoreN)))
	}
	return s
}

// Rank orders stats rows for a leaderboard and assigns 1-based ranks.
// Ordering: groups with sessions before groups without, then average
// score descending with nil lowest, then depth compliance descending
// as the tiebreak. The sort is stable, so rows tied on every key keep
// their input order.
func Rank(rows []*Stats) []*Stats {
	ranked := make([]*Stats, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if (a.SessionCount > 0) != (b.SessionCount > 0) {
			return a.SessionCount > 0
		}
		if av, bv := nilLowest(a.AvgScore), nilLowest(b.AvgScore); av != bv {
			return av > bv
		}
		if av, bv := nilLowest(a.AvgDepthCompliance), nilLowest(b.AvgDepthCompliance); av != bv {
			return av > bv
		}
		return false
	})

	for i, s := range ranked {
		s.Rank = i + 1
	}
	return ranked
}

func nilLowest(v *float64) float64 {
	if v == nil {
		return math.Inf(-1)
	}
	return *v
}

func round(v float64) float64 {
	shift := math.Pow(10, roundPlaces)
	return math.Round(v*shift) / shift
}
