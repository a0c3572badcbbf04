// Package pauses reduces per-pause device records to the summary
// statistics the scorer consumes. Parsing is best-effort and never
// fails: anything unusable degrades to the all-null summary.
package pauses

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/pulsetrack/pulsetrack/internal/domain/model"
	"github.com/pulsetrack/pulsetrack/pkg/logger"
	"github.com/pulsetrack/pulsetrack/pkg/metrics"
)

// DurationColumn is the device export header carrying each pause's
// length. Matching is case- and whitespace-insensitive.
const DurationColumn = "Total pause duration (sec)"

// A pause strictly longer than this counts against the long-pause band.
const longPauseThresholdS = 10.0

const roundPlaces = 2

// Row is one record of a pause report, keyed by column header.
type Row map[string]string

// Parse reduces pause rows to a summary. Contract:
//   - the duration column missing from the first row is a schema
//     mismatch: the whole parse yields the all-null summary
//   - blank durations are skipped silently
//   - non-numeric durations are skipped with a warning
//   - zero valid durations yields the all-null summary, so "no pause
//     data" stays distinguishable from "no pauses"
//
// No error ever escapes: unexpected failures log a warning and resolve
// to the all-null summary.
func Parse(ctx context.Context, rows []Row) (summary model.PauseSummary) {
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Warn(ctx, "pause parsing failed; treating as no data", logger.Any("panic", r))
			summary = model.PauseSummary{}
		}
	}()

	if len(rows) == 0 {
		return model.PauseSummary{}
	}

	key, ok := durationKey(rows[0])
	if !ok {
		logger.Get().Warn(ctx, "pause report missing duration column", logger.String("column", DurationColumn))
		return model.PauseSummary{}
	}

	durations := make([]float64, 0, len(rows))
	for _, row := range rows {
		raw := strings.TrimSpace(row[key])
		if raw == "" {
			continue
		}
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			logger.Get().Warn(ctx, "skipping non-numeric pause duration", logger.String("value", raw))
			metrics.RecordPauseRowSkipped()
			continue
		}
		durations = append(durations, d)
	}

	if len(durations) == 0 {
		return model.PauseSummary{}
	}

	sum, max, over := 0.0, durations[0], 0
	for _, d := range durations {
		sum += d
		if d > max {
			max = d
		}
		if d > longPauseThresholdS {
			over++
		}
	}

	return model.PauseSummary{
		Count:         model.Int(len(durations)),
		MeanDurationS: model.Float(round(sum / float64(len(durations)))),
		MaxDurationS:  model.Float(round(max)),
		Over10sCount:  model.Int(over),
	}
}

// durationKey resolves the duration column in a row, tolerating case
// and internal whitespace differences in the exported header.
func durationKey(row Row) (string, bool) {
	want := normalizeHeader(DurationColumn)
	for k := range row {
		if normalizeHeader(k) == want {
			return k, true
		}
	}
	return "", false
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

func round(v float64) float64 {
	shift := math.Pow(10, roundPlaces)
	return math.Round(v*shift) / shift
}
