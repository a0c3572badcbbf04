package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/pulsetrack/pulsetrack/internal/importer"
	"github.com/pulsetrack/pulsetrack/pkg/logger"
)

const defaultTimeout = 30 * time.Second

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9180", "Base URL of the service")
		importID     = flag.String("import-id", "", "Idempotency key (generated when empty)")
		sessionType  = flag.String("type", "real_call", "Session type: real_call or simulated")
		date         = flag.String("date", "", "Session date (YYYY-MM-DD)")
		timeOfDay    = flag.String("time", "", "Session time (HH:MM)")
		eventType    = flag.String("event", "", "Event type")
		outcome      = flag.String("outcome", "", "Patient outcome")
		providerID   = flag.String("provider-id", "", "Provider id")
		providerName = flag.String("provider", "", "Provider name")
		teamID       = flag.String("team", "", "Team id")
		shocks       = flag.Int("shocks", -1, "Shocks delivered (-1 = unknown)")
		metricsFile  = flag.String("metrics", "", "Metrics JSON file")
		pauseCSV     = flag.String("pauses", "", "Pause report CSV file")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg := &importer.Config{
		BaseURL:      *baseURL,
		ImportID:     *importID,
		SessionType:  *sessionType,
		Date:         *date,
		Time:         *timeOfDay,
		EventType:    *eventType,
		Outcome:      *outcome,
		ProviderID:   *providerID,
		ProviderName: *providerName,
		TeamID:       *teamID,
		Shocks:       *shocks,
		MetricsFile:  *metricsFile,
		PauseCSV:     *pauseCSV,
		Timeout:      *timeout,
	}

	if _, err := importer.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("import failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
