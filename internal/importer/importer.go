// Package importer submits sessions to a running service instance.
// It reads device exports from disk (a metrics JSON file and optionally
// a pause report CSV) and posts them to the intake endpoint.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pulsetrack/pulsetrack/internal/domain/model"
	"github.com/pulsetrack/pulsetrack/internal/domain/pauses"
	"github.com/pulsetrack/pulsetrack/pkg/logger"
)

// Config carries the CLI flags for one submission.
type Config struct {
	BaseURL      string
	ImportID     string
	SessionType  string
	Date         string
	Time         string
	EventType    string
	Outcome      string
	ProviderID   string
	ProviderName string
	TeamID       string

	// Shocks below zero means unknown.
	Shocks int

	// MetricsFile is a JSON file matching the metrics schema.
	// PauseCSV is the raw pause report export. Both are optional.
	MetricsFile string
	PauseCSV    string

	Timeout time.Duration
}

// ErrRejected indicates the service refused the submission.
var ErrRejected = errors.New("submission rejected")

// payload mirrors the intake request schema.
type payload struct {
	ImportID        string              `json:"import_id"`
	SessionType     string              `json:"session_type"`
	Date            string              `json:"date"`
	Time            string              `json:"time,omitempty"`
	EventType       string              `json:"event_type,omitempty"`
	Outcome         string              `json:"outcome,omitempty"`
	ProviderID      string              `json:"provider_id,omitempty"`
	ProviderName    string              `json:"provider_name,omitempty"`
	TeamID          string              `json:"team_id,omitempty"`
	ShocksDelivered *int                `json:"shocks_delivered,omitempty"`
	Metrics         *model.MetricRecord `json:"metrics,omitempty"`
	PauseRows       []pauses.Row        `json:"pause_rows,omitempty"`
}

type ack struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Duplicate bool   `json:"duplicate"`
}

// Run builds the request from cfg and submits it. The returned string
// is the session id assigned by the service.
func Run(ctx context.Context, cfg *Config) (string, error) {
	log := logger.Get().Named("importer")

	req := payload{
		ImportID:     cfg.ImportID,
		SessionType:  cfg.SessionType,
		Date:         cfg.Date,
		Time:         cfg.Time,
		EventType:    cfg.EventType,
		Outcome:      cfg.Outcome,
		ProviderID:   cfg.ProviderID,
		ProviderName: cfg.ProviderName,
		TeamID:       cfg.TeamID,
	}
	if req.ImportID == "" {
		req.ImportID = uuid.NewString()
	}
	if cfg.Shocks >= 0 {
		req.ShocksDelivered = model.Int(cfg.Shocks)
	}

	if cfg.MetricsFile != "" {
		m, err := readMetrics(cfg.MetricsFile)
		if err != nil {
			return "", err
		}
		req.Metrics = m
	}
	if cfg.PauseCSV != "" {
		rows, err := ReadPauseRows(cfg.PauseCSV)
		if err != nil {
			return "", err
		}
		req.PauseRows = rows
		log.Info(ctx, "pause report loaded",
			logger.String("path", cfg.PauseCSV), logger.Int("rows", len(rows)))
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cfg.BaseURL+"/sessions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("submit session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	var a ack
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if a.Duplicate {
		log.Warn(ctx, "session already imported", logger.String("sessionID", a.SessionID))
	} else {
		log.Info(ctx, "session submitted", logger.String("sessionID", a.SessionID))
	}
	return a.SessionID, nil
}

// readMetrics loads a metrics JSON file.
func readMetrics(path string) (*model.MetricRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metrics file: %w", err)
	}
	var m model.MetricRecord
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse metrics file: %w", err)
	}
	return &m, nil
}

// ReadPauseRows reads a pause report CSV into the row maps the pause
// parser consumes. The first record is the header; short records are
// padded with empty strings rather than treated as errors.
func ReadPauseRows(path string) ([]pauses.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pause report: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse pause report: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]pauses.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(pauses.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
