package importer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pulsetrack/pulsetrack/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadPauseRows(t *testing.T) {
	Convey("Given a pause report CSV", t, func() {
		Convey("Rows map header columns to values", func() {
			path := writeFile(t, "pauses.csv",
				"Pause number,Total pause duration (sec)\n1,2.5\n2,11.0\n")

			rows, err := ReadPauseRows(path)
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
			So(rows[0]["Total pause duration (sec)"], ShouldEqual, "2.5")
			So(rows[1]["Pause number"], ShouldEqual, "2")
		})

		Convey("Short records are padded, not rejected", func() {
			path := writeFile(t, "pauses.csv",
				"Pause number,Total pause duration (sec)\n1\n")

			rows, err := ReadPauseRows(path)
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 1)
			So(rows[0]["Total pause duration (sec)"], ShouldEqual, "")
		})

		Convey("A header-only file yields no rows", func() {
			path := writeFile(t, "pauses.csv", "Total pause duration (sec)\n")

			rows, err := ReadPauseRows(path)
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 0)
		})

		Convey("A missing file is an error", func() {
			_, err := ReadPauseRows(filepath.Join(t.TempDir(), "ghost.csv"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRunSubmitsSession(t *testing.T) {
	ctx := context.Background()

	Convey("Given an intake endpoint", t, func() {
		var received payload
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(ack{Status: "accepted", SessionID: received.ImportID})
		}))
		defer ts.Close()

		metricsPath := writeFile(t, "metrics.json",
			`{"depth_compliance_pct": 85.0, "rate_compliance_pct": 90.0}`)
		pausePath := writeFile(t, "pauses.csv",
			"Total pause duration (sec)\n2.5\n11.0\n")

		Convey("Run posts the assembled request", func() {
			cfg := &Config{
				BaseURL:      ts.URL,
				ImportID:     "imp-1",
				SessionType:  "real_call",
				Date:         "2025-03-14",
				ProviderName: "Jones",
				Shocks:       2,
				MetricsFile:  metricsPath,
				PauseCSV:     pausePath,
				Timeout:      5 * time.Second,
			}

			id, err := Run(ctx, cfg)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "imp-1")
			So(received.SessionType, ShouldEqual, "real_call")
			So(*received.ShocksDelivered, ShouldEqual, 2)
			So(*received.Metrics.DepthCompliancePct, ShouldEqual, 85.0)
			So(len(received.PauseRows), ShouldEqual, 2)
		})

		Convey("A missing import id is generated", func() {
			cfg := &Config{
				BaseURL:     ts.URL,
				SessionType: "simulated",
				Date:        "2025-03-14",
				Shocks:      -1,
				Timeout:     5 * time.Second,
			}

			id, err := Run(ctx, cfg)
			So(err, ShouldBeNil)
			So(id, ShouldNotBeEmpty)
			So(received.ShocksDelivered, ShouldBeNil)
		})

		Convey("A rejecting server surfaces ErrRejected", func() {
			bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			}))
			defer bad.Close()

			cfg := &Config{
				BaseURL:     bad.URL,
				SessionType: "real_call",
				Date:        "2025-03-14",
				Shocks:      -1,
				Timeout:     5 * time.Second,
			}

			_, err := Run(ctx, cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
