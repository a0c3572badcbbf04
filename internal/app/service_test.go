package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pulsetrack/pulsetrack/internal/adapters/repository"
	"github.com/pulsetrack/pulsetrack/internal/domain/model"
	"github.com/pulsetrack/pulsetrack/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func completeSession(id, provider string) model.Session {
	return model.Session{
		ID:           id,
		Type:         model.SessionTypeRealCall,
		Status:       model.StatusComplete,
		ProviderID:   provider,
		ProviderName: provider,
		Metrics: &model.MetricRecord{
			DepthCompliancePct:     model.Float(85),
			RateCompliancePct:      model.Float(90),
			CombinedCompliancePct:  model.Float(70),
			CompressionFractionPct: model.Float(90),
		},
	}
}

func waitScored(t *testing.T, svc *Service, id string) model.Session {
	t.Helper()
	ctx := context.Background()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sess, err := svc.Session(ctx, id)
		if err == nil && sess.Score != nil {
			return sess
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session %s never scored", id)
	return model.Session{}
}

func TestServiceSubmitAndScore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := New(WithWorkerCount(2), WithQueueSize(16))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("A submitted eligible session is scored asynchronously", func() {
			So(svc.SubmitSession(ctx, completeSession("a", "Jones")), ShouldBeNil)

			scored := waitScored(t, svc, "a")
			So(*scored.Score, ShouldBeGreaterThan, 0)
			So(scored.Breakdown, ShouldNotBeNil)
		})

		Convey("A duplicate id is rejected by the store", func() {
			So(svc.SubmitSession(ctx, completeSession("a", "Jones")), ShouldBeNil)

			err := svc.SubmitSession(ctx, completeSession("a", "Jones"))
			So(errors.Is(err, repository.ErrDuplicateID), ShouldBeTrue)
		})

		Convey("Import ids are deduplicated and can be unrecorded", func() {
			So(svc.SeenAndRecord(ctx, "import-1"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "import-1"), ShouldBeTrue)

			svc.Unrecord(ctx, "import-1")
			So(svc.SeenAndRecord(ctx, "import-1"), ShouldBeFalse)
		})

		Convey("A simulated session is stored but never scored", func() {
			sim := completeSession("sim", "Jones")
			sim.Type = model.SessionTypeSimulated
			So(svc.SubmitSession(ctx, sim), ShouldBeNil)

			time.Sleep(50 * time.Millisecond)
			got, err := svc.Session(ctx, "sim")
			So(err, ShouldBeNil)
			So(got.Score, ShouldBeNil)
		})
	})
}

func TestServiceBackfill(t *testing.T) {
	ctx := context.Background()

	Convey("Given unscored sessions persisted by a previous run", t, func() {
		path := filepath.Join(t.TempDir(), "sessions.json")

		seed := repository.NewMemoryStore(ctx, repository.WithSnapshotPath(path))
		So(seed.Insert(ctx, completeSession("a", "Jones")), ShouldBeNil)
		So(seed.Insert(ctx, completeSession("b", "Smith")), ShouldBeNil)
		sim := completeSession("sim", "Jones")
		sim.Type = model.SessionTypeSimulated
		So(seed.Insert(ctx, sim), ShouldBeNil)
		So(seed.Flush(ctx), ShouldBeNil)

		Convey("Start sweeps them and a second sweep is a no-op", func() {
			svc := New(WithWorkerCount(1), WithSnapshotPath(path))
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			a, err := svc.Session(ctx, "a")
			So(err, ShouldBeNil)
			So(a.Score, ShouldNotBeNil)

			b, err := svc.Session(ctx, "b")
			So(err, ShouldBeNil)
			So(b.Score, ShouldNotBeNil)

			got, err := svc.Session(ctx, "sim")
			So(err, ShouldBeNil)
			So(got.Score, ShouldBeNil)

			updated, err := svc.Backfill(ctx)
			So(err, ShouldBeNil)
			So(updated, ShouldEqual, 0)
		})
	})
}

func TestServiceRankingsAndKPIs(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with scored sessions", t, func() {
		svc := New(WithWorkerCount(1), WithQueueSize(16), WithMaxRankingLimit(10))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		strong := completeSession("s1", "Jones")
		strong.TeamID = "engine-4"
		So(svc.SubmitSession(ctx, strong), ShouldBeNil)

		weak := completeSession("s2", "Smith")
		weak.TeamID = "engine-4"
		weak.Metrics = &model.MetricRecord{
			DepthCompliancePct: model.Float(20),
			RateCompliancePct:  model.Float(30),
		}
		So(svc.SubmitSession(ctx, weak), ShouldBeNil)

		waitScored(t, svc, "s1")
		waitScored(t, svc, "s2")

		Convey("Provider rankings order by average score", func() {
			rows := svc.ProviderRankings(ctx, "", 0)
			So(len(rows), ShouldEqual, 2)
			So(rows[0].Key, ShouldEqual, "Jones")
			So(rows[0].Rank, ShouldEqual, 1)
			So(rows[1].Key, ShouldEqual, "Smith")
		})

		Convey("Team rankings group both sessions together", func() {
			rows := svc.TeamRankings(ctx, "", 0)
			So(len(rows), ShouldEqual, 1)
			So(rows[0].Key, ShouldEqual, "engine-4")
			So(rows[0].SessionCount, ShouldEqual, 2)
		})

		Convey("A type filter excludes the other population", func() {
			rows := svc.ProviderRankings(ctx, model.SessionTypeSimulated, 0)
			So(len(rows), ShouldEqual, 0)
		})

		Convey("Dashboard KPIs reflect the stored sessions", func() {
			k := svc.DashboardKPIs(ctx)
			So(k.TotalSessions, ShouldEqual, 2)
			So(k.RealCallSessions, ShouldEqual, 2)
			So(k.ScoredSessions, ShouldEqual, 2)
			So(k.AvgScore, ShouldNotBeNil)
		})

		Convey("GetStats reports component sizes", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["totalSessions"], ShouldEqual, 2)
		})
	})
}
