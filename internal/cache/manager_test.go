package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"league-standings-service/internal/domain"
	"league-standings-service/internal/metrics"
	"league-standings-service/internal/partitions"
	"league-standings-service/internal/teststubs"
	"league-standings-service/internal/testutil"
)

const testTTL = 30 * time.Minute

var testStart = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

func newTestManager(s Scraper, clock *testutil.Clock) *Manager {
	m := NewManager(s, testTTL, nil, metrics.NewRecorder())
	m.now = clock.Now
	return m
}

func standingsAt(p partitions.Partition, capturedAt time.Time) domain.StandingsSnapshot {
	return domain.StandingsSnapshot{
		Partition: p.Key(),
		Rows: []domain.StandingRow{
			{Position: 1, TeamID: "511112", TeamName: "Newmarket Hawks 9U DS", Points: 12, WinPct: "0.750"},
		},
		CapturedAt: capturedAt,
	}
}

func sampleGames(now time.Time) []domain.GameRecord {
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)
	nine, eighteen := 9, 18
	return []domain.GameRecord{
		{
			Date:      &past,
			AwayID:    "511113",
			AwayName:  "Richmond Hill Phoenix 9U DS",
			HomeID:    "511112",
			HomeName:  "Newmarket Hawks 9U DS",
			AwayScore: &nine,
			HomeScore: &eighteen,
			Completed: true,
			Venue:     "Field 3",
		},
		{
			Date:     &future,
			AwayID:   "511112",
			AwayName: "Newmarket Hawks 9U DS",
			HomeID:   "511113",
			HomeName: "Richmond Hill Phoenix 9U DS",
			Venue:    "Field 1",
		},
	}
}

func TestStandingsCachedWithinTTL(t *testing.T) {
	clock := testutil.NewClock(testStart)
	stub := &teststubs.Scraper{
		StandingsFn: func(ctx context.Context, p partitions.Partition) (domain.StandingsSnapshot, error) {
			return standingsAt(p, clock.Now()), nil
		},
	}
	m := newTestManager(stub, clock)

	first, err := m.Standings(context.Background(), "9U-select", "all-tiers", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.Advance(29 * time.Minute)
	second, err := m.Standings(context.Background(), "9U-select", "all-tiers", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !second.CapturedAt.Equal(first.CapturedAt) {
		t.Fatalf("expected identical snapshot within TTL, got %v then %v", first.CapturedAt, second.CapturedAt)
	}
	if stub.StandingsCalls() != 1 {
		t.Fatalf("expected one scrape, got %d", stub.StandingsCalls())
	}
}

func TestStandingsRefreshedAfterTTL(t *testing.T) {
	clock := testutil.NewClock(testStart)
	stub := &teststubs.Scraper{
		StandingsFn: func(ctx context.Context, p partitions.Partition) (domain.StandingsSnapshot, error) {
			return standingsAt(p, clock.Now()), nil
		},
	}
	m := newTestManager(stub, clock)

	if _, err := m.Standings(context.Background(), "9U-select", "all-tiers", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.Advance(31 * time.Minute)
	snap, err := m.Standings(context.Background(), "9U-select", "all-tiers", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.CapturedAt.Equal(clock.Now()) {
		t.Fatalf("expected refreshed snapshot, got capture time %v", snap.CapturedAt)
	}
	if stub.StandingsCalls() != 2 {
		t.Fatalf("expected a second scrape after expiry, got %d", stub.StandingsCalls())
	}
}

func TestStandingsForceBypassesFreshEntry(t *testing.T) {
	clock := testutil.NewClock(testStart)
	stub := &teststubs.Scraper{
		StandingsFn: func(ctx context.Context, p partitions.Partition) (domain.StandingsSnapshot, error) {
			return standingsAt(p, clock.Now()), nil
		},
	}
	m := newTestManager(stub, clock)

	if _, err := m.Standings(context.Background(), "9U-select", "all-tiers", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Standings(context.Background(), "9U-select", "all-tiers", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.StandingsCalls() != 2 {
		t.Fatalf("expected forced refresh to scrape, got %d calls", stub.StandingsCalls())
	}
}

func TestConcurrentForcedRefreshesShareOneScrape(t *testing.T) {
	clock := testutil.NewClock(testStart)
	release := make(chan struct{})
	stub := &teststubs.Scraper{
		StandingsFn: func(ctx context.Context, p partitions.Partition) (domain.StandingsSnapshot, error) {
			<-release
			return standingsAt(p, clock.Now()), nil
		},
	}
	m := newTestManager(stub, clock)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Standings(context.Background(), "9U-select", "all-tiers", true)
			errs <- err
		}()
	}

	// Let every caller reach the in-flight refresh before it completes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if stub.StandingsCalls() != 1 {
		t.Fatalf("expected concurrent callers to share one scrape, got %d", stub.StandingsCalls())
	}
}

func TestStandingsStaleFallbackOnRefreshFailure(t *testing.T) {
	clock := testutil.NewClock(testStart)
	fail := false
	stub := &teststubs.Scraper{}
	stub.StandingsFn = func(ctx context.Context, p partitions.Partition) (domain.StandingsSnapshot, error) {
		if fail {
			return domain.StandingsSnapshot{}, errors.New("portal unreachable")
		}
		return standingsAt(p, clock.Now()), nil
	}
	m := newTestManager(stub, clock)

	first, err := m.Standings(context.Background(), "9U-select", "all-tiers", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fail = true
	clock.Advance(31 * time.Minute)
	snap, err := m.Standings(context.Background(), "9U-select", "all-tiers", false)
	if err != nil {
		t.Fatalf("expected stale fallback, got error %v", err)
	}
	if !snap.CapturedAt.Equal(first.CapturedAt) {
		t.Fatalf("expected the stale snapshot back, got capture time %v", snap.CapturedAt)
	}
}

func TestStandingsErrorWhenNeverScraped(t *testing.T) {
	clock := testutil.NewClock(testStart)
	stub := &teststubs.Scraper{
		StandingsFn: func(ctx context.Context, p partitions.Partition) (domain.StandingsSnapshot, error) {
			return domain.StandingsSnapshot{}, errors.New("portal unreachable")
		},
	}
	m := newTestManager(stub, clock)

	if _, err := m.Standings(context.Background(), "9U-select", "all-tiers", false); err == nil {
		t.Fatal("expected error when no fallback entry exists")
	}
}

func TestStandingsUnknownPartition(t *testing.T) {
	clock := testutil.NewClock(testStart)
	stub := &teststubs.Scraper{}
	m := newTestManager(stub, clock)

	_, err := m.Standings(context.Background(), "99U-foo", "x", false)
	if !errors.Is(err, partitions.ErrUnknownPartition) {
		t.Fatalf("expected ErrUnknownPartition, got %v", err)
	}
	if stub.StandingsCalls() != 0 {
		t.Fatal("unknown partitions must never reach the scraper")
	}
}

func TestTeamScheduleDerivedFromPartitionCache(t *testing.T) {
	clock := testutil.NewClock(testStart)
	stub := &teststubs.Scraper{
		ScheduleFn: func(ctx context.Context, p partitions.Partition) ([]domain.GameRecord, error) {
			return sampleGames(clock.Now()), nil
		},
	}
	m := newTestManager(stub, clock)

	ts, err := m.TeamSchedule(context.Background(), "511113", "9U-select", "all-tiers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ts.Played) != 1 || len(ts.Upcoming) != 1 {
		t.Fatalf("expected 1 played and 1 upcoming, got %d/%d", len(ts.Played), len(ts.Upcoming))
	}
	played := ts.Played[0]
	if played.IsHome || played.OpponentID != "511112" {
		t.Fatalf("unexpected played game %+v", played)
	}
	if played.TeamScore == nil || *played.TeamScore != 9 || *played.OpponentScore != 18 {
		t.Fatalf("unexpected score %+v", played)
	}

	// Second lookup must hit the team-level cache.
	if _, err := m.TeamSchedule(context.Background(), "511113", "9U-select", "all-tiers"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.ScheduleCalls() != 1 {
		t.Fatalf("expected one partition scrape, got %d", stub.ScheduleCalls())
	}
}

func TestTeamScheduleInheritsSnapshotCaptureTime(t *testing.T) {
	clock := testutil.NewClock(testStart)
	stub := &teststubs.Scraper{
		ScheduleFn: func(ctx context.Context, p partitions.Partition) ([]domain.GameRecord, error) {
			return sampleGames(clock.Now()), nil
		},
	}
	m := newTestManager(stub, clock)

	if _, err := m.PartitionSchedule(context.Background(), "9U-select", "all-tiers", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Deriving later must not restamp the entry with the wall clock.
	clock.Advance(10 * time.Minute)
	if _, err := m.TeamSchedule(context.Background(), "511113", "9U-select", "all-tiers"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status := m.Status()
	schedules := status[tableSchedules]
	teams := status[tableTeamSchedules]
	if len(schedules) != 1 || len(teams) == 0 {
		t.Fatalf("unexpected status contents: %+v", status)
	}
	for _, info := range teams {
		if !info.CapturedAt.Equal(schedules[0].CapturedAt) {
			t.Fatalf("derived entry %q not stamped with snapshot time: %v vs %v",
				info.Key, info.CapturedAt, schedules[0].CapturedAt)
		}
	}
}

func TestWarmTeamSchedules(t *testing.T) {
	clock := testutil.NewClock(testStart)
	stub := &teststubs.Scraper{
		ScheduleFn: func(ctx context.Context, p partitions.Partition) ([]domain.GameRecord, error) {
			return sampleGames(clock.Now()), nil
		},
	}
	m := newTestManager(stub, clock)

	if err := m.WarmTeamSchedules(context.Background(), "9U-select", "all-tiers"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.ScheduleCalls() != 1 {
		t.Fatalf("expected one scrape during warm, got %d", stub.ScheduleCalls())
	}

	// Both teams are now served from the team cache.
	for _, id := range []string{"511112", "511113"} {
		if _, err := m.TeamSchedule(context.Background(), id, "9U-select", "all-tiers"); err != nil {
			t.Fatalf("team %s: %v", id, err)
		}
	}
	if stub.ScheduleCalls() != 1 {
		t.Fatalf("warmed lookups must not scrape, got %d calls", stub.ScheduleCalls())
	}
}

func TestTeamScheduleUnknownTeamInPartition(t *testing.T) {
	clock := testutil.NewClock(testStart)
	stub := &teststubs.Scraper{
		ScheduleFn: func(ctx context.Context, p partitions.Partition) ([]domain.GameRecord, error) {
			return sampleGames(clock.Now()), nil
		},
	}
	m := newTestManager(stub, clock)

	ts, err := m.TeamSchedule(context.Background(), "999999", "9U-select", "all-tiers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.TeamID != "999999" || len(ts.Played) != 0 || len(ts.Upcoming) != 0 {
		t.Fatalf("expected empty schedule for unknown team, got %+v", ts)
	}
}
