// Package cache holds the multi-level cached view of the league: standings
// and comprehensive schedules by partition, plus derived schedules by team.
// Entries are replaced wholesale and never evicted, so a stale entry is
// always available as a fallback when a refresh fails.
package cache

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"league-standings-service/internal/domain"
	"league-standings-service/internal/logging"
	"league-standings-service/internal/metrics"
	"league-standings-service/internal/partitions"
	"league-standings-service/internal/schedule"
)

const (
	tableStandings     = "standings"
	tableSchedules     = "schedules"
	tableTeamSchedules = "team_schedules"
)

// Scraper produces fresh data for a partition. Satisfied by the scrape
// orchestrator.
type Scraper interface {
	Standings(ctx context.Context, p partitions.Partition) (domain.StandingsSnapshot, error)
	Schedule(ctx context.Context, p partitions.Partition) ([]domain.GameRecord, error)
}

// Entry wraps a cached value with its capture time. Values are immutable
// once stored.
type Entry[T any] struct {
	Value      T
	CapturedAt time.Time
}

// EntryInfo describes one cached entry for the status endpoint.
type EntryInfo struct {
	Key        string    `json:"key"`
	CapturedAt time.Time `json:"capturedAt"`
	AgeMS      int64     `json:"ageMs"`
	Fresh      bool      `json:"fresh"`
}

// Manager is the cache engine. It is an explicitly constructed instance;
// there are no package-level singletons.
type Manager struct {
	scraper Scraper
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	mu            sync.RWMutex
	standings     map[string]Entry[domain.StandingsSnapshot]
	schedules     map[string]Entry[domain.ScheduleSnapshot]
	teamSchedules map[string]Entry[domain.TeamSchedule]

	group singleflight.Group
}

func NewManager(scraper Scraper, ttl time.Duration, logger *slog.Logger, recorder *metrics.Recorder) *Manager {
	return &Manager{
		scraper:       scraper,
		ttl:           ttl,
		logger:        logger,
		metrics:       recorder,
		now:           time.Now,
		standings:     make(map[string]Entry[domain.StandingsSnapshot]),
		schedules:     make(map[string]Entry[domain.ScheduleSnapshot]),
		teamSchedules: make(map[string]Entry[domain.TeamSchedule]),
	}
}

// Standings returns the standings snapshot for a partition, scraping when
// the cached entry is missing, expired, or force is set. Concurrent
// refreshes of the same partition share one scrape. A failed refresh falls
// back to the last good snapshot when one exists.
func (m *Manager) Standings(ctx context.Context, division, tier string, force bool) (domain.StandingsSnapshot, error) {
	p, err := partitions.Resolve(division, tier)
	if err != nil {
		return domain.StandingsSnapshot{}, err
	}

	if entry, ok := m.getStandings(p.Key()); ok {
		age := m.now().Sub(entry.CapturedAt)
		if !force && age < m.ttl {
			m.observeLookup(tableStandings, p.Key(), true, age)
			return entry.Value, nil
		}
	}
	m.observeLookup(tableStandings, p.Key(), false, 0)

	v, err, _ := m.group.Do("standings:"+p.Key(), func() (any, error) {
		snap, err := m.scraper.Standings(ctx, p)
		if err != nil {
			if stale, ok := m.getStandings(p.Key()); ok {
				logging.Warn(m.logger, "serving stale standings after refresh failure",
					logging.FieldPartition, p.Key(),
					logging.FieldCacheAgeMS, m.now().Sub(stale.CapturedAt).Milliseconds(),
					"error", err,
				)
				return stale.Value, nil
			}
			return nil, err
		}
		m.putStandings(p.Key(), snap)
		return snap, nil
	})
	if err != nil {
		return domain.StandingsSnapshot{}, err
	}
	return v.(domain.StandingsSnapshot), nil
}

// PartitionSchedule returns the comprehensive schedule snapshot for a
// partition with the same freshness, sharing, and fallback rules as
// Standings.
func (m *Manager) PartitionSchedule(ctx context.Context, division, tier string, force bool) (domain.ScheduleSnapshot, error) {
	p, err := partitions.Resolve(division, tier)
	if err != nil {
		return domain.ScheduleSnapshot{}, err
	}
	return m.partitionSchedule(ctx, p, force)
}

func (m *Manager) partitionSchedule(ctx context.Context, p partitions.Partition, force bool) (domain.ScheduleSnapshot, error) {
	if entry, ok := m.getSchedule(p.Key()); ok {
		age := m.now().Sub(entry.CapturedAt)
		if !force && age < m.ttl {
			m.observeLookup(tableSchedules, p.Key(), true, age)
			return entry.Value, nil
		}
	}
	m.observeLookup(tableSchedules, p.Key(), false, 0)

	v, err, _ := m.group.Do("schedule:"+p.Key(), func() (any, error) {
		games, err := m.scraper.Schedule(ctx, p)
		if err != nil {
			if stale, ok := m.getSchedule(p.Key()); ok {
				logging.Warn(m.logger, "serving stale schedule after refresh failure",
					logging.FieldPartition, p.Key(),
					logging.FieldCacheAgeMS, m.now().Sub(stale.CapturedAt).Milliseconds(),
					"error", err,
				)
				return stale.Value, nil
			}
			return nil, err
		}
		snap := domain.ScheduleSnapshot{
			Partition:  p.Key(),
			Games:      games,
			CapturedAt: m.now(),
		}
		m.putSchedule(p.Key(), snap)
		return snap, nil
	})
	if err != nil {
		return domain.ScheduleSnapshot{}, err
	}
	return v.(domain.ScheduleSnapshot), nil
}

// TeamSchedule returns one team's played and upcoming games. Lookup order:
// the team-level cache, then derivation from the partition schedule cache,
// then a full partition re-scrape followed by derivation. Derived entries
// inherit the partition snapshot's capture time.
func (m *Manager) TeamSchedule(ctx context.Context, teamID, division, tier string) (domain.TeamSchedule, error) {
	p, err := partitions.Resolve(division, tier)
	if err != nil {
		return domain.TeamSchedule{}, err
	}
	key := teamKey(teamID, p)

	if entry, ok := m.getTeamSchedule(key); ok {
		age := m.now().Sub(entry.CapturedAt)
		if age < m.ttl {
			m.observeLookup(tableTeamSchedules, key, true, age)
			return entry.Value, nil
		}
	}
	m.observeLookup(tableTeamSchedules, key, false, 0)

	v, err, _ := m.group.Do("team:"+key, func() (any, error) {
		snap, err := m.partitionSchedule(ctx, p, false)
		if err != nil {
			if stale, ok := m.getTeamSchedule(key); ok {
				logging.Warn(m.logger, "serving stale team schedule after refresh failure",
					logging.FieldTeam, teamID,
					logging.FieldPartition, p.Key(),
					"error", err,
				)
				return stale.Value, nil
			}
			return nil, err
		}
		ts := m.deriveAndStore(snap, teamID, p)
		return ts, nil
	})
	if err != nil {
		return domain.TeamSchedule{}, err
	}
	return v.(domain.TeamSchedule), nil
}

// WarmTeamSchedules derives and stores every team's schedule from the
// partition's cached comprehensive schedule. Used by the periodic refresher
// so team lookups stay hot between cycles.
func (m *Manager) WarmTeamSchedules(ctx context.Context, division, tier string) error {
	p, err := partitions.Resolve(division, tier)
	if err != nil {
		return err
	}
	snap, err := m.partitionSchedule(ctx, p, false)
	if err != nil {
		return err
	}

	byTeam := schedule.Process(snap.Games, m.now())
	m.mu.Lock()
	for teamID, ts := range byTeam {
		m.teamSchedules[teamKey(teamID, p)] = Entry[domain.TeamSchedule]{
			Value:      ts,
			CapturedAt: snap.CapturedAt,
		}
	}
	m.mu.Unlock()

	logging.Info(m.logger, "warmed team schedules",
		logging.FieldPartition, p.Key(),
		logging.FieldCount, len(byTeam),
	)
	return nil
}

// Status reports every cached entry's age for the status endpoint.
func (m *Manager) Status() map[string][]EntryInfo {
	now := m.now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]EntryInfo, 3)
	out[tableStandings] = entryInfos(m.standings, now, m.ttl)
	out[tableSchedules] = entryInfos(m.schedules, now, m.ttl)
	out[tableTeamSchedules] = entryInfos(m.teamSchedules, now, m.ttl)
	return out
}

func entryInfos[T any](entries map[string]Entry[T], now time.Time, ttl time.Duration) []EntryInfo {
	infos := make([]EntryInfo, 0, len(entries))
	for key, e := range entries {
		age := now.Sub(e.CapturedAt)
		infos = append(infos, EntryInfo{
			Key:        key,
			CapturedAt: e.CapturedAt,
			AgeMS:      age.Milliseconds(),
			Fresh:      age < ttl,
		})
	}
	sort.Slice(infos, func(a, b int) bool { return infos[a].Key < infos[b].Key })
	return infos
}

// deriveAndStore computes one team's schedule from a partition snapshot and
// caches it stamped with the snapshot's capture time, never the wall clock.
func (m *Manager) deriveAndStore(snap domain.ScheduleSnapshot, teamID string, p partitions.Partition) domain.TeamSchedule {
	byTeam := schedule.Process(snap.Games, m.now())
	ts, ok := byTeam[teamID]
	if !ok {
		ts = domain.TeamSchedule{TeamID: teamID}
	}

	m.mu.Lock()
	m.teamSchedules[teamKey(teamID, p)] = Entry[domain.TeamSchedule]{
		Value:      ts,
		CapturedAt: snap.CapturedAt,
	}
	m.mu.Unlock()
	return ts
}

func (m *Manager) observeLookup(table, key string, hit bool, age time.Duration) {
	m.metrics.RecordCacheLookup(table, hit, age)
	logging.Info(m.logger, "cache lookup",
		logging.FieldTable, table,
		logging.FieldPartition, key,
		logging.FieldCacheHit, hit,
		logging.FieldCacheAgeMS, age.Milliseconds(),
	)
}

func (m *Manager) getStandings(key string) (Entry[domain.StandingsSnapshot], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.standings[key]
	return e, ok
}

func (m *Manager) putStandings(key string, snap domain.StandingsSnapshot) {
	m.mu.Lock()
	m.standings[key] = Entry[domain.StandingsSnapshot]{Value: snap, CapturedAt: snap.CapturedAt}
	m.mu.Unlock()
}

func (m *Manager) getSchedule(key string) (Entry[domain.ScheduleSnapshot], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.schedules[key]
	return e, ok
}

func (m *Manager) putSchedule(key string, snap domain.ScheduleSnapshot) {
	m.mu.Lock()
	m.schedules[key] = Entry[domain.ScheduleSnapshot]{Value: snap, CapturedAt: snap.CapturedAt}
	m.mu.Unlock()
}

func (m *Manager) getTeamSchedule(key string) (Entry[domain.TeamSchedule], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.teamSchedules[key]
	return e, ok
}

func teamKey(teamID string, p partitions.Partition) string {
	return teamID + "@" + p.Key()
}
