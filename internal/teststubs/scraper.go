// Package teststubs holds stub collaborators shared by tests.
package teststubs

import (
	"context"
	"sync/atomic"

	"league-standings-service/internal/domain"
	"league-standings-service/internal/partitions"
)

// Scraper is a stub data source. Responses come from the Fn hooks; call
// counts are tracked atomically so tests can assert scrape volume under
// concurrency.
type Scraper struct {
	standingsCalls atomic.Int64
	scheduleCalls  atomic.Int64

	StandingsFn func(ctx context.Context, p partitions.Partition) (domain.StandingsSnapshot, error)
	ScheduleFn  func(ctx context.Context, p partitions.Partition) ([]domain.GameRecord, error)
}

func (s *Scraper) Standings(ctx context.Context, p partitions.Partition) (domain.StandingsSnapshot, error) {
	s.standingsCalls.Add(1)
	if s.StandingsFn != nil {
		return s.StandingsFn(ctx, p)
	}
	return domain.StandingsSnapshot{Partition: p.Key()}, nil
}

func (s *Scraper) Schedule(ctx context.Context, p partitions.Partition) ([]domain.GameRecord, error) {
	s.scheduleCalls.Add(1)
	if s.ScheduleFn != nil {
		return s.ScheduleFn(ctx, p)
	}
	return nil, nil
}

func (s *Scraper) StandingsCalls() int64 {
	return s.standingsCalls.Load()
}

func (s *Scraper) ScheduleCalls() int64 {
	return s.scheduleCalls.Load()
}
