// Package schedule derives per-team views from a partition's flat game list.
package schedule

import (
	"sort"
	"time"

	"league-standings-service/internal/domain"
)

// Process groups games by participating team, resolves each team's
// perspective, sorts chronologically, and splits into played and upcoming.
// Classification uses the single now snapshot passed by the caller: a game
// is played when its completion flag is set or its date is strictly before
// now; an unfinished game with a resolvable date is upcoming; games with
// neither are dropped from both lists. Completed is authoritative even for
// future-dated games (rescheduled or data-entry anomalies).
func Process(games []domain.GameRecord, now time.Time) map[string]domain.TeamSchedule {
	perspectives := make(map[string][]domain.TeamGame)
	for _, g := range games {
		perspectives[g.HomeID] = append(perspectives[g.HomeID], perspective(g, true))
		perspectives[g.AwayID] = append(perspectives[g.AwayID], perspective(g, false))
	}

	out := make(map[string]domain.TeamSchedule, len(perspectives))
	for teamID, list := range perspectives {
		// Stable sort ascending by date. Nil dates compare equal to each
		// other and keep their relative input order after the dated games.
		sort.SliceStable(list, func(a, b int) bool {
			da, db := list[a].Date, list[b].Date
			switch {
			case da == nil:
				return false
			case db == nil:
				return true
			}
			return da.Before(*db)
		})

		sched := domain.TeamSchedule{TeamID: teamID}
		for _, tg := range list {
			switch {
			case tg.Completed:
				sched.Played = append(sched.Played, tg)
			case tg.Date != nil && tg.Date.Before(now):
				sched.Played = append(sched.Played, tg)
			case tg.Date != nil:
				sched.Upcoming = append(sched.Upcoming, tg)
			}
		}
		out[teamID] = sched
	}
	return out
}

func perspective(g domain.GameRecord, isHome bool) domain.TeamGame {
	tg := domain.TeamGame{
		Date:      g.Date,
		RawDate:   g.RawDate,
		TimeText:  g.TimeText,
		IsHome:    isHome,
		Completed: g.Completed,
		Venue:     g.Venue,
	}
	if isHome {
		tg.OpponentID = g.AwayID
		tg.OpponentName = g.AwayName
		tg.TeamScore = g.HomeScore
		tg.OpponentScore = g.AwayScore
	} else {
		tg.OpponentID = g.HomeID
		tg.OpponentName = g.HomeName
		tg.TeamScore = g.AwayScore
		tg.OpponentScore = g.HomeScore
	}
	return tg
}
