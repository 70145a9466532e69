package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"league-standings-service/internal/domain"
)

// minStandingCells is the smallest row that still carries a full record:
// team, GP, W, L, T, RF, RA, Pts. Shorter rows are header/filler noise and
// are skipped silently.
const minStandingCells = 8

var (
	teamHrefPattern  = regexp.MustCompile(`(?i)(?:team(?:id)?|tm)=(\d+)`)
	numericIDPattern = regexp.MustCompile(`\b(\d{6})\b`)
)

// Standings turns raw extracted rows into ranked StandingRows. Display names
// come from the static id → name table when possible because the portal's
// own team text is inconsistent across pages. The second return value counts
// rows that were dropped as malformed.
func Standings(rows []Row, names map[string]string) ([]domain.StandingRow, int) {
	type scored struct {
		row domain.StandingRow
		pct float64
	}

	skipped := 0
	out := make([]scored, 0, len(rows))
	for i, raw := range rows {
		cells := raw.Cells
		if len(cells) < minStandingCells {
			skipped++
			continue
		}
		// A leading bare-integer cell is the portal's own rank column;
		// ignore it, rank is re-derived after sorting.
		if len(cells) > minStandingCells {
			if _, err := strconv.Atoi(strings.TrimSpace(cells[0].Text)); err == nil {
				cells = cells[1:]
			}
		}

		id := teamID(cells, i)
		name := teamDisplayName(id, cells[0].Text, names, i)

		gp := cellInt(cells, 1)
		wins := cellInt(cells, 2)
		losses := cellInt(cells, 3)
		ties := cellInt(cells, 4)
		runsFor := cellInt(cells, 5)
		runsAgainst := cellInt(cells, 6)
		points := cellInt(cells, 7)

		total := wins + losses + ties
		if gp <= 0 {
			gp = total
		}

		pct := winPct(wins, ties, total, gp)
		out = append(out, scored{
			row: domain.StandingRow{
				TeamID:      id,
				TeamName:    name,
				GamesPlayed: gp,
				Wins:        wins,
				Losses:      losses,
				Ties:        ties,
				Points:      points,
				RunsFor:     runsFor,
				RunsAgainst: runsAgainst,
				WinPct:      FormatPct(pct),
			},
			pct: pct,
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		ra, rb := out[a].row, out[b].row
		if ra.Points != rb.Points {
			return ra.Points > rb.Points
		}
		if out[a].pct != out[b].pct {
			return out[a].pct > out[b].pct
		}
		da, db := ra.RunsFor-ra.RunsAgainst, rb.RunsFor-rb.RunsAgainst
		if da != db {
			return da > db
		}
		return ra.TeamName < rb.TeamName
	})

	result := make([]domain.StandingRow, len(out))
	for i, s := range out {
		s.row.Position = i + 1
		result[i] = s.row
	}
	return result, skipped
}

// winPct computes the league's win percentage, where a tie counts as half a
// win: (wins + 0.5*ties) / max(totalGames, gamesPlayed).
func winPct(wins, ties, total, gamesPlayed int) float64 {
	denom := total
	if gamesPlayed > denom {
		denom = gamesPlayed
	}
	if denom <= 0 {
		return 0
	}
	return (float64(wins) + 0.5*float64(ties)) / float64(denom)
}

// FormatPct renders a win percentage to the league's 3-decimal convention.
func FormatPct(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 3, 64)
}

// WinPct exposes the formatted win percentage for a record.
func WinPct(wins, losses, ties, gamesPlayed int) string {
	return FormatPct(winPct(wins, ties, wins+losses+ties, gamesPlayed))
}

// teamID resolves a team identifier for a standings row, in order: anchor
// href pattern in the first cell, then the second cell, then a numeric-id
// scan across the first three cells' text, then a synthetic id. Rows are
// never dropped for a missing identifier.
func teamID(cells []Cell, rowIndex int) string {
	for i := 0; i < 2 && i < len(cells); i++ {
		if m := teamHrefPattern.FindStringSubmatch(cells[i].Href); m != nil {
			return m[1]
		}
	}
	for i := 0; i < 3 && i < len(cells); i++ {
		if m := numericIDPattern.FindStringSubmatch(cells[i].Text); m != nil {
			return m[1]
		}
	}
	return fmt.Sprintf("unknown-%d", rowIndex)
}

func teamDisplayName(id, cellText string, names map[string]string, rowIndex int) string {
	if name, ok := names[id]; ok {
		return name
	}
	if text := strings.TrimSpace(cellText); text != "" {
		return text
	}
	if !strings.HasPrefix(id, "unknown-") {
		return "Team " + id
	}
	return fmt.Sprintf("Team %d", rowIndex)
}

func cellInt(cells []Cell, i int) int {
	if i >= len(cells) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(cells[i].Text))
	if err != nil {
		return 0
	}
	return n
}
