package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"league-standings-service/internal/domain"
)

var (
	teamTextPattern = regexp.MustCompile(`^\s*\((\d+)\)\s*(.+?)\s*$`)
	scorePattern    = regexp.MustCompile(`^\s*(\d+)\s*-\s*(\d+)\s*$`)
)

// Game turns one raw schedule row into a GameRecord. The portal renders
// teams as "(id) Display Name"; rows lacking a parseable id on either side
// are discarded (second return false). The first team column is the away
// side. Trailing cells after the home team are venue then score text.
func Game(cells []string, division, tier string, now time.Time) (domain.GameRecord, bool) {
	awayIdx, homeIdx := -1, -1
	for i, c := range cells {
		if teamTextPattern.MatchString(c) {
			if awayIdx < 0 {
				awayIdx = i
			} else {
				homeIdx = i
				break
			}
		}
	}
	if awayIdx < 0 || homeIdx < 0 {
		return domain.GameRecord{}, false
	}

	awayID, awayName := splitTeamText(cells[awayIdx])
	homeID, homeName := splitTeamText(cells[homeIdx])
	if awayID == "" || homeID == "" {
		return domain.GameRecord{}, false
	}

	rec := domain.GameRecord{
		HomeID:   homeID,
		HomeName: homeName,
		AwayID:   awayID,
		AwayName: awayName,
		Division: division,
		Tier:     tier,
	}

	if awayIdx > 0 {
		rec.RawDate = strings.TrimSpace(cells[0])
	}
	if awayIdx > 1 {
		rec.TimeText = strings.TrimSpace(cells[1])
	}
	rec.Date = ParseGameDate(rec.RawDate, rec.TimeText, now)

	trailing := cells[homeIdx+1:]
	switch {
	case len(trailing) >= 2:
		rec.Venue = strings.TrimSpace(trailing[0])
		rec.RawScore = strings.TrimSpace(trailing[len(trailing)-1])
	case len(trailing) == 1:
		rec.RawScore = strings.TrimSpace(trailing[0])
	}

	if m := scorePattern.FindStringSubmatch(rec.RawScore); m != nil {
		away, _ := strconv.Atoi(m[1])
		home, _ := strconv.Atoi(m[2])
		rec.AwayScore = &away
		rec.HomeScore = &home
		rec.Completed = true
	}

	return rec, true
}

// Games normalizes a batch of raw rows, returning the kept records and the
// count of rows dropped as malformed.
func Games(rows []Row, division, tier string, now time.Time) ([]domain.GameRecord, int) {
	out := make([]domain.GameRecord, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		rec, ok := Game(r.Texts(), division, tier, now)
		if !ok {
			dropped++
			continue
		}
		out = append(out, rec)
	}
	return out, dropped
}

func splitTeamText(text string) (id, name string) {
	m := teamTextPattern.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

var datedLayouts = []string{
	"Jan 2, 2006",
	"Jan 2 2006",
	"Mon Jan 2, 2006",
	"Monday, January 2, 2006",
	"2006-01-02",
	"01/02/2006",
}

var bareLayouts = []string{
	"Jan 2",
	"Mon Jan 2",
	"January 2",
	"01/02",
}

var timeLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"15:04",
}

// ParseGameDate parses the portal's date text. Year-less dates get the
// current year injected, or the next year when the bare month/day would
// otherwise land in the past. When time text is present it is combined with
// the date, falling back to date-only on failure. Returns nil when the text
// cannot be parsed at all; callers keep the raw text in that case.
func ParseGameDate(dateText, timeText string, now time.Time) *time.Time {
	dateText = strings.TrimSpace(dateText)
	if dateText == "" {
		return nil
	}

	var date time.Time
	parsed := false
	for _, layout := range datedLayouts {
		if d, err := time.ParseInLocation(layout, dateText, now.Location()); err == nil {
			date, parsed = d, true
			break
		}
	}
	if !parsed {
		for _, layout := range bareLayouts {
			d, err := time.ParseInLocation(layout, dateText, now.Location())
			if err != nil {
				continue
			}
			d = time.Date(now.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			if d.Before(today) {
				d = d.AddDate(1, 0, 0)
			}
			date, parsed = d, true
			break
		}
	}
	if !parsed {
		return nil
	}

	if t := strings.TrimSpace(timeText); t != "" {
		for _, layout := range timeLayouts {
			clock, err := time.Parse(layout, strings.ToUpper(t))
			if err != nil {
				continue
			}
			combined := time.Date(date.Year(), date.Month(), date.Day(),
				clock.Hour(), clock.Minute(), 0, 0, now.Location())
			return &combined
		}
	}
	return &date
}
