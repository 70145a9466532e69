package normalize

import (
	"testing"
)

func row(href string, cells ...string) Row {
	r := Row{Cells: make([]Cell, len(cells))}
	for i, c := range cells {
		r.Cells[i] = Cell{Text: c}
	}
	if len(r.Cells) > 0 {
		r.Cells[0].Href = href
	}
	return r
}

func TestWinPctFormula(t *testing.T) {
	cases := []struct {
		wins, losses, ties, gp int
		want                   string
	}{
		{4, 2, 2, 8, "0.625"},
		{0, 0, 0, 0, "0.000"},
		{3, 0, 0, 3, "1.000"},
		{1, 2, 1, 4, "0.375"},
		{0, 4, 0, 4, "0.000"},
		// GP from source exceeds the W/L/T sum; the larger denominator wins.
		{4, 2, 2, 10, "0.500"},
	}
	for _, tc := range cases {
		got := WinPct(tc.wins, tc.losses, tc.ties, tc.gp)
		if got != tc.want {
			t.Fatalf("WinPct(%d,%d,%d,%d) = %q, want %q", tc.wins, tc.losses, tc.ties, tc.gp, got, tc.want)
		}
	}
}

func TestStandingsSortAndPositions(t *testing.T) {
	names := map[string]string{
		"511113": "Richmond Hill Phoenix 9U DS",
		"511112": "Newmarket Hawks 9U DS",
		"511110": "Aurora Jays 9U DS",
	}
	rows := []Row{
		// team, GP, W, L, T, RF, RA, Pts, listed out of rank order.
		row("schedule.aspx?team=511112", "Newmarket", "8", "3", "5", "0", "40", "48", "6"),
		row("schedule.aspx?team=511113", "Richmond Hill", "8", "6", "2", "0", "62", "30", "12"),
		row("schedule.aspx?team=511110", "Aurora", "8", "5", "3", "0", "55", "41", "10"),
	}

	got, skipped := Standings(rows, names)
	if skipped != 0 {
		t.Fatalf("expected no skipped rows, got %d", skipped)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	wantOrder := []string{"511113", "511110", "511112"}
	for i, id := range wantOrder {
		if got[i].TeamID != id {
			t.Fatalf("rank %d: expected team %s, got %s", i+1, id, got[i].TeamID)
		}
		if got[i].Position != i+1 {
			t.Fatalf("expected re-derived position %d, got %d", i+1, got[i].Position)
		}
	}
	if got[0].TeamName != "Richmond Hill Phoenix 9U DS" {
		t.Fatalf("expected static name table to win, got %q", got[0].TeamName)
	}
	if got[0].WinPct != "0.750" {
		t.Fatalf("expected win pct 0.750, got %q", got[0].WinPct)
	}
}

func TestStandingsSkipsShortRows(t *testing.T) {
	rows := []Row{
		row("", "header junk"),
		row("schedule.aspx?team=511113", "Richmond Hill", "2", "2", "0", "0", "20", "5", "4"),
	}
	got, skipped := Standings(rows, nil)
	if skipped != 1 {
		t.Fatalf("expected 1 skipped row, got %d", skipped)
	}
	if len(got) != 1 || got[0].TeamID != "511113" {
		t.Fatalf("unexpected rows %+v", got)
	}
}

func TestStandingsIgnoresLeadingRankColumn(t *testing.T) {
	r := Row{Cells: []Cell{
		{Text: "4"}, // portal rank, untrusted
		{Text: "Richmond Hill", Href: "schedule.aspx?team=511113"},
		{Text: "8"}, {Text: "6"}, {Text: "1"}, {Text: "1"},
		{Text: "62"}, {Text: "30"}, {Text: "13"},
	}}
	got, _ := Standings([]Row{r}, nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].TeamID != "511113" || got[0].Position != 1 {
		t.Fatalf("unexpected row %+v", got[0])
	}
	if got[0].Wins != 6 || got[0].GamesPlayed != 8 {
		t.Fatalf("columns misaligned: %+v", got[0])
	}
}

func TestTeamIDFallbackChain(t *testing.T) {
	// Second-cell href.
	r := Row{Cells: []Cell{
		{Text: "1"},
		{Text: "Aurora", Href: "schedule.aspx?team=511110"},
		{Text: "8"}, {Text: "5"}, {Text: "2"}, {Text: "1"}, {Text: "55"}, {Text: "41"}, {Text: "11"},
	}}
	if got := teamID(r.Cells, 0); got != "511110" {
		t.Fatalf("expected second-cell href id, got %q", got)
	}

	// Numeric id in text when no usable href.
	cells := []Cell{{Text: "(511112) Newmarket Hawks"}, {Text: "8"}, {Text: "3"}}
	if got := teamID(cells, 3); got != "511112" {
		t.Fatalf("expected numeric id from text, got %q", got)
	}

	// Synthetic fallback keeps the row.
	cells = []Cell{{Text: "Mystery Team"}, {Text: "8"}, {Text: "3"}}
	if got := teamID(cells, 5); got != "unknown-5" {
		t.Fatalf("expected synthetic id, got %q", got)
	}
}

func TestStandingsDerivesGamesPlayedWhenMissing(t *testing.T) {
	r := Row{Cells: []Cell{
		{Text: "Vaughan", Href: "schedule.aspx?team=511115"},
		{Text: ""}, // GP unavailable from source
		{Text: "4"}, {Text: "2"}, {Text: "2"},
		{Text: "41"}, {Text: "33"}, {Text: "10"},
	}}
	got, _ := Standings([]Row{r}, nil)
	if got[0].GamesPlayed != 8 {
		t.Fatalf("expected derived GP 8, got %d", got[0].GamesPlayed)
	}
	if got[0].WinPct != "0.625" {
		t.Fatalf("expected pct 0.625, got %q", got[0].WinPct)
	}
}
