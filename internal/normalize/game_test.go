package normalize

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

func TestGameFromCompletedRow(t *testing.T) {
	cells := []string{
		"",
		"(511113) Richmond Hill Phoenix 9U DS",
		"(511112) Newmarket Hawks 9U DS",
		"Field 3",
		"9-18",
	}
	rec, ok := Game(cells, "9U-select", "all-tiers", testNow)
	if !ok {
		t.Fatal("expected row to normalize")
	}
	if rec.AwayID != "511113" || rec.HomeID != "511112" {
		t.Fatalf("unexpected team ids %s/%s", rec.AwayID, rec.HomeID)
	}
	if rec.AwayName != "Richmond Hill Phoenix 9U DS" {
		t.Fatalf("unexpected away name %q", rec.AwayName)
	}
	if rec.AwayScore == nil || *rec.AwayScore != 9 {
		t.Fatalf("expected away score 9, got %v", rec.AwayScore)
	}
	if rec.HomeScore == nil || *rec.HomeScore != 18 {
		t.Fatalf("expected home score 18, got %v", rec.HomeScore)
	}
	if !rec.Completed {
		t.Fatal("dash-separated score implies a completed game")
	}
	if rec.Venue != "Field 3" {
		t.Fatalf("unexpected venue %q", rec.Venue)
	}
	if rec.Date != nil {
		t.Fatal("empty date cell should yield nil date")
	}
}

func TestGameNotYetPlayed(t *testing.T) {
	cells := []string{
		"Jun 14",
		"6:30 PM",
		"(511110) Aurora Jays 9U DS",
		"(511115) Vaughan Vikings 9U DS",
		"Diamond 1",
		"Not Played",
	}
	rec, ok := Game(cells, "9U-select", "tier-1", testNow)
	if !ok {
		t.Fatal("expected row to normalize")
	}
	if rec.Completed || rec.HomeScore != nil || rec.AwayScore != nil {
		t.Fatalf("marker text must leave scores nil, got %+v", rec)
	}
	if rec.RawScore != "Not Played" {
		t.Fatalf("raw score text must be preserved, got %q", rec.RawScore)
	}
	if rec.Date == nil {
		t.Fatal("expected parseable date")
	}
	want := time.Date(2025, time.June, 14, 18, 30, 0, 0, time.UTC)
	if !rec.Date.Equal(want) {
		t.Fatalf("expected combined date %v, got %v", want, rec.Date)
	}
}

func TestGameDiscardsRowsWithoutTeamIDs(t *testing.T) {
	cases := [][]string{
		{"Jun 14", "Aurora Jays", "(511115) Vaughan Vikings", "Diamond 1", ""},
		{"Jun 14", "(511110) Aurora Jays", "Vaughan Vikings", "Diamond 1", ""},
		{"header", "row"},
	}
	for _, cells := range cases {
		if _, ok := Game(cells, "9U-select", "all-tiers", testNow); ok {
			t.Fatalf("expected row %v to be discarded", cells)
		}
	}
}

func TestGameKeepsRowWithUnparseableDate(t *testing.T) {
	cells := []string{
		"TBD",
		"(511110) Aurora Jays 9U DS",
		"(511115) Vaughan Vikings 9U DS",
		"Diamond 1",
		"",
	}
	rec, ok := Game(cells, "9U-select", "all-tiers", testNow)
	if !ok {
		t.Fatal("row must be kept even when the date cannot parse")
	}
	if rec.Date != nil {
		t.Fatalf("expected nil date, got %v", rec.Date)
	}
	if rec.RawDate != "TBD" {
		t.Fatalf("raw date text must be preserved, got %q", rec.RawDate)
	}
}

func TestParseGameDateYearInjection(t *testing.T) {
	// June 14 relative to June 10: current year.
	d := ParseGameDate("Jun 14", "", testNow)
	if d == nil || d.Year() != 2025 {
		t.Fatalf("expected current-year injection, got %v", d)
	}
	// March 1 has already passed: next year.
	d = ParseGameDate("Mar 1", "", testNow)
	if d == nil || d.Year() != 2026 {
		t.Fatalf("expected next-year injection, got %v", d)
	}
	// Explicit year is taken verbatim, even in the past.
	d = ParseGameDate("Mar 1, 2024", "", testNow)
	if d == nil || d.Year() != 2024 {
		t.Fatalf("expected explicit year, got %v", d)
	}
}

func TestParseGameDateBadTimeFallsBackToDateOnly(t *testing.T) {
	d := ParseGameDate("Jun 14, 2025", "after supper", testNow)
	if d == nil {
		t.Fatal("expected date to parse")
	}
	want := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Fatalf("expected date-only fallback %v, got %v", want, d)
	}
}

func TestGamesCountsDroppedRows(t *testing.T) {
	rows := []Row{
		{Cells: []Cell{{Text: "Jun 14"}, {Text: "(511110) Aurora Jays"}, {Text: "(511115) Vaughan Vikings"}, {Text: "D1"}, {Text: "2-3"}}},
		{Cells: []Cell{{Text: "garbage"}}},
	}
	games, dropped := Games(rows, "9U-select", "all-tiers", testNow)
	if len(games) != 1 || dropped != 1 {
		t.Fatalf("expected 1 kept / 1 dropped, got %d/%d", len(games), dropped)
	}
}
