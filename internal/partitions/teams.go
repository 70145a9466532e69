package partitions

// teamNames resolves portal team ids to display names. The portal's own
// free-text team names drift between pages (abbreviations, stray suffixes),
// so the normalizer prefers this table over source text.
var teamNames = map[string]string{
	"511110": "Aurora Jays 9U DS",
	"511111": "Markham Mariners 9U DS",
	"511112": "Newmarket Hawks 9U DS",
	"511113": "Richmond Hill Phoenix 9U DS",
	"511114": "Stouffville Yankees 9U DS",
	"511115": "Vaughan Vikings 9U DS",
	"511116": "East Gwillimbury Eagles 9U DS",
	"511117": "Thornhill Reds 9U DS",
	"511210": "Aurora Jays 10U DS",
	"511211": "Markham Mariners 10U DS",
	"511212": "Newmarket Hawks 10U DS",
	"511213": "Richmond Hill Phoenix 10U DS",
	"511214": "Stouffville Yankees 10U DS",
	"511215": "Vaughan Vikings 10U DS",
	"511310": "Aurora Jays 11U DS",
	"511311": "Markham Mariners 11U DS",
	"511312": "Newmarket Hawks 11U DS",
	"511313": "Richmond Hill Phoenix 11U DS",
}

// TeamName looks up the display name for a team id.
func TeamName(id string) (string, bool) {
	name, ok := teamNames[id]
	return name, ok
}

// TeamNames returns the full id → name table (read-only by convention).
func TeamNames() map[string]string {
	return teamNames
}
