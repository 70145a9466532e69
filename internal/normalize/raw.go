package normalize

// Cell is one table cell pulled out of the rendered results page: its text
// plus the href of its first anchor, when present. Extraction stays thin so
// all parsing can happen outside the browsing session.
type Cell struct {
	Text string
	Href string
}

// Row is one extracted table row.
type Row struct {
	Cells []Cell
}

// Texts returns the row's cell texts.
func (r Row) Texts() []string {
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.Text
	}
	return out
}
