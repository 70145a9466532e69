package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"league-standings-service/internal/normalize"
)

// tableRows pulls the cell data out of the results table in a page's HTML.
// Header rows (those containing th elements) are skipped. Returns an
// ExtractionError when the table is missing or holds no data rows.
func tableRows(html, tableSelector string) ([]normalize.Row, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractionError{Reason: "unparseable page HTML"}
	}

	table := doc.Find(tableSelector).First()
	if table.Length() == 0 {
		return nil, &ExtractionError{Reason: "results table not found"}
	}

	var rows []normalize.Row
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Find("th").Length() > 0 {
			return
		}
		var row normalize.Row
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cell := normalize.Cell{Text: strings.TrimSpace(td.Text())}
			if href, ok := td.Find("a").First().Attr("href"); ok {
				cell.Href = strings.TrimSpace(href)
			}
			row.Cells = append(row.Cells, cell)
		})
		if len(row.Cells) > 0 {
			rows = append(rows, row)
		}
	})

	if len(rows) == 0 {
		return nil, &ExtractionError{Reason: "results table has no data rows"}
	}
	return rows, nil
}
