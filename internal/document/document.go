// Package document models the content handed over by the upstream PDF
// extraction step: ordered pages carrying extracted tables and positioned
// text fragments. The extraction engine consumes these values as-is and
// performs no layout analysis of its own.
package document

import "strings"

// Table is one extracted table, rows in reading order. Cells that the
// extractor could not recover arrive as empty strings.
type Table struct {
	Rows [][]string `json:"rows"`
}

// Fragment is a run of extracted text with its vertical extent on the page.
type Fragment struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Text   string  `json:"text"`
}

// Page is a single page of an uploaded document.
type Page struct {
	Height    float64    `json:"height"`
	Tables    []Table    `json:"tables,omitempty"`
	Fragments []Fragment `json:"fragments,omitempty"`
}

// Search returns the first fragment containing the literal, in reading order.
func (p *Page) Search(literal string) (Fragment, bool) {
	for _, f := range p.Fragments {
		if strings.Contains(f.Text, literal) {
			return f, true
		}
	}
	return Fragment{}, false
}

// TextBetween joins the fragments fully inside the vertical band [top, bottom)
// with newlines, preserving reading order. Fragments straddling a boundary are
// excluded, mirroring a hard crop.
func (p *Page) TextBetween(top, bottom float64) string {
	var parts []string
	for _, f := range p.Fragments {
		if f.Top >= top && f.Bottom <= bottom {
			parts = append(parts, f.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// RowCount reports the total number of table rows on the page.
func (p *Page) RowCount() int {
	n := 0
	for _, t := range p.Tables {
		n += len(t.Rows)
	}
	return n
}
