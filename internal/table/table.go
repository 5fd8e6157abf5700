// Package table describes list columns once and renders them for the HTML
// list view and the CSV/XLSX exports.
package table

import (
	"html/template"

	"github.com/diewo77/go-rentals/i18n"
)

// Kind selects how a cell is rendered.
type Kind int

const (
	// Plain cells show Value as text.
	Plain Kind = iota
	// Badge cells show Value as a translated, colored pill.
	Badge
	// Custom cells show the trusted HTML returned by Render; exports still use Value.
	Custom
)

// Column describes one list column for rows of type T.
type Column[T any] struct {
	Header string // i18n code
	Kind   Kind
	Value  func(T) string
	Render func(T) template.HTML
}

// Cell is a rendered column value.
type Cell struct {
	Kind Kind
	Text string
	Tone string
	HTML template.HTML
}

// Row is one rendered record. ID is used for row links.
type Row struct {
	ID    string
	Cells []Cell
}

// View is a fully rendered table.
type View struct {
	Headers []string
	Rows    []Row
}

// Build renders items through cols.
func Build[T any](cols []Column[T], items []T, id func(T) string) View {
	v := View{Headers: make([]string, len(cols)), Rows: make([]Row, 0, len(items))}
	for i, c := range cols {
		v.Headers[i] = c.Header
	}
	for _, it := range items {
		row := Row{ID: id(it), Cells: make([]Cell, len(cols))}
		for i, c := range cols {
			cell := Cell{Kind: c.Kind, Text: c.Value(it)}
			switch c.Kind {
			case Badge:
				cell.Tone = Tone(cell.Text)
			case Custom:
				if c.Render != nil {
					cell.HTML = c.Render(it)
				} else {
					cell.HTML = template.HTML(template.HTMLEscapeString(cell.Text))
				}
			}
			row.Cells[i] = cell
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// Records flattens the view for exports: translated headers first, badge codes translated.
func (v View) Records(lang string) [][]string {
	out := make([][]string, 0, len(v.Rows)+1)
	head := make([]string, len(v.Headers))
	for i, h := range v.Headers {
		head[i] = i18n.T(lang, h)
	}
	out = append(out, head)
	for _, r := range v.Rows {
		rec := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			if c.Kind == Badge {
				rec[i] = i18n.T(lang, c.Text)
			} else {
				rec[i] = c.Text
			}
		}
		out = append(out, rec)
	}
	return out
}

var tones = map[string]string{
	"active": "success", "available": "success", "current": "success", "completed": "success",
	"approved": "success", "resolved": "success",
	"rented": "info", "in_progress": "info", "sent": "info", "reserved": "info",
	"in_maintenance": "warning", "in_certification": "warning", "expiring_soon": "warning",
	"pending": "warning", "draft": "warning", "open": "warning", "medium": "warning",
	"expired": "danger", "rejected": "danger", "cancelled": "danger", "critical": "danger",
	"high": "danger", "emergency": "danger",
}

// Tone maps an enum code to a badge color class; unknown codes are neutral.
func Tone(code string) string {
	if t, ok := tones[code]; ok {
		return t
	}
	return "neutral"
}
