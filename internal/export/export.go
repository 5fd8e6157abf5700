// Package export writes list views as CSV or XLSX files.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/diewo77/go-rentals/internal/store"
	"github.com/diewo77/go-rentals/internal/table"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Formats.
const (
	CSV  = "csv"
	XLSX = "xlsx"
)

var (
	ErrUnknownEntity = errors.New("unknown export entity")
	ErrUnknownFormat = errors.New("unknown export format")
)

// Source loads the rows of one entity and renders them through its columns.
type Source struct {
	Search []string
	load   func(ctx context.Context, db *gorm.DB, f store.Filter) (table.View, error)
}

type identified interface{ GetID() uuid.UUID }

func source[T identified](cols []table.Column[T], search []string, joins ...string) Source {
	return Source{
		Search: search,
		load: func(ctx context.Context, db *gorm.DB, f store.Filter) (table.View, error) {
			if f.Order == "" {
				f.Order = "created_at desc"
			}
			items, err := store.NewTable[T](db).Select(ctx, f, joins...)
			if err != nil {
				return table.View{}, err
			}
			return table.Build(cols, items, func(it T) string { return it.GetID().String() }), nil
		},
	}
}

// Entities lists what can be exported, keyed by the URL segment.
var Entities = map[string]Source{
	"companies":     source(table.CompanyColumns, []string{"legal_name", "trade_name", "tax_id", "city"}),
	"categories":    source(table.CategoryColumns, []string{"name"}),
	"assets":        source(table.AssetColumns, []string{"name", "brand", "model", "serial"}, "Category"),
	"kits":          source(table.KitColumns, []string{"name", "brand", "model", "serial"}, "Category"),
	"maintenance":   source(table.MaintenanceColumns, []string{"title", "technician"}, "Client"),
	"installations": source(table.InstallationColumns, []string{"title", "technician"}, "Client"),
	"requests":      source(table.RequestColumns, []string{"title", "company_name", "asset_name", "kit_name"}),
	"documents":     source(table.DocumentColumns, []string{"document_number"}, "Company", "Totals"),
}

// Names returns the exportable entity names, sorted.
func Names() []string {
	out := make([]string, 0, len(Entities))
	for k := range Entities {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Load renders every row of entity matching f.
func Load(ctx context.Context, db *gorm.DB, entity string, f store.Filter) (table.View, error) {
	src, ok := Entities[entity]
	if !ok {
		return table.View{}, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	if f.Search != "" && len(f.SearchColumns) == 0 {
		f.SearchColumns = src.Search
	}
	return src.load(ctx, db, f)
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	if format == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename is the download name for an export taken at now.
func Filename(entity, format string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", entity, now.Format("20060102_150405"), format)
}

// Write encodes v in the given format.
func Write(w io.Writer, format string, v table.View, lang, sheet string) error {
	switch format {
	case CSV:
		return WriteCSV(w, v, lang)
	case XLSX:
		return WriteXLSX(w, v, lang, sheet)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// WriteCSV writes a UTF-8 BOM so spreadsheet tools pick the right encoding.
func WriteCSV(w io.Writer, v table.View, lang string) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(v.Records(lang)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes one sheet with a bold header row and frozen panes.
func WriteXLSX(w io.Writer, v table.View, lang, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()
	if sheet == "" {
		sheet = "Export"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	records := v.Records(lang)
	for r, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		row := make([]any, len(rec))
		for i, s := range rec {
			row[i] = s
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if n := len(v.Headers); n > 0 {
		last, _ := excelize.CoordinatesToCellName(n, 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
		lastCol, _ := excelize.ColumnNumberToName(n)
		if err := f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
			return err
		}
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
