// Package pdf renders a document totals view as a Letter-size PDF.
package pdf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/diewo77/go-rentals/i18n"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/diewo77/go-rentals/internal/table"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	titleStyle  = props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}
	headStyle   = props.Text{Size: 9, Style: fontstyle.Bold}
	bodyStyle   = props.Text{Size: 9}
	rightStyle  = props.Text{Size: 9, Align: align.Right}
	strongRight = props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}
	mutedStyle  = props.Text{Size: 8, Color: &props.Color{Red: 110, Green: 110, Blue: 110}}
)

// Filename is the download name of a document PDF.
func Filename(doc models.Document) string {
	name := strings.TrimSpace(doc.Number)
	if name == "" {
		name = "documento"
	}
	return name + ".pdf"
}

// Render lays out issuer, client, service window, the three line tables and
// the totals block in a single pass.
func Render(v *services.TotalsView, lang string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.Letter).
		WithLeftMargin(12).
		WithRightMargin(12).
		WithTopMargin(12).
		Build()
	m := maroto.New(cfg)
	t := func(code string) string { return i18n.T(lang, code) }

	header(m, v, t)
	parties(m, v, t)
	window(m, v, t)
	assetLines(m, v.Detail.Assets, t)
	jobLines(m, t("maintenance_lines"), maintenanceRows(v.Detail.Maintenance, t))
	jobLines(m, t("installation_lines"), installationRows(v.Detail.Installations, t))
	totals(m, v.Totals, t)
	if v.Document.Observations != "" {
		m.AddRows(text.NewRow(6, t("observations"), headStyle))
		m.AddAutoRow(text.NewCol(12, v.Document.Observations, bodyStyle))
	}
	if v.Issuer != nil && v.Issuer.FooterNote != "" {
		m.AddRows(line.NewRow(4))
		m.AddAutoRow(text.NewCol(12, v.Issuer.FooterNote, mutedStyle))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func header(m core.Maroto, v *services.TotalsView, t func(string) string) {
	issuer := "-"
	if v.Issuer != nil {
		issuer = v.Issuer.LegalName
	}
	m.AddRow(10,
		text.NewCol(7, issuer, props.Text{Size: 13, Style: fontstyle.Bold}),
		text.NewCol(5, t(v.Document.Type)+" "+v.Document.Number, titleStyle),
	)
	m.AddRow(5,
		col.New(7),
		text.NewCol(5, t("issue_date")+": "+table.Date(v.Document.IssueDate), rightStyle),
	)
	m.AddRow(5,
		col.New(7),
		text.NewCol(5, t("status")+": "+t(v.Document.Status), rightStyle),
	)
	m.AddRows(line.NewRow(4))
}

func parties(m core.Maroto, v *services.TotalsView, t func(string) string) {
	m.AddRow(6,
		text.NewCol(6, t("nav.issuer"), headStyle),
		text.NewCol(6, t("client"), headStyle),
	)
	var issuer []string
	if v.Issuer != nil {
		issuer = nonEmpty(v.Issuer.LegalName, prefixed(t("tax_id"), v.Issuer.TaxID), v.Issuer.Address, v.Issuer.City, v.Issuer.Phone, v.Issuer.Email)
	}
	c := v.Company
	client := nonEmpty(c.LegalName, prefixed(t("tax_id"), c.TaxID), c.Address, c.City, c.Phone, c.Email)
	m.AddAutoRow(
		text.NewCol(6, strings.Join(issuer, "\n"), bodyStyle),
		text.NewCol(6, strings.Join(client, "\n"), bodyStyle),
	)
	m.AddRows(line.NewRow(4))
}

func window(m core.Maroto, v *services.TotalsView, t func(string) string) {
	d := v.Detail
	m.AddRow(5,
		text.NewCol(3, t("start_date")+": "+table.DatePtr(d.StartDate), bodyStyle),
		text.NewCol(3, t("end_date")+": "+table.DatePtr(d.EndDate), bodyStyle),
		text.NewCol(2, t("days")+": "+strconv.Itoa(d.Days), bodyStyle),
		text.NewCol(4, t("work_location")+": "+d.WorkLocation, bodyStyle),
	)
	if place := strings.Join(nonEmpty(d.Address, d.City), ", "); place != "" {
		m.AddRow(5, text.NewCol(12, t("address")+": "+place, bodyStyle))
	}
	if d.TechnicalNotes != "" {
		m.AddAutoRow(text.NewCol(12, t("technical_notes")+": "+d.TechnicalNotes, bodyStyle))
	}
}

func assetLines(m core.Maroto, lines []models.AssetLine, t func(string) string) {
	if len(lines) == 0 {
		return
	}
	m.AddRow(8, text.NewCol(12, t("assets_lines"), props.Text{Size: 10, Style: fontstyle.Bold, Top: 3}))
	m.AddRow(6,
		text.NewCol(5, t("name"), headStyle),
		text.NewCol(2, t("kind"), headStyle),
		text.NewCol(1, t("quantity"), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, t("unit_price"), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, t("line_total"), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	for _, l := range lines {
		m.AddAutoRow(
			text.NewCol(5, l.Name, bodyStyle),
			text.NewCol(2, t(l.AssetKind), bodyStyle),
			text.NewCol(1, strconv.Itoa(l.Quantity), rightStyle),
			text.NewCol(2, table.Money(l.UnitPrice), rightStyle),
			text.NewCol(2, table.Money(l.LineTotal), rightStyle),
		)
	}
}

type jobRow struct {
	title, kind, period string
	cost                float64
}

func maintenanceRows(lines []models.MaintenanceLine, t func(string) string) []jobRow {
	out := make([]jobRow, len(lines))
	for i, l := range lines {
		out[i] = jobRowOf(l.JobLine, t)
	}
	return out
}

func installationRows(lines []models.InstallationLine, t func(string) string) []jobRow {
	out := make([]jobRow, len(lines))
	for i, l := range lines {
		out[i] = jobRowOf(l.JobLine, t)
	}
	return out
}

func jobRowOf(l models.JobLine, t func(string) string) jobRow {
	return jobRow{
		title:  l.Title,
		kind:   t(l.JobKind) + " / " + t(l.Priority),
		period: table.DatePtr(l.StartDate) + " - " + table.DatePtr(l.EndDate),
		cost:   l.Cost(),
	}
}

func jobLines(m core.Maroto, title string, rows []jobRow) {
	if len(rows) == 0 {
		return
	}
	m.AddRow(8, text.NewCol(12, title, props.Text{Size: 10, Style: fontstyle.Bold, Top: 3}))
	for _, r := range rows {
		m.AddAutoRow(
			text.NewCol(5, r.title, bodyStyle),
			text.NewCol(3, r.kind, bodyStyle),
			text.NewCol(2, r.period, bodyStyle),
			text.NewCol(2, table.Money(r.cost), rightStyle),
		)
	}
}

func totals(m core.Maroto, tot services.Totals, t func(string) string) {
	m.AddRows(line.NewRow(6))
	row := func(label, value string, style props.Text) {
		m.AddRow(6,
			col.New(6),
			text.NewCol(3, label, style),
			text.NewCol(3, value, style),
		)
	}
	row(t("subtotal"), table.Money(tot.Subtotal), rightStyle)
	if tot.Discount != 0 {
		row(t("discount"), "-"+table.Money(tot.Discount), rightStyle)
	}
	row(fmt.Sprintf("%s (%s%%)", t("tax_amount"), strconv.FormatFloat(tot.TaxRatePercent, 'f', -1, 64)), table.Money(tot.TaxAmount), rightStyle)
	if tot.OtherTaxes != 0 {
		row(t("other_taxes"), table.Money(tot.OtherTaxes), rightStyle)
	}
	row(t("total"), table.Money(tot.Total), strongRight)
}

func prefixed(label, value string) string {
	if value == "" {
		return ""
	}
	return label + " " + value
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
