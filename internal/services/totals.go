package services

import (
	"math"
	"time"

	"github.com/diewo77/go-rentals/internal/models"
)

// Round2 rounds to two decimals, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DayCount is ceil((end - start) / 24h) clamped at zero. The end day is not
// counted inclusively: 14 Jan to 15 Jan is one day, equal dates are zero.
func DayCount(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// DayCountPtr is DayCount for optional dates; a missing date yields zero.
func DayCountPtr(start, end *time.Time) int {
	if start == nil || end == nil {
		return 0
	}
	return DayCount(*start, *end)
}

// Subtotal sums the cost of every line.
func Subtotal(lines []models.LineItem) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Cost()
	}
	return Round2(sum)
}

// SubtotalByKind splits the subtotal per collection; empty kinds map to 0.
func SubtotalByKind(lines []models.LineItem) map[models.LineKind]float64 {
	out := map[models.LineKind]float64{
		models.LineAsset:        0,
		models.LineMaintenance:  0,
		models.LineInstallation: 0,
	}
	for _, l := range lines {
		out[l.Kind()] += l.Cost()
	}
	for k, v := range out {
		out[k] = Round2(v)
	}
	return out
}

// Adjustments are the operator-entered inputs applied on top of the subtotal.
type Adjustments struct {
	Discount       float64 `json:"discount"`
	TaxRatePercent float64 `json:"tax_rate_percent"`
	OtherTaxes     float64 `json:"other_taxes"`
}

// DefaultAdjustments has no discount and the default tax rate.
func DefaultAdjustments() Adjustments {
	return Adjustments{TaxRatePercent: models.DefaultTaxRate}
}

// Totals is the computed rollup of a document.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	TaxRatePercent float64 `json:"tax_rate_percent"`
	TaxAmount      float64 `json:"tax_amount"`
	OtherTaxes     float64 `json:"other_taxes"`
	Total          float64 `json:"total"`
}

// ComputeTotals applies discount, tax and other taxes to subtotal:
//
//	tax   = round2((subtotal - discount) * rate / 100)
//	total = round2(subtotal - discount + tax + other)
func ComputeTotals(subtotal float64, adj Adjustments) Totals {
	sub := Round2(subtotal)
	discount := Round2(adj.Discount)
	other := Round2(adj.OtherTaxes)
	tax := Round2((sub - discount) * adj.TaxRatePercent / 100)
	return Totals{
		Subtotal:       sub,
		Discount:       discount,
		TaxRatePercent: adj.TaxRatePercent,
		TaxAmount:      tax,
		OtherTaxes:     other,
		Total:          Round2(sub - discount + tax + other),
	}
}

// Record converts the totals into the persisted row for a document.
func (t Totals) Record(doc models.Document) models.DocumentTotals {
	return models.DocumentTotals{
		DocumentID:     doc.ID,
		Subtotal:       t.Subtotal,
		Discount:       t.Discount,
		TaxRatePercent: t.TaxRatePercent,
		TaxAmount:      t.TaxAmount,
		OtherTaxes:     t.OtherTaxes,
		Total:          t.Total,
	}
}

// AdjustmentsFrom recovers the operator inputs from a stored totals row.
func AdjustmentsFrom(rec *models.DocumentTotals) Adjustments {
	if rec == nil {
		return DefaultAdjustments()
	}
	return Adjustments{Discount: rec.Discount, TaxRatePercent: rec.TaxRatePercent, OtherTaxes: rec.OtherTaxes}
}
