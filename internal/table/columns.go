package table

import (
	"fmt"
	"html/template"
	"strconv"

	"github.com/diewo77/go-rentals/internal/models"
)

func itoa(n int) string { return strconv.Itoa(n) }

func clientName(c *models.Company) string {
	if c == nil {
		return ""
	}
	return c.DisplayName()
}

func categoryName(c *models.Category) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func progressBar(pct float64) template.HTML {
	return template.HTML(fmt.Sprintf(`<div class="progress"><span style="width:%.0f%%"></span></div> %.0f%%`, pct, pct))
}

var CompanyColumns = []Column[models.Company]{
	{Header: "tax_id", Value: func(c models.Company) string { return c.TaxID }},
	{Header: "legal_name", Value: func(c models.Company) string { return c.LegalName }},
	{Header: "trade_name", Value: func(c models.Company) string { return c.TradeName }},
	{Header: "email", Value: func(c models.Company) string { return c.Email }},
	{Header: "phone", Value: func(c models.Company) string { return c.Phone }},
	{Header: "city", Value: func(c models.Company) string { return c.City }},
	{Header: "status", Kind: Badge, Value: func(c models.Company) string { return c.Status }},
}

var ContactColumns = []Column[models.Contact]{
	{Header: "name", Value: func(c models.Contact) string { return c.Name }},
	{Header: "email", Value: func(c models.Contact) string { return c.Email }},
	{Header: "phone", Value: func(c models.Contact) string { return c.Phone }},
}

var CategoryColumns = []Column[models.Category]{
	{Header: "name", Value: func(c models.Category) string { return c.Name }},
	{Header: "description", Value: func(c models.Category) string { return c.Description }},
}

var AssetColumns = []Column[models.Asset]{
	{Header: "name", Value: func(a models.Asset) string { return a.Name }},
	{Header: "kind", Kind: Badge, Value: func(a models.Asset) string { return a.Kind }},
	{Header: "brand", Value: func(a models.Asset) string { return a.Brand }},
	{Header: "model", Value: func(a models.Asset) string { return a.Model }},
	{Header: "serial", Value: func(a models.Asset) string { return a.Serial }},
	{Header: "category", Value: func(a models.Asset) string { return categoryName(a.Category) }},
	{Header: "availability", Kind: Badge, Value: func(a models.Asset) string { return a.Availability }},
	{Header: "stock", Value: func(a models.Asset) string { return itoa(a.Stock) }},
}

var KitColumns = []Column[models.AssetKit]{
	{Header: "name", Value: func(k models.AssetKit) string { return k.Name }},
	{Header: "kind", Kind: Badge, Value: func(k models.AssetKit) string { return k.Kind }},
	{Header: "category", Value: func(k models.AssetKit) string { return categoryName(k.Category) }},
	{Header: "components", Value: func(k models.AssetKit) string { return itoa(k.ComponentCount()) }},
	{Header: "availability", Kind: Badge, Value: func(k models.AssetKit) string { return k.Availability }},
}

var MaintenanceColumns = []Column[models.MaintenanceJob]{
	{Header: "title", Value: func(j models.MaintenanceJob) string { return j.Title }},
	{Header: "client", Value: func(j models.MaintenanceJob) string { return clientName(j.Client) }},
	{Header: "kind", Kind: Badge, Value: func(j models.MaintenanceJob) string { return j.Kind }},
	{Header: "priority", Kind: Badge, Value: func(j models.MaintenanceJob) string { return j.Priority }},
	{Header: "start_date", Value: func(j models.MaintenanceJob) string { return DatePtr(j.StartDate) }},
	{Header: "end_date", Value: func(j models.MaintenanceJob) string { return DatePtr(j.EndDate) }},
	{Header: "cost", Value: func(j models.MaintenanceJob) string { return Money(j.Cost) }},
	{
		Header: "progress", Kind: Custom,
		Value:  func(j models.MaintenanceJob) string { return fmt.Sprintf("%.0f%%", j.Progress()) },
		Render: func(j models.MaintenanceJob) template.HTML { return progressBar(j.Progress()) },
	},
}

var InstallationColumns = []Column[models.InstallationJob]{
	{Header: "title", Value: func(j models.InstallationJob) string { return j.Title }},
	{Header: "client", Value: func(j models.InstallationJob) string { return clientName(j.Client) }},
	{Header: "kind", Kind: Badge, Value: func(j models.InstallationJob) string { return j.Kind }},
	{Header: "priority", Kind: Badge, Value: func(j models.InstallationJob) string { return j.Priority }},
	{Header: "status", Kind: Badge, Value: func(j models.InstallationJob) string { return j.Status }},
	{Header: "start_date", Value: func(j models.InstallationJob) string { return DatePtr(j.StartDate) }},
	{Header: "cost", Value: func(j models.InstallationJob) string { return Money(j.Cost) }},
}

var RequestColumns = []Column[models.ServiceRequest]{
	{Header: "title", Value: func(r models.ServiceRequest) string { return r.Title }},
	{Header: "company", Value: func(r models.ServiceRequest) string { return r.CompanyName }},
	{Header: "kind", Kind: Badge, Value: func(r models.ServiceRequest) string { return r.Kind }},
	{Header: "priority", Kind: Badge, Value: func(r models.ServiceRequest) string { return r.Priority }},
	{Header: "status", Kind: Badge, Value: func(r models.ServiceRequest) string { return r.Status }},
	{Header: "created_at", Value: func(r models.ServiceRequest) string { return Date(r.CreatedAt) }},
}

var DocumentColumns = []Column[models.Document]{
	{Header: "number", Value: func(d models.Document) string { return d.Number }},
	{Header: "kind", Kind: Badge, Value: func(d models.Document) string { return d.Type }},
	{Header: "company", Value: func(d models.Document) string { return clientName(d.Company) }},
	{Header: "issue_date", Value: func(d models.Document) string { return Date(d.IssueDate) }},
	{Header: "status", Kind: Badge, Value: func(d models.Document) string { return d.Status }},
	{
		Header: "total",
		Value: func(d models.Document) string {
			if d.Totals == nil {
				return ""
			}
			return Money(d.Totals.Total)
		},
	},
}
