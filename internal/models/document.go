package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Document types.
const (
	DocPurchaseOrder = "purchase_order"
	DocQuote         = "quote"
	DocInvoice       = "invoice"
)

// Document statuses.
const (
	DocDraft     = "draft"
	DocSent      = "sent"
	DocApproved  = "approved"
	DocRejected  = "rejected"
	DocCompleted = "completed"
)

// DefaultTaxRate is the Colombian VAT rate in percent.
const DefaultTaxRate = 19.0

// Document is a purchase order, quote or invoice addressed to a client company.
type Document struct {
	Base
	Number       string    `gorm:"column:document_number;size:50;uniqueIndex;not null" json:"document_number"`
	Type         string    `gorm:"column:document_type;size:20;not null" json:"document_type"`
	CompanyID    uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`
	IssueDate    time.Time `gorm:"not null" json:"issue_date"`
	Status       string    `gorm:"size:20;not null;default:draft" json:"status"`
	Observations string    `gorm:"type:text" json:"observations,omitempty"`

	Company *Company        `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Detail  *DocumentDetail `gorm:"constraint:OnDelete:CASCADE" json:"detail,omitempty"`
	Totals  *DocumentTotals `gorm:"constraint:OnDelete:CASCADE" json:"totals,omitempty"`
}

// LineKind discriminates the three line-item collections of a detail.
type LineKind string

const (
	LineAsset        LineKind = "asset"
	LineMaintenance  LineKind = "maintenance"
	LineInstallation LineKind = "installation"
)

// LineItem is anything that contributes a cost to a document subtotal.
type LineItem interface {
	Kind() LineKind
	Cost() float64
}

// AssetLine is a selected asset or kit. LineTotal is Quantity * UnitPrice.
type AssetLine struct {
	AssetID   uuid.UUID `json:"asset_id"`
	Name      string    `json:"name"`
	AssetKind string    `json:"kind"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
}

func (AssetLine) Kind() LineKind  { return LineAsset }
func (l AssetLine) Cost() float64 { return l.LineTotal }

// JobLine is the snapshot of a maintenance or installation job on a document.
type JobLine struct {
	Title               string     `json:"title"`
	JobKind             string     `json:"kind"`
	Priority            string     `json:"priority"`
	StartDate           *time.Time `json:"start_date,omitempty"`
	EndDate             *time.Time `json:"end_date,omitempty"`
	Amount              float64    `json:"cost"`
	Description         string     `json:"description,omitempty"`
	ScheduledActivities []Activity `json:"scheduled_activities,omitempty"`
	RequiredParts       []Part     `json:"required_parts,omitempty"`
	// IsNew marks a job authored inline that has not been inserted yet.
	IsNew bool `json:"is_new,omitempty"`
}

func (l JobLine) Cost() float64 { return l.Amount }

// ToJob converts the snapshot into a job record for insertion.
func (l JobLine) ToJob(client uuid.UUID) Job {
	c := client
	return Job{
		ClientID:            &c,
		Title:               l.Title,
		Description:         l.Description,
		Kind:                l.JobKind,
		Priority:            l.Priority,
		StartDate:           l.StartDate,
		EndDate:             l.EndDate,
		ScheduledActivities: l.ScheduledActivities,
		RequiredParts:       l.RequiredParts,
		Cost:                l.Amount,
	}
}

type MaintenanceLine struct {
	MaintenanceID uuid.UUID `json:"maintenance_id"`
	JobLine
}

func (MaintenanceLine) Kind() LineKind { return LineMaintenance }

type InstallationLine struct {
	InstallationID uuid.UUID `json:"installation_id"`
	JobLine
}

func (InstallationLine) Kind() LineKind { return LineInstallation }

// JobLineFrom snapshots a persisted job.
func JobLineFrom(j Job) JobLine {
	return JobLine{
		Title:               j.Title,
		JobKind:             j.Kind,
		Priority:            j.Priority,
		StartDate:           j.StartDate,
		EndDate:             j.EndDate,
		Amount:              j.Cost,
		Description:         j.Description,
		ScheduledActivities: j.ScheduledActivities,
		RequiredParts:       j.RequiredParts,
	}
}

// DocumentDetail holds the service window and the selected line items (1:1 with Document).
type DocumentDetail struct {
	Base
	DocumentID     uuid.UUID                             `gorm:"type:uuid;uniqueIndex;not null" json:"document_id"`
	StartDate      *time.Time                            `json:"start_date,omitempty"`
	EndDate        *time.Time                            `json:"end_date,omitempty"`
	Days           int                                   `gorm:"not null" json:"days"`
	WorkLocation   string                                `gorm:"size:255" json:"work_location,omitempty"`
	City           string                                `gorm:"size:100" json:"city,omitempty"`
	Address        string                                `gorm:"size:500" json:"address,omitempty"`
	TechnicalNotes string                                `gorm:"type:text" json:"technical_notes,omitempty"`
	Assets         datatypes.JSONSlice[AssetLine]        `json:"assets"`
	Maintenance    datatypes.JSONSlice[MaintenanceLine]  `json:"maintenance"`
	Installations  datatypes.JSONSlice[InstallationLine] `json:"installations"`
}

// Lines flattens the three collections into one list of cost contributors.
func (d *DocumentDetail) Lines() []LineItem {
	out := make([]LineItem, 0, len(d.Assets)+len(d.Maintenance)+len(d.Installations))
	for _, l := range d.Assets {
		out = append(out, l)
	}
	for _, l := range d.Maintenance {
		out = append(out, l)
	}
	for _, l := range d.Installations {
		out = append(out, l)
	}
	return out
}

// DocumentTotals is the persisted rollup of a document (1:1, upserted on document_id).
type DocumentTotals struct {
	Base
	DocumentID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"document_id"`
	Subtotal       float64   `gorm:"not null" json:"subtotal"`
	Discount       float64   `gorm:"not null" json:"discount"`
	TaxRatePercent float64   `gorm:"not null" json:"tax_rate_percent"`
	TaxAmount      float64   `gorm:"not null" json:"tax_amount"`
	OtherTaxes     float64   `gorm:"not null" json:"other_taxes"`
	Total          float64   `gorm:"not null" json:"total"`
}
