package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Asset kinds.
const (
	AssetEquipment = "equipment"
	AssetTool      = "tool"
)

// Kit kinds.
const (
	KitEquipment = "equipment_kit"
	KitToolCase  = "tool_case"
)

// Availability values.
const (
	Available     = "available"
	Rented        = "rented"
	InMaintenance = "in_maintenance"
	Reserved      = "reserved"
)

// Certification and maintenance status values.
const (
	StatusCurrent         = "current"
	StatusInCertification = "in_certification"
	StatusExpiringSoon    = "expiring_soon"
	StatusExpired         = "expired"
	StatusNotApplicable   = "n_a"
)

type Category struct {
	Base
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:500" json:"description,omitempty"`
}

// Equipment holds the columns shared by assets and kits.
type Equipment struct {
	Name                string     `gorm:"size:255;not null" json:"name"`
	Brand               string     `gorm:"size:100" json:"brand,omitempty"`
	Model               string     `gorm:"size:100" json:"model,omitempty"`
	Serial              string     `gorm:"size:100" json:"serial,omitempty"`
	CategoryID          *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Availability        string     `gorm:"size:30;not null;default:available" json:"availability"`
	CertificationStatus string     `gorm:"size:30;not null;default:n_a" json:"certification_status"`
	MaintenanceStatus   string     `gorm:"size:30;not null;default:n_a" json:"maintenance_status"`
	CertificationDue    *time.Time `json:"certification_due,omitempty"`
	Stock               int        `gorm:"not null" json:"stock"`
	Location            string     `gorm:"size:255" json:"location,omitempty"`
	Notes               string     `gorm:"type:text" json:"notes,omitempty"`
	ImageURL            string     `gorm:"size:1000" json:"image_url,omitempty"`
	ImagePath           string     `gorm:"size:500" json:"image_path,omitempty"`

	Attachments datatypes.JSONSlice[Attachment] `json:"attachments"`
}

type Asset struct {
	Base
	Equipment
	Kind     string    `gorm:"size:20;not null" json:"kind"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// KitComponent is an item bundled inside an asset kit.
type KitComponent struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	Serial       string `json:"serial,omitempty"`
	Model        string `json:"model,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	ImagePath    string `json:"image_path,omitempty"`
	DocumentURL  string `json:"document_url,omitempty"`
	DocumentPath string `json:"document_path,omitempty"`
	DocumentName string `json:"document_name,omitempty"`
}

// AssetKit is a composite asset. Its components live only in the JSON column.
type AssetKit struct {
	Base
	Equipment
	Kind       string                            `gorm:"size:20;not null" json:"kind"`
	Components datatypes.JSONSlice[KitComponent] `json:"components"`
	Category   *Category                         `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// ComponentCount sums component quantities.
func (k *AssetKit) ComponentCount() int {
	n := 0
	for _, c := range k.Components {
		n += c.Quantity
	}
	return n
}
