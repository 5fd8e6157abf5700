package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	CompanyActive   = "active"
	CompanyInactive = "inactive"
)

// Company is a client of the rental business.
type Company struct {
	Base
	TaxID       string `gorm:"size:20;uniqueIndex;not null" json:"tax_id"`
	LegalName   string `gorm:"size:255;not null" json:"legal_name"`
	TradeName   string `gorm:"size:255" json:"trade_name,omitempty"`
	Email       string `gorm:"size:255" json:"email,omitempty"`
	Phone       string `gorm:"size:50" json:"phone,omitempty"`
	Address     string `gorm:"size:500" json:"address,omitempty"`
	City        string `gorm:"size:100" json:"city,omitempty"`
	ContactName string `gorm:"size:255" json:"contact_name,omitempty"`
	Status      string `gorm:"size:20;not null;default:active" json:"status"`

	LogoURL     string                          `gorm:"size:1000" json:"logo_url,omitempty"`
	LogoPath    string                          `gorm:"size:500" json:"logo_path,omitempty"`
	Attachments datatypes.JSONSlice[Attachment] `json:"attachments"`

	Contacts []Contact `gorm:"constraint:OnDelete:CASCADE" json:"contacts,omitempty"`
}

// DisplayName prefers the trade name.
func (c *Company) DisplayName() string {
	if c.TradeName != "" {
		return c.TradeName
	}
	return c.LegalName
}

// IsActive reports whether the company is marked active.
func (c *Company) IsActive() bool { return c.Status == CompanyActive }

// Contact is a person at a client company.
type Contact struct {
	Base
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	Phone     string    `gorm:"size:50" json:"phone,omitempty"`
	Position  string    `gorm:"size:100" json:"position,omitempty"`
}

const (
	CompanyRoleAdmin      = "admin"
	CompanyRoleTechnician = "technician"
)

// CompanyUser is an account embedded in the company's user list.
//
// SECURITY: Password is stored in plaintext, exactly as the legacy schema does.
// Do not expose this collection to any external surface until it is hashed.
type CompanyUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// CompanyUserList holds all embedded users of one company (1:1).
type CompanyUserList struct {
	Base
	CompanyID uuid.UUID                        `gorm:"type:uuid;uniqueIndex;not null" json:"company_id"`
	Users     datatypes.JSONSlice[CompanyUser] `json:"users"`
}

func (CompanyUserList) TableName() string { return "company_users" }
