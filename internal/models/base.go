package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the UUID primary key and timestamps shared by every table.
// IDs are generated client-side so SQLite and PostgreSQL behave the same.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// GetID returns the primary key.
func (b Base) GetID() uuid.UUID { return b.ID }

func (b *Base) SetID(id uuid.UUID) { b.ID = id }

// EnsureID assigns the primary key ahead of insertion so uploads can be keyed by it.
func (b *Base) EnsureID() uuid.UUID {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return b.ID
}

// Attachment is a file stored in the attachment store and listed on its owner.
type Attachment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	StoragePath string `json:"storage_path"`
	Mime        string `json:"mime"`
	Size        int64  `json:"size"`
}

// AllModels lists every persisted model in dependency order.
func AllModels() []any {
	return []any{
		&User{}, &IssuerProfile{}, &Company{}, &Contact{}, &CompanyUserList{},
		&Category{}, &Asset{}, &AssetKit{}, &MaintenanceJob{}, &InstallationJob{},
		&Document{}, &DocumentDetail{}, &DocumentTotals{}, &ServiceRequest{},
	}
}
