package models

import (
	"time"

	"github.com/google/uuid"
)

// Service request kinds.
const (
	RequestSupport = "support"
	RequestInquiry = "inquiry"
	RequestReturn  = "return"
	RequestReview  = "review"
)

// Service request statuses.
const (
	RequestOpen       = "open"
	RequestInProgress = "in_progress"
	RequestResolved   = "resolved"
	RequestClosed     = "closed"
)

// RequestStatuses lists every status in display order.
var RequestStatuses = []string{RequestOpen, RequestInProgress, RequestResolved, RequestClosed}

// ServiceRequest is a ticket raised by or for a client. Names are snapshots
// taken when the request is saved.
type ServiceRequest struct {
	Base
	CompanyID   *uuid.UUID `gorm:"type:uuid;index" json:"company_id,omitempty"`
	AssetID     *uuid.UUID `gorm:"type:uuid;index" json:"asset_id,omitempty"`
	KitID       *uuid.UUID `gorm:"type:uuid;index" json:"kit_id,omitempty"`
	CompanyName string     `gorm:"size:255" json:"company_name,omitempty"`
	AssetName   string     `gorm:"size:255" json:"asset_name,omitempty"`
	KitName     string     `gorm:"size:255" json:"kit_name,omitempty"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Kind        string     `gorm:"size:20;not null" json:"kind"`
	Priority    string     `gorm:"size:20;not null;default:medium" json:"priority"`
	Status      string     `gorm:"size:20;not null;default:open" json:"status"`
	Notify      bool       `json:"notify"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Comments    string     `gorm:"type:text" json:"comments,omitempty"`
}
