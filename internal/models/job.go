package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Priorities shared by jobs and service requests.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Maintenance kinds.
const (
	MaintenancePreventive = "preventive"
	MaintenanceCorrective = "corrective"
	MaintenancePredictive = "predictive"
	MaintenanceEmergency  = "emergency"
)

// Installation kinds.
const (
	InstallationInstall    = "installation"
	InstallationDismantle  = "dismantling"
	InstallationRelocation = "relocation"
	InstallationExpansion  = "expansion"
)

// Installation statuses.
const (
	JobPending    = "pending"
	JobInProgress = "in_progress"
	JobCompleted  = "completed"
	JobCancelled  = "cancelled"
)

type Activity struct {
	Activity string `json:"activity"`
	Done     bool   `json:"done"`
}

type Part struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// Job is the shape shared by maintenance and installation work orders.
type Job struct {
	ClientID            *uuid.UUID                    `gorm:"type:uuid;index" json:"client_id,omitempty"`
	AssetID             *uuid.UUID                    `gorm:"type:uuid;index" json:"asset_id,omitempty"`
	Title               string                        `gorm:"size:255;not null" json:"title"`
	Description         string                        `gorm:"type:text" json:"description,omitempty"`
	Kind                string                        `gorm:"size:30;not null" json:"kind"`
	Priority            string                        `gorm:"size:20;not null;default:medium" json:"priority"`
	StartDate           *time.Time                    `json:"start_date,omitempty"`
	EndDate             *time.Time                    `json:"end_date,omitempty"`
	ScheduledActivities datatypes.JSONSlice[Activity] `json:"scheduled_activities"`
	RequiredParts       datatypes.JSONSlice[Part]     `json:"required_parts"`
	Cost                float64                       `gorm:"not null;default:0" json:"cost"`
	Technician          string                        `gorm:"size:255" json:"technician,omitempty"`
	Notes               string                        `gorm:"type:text" json:"notes,omitempty"`
}

// Progress returns the share of completed activities in percent.
func (j *Job) Progress() float64 {
	if len(j.ScheduledActivities) == 0 {
		return 0
	}
	done := 0
	for _, a := range j.ScheduledActivities {
		if a.Done {
			done++
		}
	}
	return float64(done) * 100 / float64(len(j.ScheduledActivities))
}

// ActivitiesText renders the activities one per line, done ones prefixed "[x] ".
func (j *Job) ActivitiesText() string {
	lines := make([]string, 0, len(j.ScheduledActivities))
	for _, a := range j.ScheduledActivities {
		if a.Done {
			lines = append(lines, "[x] "+a.Activity)
			continue
		}
		lines = append(lines, a.Activity)
	}
	return strings.Join(lines, "\n")
}

// PartsText renders the parts as "name | quantity | notes" lines.
func (j *Job) PartsText() string {
	lines := make([]string, 0, len(j.RequiredParts))
	for _, p := range j.RequiredParts {
		line := p.Name + " | " + strconv.Itoa(p.Quantity)
		if p.Notes != "" {
			line += " | " + p.Notes
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

type MaintenanceJob struct {
	Base
	Job
	Client *Company `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

type InstallationJob struct {
	Base
	Job
	Status string   `gorm:"size:20;not null;default:pending" json:"status"`
	Client *Company `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}
