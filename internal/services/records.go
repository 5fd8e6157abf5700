package services

import (
	"context"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/store"
	"github.com/diewo77/go-rentals/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	MaintenanceKinds     = []string{models.MaintenancePreventive, models.MaintenanceCorrective, models.MaintenancePredictive, models.MaintenanceEmergency}
	InstallationKinds    = []string{models.InstallationInstall, models.InstallationDismantle, models.InstallationRelocation, models.InstallationExpansion}
	InstallationStatuses = []string{models.JobPending, models.JobInProgress, models.JobCompleted, models.JobCancelled}
	Priorities           = []string{models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical}
	RequestKinds         = []string{models.RequestSupport, models.RequestInquiry, models.RequestReturn, models.RequestReview}
)

func ValidateCategory(c *models.Category) validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", c.Name, v)
	return v
}

// ValidateJob checks a maintenance or installation job against its kind set.
func ValidateJob(j *models.Job, kinds []string) validation.Violations {
	v := make(validation.Violations)
	validation.Required("title", j.Title, v)
	validation.Required("kind", j.Kind, v)
	validation.OneOf("kind", j.Kind, kinds, v)
	validation.OneOf("priority", j.Priority, Priorities, v)
	validation.DateRange("end_date", j.StartDate, j.EndDate, v)
	validation.Price("cost", j.Cost, v)
	return v
}

func ValidateInstallation(j *models.InstallationJob) validation.Violations {
	v := ValidateJob(&j.Job, InstallationKinds)
	validation.OneOf("status", j.Status, InstallationStatuses, v)
	return v
}

func ValidateRequest(r *models.ServiceRequest) validation.Violations {
	v := make(validation.Violations)
	validation.Required("title", r.Title, v)
	validation.Required("kind", r.Kind, v)
	validation.OneOf("kind", r.Kind, RequestKinds, v)
	validation.OneOf("priority", r.Priority, Priorities, v)
	validation.OneOf("status", r.Status, models.RequestStatuses, v)
	validation.DateRange("due_at", r.RequestedAt, r.DueAt, v)
	return v
}

func ValidateDocument(d *models.Document) validation.Violations {
	v := make(validation.Violations)
	validation.Required("document_type", d.Type, v)
	validation.OneOf("document_type", d.Type, DocumentTypes, v)
	validation.OneOf("status", d.Status, DocumentStatuses, v)
	if d.CompanyID == uuid.Nil {
		v["company_id"] = "required"
	}
	return v
}

func ValidateIssuer(p *models.IssuerProfile) validation.Violations {
	v := make(validation.Violations)
	validation.Required("legal_name", p.LegalName, v)
	validation.NIT("tax_id", p.TaxID, v)
	validation.Email("email", p.Email, v)
	return v
}

// SnapshotNames copies the current company, asset and kit names onto a
// service request so it keeps reading well after the referenced rows change.
func SnapshotNames(ctx context.Context, db *gorm.DB, r *models.ServiceRequest) error {
	r.CompanyName, r.AssetName, r.KitName = "", "", ""
	if r.CompanyID != nil {
		c, err := store.NewTable[models.Company](db).Get(ctx, *r.CompanyID)
		if err != nil {
			return err
		}
		r.CompanyName = c.DisplayName()
	}
	if r.AssetID != nil {
		a, err := store.NewTable[models.Asset](db).Get(ctx, *r.AssetID)
		if err != nil {
			return err
		}
		r.AssetName = a.Name
	}
	if r.KitID != nil {
		k, err := store.NewTable[models.AssetKit](db).Get(ctx, *r.KitID)
		if err != nil {
			return err
		}
		r.KitName = k.Name
	}
	return nil
}

// Option is a select choice.
type Option struct {
	ID   uuid.UUID
	Name string
}

// Options lists id/name pairs of companies, categories, assets or kits for form selects.
func Options(ctx context.Context, db *gorm.DB, model any, nameColumn string) ([]Option, error) {
	var out []Option
	err := db.WithContext(ctx).Model(model).
		Select("id, " + nameColumn + " AS name").
		Order(nameColumn).
		Scan(&out).Error
	return out, err
}
