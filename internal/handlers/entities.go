package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-rentals/internal/attachments"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/diewo77/go-rentals/internal/store"
	"github.com/diewo77/go-rentals/internal/table"
	"github.com/diewo77/go-rentals/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Deps are the collaborators shared by every handler.
type Deps struct {
	DB        *gorm.DB
	Files     *services.Files
	Log       *zap.Logger
	Companies *services.CompanyService
	Equipment *services.EquipmentService
	Documents *services.DocumentService
	Dashboard *services.DashboardService
	Users     *services.UserService
	Issuer    *services.IssuerService
}

// NewDeps builds the services over db and files.
func NewDeps(db *gorm.DB, files *services.Files, log *zap.Logger) Deps {
	if log == nil {
		log = zap.NewNop()
	}
	return Deps{
		DB:        db,
		Files:     files,
		Log:       log,
		Companies: services.NewCompanyService(db, files, log),
		Equipment: services.NewEquipmentService(db, files, log),
		Documents: services.NewDocumentService(db, log),
		Dashboard: services.NewDashboardService(db),
		Users:     services.NewUserService(db),
		Issuer:    services.NewIssuerService(db),
	}
}

func companyForm(r *http.Request, c *models.Company) {
	c.TaxID = strings.TrimSpace(r.FormValue("tax_id"))
	c.LegalName = strings.TrimSpace(r.FormValue("legal_name"))
	c.TradeName = strings.TrimSpace(r.FormValue("trade_name"))
	c.Email = strings.TrimSpace(r.FormValue("email"))
	c.Phone = strings.TrimSpace(r.FormValue("phone"))
	c.Address = r.FormValue("address")
	c.City = r.FormValue("city")
	c.ContactName = r.FormValue("contact_name")
	c.Status = r.FormValue("status")
	if c.Status == "" {
		c.Status = models.CompanyActive
	}
}

func contactForm(r *http.Request, c *models.Contact) {
	if id := formUUID(r, "company_id"); id != nil {
		c.CompanyID = *id
	}
	c.Name = strings.TrimSpace(r.FormValue("name"))
	c.Email = strings.TrimSpace(r.FormValue("email"))
	c.Phone = strings.TrimSpace(r.FormValue("phone"))
	c.Position = r.FormValue("position")
}

func categoryForm(r *http.Request, c *models.Category) {
	c.Name = strings.TrimSpace(r.FormValue("name"))
	c.Description = r.FormValue("description")
}

func equipmentForm(r *http.Request, e *models.Equipment) {
	e.Name = strings.TrimSpace(r.FormValue("name"))
	e.Brand = r.FormValue("brand")
	e.Model = r.FormValue("model")
	e.Serial = r.FormValue("serial")
	e.CategoryID = formUUID(r, "category_id")
	e.Availability = orDefault(r.FormValue("availability"), models.Available)
	e.CertificationStatus = orDefault(r.FormValue("certification_status"), models.StatusNotApplicable)
	e.MaintenanceStatus = orDefault(r.FormValue("maintenance_status"), models.StatusNotApplicable)
	e.CertificationDue = formDate(r, "certification_due")
	e.Stock = formInt(r, "stock")
	e.Location = r.FormValue("location")
	e.Notes = r.FormValue("notes")
}

// jobForm reads the shared job fields. Activities are one per line, "[x] "
// marking done ones; parts are "name | quantity | notes" lines.
func jobForm(r *http.Request, j *models.Job) {
	j.ClientID = formUUID(r, "client_id")
	j.AssetID = formUUID(r, "asset_id")
	j.Title = strings.TrimSpace(r.FormValue("title"))
	j.Description = r.FormValue("description")
	j.Kind = r.FormValue("kind")
	j.Priority = orDefault(r.FormValue("priority"), models.PriorityMedium)
	j.StartDate = formDate(r, "start_date")
	j.EndDate = formDate(r, "end_date")
	j.Cost = formFloat(r, "cost")
	j.Technician = r.FormValue("technician")
	j.Notes = r.FormValue("notes")
	j.ScheduledActivities = datatypes.JSONSlice[models.Activity](parseActivities(r.FormValue("activities")))
	j.RequiredParts = datatypes.JSONSlice[models.Part](parseParts(r.FormValue("parts")))
}

func parseActivities(text string) []models.Activity {
	out := []models.Activity{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		done := strings.HasPrefix(strings.ToLower(line), "[x]")
		if done {
			line = strings.TrimSpace(line[3:])
		}
		out = append(out, models.Activity{Activity: line, Done: done})
	}
	return out
}

func parseParts(text string) []models.Part {
	out := []models.Part{}
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Split(line, "|")
		name := strings.TrimSpace(fields[0])
		if name == "" {
			continue
		}
		p := models.Part{Name: name, Quantity: 1}
		if len(fields) > 1 {
			if n, err := strconv.Atoi(strings.TrimSpace(fields[1])); err == nil {
				p.Quantity = n
			}
		}
		if len(fields) > 2 {
			p.Notes = strings.TrimSpace(fields[2])
		}
		out = append(out, p)
	}
	return out
}

func requestForm(r *http.Request, s *models.ServiceRequest) {
	s.CompanyID = formUUID(r, "company_id")
	s.AssetID = formUUID(r, "asset_id")
	s.KitID = formUUID(r, "kit_id")
	s.Title = strings.TrimSpace(r.FormValue("title"))
	s.Description = r.FormValue("description")
	s.Kind = r.FormValue("kind")
	s.Priority = orDefault(r.FormValue("priority"), models.PriorityMedium)
	s.Status = orDefault(r.FormValue("status"), models.RequestOpen)
	s.Notify = formBool(r, "notify")
	s.RequestedAt = formDate(r, "requested_at")
	s.DueAt = formDate(r, "due_at")
	s.Comments = r.FormValue("comments")
}

func documentForm(r *http.Request, d *models.Document) {
	d.Number = strings.TrimSpace(r.FormValue("document_number"))
	d.Type = r.FormValue("document_type")
	if id := formUUID(r, "company_id"); id != nil {
		d.CompanyID = *id
	}
	if t := formDate(r, "issue_date"); t != nil {
		d.IssueDate = *t
	}
	d.Status = orDefault(r.FormValue("status"), models.DocDraft)
	d.Observations = r.FormValue("observations")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// prepareImageAndAttachments uploads the form's image and attachments for an
// owner and applies them. The replaced image becomes stale.
func prepareImageAndAttachments(ctx context.Context, files *services.Files, r *http.Request, bucket string, owner uuid.UUID, imageField string, imageURL, imagePath *string, list *datatypes.JSONSlice[models.Attachment]) ([]string, []string, error) {
	up, err := uploadForm(ctx, files, r, bucket, owner, imageField, "attachments")
	if err != nil {
		return nil, nil, err
	}
	var stale []string
	if up.ImagePath != "" {
		if *imagePath != "" && *imagePath != up.ImagePath {
			stale = append(stale, *imagePath)
		}
		*imageURL, *imagePath = up.ImageURL, up.ImagePath
	}
	if len(up.Attachments) > 0 {
		*list = append(*list, up.Attachments...)
	}
	return stale, up.paths(), nil
}

type selectOptions struct {
	db *gorm.DB
}

func (o selectOptions) load(ctx context.Context, out map[string]any, keys ...string) error {
	sources := map[string]struct {
		model  any
		column string
	}{
		"Companies":  {&models.Company{}, "legal_name"},
		"Categories": {&models.Category{}, "name"},
		"Assets":     {&models.Asset{}, "name"},
		"Kits":       {&models.AssetKit{}, "name"},
	}
	for _, k := range keys {
		src := sources[k]
		opts, err := services.Options(ctx, o.db, src.model, src.column)
		if err != nil {
			return err
		}
		out[k] = opts
	}
	return nil
}

// Resources builds the CRUD resources of every entity.
type Resources struct {
	Companies     *Resource[models.Company, *models.Company]
	Contacts      *Resource[models.Contact, *models.Contact]
	Categories    *Resource[models.Category, *models.Category]
	Assets        *Resource[models.Asset, *models.Asset]
	Kits          *Resource[models.AssetKit, *models.AssetKit]
	Maintenance   *Resource[models.MaintenanceJob, *models.MaintenanceJob]
	Installations *Resource[models.InstallationJob, *models.InstallationJob]
	Requests      *Resource[models.ServiceRequest, *models.ServiceRequest]
	Documents     *Resource[models.Document, *models.Document]
}

func NewResources(d Deps) *Resources {
	opts := selectOptions{db: d.DB}
	eq := d.Equipment
	return &Resources{
		Companies: &Resource[models.Company, *models.Company]{
			Name:     "companies",
			Table:    d.Companies.Companies,
			Columns:  table.CompanyColumns,
			Search:   []string{"legal_name", "trade_name", "tax_id", "city"},
			Filters:  []string{"status"},
			Order:    "legal_name",
			Form:     companyForm,
			Validate: services.ValidateCompany,
			Prepare: func(ctx context.Context, r *http.Request, c *models.Company, _ bool) ([]string, []string, error) {
				return prepareImageAndAttachments(ctx, d.Files, r, attachments.BucketCompanies, c.ID, "logo", &c.LogoURL, &c.LogoPath, &c.Attachments)
			},
			Remove: d.Companies.Delete,
			Files:  d.Files,
			Log:    d.Log,
		},
		Contacts: &Resource[models.Contact, *models.Contact]{
			Name:     "contacts",
			Table:    d.Companies.Contacts,
			Columns:  table.ContactColumns,
			Search:   []string{"name", "email"},
			Filters:  []string{"company_id"},
			Order:    "name",
			Form:     contactForm,
			Validate: services.ValidateContact,
			Insert: func(ctx context.Context, c *models.Contact) error {
				return d.Companies.AddContact(ctx, c.CompanyID, c)
			},
			Options: func(ctx context.Context) (map[string]any, error) {
				out := map[string]any{}
				return out, opts.load(ctx, out, "Companies")
			},
			Files: d.Files,
			Log:   d.Log,
		},
		Categories: &Resource[models.Category, *models.Category]{
			Name:     "categories",
			Table:    eq.Categories,
			Columns:  table.CategoryColumns,
			Search:   []string{"name", "description"},
			Order:    "name",
			Form:     categoryForm,
			Validate: services.ValidateCategory,
			Files:    d.Files,
			Log:      d.Log,
		},
		Assets: &Resource[models.Asset, *models.Asset]{
			Name:    "assets",
			Table:   eq.Assets,
			Columns: table.AssetColumns,
			Search:  []string{"name", "brand", "model", "serial"},
			Filters: []string{"kind", "availability", "category_id"},
			Joins:   []string{"Category"},
			Form: func(r *http.Request, a *models.Asset) {
				equipmentForm(r, &a.Equipment)
				a.Kind = r.FormValue("kind")
			},
			Validate: func(a *models.Asset) validation.Violations {
				return services.ValidateEquipment(&a.Equipment, a.Kind, services.AssetKinds)
			},
			Prepare: func(ctx context.Context, r *http.Request, a *models.Asset, _ bool) ([]string, []string, error) {
				a.Category = nil
				if err := eq.ResolveCategory(ctx, &a.Equipment, r.FormValue("new_category")); err != nil {
					return nil, nil, err
				}
				return prepareImageAndAttachments(ctx, d.Files, r, attachments.BucketAssets, a.ID, "image", &a.ImageURL, &a.ImagePath, &a.Attachments)
			},
			Remove:  eq.DeleteAsset,
			Options: equipmentOptions(opts, services.AssetKinds),
			Files:   d.Files,
			Log:     d.Log,
		},
		Kits: &Resource[models.AssetKit, *models.AssetKit]{
			Name:    "kits",
			Table:   eq.Kits,
			Columns: table.KitColumns,
			Search:  []string{"name", "brand", "model", "serial"},
			Filters: []string{"kind", "availability", "category_id"},
			Joins:   []string{"Category"},
			Form: func(r *http.Request, k *models.AssetKit) {
				equipmentForm(r, &k.Equipment)
				k.Kind = r.FormValue("kind")
			},
			Validate: func(k *models.AssetKit) validation.Violations {
				return services.ValidateEquipment(&k.Equipment, k.Kind, services.KitKinds)
			},
			Prepare: func(ctx context.Context, r *http.Request, k *models.AssetKit, _ bool) ([]string, []string, error) {
				k.Category = nil
				if err := eq.ResolveCategory(ctx, &k.Equipment, r.FormValue("new_category")); err != nil {
					return nil, nil, err
				}
				return prepareImageAndAttachments(ctx, d.Files, r, attachments.BucketKits, k.ID, "image", &k.ImageURL, &k.ImagePath, &k.Attachments)
			},
			Remove:  eq.DeleteKit,
			Options: equipmentOptions(opts, services.KitKinds),
			Files:   d.Files,
			Log:     d.Log,
		},
		Maintenance: &Resource[models.MaintenanceJob, *models.MaintenanceJob]{
			Name:    "maintenance",
			Table:   d.Documents.Maintenance,
			Columns: table.MaintenanceColumns,
			Search:  []string{"title", "technician"},
			Filters: []string{"kind", "priority", "client_id"},
			Joins:   []string{"Client"},
			Order:   "start_date desc",
			Form: func(r *http.Request, j *models.MaintenanceJob) {
				jobForm(r, &j.Job)
			},
			Validate: func(j *models.MaintenanceJob) validation.Violations {
				return services.ValidateJob(&j.Job, services.MaintenanceKinds)
			},
			Prepare: func(_ context.Context, _ *http.Request, j *models.MaintenanceJob, _ bool) ([]string, []string, error) {
				j.Client = nil
				return nil, nil, nil
			},
			Options: jobOptions(opts, services.MaintenanceKinds, nil),
			Files:   d.Files,
			Log:     d.Log,
		},
		Installations: &Resource[models.InstallationJob, *models.InstallationJob]{
			Name:    "installations",
			Table:   d.Documents.Installations,
			Columns: table.InstallationColumns,
			Search:  []string{"title", "technician"},
			Filters: []string{"kind", "priority", "status", "client_id"},
			Joins:   []string{"Client"},
			Order:   "start_date desc",
			Form: func(r *http.Request, j *models.InstallationJob) {
				jobForm(r, &j.Job)
				j.Status = orDefault(r.FormValue("status"), models.JobPending)
			},
			Validate: services.ValidateInstallation,
			Prepare: func(_ context.Context, _ *http.Request, j *models.InstallationJob, _ bool) ([]string, []string, error) {
				j.Client = nil
				return nil, nil, nil
			},
			Options: jobOptions(opts, services.InstallationKinds, services.InstallationStatuses),
			Files:   d.Files,
			Log:     d.Log,
		},
		Requests: &Resource[models.ServiceRequest, *models.ServiceRequest]{
			Name:     "requests",
			Table:    store.NewTable[models.ServiceRequest](d.DB),
			Columns:  table.RequestColumns,
			Search:   []string{"title", "company_name", "asset_name", "kit_name"},
			Filters:  []string{"status", "kind", "priority", "company_id"},
			Form:     requestForm,
			Validate: services.ValidateRequest,
			Prepare: func(ctx context.Context, _ *http.Request, s *models.ServiceRequest, isNew bool) ([]string, []string, error) {
				if isNew && s.RequestedAt == nil {
					now := time.Now()
					s.RequestedAt = &now
				}
				return nil, nil, services.SnapshotNames(ctx, d.DB, s)
			},
			Options: func(ctx context.Context) (map[string]any, error) {
				out := map[string]any{
					"Kinds":      services.RequestKinds,
					"Priorities": services.Priorities,
					"Statuses":   models.RequestStatuses,
				}
				return out, opts.load(ctx, out, "Companies", "Assets", "Kits")
			},
			Files: d.Files,
			Log:   d.Log,
		},
		Documents: &Resource[models.Document, *models.Document]{
			Name:     "documents",
			Table:    d.Documents.Documents,
			Columns:  table.DocumentColumns,
			Search:   []string{"document_number"},
			Filters:  []string{"document_type", "status", "company_id"},
			Joins:    []string{"Company", "Totals"},
			Form:     documentForm,
			Validate: services.ValidateDocument,
			Prepare: func(_ context.Context, _ *http.Request, doc *models.Document, _ bool) ([]string, []string, error) {
				doc.Company, doc.Detail, doc.Totals = nil, nil, nil
				return nil, nil, nil
			},
			Insert: d.Documents.Create,
			Remove: d.Documents.Delete,
			Options: func(ctx context.Context) (map[string]any, error) {
				out := map[string]any{
					"Types":    services.DocumentTypes,
					"Statuses": services.DocumentStatuses,
				}
				return out, opts.load(ctx, out, "Companies")
			},
			Files: d.Files,
			Log:   d.Log,
		},
	}
}

func equipmentOptions(o selectOptions, kinds []string) func(context.Context) (map[string]any, error) {
	return func(ctx context.Context) (map[string]any, error) {
		out := map[string]any{
			"Kinds":        kinds,
			"Availability": services.AvailabilityValues,
			"CertStatuses": services.EquipmentStatusList,
		}
		return out, o.load(ctx, out, "Categories")
	}
}

func jobOptions(o selectOptions, kinds, statuses []string) func(context.Context) (map[string]any, error) {
	return func(ctx context.Context) (map[string]any, error) {
		out := map[string]any{
			"Kinds":      kinds,
			"Priorities": services.Priorities,
			"Statuses":   statuses,
		}
		return out, o.load(ctx, out, "Companies", "Assets")
	}
}
