package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diewo77/go-rentals/internal/attachments"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/store"
	"github.com/diewo77/go-rentals/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrDuplicateUser = errors.New("a user with this email already exists for the company")
	ErrUserNotFound  = errors.New("company user not found")
)

// CompanyUserRoles lists accepted roles for embedded company users.
var CompanyUserRoles = []string{models.CompanyRoleAdmin, models.CompanyRoleTechnician}

// CompanyService manages client companies and their dependent collections.
type CompanyService struct {
	db    *gorm.DB
	log   *zap.Logger
	files *Files
	now   func() time.Time

	Companies *store.Table[models.Company]
	Contacts  *store.Table[models.Contact]
	Users     *store.Table[models.CompanyUserList]
}

func NewCompanyService(db *gorm.DB, files *Files, log *zap.Logger) *CompanyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CompanyService{
		db:        db,
		log:       log,
		files:     files,
		now:       time.Now,
		Companies: store.NewTable[models.Company](db),
		Contacts:  store.NewTable[models.Contact](db),
		Users:     store.NewTable[models.CompanyUserList](db),
	}
}

// ValidateCompany checks the company form fields.
func ValidateCompany(c *models.Company) validation.Violations {
	v := make(validation.Violations)
	validation.Required("tax_id", c.TaxID, v)
	validation.NIT("tax_id", c.TaxID, v)
	validation.Required("legal_name", c.LegalName, v)
	validation.Email("email", c.Email, v)
	validation.Phone("phone", c.Phone, v)
	validation.OneOf("status", c.Status, []string{models.CompanyActive, models.CompanyInactive}, v)
	return v
}

// Delete removes the company with its contacts and embedded users.
// Documents and jobs still referencing it make the delete fail.
func (s *CompanyService) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := s.Companies.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f := store.Filter{Where: map[string]any{"company_id": id}}
		if err := s.Contacts.WithTx(tx).DeleteWhere(ctx, f); err != nil {
			return err
		}
		if err := s.Users.WithTx(tx).DeleteWhere(ctx, f); err != nil {
			return err
		}
		return s.Companies.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	paths := []string{rec.LogoPath}
	for _, a := range rec.Attachments {
		paths = append(paths, a.StoragePath)
	}
	if err := s.files.Remove(ctx, paths...); err != nil && !errors.Is(err, ErrAttachmentsDisabled) {
		s.log.Warn("company files left behind", zap.String("company_id", id.String()), zap.Error(err))
	}
	return nil
}

func companyAttachments(c *models.Company) []models.Attachment { return c.Attachments }

func (s *CompanyService) AddAttachment(ctx context.Context, id uuid.UUID, up Upload) (*models.Attachment, error) {
	return addAttachment(ctx, s.files, s.Companies, attachments.BucketCompanies, id, companyAttachments, up)
}

func (s *CompanyService) RemoveAttachment(ctx context.Context, id uuid.UUID, attID string) error {
	return removeAttachment(ctx, s.files, s.Companies, id, attID, companyAttachments)
}

// SetLogo replaces the company logo. The previous file is removed after the record points at the new one.
func (s *CompanyService) SetLogo(ctx context.Context, id uuid.UUID, up Upload) (*models.Company, error) {
	rec, err := s.Companies.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	url, key, err := s.files.Image(ctx, attachments.BucketCompanies, id, up)
	if err != nil {
		return nil, err
	}
	if err := s.Companies.Update(ctx, id, map[string]any{"logo_url": url, "logo_path": key}); err != nil {
		return nil, err
	}
	if rec.LogoPath != "" && rec.LogoPath != key {
		if err := s.files.Remove(ctx, rec.LogoPath); err != nil {
			s.log.Warn("old logo not removed", zap.String("path", rec.LogoPath), zap.Error(err))
		}
	}
	rec.LogoURL, rec.LogoPath = url, key
	return rec, nil
}

// CompanyUserInput is the add-user form.
type CompanyUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (in CompanyUserInput) Validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.Required("password", in.Password, v)
	validation.OneOf("role", in.Role, CompanyUserRoles, v)
	return v
}

// ListUsers returns the embedded users of a company; none yet is an empty list.
func (s *CompanyService) ListUsers(ctx context.Context, companyID uuid.UUID) ([]models.CompanyUser, error) {
	row, err := s.Users.FindOne(ctx, store.Filter{Where: map[string]any{"company_id": companyID}})
	if store.IsNotFound(err) {
		return []models.CompanyUser{}, nil
	}
	if err != nil {
		return nil, err
	}
	return row.Users, nil
}

// AddUser appends a user to the company list, creating the list row on first use.
func (s *CompanyService) AddUser(ctx context.Context, companyID uuid.UUID, in CompanyUserInput) (*models.CompanyUser, error) {
	if _, err := s.Companies.Get(ctx, companyID); err != nil {
		return nil, err
	}
	users, err := s.ListUsers(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.CompanyRoleTechnician
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return nil, ErrDuplicateUser
		}
	}
	u := models.CompanyUser{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  in.Password,
		Role:      in.Role,
		CreatedAt: s.now(),
	}
	next := append(append([]models.CompanyUser(nil), users...), u)
	if err := s.saveUsers(ctx, companyID, next); err != nil {
		return nil, err
	}
	s.log.Info("company user added", zap.String("company_id", companyID.String()), zap.String("role", u.Role))
	return &u, nil
}

func (s *CompanyService) RemoveUser(ctx context.Context, companyID uuid.UUID, userID string) error {
	users, err := s.ListUsers(ctx, companyID)
	if err != nil {
		return err
	}
	next := make([]models.CompanyUser, 0, len(users))
	for _, u := range users {
		if u.ID != userID {
			next = append(next, u)
		}
	}
	if len(next) == len(users) {
		return ErrUserNotFound
	}
	return s.saveUsers(ctx, companyID, next)
}

// saveUsers writes the whole collection, keyed by company id.
func (s *CompanyService) saveUsers(ctx context.Context, companyID uuid.UUID, users []models.CompanyUser) error {
	row := models.CompanyUserList{CompanyID: companyID, Users: datatypes.JSONSlice[models.CompanyUser](users)}
	return s.Users.Upsert(ctx, &row, "company_id")
}

// ValidateContact checks the contact form fields.
func ValidateContact(c *models.Contact) validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", c.Name, v)
	validation.Email("email", c.Email, v)
	validation.Phone("phone", c.Phone, v)
	return v
}

// AddContact inserts a contact for an existing company.
func (s *CompanyService) AddContact(ctx context.Context, companyID uuid.UUID, c *models.Contact) error {
	if _, err := s.Companies.Get(ctx, companyID); err != nil {
		return err
	}
	c.CompanyID = companyID
	return s.Contacts.Insert(ctx, c)
}

// CompanyOverview is the company detail page.
type CompanyOverview struct {
	Company       models.Company           `json:"company"`
	Contacts      []models.Contact         `json:"contacts"`
	Users         []models.CompanyUser     `json:"users"`
	Documents     []models.Document        `json:"documents"`
	Maintenance   []models.MaintenanceJob  `json:"maintenance"`
	Installations []models.InstallationJob `json:"installations"`
	Requests      []models.ServiceRequest  `json:"requests"`
}

// Overview loads a company with everything that references it.
func (s *CompanyService) Overview(ctx context.Context, id uuid.UUID) (*CompanyOverview, error) {
	c, err := s.Companies.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &CompanyOverview{Company: *c}
	byCompany := store.Filter{Where: map[string]any{"company_id": id}, Order: "created_at desc"}
	byClient := store.Filter{Where: map[string]any{"client_id": id}, Order: "created_at desc"}
	if out.Contacts, err = s.Contacts.Select(ctx, store.Filter{Where: byCompany.Where, Order: "name"}); err != nil {
		return nil, err
	}
	// Embedded users carry plaintext passwords; never hand them to the page.
	users, err := s.ListUsers(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.Password = ""
		out.Users = append(out.Users, u)
	}
	if out.Documents, err = store.NewTable[models.Document](s.db).Select(ctx, byCompany); err != nil {
		return nil, err
	}
	if out.Maintenance, err = store.NewTable[models.MaintenanceJob](s.db).Select(ctx, byClient); err != nil {
		return nil, err
	}
	if out.Installations, err = store.NewTable[models.InstallationJob](s.db).Select(ctx, byClient); err != nil {
		return nil, err
	}
	if out.Requests, err = store.NewTable[models.ServiceRequest](s.db).Select(ctx, byCompany); err != nil {
		return nil, err
	}
	return out, nil
}
