package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCompany(t *testing.T) {
	v := ValidateCompany(&models.Company{Status: "gone", Email: "nope"})
	assert.Equal(t, "required", v["tax_id"])
	assert.Equal(t, "required", v["legal_name"])
	assert.Equal(t, "invalid_email", v["email"])
	assert.Equal(t, "invalid_choice", v["status"])

	ok := ValidateCompany(&models.Company{TaxID: "900123456", LegalName: "Grúas SAS", Status: models.CompanyActive})
	assert.True(t, ok.Empty(), "%v", ok)
}

func TestCompanyUsers(t *testing.T) {
	db := setupServicesTestDB(t)
	files, _ := newTestFiles(t)
	s := NewCompanyService(db, files, nil)
	c := seedCompany(t, db, "Grúas SAS")

	users, err := s.ListUsers(bg, c.ID)
	require.NoError(t, err)
	assert.Empty(t, users)

	u, err := s.AddUser(bg, c.ID, CompanyUserInput{Email: " Ana@Example.com ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, models.CompanyRoleTechnician, u.Role)

	_, err = s.AddUser(bg, c.ID, CompanyUserInput{Email: "ANA@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrDuplicateUser)

	_, err = s.AddUser(bg, c.ID, CompanyUserInput{Email: "luis@example.com", Password: "x", Role: models.CompanyRoleAdmin})
	require.NoError(t, err)
	users, err = s.ListUsers(bg, c.ID)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, s.RemoveUser(bg, c.ID, u.ID))
	assert.ErrorIs(t, s.RemoveUser(bg, c.ID, u.ID), ErrUserNotFound)
	users, err = s.ListUsers(bg, c.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "luis@example.com", users[0].Email)

	n, err := s.Users.Count(bg, store.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "one list row per company")
}

func TestCompanyOverviewHidesPasswords(t *testing.T) {
	db := setupServicesTestDB(t)
	s := NewCompanyService(db, nil, nil)
	c := seedCompany(t, db, "Grúas SAS")

	_, err := s.AddUser(bg, c.ID, CompanyUserInput{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, s.AddContact(bg, c.ID, &models.Contact{Name: "Ana Gómez"}))
	req := &models.ServiceRequest{CompanyID: &c.ID, Title: "Fuga", Kind: models.RequestSupport}
	require.NoError(t, db.Create(req).Error)

	o, err := s.Overview(bg, c.ID)
	require.NoError(t, err)
	require.Len(t, o.Users, 1)
	assert.Empty(t, o.Users[0].Password)
	require.Len(t, o.Contacts, 1)
	assert.Equal(t, c.ID, o.Contacts[0].CompanyID)
	assert.Len(t, o.Requests, 1)
	assert.Empty(t, o.Documents)
}

func TestCompanyAttachmentsAndDelete(t *testing.T) {
	db := setupServicesTestDB(t)
	files, dir := newTestFiles(t)
	s := NewCompanyService(db, files, nil)
	c := seedCompany(t, db, "Grúas SAS")

	att, err := s.AddAttachment(bg, c.ID, Upload{Name: "rut final.pdf", Size: 4, Body: strings.NewReader("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", att.Mime)
	assert.True(t, strings.HasPrefix(att.URL, "/uploads/companies/documents/"), att.URL)
	assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(att.StoragePath)))

	_, err = s.AddAttachment(bg, c.ID, Upload{Name: "big.bin", Size: 2 << 20, Body: strings.NewReader("")})
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.True(t, IsAttachmentError(err))

	rec, err := s.Companies.Get(bg, c.ID)
	require.NoError(t, err)
	require.Len(t, rec.Attachments, 1)

	assert.ErrorIs(t, s.RemoveAttachment(bg, c.ID, "missing"), ErrAttachmentNotFound)

	require.NoError(t, s.AddContact(bg, c.ID, &models.Contact{Name: "Ana"}))
	require.NoError(t, s.Delete(bg, c.ID))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(att.StoragePath)))
	assert.True(t, os.IsNotExist(err))
	n, err := s.Contacts.Count(bg, store.Filter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
