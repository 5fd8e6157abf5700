package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/go-rentals/internal/attachments"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true, Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func newTestFiles(t *testing.T) (*Files, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := attachments.NewLocal(dir, "/uploads")
	require.NoError(t, err)
	return NewFiles(st, 1<<20), dir
}

func seedCompany(t *testing.T, db *gorm.DB, name string) *models.Company {
	t.Helper()
	c := &models.Company{TaxID: "900123456", LegalName: name, Status: models.CompanyActive}
	require.NoError(t, db.Create(c).Error)
	return c
}

func day(s string) *time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &d
}

var bg = context.Background()
