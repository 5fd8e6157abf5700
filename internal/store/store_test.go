package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStoreTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true, Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func TestTableInsertGetUpdateDelete(t *testing.T) {
	db := setupStoreTestDB(t)
	ctx := context.Background()
	companies := NewTable[models.Company](db)

	c := &models.Company{TaxID: "900123456", LegalName: "Grúas del Norte SAS", Status: models.CompanyActive}
	require.NoError(t, companies.Insert(ctx, c))
	require.NotEqual(t, uuid.Nil, c.ID)

	got, err := companies.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grúas del Norte SAS", got.LegalName)

	require.NoError(t, companies.Update(ctx, c.ID, map[string]any{"city": "Medellín"}))
	got, err = companies.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Medellín", got.City)
	assert.Equal(t, "900123456", got.TaxID)

	require.NoError(t, companies.Delete(ctx, c.ID))
	_, err = companies.Get(ctx, c.ID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err), "expected not found, got %v", err)

	err = companies.Delete(ctx, c.ID)
	assert.True(t, IsNotFound(err))
}

func TestTableUpdateReplacesWholeRecord(t *testing.T) {
	db := setupStoreTestDB(t)
	ctx := context.Background()
	companies := NewTable[models.Company](db)
	c := &models.Company{TaxID: "900123456", LegalName: "A", City: "Cali", Status: models.CompanyActive}
	require.NoError(t, companies.Insert(ctx, c))

	repl := &models.Company{TaxID: "900123456", LegalName: "B", Status: models.CompanyInactive}
	require.NoError(t, companies.Update(ctx, c.ID, repl))

	got, err := companies.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.LegalName)
	assert.Equal(t, "", got.City, "whole-record update clears omitted fields")
	assert.Equal(t, models.CompanyInactive, got.Status)

	err = companies.Update(ctx, uuid.New(), map[string]any{"city": "x"})
	assert.True(t, IsNotFound(err))
}

func TestTableUniqueViolation(t *testing.T) {
	db := setupStoreTestDB(t)
	ctx := context.Background()
	companies := NewTable[models.Company](db)
	require.NoError(t, companies.Insert(ctx, &models.Company{TaxID: "1", LegalName: "A"}))
	err := companies.Insert(ctx, &models.Company{TaxID: "1", LegalName: "B"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err), "got %v", err)
	assert.Equal(t, "duplicate", ErrorCode(err))
	assert.Contains(t, UserMessage(err), "already exists")
}

func TestTableUpsertKeepsStableID(t *testing.T) {
	db := setupStoreTestDB(t)
	ctx := context.Background()
	docID := uuid.New()
	totals := NewTable[models.DocumentTotals](db)

	first := &models.DocumentTotals{DocumentID: docID, Subtotal: 250, TaxRatePercent: 19, TaxAmount: 47.5, Total: 297.5}
	require.NoError(t, totals.Upsert(ctx, first, "document_id"))
	id := first.ID

	second := &models.DocumentTotals{DocumentID: docID, Subtotal: 250, Discount: 50, TaxRatePercent: 19, TaxAmount: 38, Total: 238}
	require.NoError(t, totals.Upsert(ctx, second, "document_id"))
	assert.Equal(t, id, second.ID)
	assert.Equal(t, 238.0, second.Total)

	n, err := totals.Count(ctx, Filter{Where: map[string]any{"document_id": docID}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestTableSelectFilterSearchPage(t *testing.T) {
	db := setupStoreTestDB(t)
	ctx := context.Background()
	assets := NewTable[models.Asset](db)
	for i, name := range []string{"Andamio tubular", "Taladro percutor", "Andamio colgante"} {
		a := &models.Asset{Kind: models.AssetEquipment}
		a.Name = name
		a.Availability = models.Available
		if i == 1 {
			a.Kind = models.AssetTool
			a.Availability = models.InMaintenance
		}
		require.NoError(t, assets.Insert(ctx, a))
		time.Sleep(time.Millisecond)
	}

	rows, total, err := assets.Page(ctx, Filter{Search: "andamio", SearchColumns: []string{"name"}, Order: "name", Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Andamio colgante", rows[0].Name)

	n, err := assets.Count(ctx, Filter{Where: map[string]any{"availability": []string{models.Available, models.Reserved}}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = assets.Count(ctx, Filter{Where: map[string]any{"category_id": nil}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestTranslateKeepsStoreErrors(t *testing.T) {
	se := &Error{Code: CodeForeignKey, Message: "x"}
	err := wrap("insert", se)
	var got *Error
	require.True(t, errors.As(err, &got))
	assert.Same(t, se, got)
	assert.Equal(t, "invalid_reference", ErrorCode(err))
	assert.Contains(t, UserMessage(err), "Invalid reference")
	assert.Equal(t, "", UserMessage(nil))
}
