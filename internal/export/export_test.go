package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/store"
	"github.com/diewo77/go-rentals/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, d.AutoMigrate(models.AllModels()...))
	cat := models.Category{Name: "Andamios"}
	require.NoError(t, d.Create(&cat).Error)
	require.NoError(t, d.Create(&models.Asset{Kind: models.AssetEquipment, Equipment: models.Equipment{Name: "Andamio tubular", CategoryID: &cat.ID, Availability: models.Available, Stock: 4}}).Error)
	require.NoError(t, d.Create(&models.Asset{Kind: models.AssetTool, Equipment: models.Equipment{Name: "Taladro", Availability: models.Rented, Stock: 1}}).Error)
	return d
}

func TestLoadAndCSV(t *testing.T) {
	d := setupDB(t)
	v, err := Load(context.Background(), d, "assets", store.Filter{})
	require.NoError(t, err)
	require.Len(t, v.Rows, 2)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, v, "es"))
	recs, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Nombre", recs[0][0])
	joined := strings.Join(recs[1], "|") + strings.Join(recs[2], "|")
	assert.Contains(t, joined, "Andamios", "category joined")
	assert.Contains(t, joined, "Alquilado", "badge translated")
}

func TestLoadSearch(t *testing.T) {
	d := setupDB(t)
	v, err := Load(context.Background(), d, "assets", store.Filter{Search: "tala"})
	require.NoError(t, err)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "Taladro", v.Rows[0].Cells[0].Text)
}

func TestXLSX(t *testing.T) {
	d := setupDB(t)
	v, err := Load(context.Background(), d, "assets", store.Filter{})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, XLSX, v, "en", "assets"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("assets")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][0])
}

func TestUnknown(t *testing.T) {
	_, err := Load(context.Background(), nil, "invoices", store.Filter{})
	assert.ErrorIs(t, err, ErrUnknownEntity)
	assert.ErrorIs(t, Write(&bytes.Buffer{}, "pdf", table.View{}, "es", ""), ErrUnknownFormat)
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "assets_20250304_050607.xlsx", Filename("assets", XLSX, now))
	assert.Contains(t, Names(), "documents")
}
