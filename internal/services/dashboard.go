package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/diewo77/go-rentals/internal/models"
	"gorm.io/gorm"
)

// Dashboard is the home page summary.
type Dashboard struct {
	ActiveCompanies      int64            `json:"active_companies"`
	Assets               int64            `json:"assets"`
	AvailableAssets      int64            `json:"available_assets"`
	AssetsInMaintenance  int64            `json:"assets_in_maintenance"`
	Kits                 int64            `json:"kits"`
	PendingMaintenance   int64            `json:"pending_maintenance"`
	PendingInstallations int64            `json:"pending_installations"`
	OpenRequests         int64            `json:"open_requests"`
	RequestsByStatus     map[string]int64 `json:"requests_by_status"`
	DocumentsByType      map[string]int64 `json:"documents_by_type"`
	AvailablePercent     float64          `json:"available_percent"`
}

type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

type groupCount struct {
	Grp   string
	Total int64
}

// Load runs the fixed query set. Nothing is cached.
func (s *DashboardService) Load(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	d := &Dashboard{}
	counts := []struct {
		name  string
		dst   *int64
		query *gorm.DB
	}{
		{"active companies", &d.ActiveCompanies, db.Model(&models.Company{}).Where("status = ?", models.CompanyActive)},
		{"assets", &d.Assets, db.Model(&models.Asset{})},
		{"available assets", &d.AvailableAssets, db.Model(&models.Asset{}).Where("availability = ?", models.Available)},
		{"assets in maintenance", &d.AssetsInMaintenance, db.Model(&models.Asset{}).Where("availability = ?", models.InMaintenance)},
		{"kits", &d.Kits, db.Model(&models.AssetKit{})},
		{"pending maintenance", &d.PendingMaintenance, db.Model(&models.MaintenanceJob{}).Where("start_date > ? OR end_date IS NULL", s.now())},
		{"pending installations", &d.PendingInstallations, db.Model(&models.InstallationJob{}).Where("status = ?", models.JobPending)},
		{"open requests", &d.OpenRequests, db.Model(&models.ServiceRequest{}).Where("status = ?", models.RequestOpen)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("dashboard %s: %w", c.name, err)
		}
	}

	var err error
	if d.RequestsByStatus, err = s.group(db, &models.ServiceRequest{}, "status", models.RequestStatuses); err != nil {
		return nil, err
	}
	if d.DocumentsByType, err = s.group(db, &models.Document{}, "document_type", DocumentTypes); err != nil {
		return nil, err
	}
	if d.Assets > 0 {
		d.AvailablePercent = math.Round(float64(d.AvailableAssets)*1000/float64(d.Assets)) / 10
	}
	return d, nil
}

// group counts rows per column value. Every key in keys is present, zero when absent.
func (s *DashboardService) group(db *gorm.DB, model any, column string, keys []string) (map[string]int64, error) {
	var rows []groupCount
	err := db.Model(model).
		Select(column + " AS grp, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("dashboard group %s: %w", column, err)
	}
	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		out[k] = 0
	}
	for _, r := range rows {
		out[r.Grp] += r.Total
	}
	return out, nil
}
