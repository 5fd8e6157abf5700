package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-rentals/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Default operator created by Seed. Change the password after the first login.
const (
	SeedAdminEmail    = "admin@rentals.local"
	SeedAdminPassword = "admin123"
)

var baseCategories = []models.Category{
	{Name: "Andamios", Description: "Andamios certificados y accesorios"},
	{Name: "Herramienta eléctrica", Description: "Taladros, pulidoras y similares"},
	{Name: "Equipos de altura", Description: "Arneses, líneas de vida y eslingas"},
	{Name: "Generadores", Description: "Plantas eléctricas y generadores"},
}

var baseIssuer = models.IssuerProfile{
	LegalName:  "Mi Empresa S.A.S.",
	TaxID:      "900123456",
	City:       "Bogotá",
	FooterNote: "Gracias por su confianza.",
}

// Seed inserts reference rows that are missing. Running it twice changes nothing.
func Seed(conn *gorm.DB, log *zap.Logger) error {
	created := 0
	for _, c := range baseCategories {
		ok, err := createMissing(conn, &models.Category{}, "name = ?", c.Name, &c)
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}

	var issuers int64
	if err := conn.Model(&models.IssuerProfile{}).Count(&issuers).Error; err != nil {
		return err
	}
	if issuers == 0 {
		issuer := baseIssuer
		if err := conn.Create(&issuer).Error; err != nil {
			return fmt.Errorf("seed issuer profile: %w", err)
		}
		created++
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{Email: SeedAdminEmail, Name: "Administrador", Password: string(hash)}
	ok, err := createMissing(conn, &models.User{}, "email = ?", admin.Email, &admin)
	if err != nil {
		return err
	}
	if ok {
		created++
		log.Warn("seeded default operator, change its password", zap.String("email", SeedAdminEmail))
	}
	log.Info("seed complete", zap.Int("created", created))
	return nil
}

// createMissing inserts rec unless a row matching cond exists.
func createMissing(conn *gorm.DB, probe any, cond string, arg any, rec any) (bool, error) {
	err := conn.Where(cond, arg).First(probe).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := conn.Create(rec).Error; err != nil {
		return false, fmt.Errorf("seed %T: %w", rec, err)
	}
	return true, nil
}
