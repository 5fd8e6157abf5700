package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/store"
	"github.com/diewo77/go-rentals/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService manages back-office operator accounts.
type UserService struct {
	Users *store.Table[models.User]
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{Users: store.NewTable[models.User](db)}
}

// Create hashes the password and inserts the operator.
func (s *UserService) Create(ctx context.Context, email, password, name string) (*models.User, error) {
	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	validation.Required("password", password, v)
	if !v.Empty() {
		return nil, v
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{Email: strings.ToLower(strings.TrimSpace(email)), Password: string(hash), Name: name}
	if err := s.Users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the operator whose bcrypt hash matches password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.Users.FindOne(ctx, store.Filter{Where: map[string]any{"email": strings.ToLower(strings.TrimSpace(email))}})
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Exists backs the session verifier.
func (s *UserService) Exists(ctx context.Context, id uuid.UUID) bool {
	n, err := s.Users.Count(ctx, store.Filter{Where: map[string]any{"id": id}})
	return err == nil && n > 0
}
