package services

import (
	"context"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IssuerService manages the single issuing-company profile printed on documents.
type IssuerService struct {
	profiles *store.Table[models.IssuerProfile]
}

func NewIssuerService(db *gorm.DB) *IssuerService {
	return &IssuerService{profiles: store.NewTable[models.IssuerProfile](db)}
}

func (s *IssuerService) IsConfigured(ctx context.Context) (bool, error) {
	n, err := s.profiles.Count(ctx, store.Filter{})
	return n > 0, err
}

// Get returns the profile if present, otherwise nil. A missing profile is not an error.
func (s *IssuerService) Get(ctx context.Context) (*models.IssuerProfile, error) {
	p, err := s.profiles.FindOne(ctx, store.Filter{Order: "created_at"})
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Save creates the profile on first use and replaces it afterwards.
func (s *IssuerService) Save(ctx context.Context, in models.IssuerProfile) (*models.IssuerProfile, error) {
	cur, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		in.ID = uuid.Nil
		if err := s.profiles.Insert(ctx, &in); err != nil {
			return nil, err
		}
		return &in, nil
	}
	if err := s.profiles.Update(ctx, cur.ID, &in); err != nil {
		return nil, err
	}
	return s.profiles.Get(ctx, cur.ID)
}
