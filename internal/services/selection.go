package services

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/validation"
	"github.com/google/uuid"
)

var (
	ErrDuplicateAsset        = errors.New("asset already selected")
	ErrDuplicateMaintenance  = errors.New("maintenance job already selected")
	ErrDuplicateInstallation = errors.New("installation job already selected")
	ErrLineNotFound          = errors.New("line item not found")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrInvalidPrice          = errors.New("unit price must be a non-negative number")
)

// Selection is the set of line items being assembled for a document detail.
// Uniqueness is enforced by linear scan on insert; a rejected insert leaves
// the selection untouched.
type Selection struct {
	Assets        []models.AssetLine        `json:"assets"`
	Maintenance   []models.MaintenanceLine  `json:"maintenance"`
	Installations []models.InstallationLine `json:"installations"`
}

// SelectionFrom copies the collections of a stored detail.
func SelectionFrom(d *models.DocumentDetail) Selection {
	if d == nil {
		return Selection{}
	}
	return Selection{
		Assets:        append([]models.AssetLine(nil), d.Assets...),
		Maintenance:   append([]models.MaintenanceLine(nil), d.Maintenance...),
		Installations: append([]models.InstallationLine(nil), d.Installations...),
	}
}

// AddAsset appends an asset or kit with quantity 1 and unit price 0.
func (s *Selection) AddAsset(id uuid.UUID, name, kind string) error {
	for _, a := range s.Assets {
		if a.AssetID == id {
			return fmt.Errorf("%s: %w", name, ErrDuplicateAsset)
		}
	}
	s.Assets = append(s.Assets, models.AssetLine{AssetID: id, Name: name, AssetKind: kind, Quantity: 1})
	return nil
}

func (s *Selection) assetIndex(id uuid.UUID) int {
	for i, a := range s.Assets {
		if a.AssetID == id {
			return i
		}
	}
	return -1
}

// SetQuantity updates an asset line and recomputes its total.
func (s *Selection) SetQuantity(id uuid.UUID, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	i := s.assetIndex(id)
	if i < 0 {
		return ErrLineNotFound
	}
	s.Assets[i].Quantity = qty
	s.Assets[i].LineTotal = Round2(float64(qty) * s.Assets[i].UnitPrice)
	return nil
}

// SetUnitPrice updates an asset line and recomputes its total.
func (s *Selection) SetUnitPrice(id uuid.UUID, price float64) error {
	if !validation.IsPrice(price) {
		return ErrInvalidPrice
	}
	i := s.assetIndex(id)
	if i < 0 {
		return ErrLineNotFound
	}
	s.Assets[i].UnitPrice = price
	s.Assets[i].LineTotal = Round2(float64(s.Assets[i].Quantity) * price)
	return nil
}

// RemoveAsset drops the asset line; it reports whether one was removed.
func (s *Selection) RemoveAsset(id uuid.UUID) bool {
	i := s.assetIndex(id)
	if i < 0 {
		return false
	}
	s.Assets = append(s.Assets[:i], s.Assets[i+1:]...)
	return true
}

// AddMaintenance appends a job line. Lines flagged IsNew carry no id yet and
// are never considered duplicates.
func (s *Selection) AddMaintenance(l models.MaintenanceLine) error {
	if !l.IsNew {
		for _, m := range s.Maintenance {
			if !m.IsNew && m.MaintenanceID == l.MaintenanceID {
				return fmt.Errorf("%s: %w", l.Title, ErrDuplicateMaintenance)
			}
		}
	}
	if l.Priority == "" {
		l.Priority = models.PriorityMedium
	}
	s.Maintenance = append(s.Maintenance, l)
	return nil
}

// RemoveMaintenance drops the line at position i.
func (s *Selection) RemoveMaintenance(i int) bool {
	if i < 0 || i >= len(s.Maintenance) {
		return false
	}
	s.Maintenance = append(s.Maintenance[:i], s.Maintenance[i+1:]...)
	return true
}

// AddInstallation appends a job line, same rules as AddMaintenance.
func (s *Selection) AddInstallation(l models.InstallationLine) error {
	if !l.IsNew {
		for _, m := range s.Installations {
			if !m.IsNew && m.InstallationID == l.InstallationID {
				return fmt.Errorf("%s: %w", l.Title, ErrDuplicateInstallation)
			}
		}
	}
	if l.Priority == "" {
		l.Priority = models.PriorityMedium
	}
	s.Installations = append(s.Installations, l)
	return nil
}

// RemoveInstallation drops the line at position i.
func (s *Selection) RemoveInstallation(i int) bool {
	if i < 0 || i >= len(s.Installations) {
		return false
	}
	s.Installations = append(s.Installations[:i], s.Installations[i+1:]...)
	return true
}

// Normalize recomputes every asset line total. Incoming payloads are not
// trusted to carry consistent totals.
func (s *Selection) Normalize() {
	for i := range s.Assets {
		s.Assets[i].LineTotal = Round2(float64(s.Assets[i].Quantity) * s.Assets[i].UnitPrice)
	}
}

// Validate replays the lines through the editing rules. It rejects a repeated
// asset or existing job, a non-positive quantity, and a negative or
// non-finite price or cost.
func (s *Selection) Validate() error {
	var check Selection
	for _, a := range s.Assets {
		if err := check.AddAsset(a.AssetID, a.Name, a.AssetKind); err != nil {
			return err
		}
		if err := check.SetQuantity(a.AssetID, a.Quantity); err != nil {
			return fmt.Errorf("%s: %w", a.Name, err)
		}
		if err := check.SetUnitPrice(a.AssetID, a.UnitPrice); err != nil {
			return fmt.Errorf("%s: %w", a.Name, err)
		}
	}
	for _, m := range s.Maintenance {
		if !validation.IsPrice(m.Amount) {
			return fmt.Errorf("%s: %w", m.Title, ErrInvalidPrice)
		}
		if err := check.AddMaintenance(m); err != nil {
			return err
		}
	}
	for _, l := range s.Installations {
		if !validation.IsPrice(l.Amount) {
			return fmt.Errorf("%s: %w", l.Title, ErrInvalidPrice)
		}
		if err := check.AddInstallation(l); err != nil {
			return err
		}
	}
	return nil
}

// Lines returns every line as a cost contributor.
func (s *Selection) Lines() []models.LineItem {
	d := models.DocumentDetail{Assets: s.Assets, Maintenance: s.Maintenance, Installations: s.Installations}
	return d.Lines()
}

// Subtotal of the current selection.
func (s *Selection) Subtotal() float64 { return Subtotal(s.Lines()) }
