package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-rentals/internal/attachments"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/store"
	"github.com/diewo77/go-rentals/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrComponentNotFound = errors.New("kit component not found")

var (
	AssetKinds          = []string{models.AssetEquipment, models.AssetTool}
	KitKinds            = []string{models.KitEquipment, models.KitToolCase}
	AvailabilityValues  = []string{models.Available, models.Rented, models.InMaintenance, models.Reserved}
	EquipmentStatusList = []string{models.StatusCurrent, models.StatusInCertification, models.StatusExpiringSoon, models.StatusExpired, models.StatusNotApplicable}
)

// EquipmentService manages assets, kits, kit components and categories.
type EquipmentService struct {
	db    *gorm.DB
	log   *zap.Logger
	files *Files

	Assets     *store.Table[models.Asset]
	Kits       *store.Table[models.AssetKit]
	Categories *store.Table[models.Category]
}

func NewEquipmentService(db *gorm.DB, files *Files, log *zap.Logger) *EquipmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EquipmentService{
		db:         db,
		log:        log,
		files:      files,
		Assets:     store.NewTable[models.Asset](db),
		Kits:       store.NewTable[models.AssetKit](db),
		Categories: store.NewTable[models.Category](db),
	}
}

// ValidateEquipment checks the shared asset/kit fields. kinds is the set for the concrete type.
func ValidateEquipment(e *models.Equipment, kind string, kinds []string) validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", e.Name, v)
	validation.Required("kind", kind, v)
	validation.OneOf("kind", kind, kinds, v)
	validation.OneOf("availability", e.Availability, AvailabilityValues, v)
	validation.OneOf("certification_status", e.CertificationStatus, EquipmentStatusList, v)
	validation.OneOf("maintenance_status", e.MaintenanceStatus, EquipmentStatusList, v)
	if e.Stock < 0 {
		v["stock"] = "must_be_positive"
	}
	return v
}

// EnsureCategory returns the category with the given name, inserting it when absent.
// Name matching ignores case and surrounding spaces.
func (s *EquipmentService) EnsureCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("category name required")
	}
	var found models.Category
	err := s.db.WithContext(ctx).Where("lower(name) = ?", strings.ToLower(name)).First(&found).Error
	if err == nil {
		return &found, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c := models.Category{Name: name}
	if err := s.Categories.Insert(ctx, &c); err != nil {
		return nil, err
	}
	s.log.Info("category created inline", zap.String("name", name))
	return &c, nil
}

// ResolveCategory applies an inline new category to e when newName is set.
func (s *EquipmentService) ResolveCategory(ctx context.Context, e *models.Equipment, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return nil
	}
	c, err := s.EnsureCategory(ctx, newName)
	if err != nil {
		return err
	}
	e.CategoryID = &c.ID
	return nil
}

func assetAttachments(a *models.Asset) []models.Attachment { return a.Attachments }
func kitAttachments(k *models.AssetKit) []models.Attachment { return k.Attachments }

func (s *EquipmentService) AddAssetAttachment(ctx context.Context, id uuid.UUID, up Upload) (*models.Attachment, error) {
	return addAttachment(ctx, s.files, s.Assets, attachments.BucketAssets, id, assetAttachments, up)
}

func (s *EquipmentService) RemoveAssetAttachment(ctx context.Context, id uuid.UUID, attID string) error {
	return removeAttachment(ctx, s.files, s.Assets, id, attID, assetAttachments)
}

func (s *EquipmentService) AddKitAttachment(ctx context.Context, id uuid.UUID, up Upload) (*models.Attachment, error) {
	return addAttachment(ctx, s.files, s.Kits, attachments.BucketKits, id, kitAttachments, up)
}

func (s *EquipmentService) RemoveKitAttachment(ctx context.Context, id uuid.UUID, attID string) error {
	return removeAttachment(ctx, s.files, s.Kits, id, attID, kitAttachments)
}

// SetAssetImage stores a new asset image and drops the previous file.
func (s *EquipmentService) SetAssetImage(ctx context.Context, id uuid.UUID, up Upload) error {
	rec, err := s.Assets.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.swapImage(ctx, attachments.BucketAssets, id, rec.ImagePath, up, func(cols map[string]any) error {
		return s.Assets.Update(ctx, id, cols)
	})
}

// SetKitImage stores a new kit image and drops the previous file.
func (s *EquipmentService) SetKitImage(ctx context.Context, id uuid.UUID, up Upload) error {
	rec, err := s.Kits.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.swapImage(ctx, attachments.BucketKits, id, rec.ImagePath, up, func(cols map[string]any) error {
		return s.Kits.Update(ctx, id, cols)
	})
}

func (s *EquipmentService) swapImage(ctx context.Context, bucket string, id uuid.UUID, old string, up Upload, write func(map[string]any) error) error {
	url, key, err := s.files.Image(ctx, bucket, id, up)
	if err != nil {
		return err
	}
	if err := write(map[string]any{"image_url": url, "image_path": key}); err != nil {
		return err
	}
	if old != "" && old != key {
		if err := s.files.Remove(ctx, old); err != nil {
			s.log.Warn("old image not removed", zap.String("path", old), zap.Error(err))
		}
	}
	return nil
}

// DeleteAsset removes the asset row, then its files.
func (s *EquipmentService) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	rec, err := s.Assets.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Assets.Delete(ctx, id); err != nil {
		return err
	}
	s.dropFiles(ctx, id, append(attachmentPaths(rec.Attachments), rec.ImagePath))
	return nil
}

// DeleteKit removes the kit row, then its files including component files.
func (s *EquipmentService) DeleteKit(ctx context.Context, id uuid.UUID) error {
	rec, err := s.Kits.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Kits.Delete(ctx, id); err != nil {
		return err
	}
	paths := append(attachmentPaths(rec.Attachments), rec.ImagePath)
	for _, c := range rec.Components {
		paths = append(paths, c.ImagePath, c.DocumentPath)
	}
	s.dropFiles(ctx, id, paths)
	return nil
}

func (s *EquipmentService) dropFiles(ctx context.Context, owner uuid.UUID, paths []string) {
	if err := s.files.Remove(ctx, paths...); err != nil && !errors.Is(err, ErrAttachmentsDisabled) {
		s.log.Warn("files left behind", zap.String("owner", owner.String()), zap.Error(err))
	}
}

func attachmentPaths(list []models.Attachment) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.StoragePath)
	}
	return out
}

// ComponentInput is the kit component form. Image and Document are optional uploads.
type ComponentInput struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	Serial       string `json:"serial"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	Description  string `json:"description"`

	Image    *Upload `json:"-"`
	Document *Upload `json:"-"`
}

func (in ComponentInput) Validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	if in.Quantity < 1 {
		v["quantity"] = "must_be_positive"
	}
	return v
}

// AddComponent uploads the component files and appends it to the kit.
func (s *EquipmentService) AddComponent(ctx context.Context, kitID uuid.UUID, in ComponentInput) (*models.KitComponent, error) {
	kit, err := s.Kits.Get(ctx, kitID)
	if err != nil {
		return nil, err
	}
	c := models.KitComponent{ID: uuid.NewString()}
	if err := s.applyComponent(ctx, kitID, &c, in); err != nil {
		return nil, err
	}
	next := append(append([]models.KitComponent(nil), kit.Components...), c)
	if err := s.saveComponents(ctx, kitID, next); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateComponent replaces a component's fields. Files are only replaced when new uploads are given.
func (s *EquipmentService) UpdateComponent(ctx context.Context, kitID uuid.UUID, compID string, in ComponentInput) (*models.KitComponent, error) {
	kit, err := s.Kits.Get(ctx, kitID)
	if err != nil {
		return nil, err
	}
	next := append([]models.KitComponent(nil), kit.Components...)
	idx := componentIndex(next, compID)
	if idx < 0 {
		return nil, ErrComponentNotFound
	}
	old := next[idx]
	c := old
	if err := s.applyComponent(ctx, kitID, &c, in); err != nil {
		return nil, err
	}
	next[idx] = c
	if err := s.saveComponents(ctx, kitID, next); err != nil {
		return nil, err
	}
	var stale []string
	if old.ImagePath != c.ImagePath {
		stale = append(stale, old.ImagePath)
	}
	if old.DocumentPath != c.DocumentPath {
		stale = append(stale, old.DocumentPath)
	}
	s.dropFiles(ctx, kitID, stale)
	return &c, nil
}

// RemoveComponent deletes the component files, then rewrites the list without it.
func (s *EquipmentService) RemoveComponent(ctx context.Context, kitID uuid.UUID, compID string) error {
	kit, err := s.Kits.Get(ctx, kitID)
	if err != nil {
		return err
	}
	idx := componentIndex(kit.Components, compID)
	if idx < 0 {
		return ErrComponentNotFound
	}
	c := kit.Components[idx]
	if err := s.files.Remove(ctx, c.ImagePath, c.DocumentPath); err != nil && !errors.Is(err, ErrAttachmentsDisabled) {
		return err
	}
	next := make([]models.KitComponent, 0, len(kit.Components)-1)
	next = append(next, kit.Components[:idx]...)
	next = append(next, kit.Components[idx+1:]...)
	return s.saveComponents(ctx, kitID, next)
}

func (s *EquipmentService) applyComponent(ctx context.Context, kitID uuid.UUID, c *models.KitComponent, in ComponentInput) error {
	c.Name = strings.TrimSpace(in.Name)
	c.Quantity = in.Quantity
	c.Serial = in.Serial
	c.Model = in.Model
	c.Manufacturer = in.Manufacturer
	c.Description = in.Description
	if in.Image != nil {
		url, key, err := s.files.Image(ctx, attachments.BucketKits, kitID, *in.Image)
		if err != nil {
			return err
		}
		c.ImageURL, c.ImagePath = url, key
	}
	if in.Document != nil {
		att, err := s.files.Document(ctx, attachments.BucketKits, kitID, *in.Document)
		if err != nil {
			return err
		}
		c.DocumentURL, c.DocumentPath, c.DocumentName = att.URL, att.StoragePath, att.Name
	}
	return nil
}

func (s *EquipmentService) saveComponents(ctx context.Context, kitID uuid.UUID, list []models.KitComponent) error {
	return s.Kits.Update(ctx, kitID, map[string]any{"components": datatypes.JSONSlice[models.KitComponent](list)})
}

func componentIndex(list []models.KitComponent, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
