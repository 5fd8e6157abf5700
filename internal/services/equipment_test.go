package services

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEquipment(t *testing.T) {
	e := &models.Equipment{Availability: "lost", Stock: -1}
	v := ValidateEquipment(e, "", AssetKinds)
	assert.Equal(t, "required", v["name"])
	assert.Equal(t, "required", v["kind"])
	assert.Equal(t, "invalid_choice", v["availability"])
	assert.Equal(t, "must_be_positive", v["stock"])

	v = ValidateEquipment(&models.Equipment{Name: "Maletín"}, models.KitToolCase, AssetKinds)
	assert.Equal(t, "invalid_choice", v["kind"])
	assert.True(t, ValidateEquipment(&models.Equipment{Name: "Maletín"}, models.KitToolCase, KitKinds).Empty())
}

func TestEnsureCategoryMatchesIgnoringCase(t *testing.T) {
	db := setupServicesTestDB(t)
	s := NewEquipmentService(db, nil, nil)

	first, err := s.EnsureCategory(bg, " Andamios ")
	require.NoError(t, err)
	assert.Equal(t, "Andamios", first.Name)

	again, err := s.EnsureCategory(bg, "andamios")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	var e models.Equipment
	require.NoError(t, s.ResolveCategory(bg, &e, ""))
	assert.Nil(t, e.CategoryID)
	require.NoError(t, s.ResolveCategory(bg, &e, "ANDAMIOS"))
	require.NotNil(t, e.CategoryID)
	assert.Equal(t, first.ID, *e.CategoryID)

	_, err = s.EnsureCategory(bg, "  ")
	assert.Error(t, err)
}

func TestKitComponents(t *testing.T) {
	db := setupServicesTestDB(t)
	files, dir := newTestFiles(t)
	s := NewEquipmentService(db, files, nil)
	kit := &models.AssetKit{Equipment: models.Equipment{Name: "Kit de soldadura"}, Kind: models.KitEquipment}
	require.NoError(t, db.Create(kit).Error)

	c, err := s.AddComponent(bg, kit.ID, ComponentInput{
		Name:     "Careta",
		Quantity: 2,
		Image:    &Upload{Name: "careta.png", Size: 3, Body: strings.NewReader("png")},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.True(t, strings.HasPrefix(c.ImagePath, "asset-kits/images/"), c.ImagePath)
	assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(c.ImagePath)))

	_, err = s.AddComponent(bg, kit.ID, ComponentInput{Name: "Guantes", Quantity: 3})
	require.NoError(t, err)

	got, err := s.Kits.Get(bg, kit.ID)
	require.NoError(t, err)
	assert.Len(t, got.Components, 2)
	assert.Equal(t, 5, got.ComponentCount())

	oldImage := c.ImagePath
	up, err := s.UpdateComponent(bg, kit.ID, c.ID, ComponentInput{
		Name:     "Careta fotosensible",
		Quantity: 1,
		Document: &Upload{Name: "manual.pdf", Size: 4, Body: strings.NewReader("%PDF")},
	})
	require.NoError(t, err)
	assert.Equal(t, oldImage, up.ImagePath, "image kept without a new upload")
	assert.Equal(t, "manual.pdf", up.DocumentName)
	assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(up.DocumentPath)))

	_, err = s.UpdateComponent(bg, kit.ID, "missing", ComponentInput{Name: "x", Quantity: 1})
	assert.ErrorIs(t, err, ErrComponentNotFound)

	require.NoError(t, s.RemoveComponent(bg, kit.ID, c.ID))
	assert.NoFileExists(t, filepath.Join(dir, filepath.FromSlash(oldImage)))
	assert.NoFileExists(t, filepath.Join(dir, filepath.FromSlash(up.DocumentPath)))
	got, err = s.Kits.Get(bg, kit.ID)
	require.NoError(t, err)
	require.Len(t, got.Components, 1)
	assert.Equal(t, "Guantes", got.Components[0].Name)
	assert.ErrorIs(t, s.RemoveComponent(bg, kit.ID, c.ID), ErrComponentNotFound)
}

func TestComponentInputValidate(t *testing.T) {
	v := ComponentInput{Quantity: 0}.Validate()
	assert.Equal(t, "required", v["name"])
	assert.Equal(t, "must_be_positive", v["quantity"])
	assert.True(t, ComponentInput{Name: "Careta", Quantity: 1}.Validate().Empty())
}

func TestDeleteAssetRemovesFiles(t *testing.T) {
	db := setupServicesTestDB(t)
	files, dir := newTestFiles(t)
	s := NewEquipmentService(db, files, nil)
	a := &models.Asset{Equipment: models.Equipment{Name: "Taladro"}, Kind: models.AssetTool}
	require.NoError(t, db.Create(a).Error)

	att, err := s.AddAssetAttachment(bg, a.ID, Upload{Name: "cert.pdf", Size: 1, Body: strings.NewReader("x")})
	require.NoError(t, err)
	require.NoError(t, s.SetAssetImage(bg, a.ID, Upload{Name: "taladro.jpg", Size: 1, Body: strings.NewReader("j")}))
	got, err := s.Assets.Get(bg, a.ID)
	require.NoError(t, err)
	require.NotEmpty(t, got.ImagePath)

	require.NoError(t, s.DeleteAsset(bg, a.ID))
	assert.NoFileExists(t, filepath.Join(dir, filepath.FromSlash(att.StoragePath)))
	assert.NoFileExists(t, filepath.Join(dir, filepath.FromSlash(got.ImagePath)))
}
