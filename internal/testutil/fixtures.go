package testutil

import (
	"testing"

	"precast-erp/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateUser inserts an active user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, username, role string) *model.User {
	t.Helper()
	u := &model.User{
		Username:  username,
		Email:     username + "@plant.test",
		FirstName: "Test",
		LastName:  username,
		Password:  "x",
		Role:      role,
		IsActive:  true,
	}
	mustCreate(t, db, u)
	return u
}

// CreateClient inserts an active client.
func CreateClient(t *testing.T, db *gorm.DB, name string) *model.Client {
	t.Helper()
	c := &model.Client{CompanyName: name, Country: "Sénégal", IsActive: true}
	mustCreate(t, db, c)
	return c
}

// CreatePBAProduct inserts an active finished product and its ledger row.
func CreatePBAProduct(t *testing.T, db *gorm.DB, code string, price, initial int64) (*model.PBAProduct, *model.StockItem) {
	t.Helper()
	p := &model.PBAProduct{
		Code:      code,
		Name:      "PBA " + code,
		Category:  model.PBACategory9AR,
		UnitPrice: decimal.NewFromInt(price),
		IsActive:  true,
	}
	mustCreate(t, db, p)
	s := newStockItem(model.ItemClassFinishedProduct, initial)
	s.PBAProductID = &p.ID
	mustCreate(t, db, s)
	return p, s
}

// CreateMaterial inserts an active raw material and its ledger row.
func CreateMaterial(t *testing.T, db *gorm.DB, code string, initial int64) (*model.Material, *model.StockItem) {
	t.Helper()
	m := &model.Material{
		Code:     code,
		Name:     "Material " + code,
		Unit:     model.UnitKg,
		Category: model.MaterialCategoryCiment,
		IsActive: true,
	}
	mustCreate(t, db, m)
	s := newStockItem(model.ItemClassRawMaterial, initial)
	s.MaterialID = &m.ID
	mustCreate(t, db, s)
	return m, s
}

// CreateArmature inserts an active armature and its ledger row.
func CreateArmature(t *testing.T, db *gorm.DB, code string, initial int64) (*model.Armature, *model.StockItem) {
	t.Helper()
	a := &model.Armature{Code: code, Name: "Armature " + code, IsActive: true}
	mustCreate(t, db, a)
	s := newStockItem(model.ItemClassSubAssembly, initial)
	s.ArmatureID = &a.ID
	mustCreate(t, db, s)
	return a, s
}

// Deactivate flips is_active to false on any catalog or client row.
func Deactivate(t *testing.T, db *gorm.DB, value any, id uuid.UUID) {
	t.Helper()
	if err := db.Model(value).Where("id = ?", id).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate: %v", err)
	}
}

// StockOf reloads a ledger row.
func StockOf(t *testing.T, db *gorm.DB, id uuid.UUID) *model.StockItem {
	t.Helper()
	var s model.StockItem
	if err := db.First(&s, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to load stock item: %v", err)
	}
	return &s
}

// Count returns the number of rows of model matching the optional condition.
func Count(t *testing.T, db *gorm.DB, value any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(value)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	return n
}

func newStockItem(class model.ItemClass, initial int64) *model.StockItem {
	return &model.StockItem{
		ItemClass:    class,
		InitialStock: decimal.NewFromInt(initial),
		CurrentStock: decimal.NewFromInt(initial),
	}
}

func mustCreate(t *testing.T, db *gorm.DB, value any) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("failed to create fixture %T: %v", value, err)
	}
}
