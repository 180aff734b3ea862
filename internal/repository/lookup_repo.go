package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LookupRepository serves the reference data behind document forms: dropdown
// option tables and the product/customer directories.
type LookupRepository interface {
	ActivePackagingTypes(ctx context.Context) ([]model.PackagingType, error)
	ActiveUnits(ctx context.Context) ([]model.Unit, error)
	ActiveShippingMethods(ctx context.Context) ([]model.ShippingMethod, error)
	ActiveDepartments(ctx context.Context) ([]model.Department, error)
	ActiveRequestTypes(ctx context.Context) ([]model.RequestTypeOption, error)
	ActiveCostCenters(ctx context.Context) ([]model.CostCenter, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]model.Product, error)
	SearchCustomers(ctx context.Context, query string, limit int) ([]model.Customer, error)
	RequestTypeExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type lookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(db *gorm.DB) LookupRepository {
	return &lookupRepository{db: db}
}

// activeOrdered is the shared shape of every dropdown query: active rows in
// display order, name as tiebreak.
func activeOrdered(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("display_order, name")
}

func (r *lookupRepository) ActivePackagingTypes(ctx context.Context) ([]model.PackagingType, error) {
	var rows []model.PackagingType
	err := activeOrdered(GetDB(ctx, r.db)).Find(&rows).Error
	return rows, err
}

func (r *lookupRepository) ActiveUnits(ctx context.Context) ([]model.Unit, error) {
	var rows []model.Unit
	err := activeOrdered(GetDB(ctx, r.db)).Find(&rows).Error
	return rows, err
}

func (r *lookupRepository) ActiveShippingMethods(ctx context.Context) ([]model.ShippingMethod, error) {
	var rows []model.ShippingMethod
	err := activeOrdered(GetDB(ctx, r.db)).Find(&rows).Error
	return rows, err
}

func (r *lookupRepository) ActiveDepartments(ctx context.Context) ([]model.Department, error) {
	var rows []model.Department
	err := activeOrdered(GetDB(ctx, r.db)).Find(&rows).Error
	return rows, err
}

func (r *lookupRepository) ActiveRequestTypes(ctx context.Context) ([]model.RequestTypeOption, error) {
	var rows []model.RequestTypeOption
	err := activeOrdered(GetDB(ctx, r.db)).Find(&rows).Error
	return rows, err
}

func (r *lookupRepository) ActiveCostCenters(ctx context.Context) ([]model.CostCenter, error) {
	var rows []model.CostCenter
	err := activeOrdered(GetDB(ctx, r.db)).Find(&rows).Error
	return rows, err
}

func (r *lookupRepository) SearchProducts(ctx context.Context, query string, limit int) ([]model.Product, error) {
	var rows []model.Product
	err := GetDB(ctx, r.db).
		Where("code ILIKE ? OR name ILIKE ?", query+"%", "%"+query+"%").
		Order("code").Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *lookupRepository) SearchCustomers(ctx context.Context, query string, limit int) ([]model.Customer, error) {
	var rows []model.Customer
	err := GetDB(ctx, r.db).
		Where("customer_code ILIKE ? OR name ILIKE ?", query+"%", "%"+query+"%").
		Order("customer_code").Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *lookupRepository) RequestTypeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.RequestTypeOption{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
