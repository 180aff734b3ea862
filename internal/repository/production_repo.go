package repository

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductionRepository interface {
	NextNumber(ctx context.Context, now time.Time) (string, error)
	Create(ctx context.Context, req *model.ProductionRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductionRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProductionRequest, error)
	Save(ctx context.Context, req *model.ProductionRequest) error
	ReplaceItems(ctx context.Context, requestID uuid.UUID, items []model.ProductionItem) error
	List(ctx context.Context, filter DocumentFilter) ([]model.ProductionRequest, int64, error)
	CountInStatuses(ctx context.Context, statuses []workflow.Status) (int64, error)
}

type productionRepository struct {
	db *gorm.DB
}

func NewProductionRepository(db *gorm.DB) ProductionRepository {
	return &productionRepository{db: db}
}

func (r *productionRepository) NextNumber(ctx context.Context, now time.Time) (string, error) {
	prefix := MonthlyPrefix(model.ProductionWorkflow.Prefix, now)
	return nextNumber(GetDB(ctx, r.db), &model.ProductionRequest{}, "request_number", prefix)
}

func (r *productionRepository) Create(ctx context.Context, req *model.ProductionRequest) error {
	return TranslateError(GetDB(ctx, r.db).Create(req).Error)
}

func (r *productionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductionRequest, error) {
	var req model.ProductionRequest
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("production_items.id") }).
		Preload("Items.PackagingType").
		Preload("Items.Unit").
		Preload("CreatedBy").
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &req, nil
}

func (r *productionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProductionRequest, error) {
	var req model.ProductionRequest
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &req, nil
}

func (r *productionRepository) Save(ctx context.Context, req *model.ProductionRequest) error {
	return TranslateError(GetDB(ctx, r.db).Omit("Items", "CreatedBy").Save(req).Error)
}

func (r *productionRepository) ReplaceItems(ctx context.Context, requestID uuid.UUID, items []model.ProductionItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("request_id = ?", requestID).Delete(&model.ProductionItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = uuid.Nil
		items[i].RequestID = requestID
	}
	return db.Create(&items).Error
}

func (r *productionRepository) List(ctx context.Context, filter DocumentFilter) ([]model.ProductionRequest, int64, error) {
	var reqs []model.ProductionRequest
	var total int64

	db := GetDB(ctx, r.db)
	if err := applyDocumentFilter(db.Model(&model.ProductionRequest{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetch := applyDocumentFilter(db.Preload("Items").Preload("CreatedBy"), filter).
		Order("created_at DESC")
	if filter.Limit > 0 {
		fetch = fetch.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}
	if err := fetch.Find(&reqs).Error; err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

func (r *productionRepository) CountInStatuses(ctx context.Context, statuses []workflow.Status) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.ProductionRequest{}).
		Where("status IN ?", statusStrings(statuses)).
		Count(&total).Error
	return total, err
}
