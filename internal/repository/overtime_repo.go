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

type OvertimeRepository interface {
	NextNumber(ctx context.Context, now time.Time) (string, error)
	Create(ctx context.Context, req *model.OvertimeRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.OvertimeRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.OvertimeRequest, error)
	Save(ctx context.Context, req *model.OvertimeRequest) error
	ReplaceItems(ctx context.Context, requestID uuid.UUID, items []model.OvertimeItem) error
	List(ctx context.Context, filter DocumentFilter) ([]model.OvertimeRequest, int64, error)
	CountInStatuses(ctx context.Context, statuses []workflow.Status) (int64, error)
}

type overtimeRepository struct {
	db *gorm.DB
}

func NewOvertimeRepository(db *gorm.DB) OvertimeRepository {
	return &overtimeRepository{db: db}
}

func (r *overtimeRepository) NextNumber(ctx context.Context, now time.Time) (string, error) {
	prefix := MonthlyPrefix(model.OvertimeWorkflow.Prefix, now)
	return nextNumber(GetDB(ctx, r.db), &model.OvertimeRequest{}, "request_number", prefix)
}

func (r *overtimeRepository) Create(ctx context.Context, req *model.OvertimeRequest) error {
	return TranslateError(GetDB(ctx, r.db).Create(req).Error)
}

func (r *overtimeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.OvertimeRequest, error) {
	var req model.OvertimeRequest
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("overtime_items.id") }).
		Preload("Items.Department").
		Preload("CreatedBy").
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &req, nil
}

func (r *overtimeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.OvertimeRequest, error) {
	var req model.OvertimeRequest
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &req, nil
}

func (r *overtimeRepository) Save(ctx context.Context, req *model.OvertimeRequest) error {
	return TranslateError(GetDB(ctx, r.db).Omit("Items", "CreatedBy").Save(req).Error)
}

func (r *overtimeRepository) ReplaceItems(ctx context.Context, requestID uuid.UUID, items []model.OvertimeItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("request_id = ?", requestID).Delete(&model.OvertimeItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = uuid.Nil
		items[i].RequestID = requestID
	}
	return db.Create(&items).Error
}

func (r *overtimeRepository) List(ctx context.Context, filter DocumentFilter) ([]model.OvertimeRequest, int64, error) {
	var reqs []model.OvertimeRequest
	var total int64

	db := GetDB(ctx, r.db)
	if err := applyDocumentFilter(db.Model(&model.OvertimeRequest{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetch := applyDocumentFilter(db.Preload("Items").Preload("Items.Department").Preload("CreatedBy"), filter).
		Order("created_at DESC")
	if filter.Limit > 0 {
		fetch = fetch.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}
	if err := fetch.Find(&reqs).Error; err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

func (r *overtimeRepository) CountInStatuses(ctx context.Context, statuses []workflow.Status) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.OvertimeRequest{}).
		Where("status IN ?", statusStrings(statuses)).
		Count(&total).Error
	return total, err
}
