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

type RequestRepository interface {
	NextNumber(ctx context.Context, now time.Time) (string, error)
	Create(ctx context.Context, req *model.Request) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Request, error)
	Save(ctx context.Context, req *model.Request) error
	ReplaceItems(ctx context.Context, requestID uuid.UUID, items []model.RequestItem) error
	List(ctx context.Context, filter DocumentFilter) ([]model.Request, int64, error)
	// ListVisible lists every request except other people's drafts. Drafts
	// stay private to their creator until submitted.
	ListVisible(ctx context.Context, viewerID uuid.UUID, page, limit int) ([]model.Request, int64, error)
	// ListActionable returns requests in the given statuses plus the
	// creator's own drafts, which count as pending work for the creator
	// even though no role is gated on the draft status.
	ListActionable(ctx context.Context, statuses []workflow.Status, creatorID uuid.UUID) ([]model.Request, error)
	CountInStatuses(ctx context.Context, statuses []workflow.Status) (int64, error)
	CountDraftsBy(ctx context.Context, creatorID uuid.UUID) (int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) NextNumber(ctx context.Context, now time.Time) (string, error) {
	prefix := MonthlyPrefix(model.RequestWorkflow.Prefix, now)
	return nextNumber(GetDB(ctx, r.db), &model.Request{}, "request_number", prefix)
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return TranslateError(GetDB(ctx, r.db).Create(req).Error)
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("request_items.id") }).
		Preload("Items.RequestType").
		Preload("Items.CostCenter").
		Preload("CreatedBy").
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &req, nil
}

func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &req, nil
}

func (r *requestRepository) Save(ctx context.Context, req *model.Request) error {
	return TranslateError(GetDB(ctx, r.db).Omit("Items", "CreatedBy").Save(req).Error)
}

func (r *requestRepository) ReplaceItems(ctx context.Context, requestID uuid.UUID, items []model.RequestItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("request_id = ?", requestID).Delete(&model.RequestItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = uuid.Nil
		items[i].RequestID = requestID
	}
	return db.Create(&items).Error
}

func (r *requestRepository) List(ctx context.Context, filter DocumentFilter) ([]model.Request, int64, error) {
	var reqs []model.Request
	var total int64

	db := GetDB(ctx, r.db)
	if err := applyDocumentFilter(db.Model(&model.Request{}), filter).Count(&total).Error; err != nil {
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

func (r *requestRepository) ListVisible(ctx context.Context, viewerID uuid.UUID, page, limit int) ([]model.Request, int64, error) {
	var reqs []model.Request
	var total int64

	db := GetDB(ctx, r.db)
	cond := "status <> ? OR created_by_id = ?"
	if err := db.Model(&model.Request{}).
		Where(cond, string(model.RequestStatusDraft), viewerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetch := db.Preload("Items").Preload("CreatedBy").
		Where(cond, string(model.RequestStatusDraft), viewerID).
		Order("created_at DESC")
	if limit > 0 {
		fetch = fetch.Offset((page - 1) * limit).Limit(limit)
	}
	if err := fetch.Find(&reqs).Error; err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

func (r *requestRepository) ListActionable(ctx context.Context, statuses []workflow.Status, creatorID uuid.UUID) ([]model.Request, error) {
	var reqs []model.Request
	db := GetDB(ctx, r.db).Preload("CreatedBy").Order("created_at DESC")
	switch {
	case len(statuses) > 0:
		db = db.Where("status IN ? OR (status = ? AND created_by_id = ?)",
			statusStrings(statuses), string(model.RequestStatusDraft), creatorID)
	default:
		db = db.Where("status = ? AND created_by_id = ?", string(model.RequestStatusDraft), creatorID)
	}
	if err := db.Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *requestRepository) CountInStatuses(ctx context.Context, statuses []workflow.Status) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.Request{}).
		Where("status IN ?", statusStrings(statuses)).
		Count(&total).Error
	return total, err
}

func (r *requestRepository) CountDraftsBy(ctx context.Context, creatorID uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.Request{}).
		Where("status = ? AND created_by_id = ?", string(model.RequestStatusDraft), creatorID).
		Count(&total).Error
	return total, err
}
