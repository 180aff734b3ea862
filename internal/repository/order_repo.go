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

type OrderRepository interface {
	NextNumber(ctx context.Context, now time.Time) (string, error)
	Create(ctx context.Context, order *model.CustomerOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error)
	Save(ctx context.Context, order *model.CustomerOrder) error
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error
	List(ctx context.Context, filter DocumentFilter) ([]model.CustomerOrder, int64, error)
	CountInStatuses(ctx context.Context, statuses []workflow.Status) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) NextNumber(ctx context.Context, now time.Time) (string, error) {
	prefix := MonthlyPrefix(model.OrderWorkflow.Prefix, now)
	return nextNumber(GetDB(ctx, r.db), &model.CustomerOrder{}, "order_number", prefix)
}

func (r *orderRepository) Create(ctx context.Context, order *model.CustomerOrder) error {
	return TranslateError(GetDB(ctx, r.db).Create(order).Error)
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error) {
	var order model.CustomerOrder
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.PackagingType").
		Preload("Items.Unit").
		Preload("Items.ShippingMethod").
		Preload("RequestType").
		Preload("CreatedBy").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &order, nil
}

// FindByIDForUpdate loads the bare document row under a FOR UPDATE lock so a
// status check-then-write is atomic w.r.t. concurrent transitions.
func (r *orderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error) {
	var order model.CustomerOrder
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &order, nil
}

func (r *orderRepository) Save(ctx context.Context, order *model.CustomerOrder) error {
	return TranslateError(GetDB(ctx, r.db).Omit("Items", "CreatedBy", "RequestType").Save(order).Error)
}

// ReplaceItems swaps the full item set in one shot; callers run it inside the
// same transaction as the parent update.
func (r *orderRepository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = uuid.Nil
		items[i].OrderID = orderID
	}
	return db.Create(&items).Error
}

func (r *orderRepository) List(ctx context.Context, filter DocumentFilter) ([]model.CustomerOrder, int64, error) {
	var orders []model.CustomerOrder
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.CustomerOrder{})
	query = applyDocumentFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetch := applyDocumentFilter(db.Preload("Items").Preload("CreatedBy").Preload("RequestType"), filter).
		Order("created_at DESC")
	if filter.Limit > 0 {
		fetch = fetch.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}
	if err := fetch.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) CountInStatuses(ctx context.Context, statuses []workflow.Status) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.CustomerOrder{}).
		Where("status IN ?", statusStrings(statuses)).
		Count(&total).Error
	return total, err
}

func applyDocumentFilter(db *gorm.DB, filter DocumentFilter) *gorm.DB {
	if len(filter.Statuses) > 0 {
		db = db.Where("status IN ?", statusStrings(filter.Statuses))
	}
	if len(filter.ExcludeStatuses) > 0 {
		db = db.Where("status NOT IN ?", statusStrings(filter.ExcludeStatuses))
	}
	if filter.CreatedBy != nil {
		db = db.Where("created_by_id = ?", *filter.CreatedBy)
	}
	return db
}
