package database

import (
	"backend/internal/logging"
	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.Customer{},
		&model.PackagingType{},
		&model.Unit{},
		&model.ShippingMethod{},
		&model.Department{},
		&model.RequestTypeOption{},
		&model.CostCenter{},
		&model.CustomerOrder{},
		&model.OrderItem{},
		&model.ProductionRequest{},
		&model.ProductionItem{},
		&model.OvertimeRequest{},
		&model.OvertimeItem{},
		&model.Request{},
		&model.RequestItem{},
		&model.AuditLog{},
	)
	if err != nil {
		logging.Get().WithError(err).Warn("failed to auto-migrate models")
	}

	return db, nil
}
