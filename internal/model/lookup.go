package model

import (
	"github.com/google/uuid"
)

// Reference data backing the document forms: dropdown options and the
// product/customer directories used by autocomplete. Rows are never deleted,
// only deactivated, so historical documents keep valid references.

// Product is a sellable item in the catalog.
type Product struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name string    `gorm:"type:varchar(200);not null" json:"name"`
}

// Customer is a known buyer; orders snapshot its code/name/phone.
type Customer struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerCode string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"customer_code"`
	Name         string    `gorm:"type:varchar(200);not null" json:"name"`
	Phone        string    `gorm:"type:varchar(50);not null" json:"phone"`
	Address      string    `gorm:"type:text" json:"address"`
}

// PackagingType is a dropdown option for order and production items.
type PackagingType struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
}

// Unit is a unit of measure dropdown option.
type Unit struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
}

// ShippingMethod is a dropdown option for order items.
type ShippingMethod struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
}

// Department is the org unit an overtime entry belongs to.
type Department struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
}

// RequestTypeOption classifies orders and general request items.
type RequestTypeOption struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
}

// TableName keeps the table name aligned with the domain term.
func (RequestTypeOption) TableName() string { return "request_types" }

// CostCenter is charged by general request items.
type CostCenter struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
}
