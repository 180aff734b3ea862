package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
)

// FormOptions bundles every dropdown a document form needs in one payload.
type FormOptions struct {
	PackagingTypes  []model.PackagingType     `json:"packaging_types"`
	Units           []model.Unit              `json:"units"`
	ShippingMethods []model.ShippingMethod    `json:"shipping_methods"`
	Departments     []model.Department        `json:"departments"`
	RequestTypes    []model.RequestTypeOption `json:"request_types"`
	CostCenters     []model.CostCenter        `json:"cost_centers"`
}

type LookupService interface {
	FormOptions(ctx context.Context) (FormOptions, error)
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
	SearchCustomers(ctx context.Context, query string) ([]model.Customer, error)
}

type lookupService struct {
	lookups repository.LookupRepository
}

func NewLookupService(lookups repository.LookupRepository) LookupService {
	return &lookupService{lookups: lookups}
}

const searchLimit = 20

func (s *lookupService) FormOptions(ctx context.Context) (FormOptions, error) {
	var opts FormOptions
	var err error

	if opts.PackagingTypes, err = s.lookups.ActivePackagingTypes(ctx); err != nil {
		return opts, err
	}
	if opts.Units, err = s.lookups.ActiveUnits(ctx); err != nil {
		return opts, err
	}
	if opts.ShippingMethods, err = s.lookups.ActiveShippingMethods(ctx); err != nil {
		return opts, err
	}
	if opts.Departments, err = s.lookups.ActiveDepartments(ctx); err != nil {
		return opts, err
	}
	if opts.RequestTypes, err = s.lookups.ActiveRequestTypes(ctx); err != nil {
		return opts, err
	}
	if opts.CostCenters, err = s.lookups.ActiveCostCenters(ctx); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *lookupService) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	return s.lookups.SearchProducts(ctx, query, searchLimit)
}

func (s *lookupService) SearchCustomers(ctx context.Context, query string) ([]model.Customer, error) {
	return s.lookups.SearchCustomers(ctx, query, searchLimit)
}
