package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
)

type AuditService interface {
	List(ctx context.Context, action, docType string, page, limit int) ([]model.AuditLog, int64, error)
}

type auditService struct {
	audits repository.AuditRepository
}

func NewAuditService(audits repository.AuditRepository) AuditService {
	return &auditService{audits: audits}
}

func (s *auditService) List(ctx context.Context, action, docType string, page, limit int) ([]model.AuditLog, int64, error) {
	return s.audits.List(ctx, action, docType, page, limit)
}
