package usecase

import (
	"context"

	"marketplace/internal/authz"
	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

type AuditLogUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditLogUsecase(logs repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs}
}

func (u *AuditLogUsecase) List(ctx context.Context, caller authz.Caller, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}
	logs, err := u.logs.List(ctx, f)
	if err != nil {
		return nil, errDB
	}
	return logs, nil
}
