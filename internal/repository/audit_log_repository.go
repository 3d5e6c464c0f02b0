package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// Used by the reconcile tooling to review what the pipeline recorded.
type AuditLogFilter struct {
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *string
	Since        *time.Time
	Limit        int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
