package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/shared"
)

// GormSubmissionLogRepository implements invoicing.AuditStore using GORM
type GormSubmissionLogRepository struct {
	db *gorm.DB
}

// NewGormSubmissionLogRepository creates a new GORM-based submission log repository
func NewGormSubmissionLogRepository(db *gorm.DB) *GormSubmissionLogRepository {
	return &GormSubmissionLogRepository{db: db}
}

// Upsert replaces the latest record for the order id, or inserts one when
// none exists.
func (r *GormSubmissionLogRepository) Upsert(ctx context.Context, log *invoicing.SubmissionLog) error {
	var existing invoicing.SubmissionLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", log.OrderID).
		Order("id DESC").
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(log).Error
		}
		return err
	}

	log.ID = existing.ID
	log.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(log).Error
}

// Append always inserts a fresh record, preserving the retry trail.
func (r *GormSubmissionLogRepository) Append(ctx context.Context, log *invoicing.SubmissionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindLatest returns the most recent record for the order id.
func (r *GormSubmissionLogRepository) FindLatest(ctx context.Context, orderID string) (*invoicing.SubmissionLog, error) {
	var log invoicing.SubmissionLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id DESC").
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// ListByOrder returns the full attempt history for an order, newest first.
func (r *GormSubmissionLogRepository) ListByOrder(ctx context.Context, orderID string) ([]invoicing.SubmissionLog, error) {
	var logs []invoicing.SubmissionLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// Ensure GormSubmissionLogRepository implements the store interface
var _ invoicing.AuditStore = (*GormSubmissionLogRepository)(nil)
