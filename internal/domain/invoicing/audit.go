package invoicing

import (
	"context"
	"strings"
	"time"
)

// Submission status values stored on the audit record.
const (
	SubmissionFailed  = 0
	SubmissionSuccess = 1
)

// SubmissionLog is the audit record written once per submission attempt.
// The store is keyed by order id with last-write-wins semantics; a manual
// retry appends a fresh record instead, so the retry trail stays visible.
type SubmissionLog struct {
	ID            uint      `gorm:"primaryKey"`
	OrderID       string    `gorm:"size:64;index:idx_submission_logs_order_id"`
	Status        int       `gorm:"not null;default:0"`
	Message       string    `gorm:"type:text"`
	CorrelationID string    `gorm:"size:64"`
	Raw           string    `gorm:"type:text"`
	RetryCount    int       `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName sets the table name for GORM
func (SubmissionLog) TableName() string {
	return "submission_logs"
}

// Succeeded reports whether this attempt ended in overall success.
func (l *SubmissionLog) Succeeded() bool {
	return l.Status == SubmissionSuccess
}

// AuditStore persists submission audit records.
type AuditStore interface {
	// Upsert replaces the record for the order id, or creates one.
	Upsert(ctx context.Context, log *SubmissionLog) error
	// Append always inserts a fresh record (manual retry trail).
	Append(ctx context.Context, log *SubmissionLog) error
	// FindLatest returns the most recent record for the order id, or
	// shared.ErrNotFound.
	FindLatest(ctx context.Context, orderID string) (*SubmissionLog, error)
}

// duplicateSignatures are the known error-message fragments the accounting
// system produces when a document already exists. The system reports this
// through message text rather than a structured code, so detection is a
// substring match over the lowercased message.
var duplicateSignatures = []string{
	"duplicate",
	"đã tồn tại",
	"da ton tai",
	"tồn tại chứng từ",
}

// IsDuplicateMessage reports whether the rejection message carries a known
// duplicate-constraint signature. A duplicate means the document was in
// fact created previously, so callers treat it as success for
// continuation purposes.
func IsDuplicateMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, sig := range duplicateSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
