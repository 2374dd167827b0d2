package database

import (
	"context"
	"log"

	"github.com/hospitalhq/hospital_ops/models"
	"gorm.io/gorm"
)

// AuditRecorder appends audit rows. Audit is informational: a failed insert is
// logged and swallowed so it can never fail the mutation it describes.
type AuditRecorder struct {
	db *gorm.DB
}

func NewAuditRecorder(db *gorm.DB) *AuditRecorder {
	return &AuditRecorder{db: db}
}

func (r *AuditRecorder) Record(ctx context.Context, entry models.AuditLog) {
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("Error writing audit log entry (%s): %v", entry.Action, err)
	}
}
