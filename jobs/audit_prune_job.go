package jobs

import (
	"log"
	"time"

	"github.com/hospitalhq/hospital_ops/database"
	"github.com/hospitalhq/hospital_ops/models"
)

const auditRetention = 90 * 24 * time.Hour

// PruneAuditLog drops audit rows past the retention window.
func PruneAuditLog() {
	log.Println("Running job: PruneAuditLog...")

	cutoff := time.Now().Add(-auditRetention)
	res := database.DB.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if res.Error != nil {
		log.Printf("Error pruning audit log: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Pruned %d audit log entries", res.RowsAffected)
	}
}
