package jobs

import (
	"log"

	"github.com/hospitalhq/hospital_ops/database"
	"github.com/hospitalhq/hospital_ops/models"
)

// ResetWeeklyTokens clears every slot's booked tokens at the start of the
// week. The schedule is weekly-recurring, so token numbers are consumables
// scoped to one week. Each record is written through the same version check
// the API uses; a record being edited right now is skipped and picked up by
// the next run.
func ResetWeeklyTokens() {
	log.Println("Running job: ResetWeeklyTokens...")

	var records []models.Availability
	if err := database.DB.Find(&records).Error; err != nil {
		log.Printf("Error loading availability records for token reset: %v", err)
		return
	}

	reset := 0
	for _, rec := range records {
		changed := false
		for i := range rec.Slots {
			if len(rec.Slots[i].BookedTokens) > 0 || len(rec.Slots[i].Grants) > 0 {
				rec.Slots[i].BookedTokens = nil
				rec.Slots[i].Grants = nil
				changed = true
			}
		}
		if !changed {
			continue
		}

		res := database.DB.Model(&models.Availability{}).
			Where("id = ? AND version = ?", rec.ID, rec.Version).
			Select("Slots", "Version").
			Updates(&models.Availability{Slots: rec.Slots, Version: rec.Version + 1})
		if res.Error != nil {
			log.Printf("Error resetting tokens for record %s: %v", rec.ID, res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			log.Printf("Skipping token reset for record %s, concurrent edit in flight", rec.ID)
			continue
		}
		reset++
	}

	if reset > 0 {
		log.Printf("Weekly token reset cleared %d records", reset)
	}
}
