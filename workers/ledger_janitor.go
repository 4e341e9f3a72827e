package workers

import (
	"log"
	"time"

	"concierge/models"

	"github.com/jinzhu/gorm"
)

// StartLedgerJanitor periodically removes dedupe ledger rows older than the
// retention window. The claim path only depends on uniqueness within that
// horizon, never on old rows existing. retentionDays <= 0 disables the sweep
// and keeps the ledger append-only.
func StartLedgerJanitor(db *gorm.DB, retentionDays int) {
	if retentionDays <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		sweepLedger(db, retentionDays)
		for range ticker.C {
			sweepLedger(db, retentionDays)
		}
	}()
}

func sweepLedger(db *gorm.DB, retentionDays int) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	res := db.Where("created_at < ?", cutoff).Delete(&models.ProcessedEvent{})
	if res.Error != nil {
		log.Printf("[Janitor] ledger sweep error: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("[Janitor] removed %d processed events older than %s", res.RowsAffected, cutoff.Format(time.RFC3339))
	}
}
