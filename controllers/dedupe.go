package controllers

import (
	"concierge/models"

	"github.com/jinzhu/gorm"
)

// claimEvent inserts the event into the dedupe ledger. The unique index on
// event_id makes the insert fail for redelivered events; that failure is the
// claim-rejected signal, not an error. This runs before any state mutation so
// side effects happen at most once per delivery.
func claimEvent(db *gorm.DB, eventID string) bool {
	return db.Create(&models.ProcessedEvent{EventID: eventID}).Error == nil
}
