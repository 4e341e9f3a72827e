package models

import "time"

// ProcessedEvent is one row of the dedupe ledger. Rows are inserted once per
// claimed webhook delivery and never updated; the unique index on event_id is
// what rejects redeliveries, so an insert failure is the dedupe signal rather
// than an error.
type ProcessedEvent struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	EventID   string     `gorm:"column:event_id;not null;unique_index" json:"event_id"`
	CreatedAt *time.Time `json:"created_at"`
}
