package models

import "time"

/************************************************
/**** MARK: TURN SENDERS ****/
/************************************************/
const TURN_SENDER_USER = "user"
const TURN_SENDER_AI = "ai"

// ConversationTurn is one line of the per-user history log. The AI dispatcher
// replays the most recent turns to rebuild context; for backends that keep
// context server side, AIResponseID on the latest ai turn is the continuation
// handle for the next call.
type ConversationTurn struct {
	ID           int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	LineUserID   string     `gorm:"column:line_user_id;not null;index" json:"line_user_id"`
	Sender       string     `gorm:"column:sender;not null" json:"sender"`
	Message      string     `gorm:"column:message;type:text" json:"message"`
	AIResponseID string     `gorm:"column:ai_response_id;default:''" json:"ai_response_id"`
	CreatedAt    *time.Time `json:"created_at"`
}
