package controllers

import (
	"log"

	"concierge/models"
	"concierge/tools"

	"github.com/jinzhu/gorm"
)

// HISTORY_WINDOW is how many prior turns are replayed as AI context.
const HISTORY_WINDOW = 5

// loadRecentTurns returns the last n turns for a user in chronological order,
// ready to replay. A load failure degrades to a context-free call.
func loadRecentTurns(db *gorm.DB, userID string, n int) []tools.Turn {
	var rows []models.ConversationTurn
	err := db.Where("line_user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(n).
		Find(&rows).Error
	if err != nil {
		log.Printf("[Webhook] history load failed for %s: %v", userID, err)
		return nil
	}

	out := make([]tools.Turn, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, tools.Turn{
			Sender:       rows[i].Sender,
			Message:      rows[i].Message,
			AIResponseID: rows[i].AIResponseID,
		})
	}
	return out
}

// recordTurnPair logs the user message and the assistant reply after a
// successful dispatch. Failed dispatches record nothing, so broken calls
// cannot poison later context.
func recordTurnPair(db *gorm.DB, userID, message string, reply tools.Reply) {
	userTurn := models.ConversationTurn{
		LineUserID: userID,
		Sender:     models.TURN_SENDER_USER,
		Message:    message,
	}
	if err := db.Create(&userTurn).Error; err != nil {
		log.Printf("[Webhook] user turn log failed for %s: %v", userID, err)
	}

	aiTurn := models.ConversationTurn{
		LineUserID:   userID,
		Sender:       models.TURN_SENDER_AI,
		Message:      reply.Text,
		AIResponseID: reply.ContinuationID,
	}
	if err := db.Create(&aiTurn).Error; err != nil {
		log.Printf("[Webhook] ai turn log failed for %s: %v", userID, err)
	}
}
