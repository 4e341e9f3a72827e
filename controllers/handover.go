package controllers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"concierge/models"
	"concierge/tools"

	"github.com/jinzhu/gorm"
)

const DEFAULT_NICKNAME = "anonymous"

const MSG_HANDOVER_ACK = "You have been transferred to a human agent. Please wait a moment."

const MSG_AGENT_NOTIFICATION = "🔔 Handover: [%s] is asking for a human agent.\n" +
	"Community: %s\nRole: %s\nKeyword: %s\nMessage: %s"

// matchHandoverKeyword returns the first configured keyword matching the
// message. Single-character keywords require exact equality; longer keywords
// match by substring containment. List order decides which keyword is
// reported when several would match.
func matchHandoverKeyword(keywords []string, message string) (string, bool) {
	for _, k := range keywords {
		if len([]rune(k)) == 1 {
			if message == k {
				return k, true
			}
			continue
		}
		if strings.Contains(message, k) {
			return k, true
		}
	}
	return "", false
}

// startHandover flips the user into human-assisted mode, acknowledges, and
// fans out a notification to every configured agent. Profile lookup and each
// individual push are best effort.
func startHandover(ctx context.Context, db *gorm.DB, line tools.LineClient, settings models.ResolvedSettings, ev LineEvent, state *models.UserState, keyword, message string) {
	userID := ev.Source.UserID
	log.Printf("[Handover] triggered by keyword: %s", keyword)

	nickname := DEFAULT_NICKNAME
	if state != nil && state.Nickname != "" {
		nickname = state.Nickname
	}
	if name, err := line.GetProfile(ctx, userID); err != nil {
		log.Printf("[Handover] profile lookup failed for %s: %v", userID, err)
	} else if name != "" {
		nickname = name
	}

	now := time.Now()
	err := upsertUserState(db, userID, map[string]any{
		"nickname":               nickname,
		"is_human_mode":          true,
		"last_human_interaction": &now,
	})
	if err != nil {
		log.Printf("[Handover] state update failed for %s: %v", userID, err)
	}

	if err := line.Reply(ctx, ev.ReplyToken, tools.NewText(MSG_HANDOVER_ACK)); err != nil {
		log.Printf("[Handover] ack reply failed for %s: %v", userID, err)
	}

	community, role := "unknown", "unknown"
	if state != nil {
		if state.Community != "" {
			community = state.Community
		}
		if state.Role != "" {
			role = state.Role
		}
	}
	notification := fmt.Sprintf(MSG_AGENT_NOTIFICATION, nickname, community, role, keyword, message)

	// Each push stands alone: one failing agent must not block the rest.
	for _, agent := range settings.Agents {
		if err := line.Push(ctx, agent, tools.NewText(notification)); err != nil {
			log.Printf("[Handover] notify agent %s failed: %v", agent, err)
		}
	}
}

// withinHandoverWindow reports whether a human is still assumed to be handling
// the conversation.
func withinHandoverWindow(state *models.UserState, timeout time.Duration, now time.Time) bool {
	if state.LastHumanInteraction == nil {
		return false
	}
	return now.Sub(*state.LastHumanInteraction) < timeout
}
