package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"concierge/models"
	"concierge/tools"

	dbpkg "concierge/db"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// LineWebhookPayload is the envelope LINE posts to the webhook endpoint.
type LineWebhookPayload struct {
	Destination string      `json:"destination"`
	Events      []LineEvent `json:"events"`
}

type LineEvent struct {
	Type           string `json:"type"`
	WebhookEventID string `json:"webhookEventId"`
	ReplyToken     string `json:"replyToken"`
	Timestamp      int64  `json:"timestamp"`
	Source         struct {
		Type   string `json:"type"`
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"message"`
}

// WebhookUpdate handles POST /api/webhook.
//
// Order of gates is deliberate: settings load (500) and signature check (401)
// are the only fatal paths. Once past them the response is always 200 "OK" so
// LINE does not redeliver the batch; every per-event failure is absorbed.
func WebhookUpdate(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var row models.Settings
	if err := db.First(&row).Error; err != nil {
		c.String(http.StatusInternalServerError, "Failed to fetch settings")
		return
	}
	settings := row.Resolved()

	raw, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read body")
		return
	}

	if !tools.ValidateLineSignature(raw, settings.LineChannelSecret, c.GetHeader("X-Line-Signature")) {
		c.String(http.StatusUnauthorized, "Invalid signature")
		return
	}

	var payload LineWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.String(http.StatusBadRequest, "invalid json")
		return
	}

	line := tools.LineClient{AccessToken: settings.LineChannelAccessToken}

	// Strictly sequential: handover/registration/dedupe decisions for a user
	// must observe a consistent state ordering within one delivery.
	for _, ev := range payload.Events {
		handleLineEvent(c.Request.Context(), db, line, settings, ev)
	}

	c.String(http.StatusOK, "OK")
}

// handleLineEvent runs the per-event decision pipeline:
// dedupe -> registration -> handover keyword -> human mode -> AI dispatch.
func handleLineEvent(ctx context.Context, db *gorm.DB, line tools.LineClient, settings models.ResolvedSettings, ev LineEvent) {
	if ev.Type != "message" || ev.Message.Type != "text" {
		return
	}

	userID := ev.Source.UserID
	text := strings.TrimSpace(ev.Message.Text)
	eventID := ev.WebhookEventID
	// An event without an id cannot be deduplicated, so it is skipped whole.
	if userID == "" || text == "" || eventID == "" {
		return
	}

	if !claimEvent(db, eventID) {
		log.Printf("[Dedupe] skipping already processed event: %s", eventID)
		return
	}

	var state *models.UserState
	var row models.UserState
	if err := db.Where("line_user_id = ?", userID).First(&row).Error; err == nil {
		state = &row
	}

	// Registration fully gates everything else, keywords included.
	if state == nil || !state.IsRegistered {
		runRegistration(ctx, db, line, ev, state, text)
		return
	}

	if keyword, ok := matchHandoverKeyword(settings.Keywords, text); ok {
		startHandover(ctx, db, line, settings, ev, state, keyword, text)
		return
	}

	if state.IsHumanMode {
		if withinHandoverWindow(state, settings.HandoverTimeout, time.Now()) {
			// A human is handling this conversation; absorb silently.
			return
		}
		if err := db.Model(&models.UserState{}).
			Where("line_user_id = ?", userID).
			Update("is_human_mode", false).Error; err != nil {
			log.Printf("[Webhook] human-mode reset failed for %s: %v", userID, err)
		}
	}

	if !settings.IsAIEnabled {
		return
	}

	history := loadRecentTurns(db, userID, HISTORY_WINDOW)
	reply, err := tools.Generate(ctx, settings, history, text)
	if err != nil {
		log.Printf("[Webhook] AI backend error for %s: %v", userID, err)
		if err := line.Reply(ctx, ev.ReplyToken, tools.NewText("❌ AI error:\n"+err.Error())); err != nil {
			log.Printf("[Webhook] error reply failed for %s: %v", userID, err)
		}
		return
	}
	if reply.Text == "" {
		return
	}

	if err := line.Reply(ctx, ev.ReplyToken, tools.NewText(reply.Text)); err != nil {
		log.Printf("[Webhook] reply failed for %s: %v", userID, err)
		return
	}
	recordTurnPair(db, userID, text, reply)
}
