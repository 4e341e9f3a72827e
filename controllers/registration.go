package controllers

import (
	"context"
	"fmt"
	"log"

	"concierge/models"
	"concierge/tools"

	"github.com/jinzhu/gorm"
)

const MSG_WELCOME = "Welcome to the community helper!\n" +
	"Please complete a quick registration so we can serve you.\n\n" +
	"Please enter your community name:"

const MSG_ROLE_PROMPT = "Community recorded as \"%s\".\nPlease choose your role:"

const MSG_ROLE_RETRY = "Please tap a button below to choose your role:"

const MSG_REGISTERED = "✅ Registration complete!\nCommunity: %s\nRole: %s\n\nFeel free to ask me anything."

// runRegistration drives the onboarding machine for unregistered users.
// Every branch replies and terminates processing of the triggering message;
// nothing falls through to handover or AI.
func runRegistration(ctx context.Context, db *gorm.DB, line tools.LineClient, ev LineEvent, state *models.UserState, text string) {
	userID := ev.Source.UserID

	if state != nil {
		switch state.PendingField {
		case models.PENDING_COMMUNITY:
			err := db.Model(&models.UserState{}).
				Where("line_user_id = ?", userID).
				Updates(map[string]any{
					"community":     text,
					"pending_field": models.PENDING_ROLE,
				}).Error
			if err != nil {
				log.Printf("[Registration] community update failed for %s: %v", userID, err)
				return
			}
			msg := tools.NewTextWithChoices(fmt.Sprintf(MSG_ROLE_PROMPT, text), models.Roles)
			if err := line.Reply(ctx, ev.ReplyToken, msg); err != nil {
				log.Printf("[Registration] role prompt failed for %s: %v", userID, err)
			}
			return

		case models.PENDING_ROLE:
			if !models.IsValidRole(text) {
				msg := tools.NewTextWithChoices(MSG_ROLE_RETRY, models.Roles)
				if err := line.Reply(ctx, ev.ReplyToken, msg); err != nil {
					log.Printf("[Registration] role retry failed for %s: %v", userID, err)
				}
				return
			}
			err := db.Model(&models.UserState{}).
				Where("line_user_id = ?", userID).
				Updates(map[string]any{
					"role":          text,
					"pending_field": models.PENDING_NONE,
					"is_registered": true,
				}).Error
			if err != nil {
				log.Printf("[Registration] completion failed for %s: %v", userID, err)
				return
			}
			// state.Community can be empty if the flow was tampered with;
			// the confirmation then shows a blank field instead of failing.
			msg := tools.NewText(fmt.Sprintf(MSG_REGISTERED, state.Community, text))
			if err := line.Reply(ctx, ev.ReplyToken, msg); err != nil {
				log.Printf("[Registration] confirmation failed for %s: %v", userID, err)
			}
			return
		}
		// Unrecognized or empty pending field with an unregistered row:
		// restart the flow below rather than silently ignoring the user.
	}

	fields := map[string]any{
		"is_registered": false,
		"pending_field": models.PENDING_COMMUNITY,
	}
	if err := upsertUserState(db, userID, fields); err != nil {
		log.Printf("[Registration] start failed for %s: %v", userID, err)
		return
	}
	if err := line.Reply(ctx, ev.ReplyToken, tools.NewText(MSG_WELCOME)); err != nil {
		log.Printf("[Registration] welcome failed for %s: %v", userID, err)
	}
}
