package controllers

import (
	"net/http"
	"strconv"
	"strings"

	dbpkg "concierge/db"
	"concierge/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// upsertUserState creates or updates the per-user row. Updates are idempotent
// and keyed by user, so concurrent deliveries cannot corrupt state.
func upsertUserState(db *gorm.DB, userID string, fields map[string]any) error {
	var row models.UserState
	err := db.Where("line_user_id = ?", userID).First(&row).Error
	if err != nil {
		if !gorm.IsRecordNotFoundError(err) {
			return err
		}
		row = models.UserState{LineUserID: userID}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}
	return db.Model(&models.UserState{}).
		Where("line_user_id = ?", userID).
		Updates(fields).Error
}

// GetUserStates handles GET /api/users for the admin list view: users in
// human mode first, optional q filter over nickname/community/role.
func GetUserStates(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	query := db.Order("is_human_mode desc").Order("updated_at desc")
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + q + "%"
		query = query.Where("nickname LIKE ? OR community LIKE ? OR role LIKE ?", like, like, like)
	}

	var states []models.UserState
	if err := query.Find(&states).Error; err != nil {
		RespondError(c, "failed to list users", http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, states)
}

// GetUserTurns handles GET /api/users/:userId/turns, newest first. Lets an
// agent catch up on the conversation after a handover.
func GetUserTurns(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		RespondError(c, "userId is required", http.StatusBadRequest)
		return
	}

	limit := 50
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	var turns []models.ConversationTurn
	err := db.Where("line_user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&turns).Error
	if err != nil {
		RespondError(c, "failed to list turns", http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, turns)
}
