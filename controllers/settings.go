package controllers

import (
	"net/http"

	dbpkg "concierge/db"
	"concierge/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// GetSettings handles GET /api/settings. When no row exists yet the defaults
// are returned so the admin UI has something to edit.
func GetSettings(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var row models.Settings
	if err := db.First(&row).Error; err != nil {
		if !gorm.IsRecordNotFoundError(err) {
			RespondError(c, "failed to load settings", http.StatusInternalServerError)
			return
		}
		row = models.Settings{ID: 1, ActiveAI: models.AI_BACKEND_GPT}
	}
	RespondSuccess(c, row)
}

// UpdateSettings handles PUT /api/settings, replacing the singleton row.
func UpdateSettings(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var in models.Settings
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if in.ActiveAI != models.AI_BACKEND_GPT && in.ActiveAI != models.AI_BACKEND_GEMINI {
		RespondError(c, "active_ai must be gpt or gemini", http.StatusBadRequest)
		return
	}
	if in.HandoverTimeoutMinutes < 0 {
		RespondError(c, "handover_timeout_minutes must not be negative", http.StatusBadRequest)
		return
	}

	in.ID = 1
	var existing models.Settings
	err := db.First(&existing).Error
	if err != nil {
		if !gorm.IsRecordNotFoundError(err) {
			RespondError(c, "failed to load settings", http.StatusInternalServerError)
			return
		}
		if err := db.Create(&in).Error; err != nil {
			RespondError(c, "failed to create settings", http.StatusInternalServerError)
			return
		}
	} else {
		in.ID = existing.ID
		if err := db.Save(&in).Error; err != nil {
			RespondError(c, "failed to update settings", http.StatusInternalServerError)
			return
		}
	}
	RespondSuccess(c, in)
}
