package router

import (
	"log"

	"concierge/config"
	"concierge/controllers"
	"concierge/middleware"

	"github.com/gin-gonic/gin"
)

// Initialize wires all routes and middlewares.
func Initialize(r *gin.Engine, cfg config.Configuration) {
	// LINE must see 405 (not 404) on non-POST webhook calls.
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")

	// Webhook (LINE). Signature validation happens inside the handler since
	// it needs the channel secret from the settings row.
	api.POST("/webhook", Logger(), controllers.WebhookUpdate)

	// Admin routes (list view + settings), token required.
	admin := api.Group("")
	admin.Use(controllers.AuthRequired(cfg.AdminToken))
	admin.GET("/users", Logger(), controllers.GetUserStates)
	admin.GET("/users/:userId/turns", Logger(), controllers.GetUserTurns)
	admin.GET("/settings", Logger(), controllers.GetSettings)
	admin.PUT("/settings", Logger(), controllers.UpdateSettings)

	log.Printf("Routes initialized")
}
