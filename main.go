package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"concierge/config"
	"concierge/db"
	"concierge/router"
	"concierge/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set env directly.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg := config.Get(configPath)

	database, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	workers.StartLedgerJanitor(database, cfg.LedgerRetentionDays)

	r := gin.New()
	r.Use(db.SetDBtoContext(database))
	router.Initialize(r, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.ApiPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Concierge listening on :%s", cfg.ApiPort)
	log.Fatal(srv.ListenAndServe())
}
