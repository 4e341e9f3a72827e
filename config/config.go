package config

import (
	"encoding/json"
	"log"
	"os"
	"strings"
)

type Configuration struct {
	ApiPort string `json:"api_port"`
	LogPath string `json:"log_path"`

	Database string `json:"database"` // "sqlite3" or "postgres"
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"`
	DbPass   string `json:"db_pass"`

	// AdminToken protects the admin API (user list, settings). Falls back to
	// the ADMIN_TOKEN env var when empty in the file.
	AdminToken string `json:"admin_token"`

	// LedgerRetentionDays controls the processed-events sweep. 0 keeps the
	// dedupe ledger append-only.
	LedgerRetentionDays int `json:"ledger_retention_days"`
}

func Get(path string) Configuration {
	var c Configuration

	b, err := os.ReadFile(path)
	if err != nil {
		// Missing file is fine: env + defaults cover local runs.
		log.Printf("config: %v (using defaults)", err)
	} else if err := json.Unmarshal(b, &c); err != nil {
		log.Fatal(err)
	}

	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.AdminToken == "" {
		c.AdminToken = strings.TrimSpace(os.Getenv("ADMIN_TOKEN"))
	}
	if c.LedgerRetentionDays < 0 {
		c.LedgerRetentionDays = 0
	}

	return c
}
