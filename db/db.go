package db

import (
	"log"
	"os"
	"path/filepath"

	"concierge/config"
	"concierge/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// Connect opens the database (sqlite3 by default) and runs automigrate.
// Set AUTOMIGRATE=0 to skip migrations on managed schemas.
func Connect(conf config.Configuration) (*gorm.DB, error) {
	database := conf.Database
	if database == "" {
		database = "sqlite3"
	}

	var (
		db  *gorm.DB
		err error
	)

	if database == "postgres" || database == "postgresql" {
		log.Println("Using postgresql connection...")
		path := "host=" + conf.DbHost + " port=" + conf.DbPort
		path += " user=" + conf.DbUser + " dbname=" + conf.DbName
		path += " password=" + conf.DbPass
		db, err = gorm.Open("postgres", path)
	} else {
		log.Println("Using sqlite3 connection...")
		dir := filepath.Dir("db/database.db")
		db, err = gorm.Open("sqlite3", dir+"/database.db")
	}

	if err != nil {
		log.Println("Got error when connect database, the error is: " + err.Error())
		return nil, err
	}

	if getenv("AUTOMIGRATE", "1") == "1" {
		AutoMigrate(db)
	}

	return db, nil
}

// AutoMigrate creates/updates the schema for every record the bot owns.
// The unique index on processed_events.event_id is load-bearing: it is the
// only concurrency guard against double processing of redelivered events.
func AutoMigrate(db *gorm.DB) {
	db.AutoMigrate(
		&models.Settings{},
		&models.UserState{},
		&models.ProcessedEvent{},
		&models.ConversationTurn{},
	)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
