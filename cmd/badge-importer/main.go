// cmd/badge-importer - Loads a badge catalog from a JSON file into the
// application database, upserting by badge name.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mediahub/models"
)

func main() {
	file := flag.String("file", "./badges.json", "path to the badge catalog JSON file")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL must be set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(&models.Badge{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal("Failed to read catalog file:", err)
	}

	var badges []models.Badge
	if err := json.Unmarshal(data, &badges); err != nil {
		log.Fatal("Failed to parse catalog file:", err)
	}

	imported := 0
	for i := range badges {
		badges[i].ID = 0
		if badges[i].Name == "" || badges[i].EventType == "" || badges[i].Metric == "" {
			log.Printf("Skipping invalid entry %d: name, event_type and metric are required", i)
			continue
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "icon", "event_type", "metric", "threshold", "reward_points", "updated_at"}),
		}).Create(&badges[i]).Error; err != nil {
			log.Printf("Failed to import %q: %v", badges[i].Name, err)
			continue
		}
		imported++
	}

	log.Printf("Imported %d/%d badges from %s", imported, len(badges), *file)
}
