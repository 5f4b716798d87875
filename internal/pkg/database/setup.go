package database

import (
	"fmt"
	"log"
	"time"

	"github.com/saasbase-io/saasbase/app/models"
	"github.com/saasbase-io/saasbase/internal/pkg/env"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

const maxRetries = 5
const retryDelay = 5 * time.Second

func SetupDatabase() {
	var err error
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), &gorm.Config{
			// Needed so duplicate-key inserts surface as gorm.ErrDuplicatedKey,
			// which the idempotency ledger relies on.
			TranslateError: true,
		})
		if err == nil {
			DB.AutoMigrate(
				&models.User{},
				&models.Customer{},
				&models.Subscription{},
				&models.Invoice{},
				&models.Payment{},
				&models.File{},
				&models.WebhookEvent{},
				&models.Plan{},
			)

			return
		}

		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

// GetDB returns the shared database handle
func GetDB() *gorm.DB {
	return DB
}
