package database

import (
	"fmt"
	"log"

	"exam_bank_backend/internal/config"
	"exam_bank_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate creates the four exam-bank tables. Exam key uniqueness is policed
// by the ingestion transaction, not by a constraint, so partial imports can
// exist transiently.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Subject{},
		&model.Exam{},
		&model.Question{},
		&model.Choice{},
	)
}
