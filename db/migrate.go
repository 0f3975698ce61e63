package db

import (
	"github.com/meinhoongagan/health-companion/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.QuizSession{},
		&models.Contact{},
	)
	if err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}
