package initializers

import (
	"github.com/Kariqs/amexan-store/models"
	"gorm.io/gorm"
)

func SyncDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderLine{},
		&models.Delivery{},
	); err != nil {
		return err
	}
	Logger.Info().Msg("Database synced successfully.")
	return nil
}
