package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the four tables. Local development and tests
// only; production schemas are managed out of band.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&instructorModel{},
		&slotModel{},
		&bookingModel{},
	)
}
