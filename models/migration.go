package models

import (
	"bitbucket.org/aahdc/lottery_backend/config"
	"bitbucket.org/aahdc/lottery_backend/utils"
)

// MigrateTable creates or updates the schema for all platform tables.
func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&Unit{},
		&AllocatedUnit{},
		&Candidate{},
		&User{},
	)
	utils.ErrorPanic(err)
}
