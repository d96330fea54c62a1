package models

import (
	"log"

	"github.com/Jasemalbateni/academybase-sub001/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Academy{}, &Branch{}, &Member{},
		&Payment{}, &FinanceTransaction{},
		&AttendanceRecord{}, &CalendarEvent{},
		&User{},
		&History{},
		&IdempotencyKey{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
