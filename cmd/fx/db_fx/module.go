package db_fx

import (
	"log"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"workhub/internal/infra"
)

var Module = fx.Provide(
	provideDB)

func provideDB() *gorm.DB {
	db := infra.InitPostgresql()

	if err := infra.MigratePostgresql(db); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	return db
}
