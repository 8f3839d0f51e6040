package db

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/signoffhq/signoff/internal/modules/model"
	"gorm.io/gorm"
)

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202610180001_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&model.Project{},
					&model.Asset{},
					&model.Stakeholder{},
					&model.Comment{},
					&model.Approval{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&model.Approval{},
					&model.Comment{},
					&model.Stakeholder{},
					&model.Asset{},
					&model.Project{},
				)
			},
		},
	}
}

// Migrate applies every pending schema migration in order.
func Migrate(d *gorm.DB) error {
	m := gormigrate.New(d, gormigrate.DefaultOptions, migrations())
	return m.Migrate()
}
