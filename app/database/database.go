package database

import (
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lubd/app/config"
)

func Connect(c *config.Config) (*gorm.DB, error) {
	db, err := Open(c.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Open dispatches on the DSN: postgres URLs and key/value DSNs go to the
// postgres driver, everything else is treated as a SQLite path.
func Open(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Property{},
		&UserProperty{},
		&Room{},
		&Topic{},
		&Job{},
		&JobImage{},
		&Session{},
		&ResetKey{},
	)
}
