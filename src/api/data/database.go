package data

import (
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/pollwire/pollwire/src/api/types"
)

// MustDatabase opens MySQL when a DSN is configured, otherwise an
// embedded sqlite database (in-memory when path is empty). TranslateError
// is required: vote insertion detects duplicates via gorm.ErrDuplicatedKey.
func MustDatabase(mysqlDSN, sqlitePath string) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)
	cfg := &gorm.Config{TranslateError: true}
	switch {
	case mysqlDSN != "":
		db, err = gorm.Open(mysql.Open(mysqlDSN), cfg)
	case sqlitePath != "":
		db, err = gorm.Open(sqlite.Open(sqlitePath), cfg)
	default:
		// cache=shared lets every pool connection see the same
		// in-memory database.
		db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), cfg)
	}
	if err != nil {
		logrus.Fatalf("database: %v", err)
	}
	if err := Migrate(db); err != nil {
		logrus.Fatalf("migrate: %v", err)
	}
	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&types.Poll{}, &types.Option{}, &types.Vote{})
}
