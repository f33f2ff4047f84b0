package util

import (
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// CreateDatabaseInstance opens the record store. An empty sqlite DSN gives a
// private in-memory database.
func CreateDatabaseInstance(driver, dsn string, mode string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(mode)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
	switch driver {
	case "mysql":
		return gorm.Open(mysql.Open(dsn), cfg)
	case "pg":
		return gorm.Open(postgres.Open(dsn), cfg)
	}
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers; one connection keeps in-memory databases shared
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func gormLogLevel(mode string) gormlogger.LogLevel {
	if mode == "debug" {
		return gormlogger.Info
	}
	return gormlogger.Warn
}
