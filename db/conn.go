// Package db contains things related to the database connection
package db

import (
	"fmt"

	"github.com/DawrAli33285/sftpbackendnew/model"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func New() (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
		dsn = viper.GetString("database.dsn")
	)

	switch viper.GetString("database.driver") {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn))
	default:
		db, err = gorm.Open(sqlite.Open(dsn))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	err = db.AutoMigrate(model.User{}, model.Admin{}, model.OTP{}, model.File{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
