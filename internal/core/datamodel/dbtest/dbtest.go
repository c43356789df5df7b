// Package dbtest opens throwaway sqlite databases with the chat schema for package tests.
package dbtest

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	companyDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/company"
	departmentDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/department"
	groupDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/group"
	messageDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/message"
	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
)

// Open returns an isolated in-memory database. A single connection keeps every
// goroutine on the same memory database.
func Open() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&companyDatamodel.Company{},
		&departmentDatamodel.Department{},
		&groupDatamodel.Group{},
		&userDatamodel.User{},
		&messageDatamodel.Message{},
	); err != nil {
		return nil, err
	}
	return db, nil
}

// MustOpen panics when the database cannot be created.
func MustOpen() *gorm.DB {
	db, err := Open()
	if err != nil {
		panic(err)
	}
	return db
}
