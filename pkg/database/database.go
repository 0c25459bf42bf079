package database

import (
	"classroom_backend/internal/config"
	"classroom_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Account{},
		&model.Course{},
		&model.CourseModule{},
		&model.ModuleItem{},
		&model.RequirementEvent{},
		&model.ModuleProgress{},
		&model.Role{},
		&model.RoleOverride{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认根账户
	var count int64
	db.Model(&model.Account{}).Count(&count)
	if count == 0 {
		db.Create(&model.Account{Name: "Default Account"})
	}

	return db, nil
}
