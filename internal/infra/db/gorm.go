package db

import (
	"charforge/internal/config"
	"charforge/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
// TranslateError で一意制約違反を gorm.ErrDuplicatedKey に変換する。
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

// Migrate はテーブルを作成・更新し、職業の初期データを入れる。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.CharacterClass{},
		&model.Character{},
		&model.Comment{},
		&model.ActivityLog{},
		&model.RefreshToken{},
	); err != nil {
		return err
	}
	return seedClasses(db)
}

var defaultClasses = []string{"Warrior", "Mage", "Rogue", "Cleric", "Ranger", "Paladin", "Bard", "Druid"}

func seedClasses(db *gorm.DB) error {
	classes := make([]model.CharacterClass, 0, len(defaultClasses))
	for _, name := range defaultClasses {
		classes = append(classes, model.CharacterClass{Name: name})
	}
	// 既にあるものはそのまま
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&classes).Error
}
