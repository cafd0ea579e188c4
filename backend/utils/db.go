package utils

import (
	"fmt"

	"comunidade/backend/config"
	"comunidade/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema and seeds the achievement reference table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.LessonCompletion{},
		&models.CourseCompletion{},
		&models.Achievement{},
		&models.UserBadge{},
		&models.Theme{},
		&models.Course{},
		&models.Lesson{},
		&models.Attachment{},
		&models.ForumPost{},
		&models.ForumComment{},
		&models.CommentLike{},
		&models.NewsArticle{},
		&models.NewsLike{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.DirectMessage{},
		&models.LiveSession{},
		&models.SessionHistory{},
	)
	if err != nil {
		return err
	}

	return SeedAchievements(db)
}
