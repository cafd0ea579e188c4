package models

import "gorm.io/gorm"

type NewsArticle struct {
	gorm.Model
	AuthorID      uint
	AuthorName    string
	Title         string
	Content       string
	CoverImageURL string
}

type NewsLike struct {
	gorm.Model
	ArticleID uint `gorm:"uniqueIndex:idx_article_user"`
	UserID    uint `gorm:"uniqueIndex:idx_article_user"`
}
