package models

import "gorm.io/gorm"

// Theme -> Course -> Lesson is the three-level content hierarchy.

type Theme struct {
	gorm.Model
	Title       string
	Description string
	Courses     []Course
}

type Course struct {
	gorm.Model
	ThemeID       uint
	Title         string
	Description   string
	CoverImageURL string
	IsFeatured    bool `gorm:"default:false"`
	Lessons       []Lesson

	// Badge granted on course completion. Empty BadgeID means the course
	// has no badge.
	BadgeID          string
	BadgeName        string
	BadgeDescription string
	BadgeImageURL    string
}

func (c Course) Badge() Badge {
	return Badge{ID: c.BadgeID, Name: c.BadgeName, Description: c.BadgeDescription, ImageURL: c.BadgeImageURL}
}

type Lesson struct {
	gorm.Model
	CourseID      uint
	Title         string
	VideoURL      string
	Transcript    string
	SequenceOrder int
	Attachments   []Attachment
}

type Attachment struct {
	gorm.Model
	LessonID uint
	Name     string
	URL      string
}
