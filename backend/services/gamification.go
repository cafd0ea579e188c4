package services

import (
	"log"
	"strings"

	"comunidade/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	XPPerLesson = 20
	XPPerLevel  = 100
	MaxLevel    = 50

	eloPrefix = "elo_"
)

// titleTiers maps level thresholds to titles. The effective title is the
// highest threshold at or below the current level, so titles only move
// forward as XP accumulates.
var titleTiers = []struct {
	Level int
	Title string
}{
	{1, "Ferro"},
	{5, "Bronze"},
	{10, "Prata"},
	{15, "Ouro"},
	{20, "Platina"},
	{25, "Esmeralda"},
	{30, "Diamante"},
	{35, "Mestre"},
	{40, "Grão-Mestre"},
	{45, "Campeão"},
}

var rankBadgeKeys = map[string]string{
	"Ferro":       "elo_ferro",
	"Bronze":      "elo_bronze",
	"Prata":       "elo_prata",
	"Ouro":        "elo_ouro",
	"Platina":     "elo_platina",
	"Esmeralda":   "elo_esmeralda",
	"Diamante":    "elo_diamante",
	"Mestre":      "elo_mestre",
	"Grão-Mestre": "elo_grao_mestre",
	"Campeão":     "elo_campeao",
}

// LevelForXP derives the level from the XP counter, clamped to MaxLevel.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	level := 1 + xp/XPPerLevel
	if level > MaxLevel {
		level = MaxLevel
	}
	return level
}

// TitleForLevel returns the highest tier title reached at the given level.
func TitleForLevel(level int) string {
	title := titleTiers[0].Title
	for _, tier := range titleTiers {
		if level >= tier.Level {
			title = tier.Title
		}
	}
	return title
}

// Gamification is the achievement ledger and XP awarding service. Every
// operation is best-effort: persistence failures are logged and reported as
// "not granted" so callers never block their primary action on it.
type Gamification struct {
	DB     *gorm.DB
	Log    *log.Logger
	Events *Bus
}

func NewGamification(db *gorm.DB, logger *log.Logger, events *Bus) *Gamification {
	return &Gamification{DB: db, Log: logger, Events: events}
}

// GrantAchievement grants a standard achievement to a user exactly once.
// Returns whether the badge was newly granted. The badge insert and the XP
// award run in one transaction with the badge row as the conflict target, so
// a concurrent double invocation cannot double-grant XP.
func (g *Gamification) GrantAchievement(userID uint, key string) bool {
	var user models.User
	if err := g.DB.First(&user, userID).Error; err != nil {
		g.Log.Printf("grant %s: user %d not found: %v", key, userID, err)
		return false
	}

	var held int64
	err := g.DB.Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, key).
		Count(&held).Error
	if err != nil {
		g.Log.Printf("grant %s to user %d: badge lookup failed: %v", key, userID, err)
		return false
	}
	if held > 0 {
		return false
	}

	var def models.Achievement
	if err := g.DB.First(&def, "id = ?", key).Error; err != nil {
		g.Log.Printf("grant %s to user %d: achievement not found", key, userID)
		return false
	}

	prevTitle := user.Title
	granted := false
	err = g.DB.Transaction(func(tx *gorm.DB) error {
		badge := models.UserBadge{
			UserID:      userID,
			BadgeID:     def.ID,
			Name:        def.Name,
			Description: def.Description,
			ImageURL:    def.ImageURL,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&badge)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent grant won the race; the badge set-union left a
			// single row and no XP is due.
			return nil
		}
		granted = true

		if strings.HasPrefix(key, eloPrefix) {
			// Rank badges are derived from level and must not feed XP back.
			return nil
		}
		return g.applyXP(tx, &user, def.XP)
	})
	if err != nil {
		g.Log.Printf("grant %s to user %d failed: %v", key, userID, err)
		return false
	}
	if !granted {
		return false
	}

	if user.Title != prevTitle {
		g.grantRankBadge(user.ID, user.Title)
	}
	g.Events.Publish(BadgeGranted{UserID: userID, Badge: models.Badge{
		ID: def.ID, Name: def.Name, Description: def.Description, ImageURL: def.ImageURL,
	}})
	return true
}

// CompleteLesson records a lesson as completed exactly once and awards the
// fixed lesson XP. The triggering event (playback reaching the end) can fire
// repeatedly, so the completion insert carries the idempotence.
func (g *Gamification) CompleteLesson(userID, lessonID uint) bool {
	var user models.User
	if err := g.DB.First(&user, userID).Error; err != nil {
		g.Log.Printf("complete lesson %d: user %d not found: %v", lessonID, userID, err)
		return false
	}
	if user.Level >= MaxLevel {
		return false
	}

	var done int64
	err := g.DB.Model(&models.LessonCompletion{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Count(&done).Error
	if err != nil {
		g.Log.Printf("complete lesson %d for user %d: lookup failed: %v", lessonID, userID, err)
		return false
	}
	if done > 0 {
		return false
	}

	prevTitle := user.Title
	granted := false
	err = g.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.LessonCompletion{UserID: userID, LessonID: lessonID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		granted = true
		return g.applyXP(tx, &user, XPPerLesson)
	})
	if err != nil {
		g.Log.Printf("complete lesson %d for user %d failed: %v", lessonID, userID, err)
		return false
	}
	if !granted {
		return false
	}

	if user.Title != prevTitle {
		g.grantRankBadge(user.ID, user.Title)
	}
	g.GrantAchievement(userID, "first_lesson_watched")
	return true
}

// AwardCourseBadge grants the course badge once every lesson of the course is
// completed. Called by the lesson-completion handler after each XP grant; the
// completion check is re-derived every time rather than cached.
func (g *Gamification) AwardCourseBadge(userID, courseID uint) {
	var course models.Course
	if err := g.DB.First(&course, courseID).Error; err != nil {
		g.Log.Printf("course badge: course %d not found: %v", courseID, err)
		return
	}

	var total int64
	if err := g.DB.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&total).Error; err != nil || total == 0 {
		return
	}

	var completed int64
	err := g.DB.Model(&models.LessonCompletion{}).
		Where("user_id = ? AND lesson_id IN (?)",
			userID,
			g.DB.Model(&models.Lesson{}).Select("id").Where("course_id = ?", courseID),
		).
		Count(&completed).Error
	if err != nil {
		g.Log.Printf("course badge: completion count for user %d failed: %v", userID, err)
		return
	}
	if completed < total {
		return
	}

	err = g.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CourseCompletion{UserID: userID, CourseID: courseID}).Error
	if err != nil {
		g.Log.Printf("course badge: completion record for user %d failed: %v", userID, err)
	}

	if course.BadgeID != "" {
		badge := models.UserBadge{
			UserID:      userID,
			BadgeID:     course.BadgeID,
			Name:        course.BadgeName,
			Description: course.BadgeDescription,
			ImageURL:    course.BadgeImageURL,
		}
		res := g.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&badge)
		if res.Error != nil {
			g.Log.Printf("course badge %s for user %d failed: %v", course.BadgeID, userID, res.Error)
		} else if res.RowsAffected > 0 {
			g.Events.Publish(BadgeGranted{UserID: userID, Badge: course.Badge()})
		}
	}

	g.GrantAchievement(userID, "first_course_completed")
}

// EffectiveBadges applies the read-time badge policy: admins are projected to
// hold every course badge in addition to their persisted set. The persisted
// set is never mutated by this projection.
func (g *Gamification) EffectiveBadges(user models.User) []models.Badge {
	var held []models.UserBadge
	if err := g.DB.Where("user_id = ?", user.ID).Order("created_at").Find(&held).Error; err != nil {
		g.Log.Printf("badges for user %d: %v", user.ID, err)
		return nil
	}

	badges := make([]models.Badge, 0, len(held))
	seen := make(map[string]bool, len(held))
	for _, b := range held {
		badges = append(badges, b.AsBadge())
		seen[b.BadgeID] = true
	}

	if user.IsAdmin {
		var courses []models.Course
		if err := g.DB.Where("badge_id <> ''").Find(&courses).Error; err != nil {
			g.Log.Printf("admin badge projection: %v", err)
			return badges
		}
		for _, course := range courses {
			if !seen[course.BadgeID] {
				badges = append(badges, course.Badge())
				seen[course.BadgeID] = true
			}
		}
	}

	return badges
}

// applyXP persists the XP increment together with the derived level and
// title in a single UPDATE so a reader never observes new XP with a stale
// level. The passed user is updated in place.
func (g *Gamification) applyXP(tx *gorm.DB, user *models.User, amount int) error {
	newXP := user.XP + amount
	newLevel := LevelForXP(newXP)
	newTitle := TitleForLevel(newLevel)

	err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"xp":    gorm.Expr("xp + ?", amount),
		"level": newLevel,
		"title": newTitle,
	}).Error
	if err != nil {
		return err
	}

	user.XP = newXP
	user.Level = newLevel
	user.Title = newTitle
	return nil
}

// grantRankBadge hands out the elo badge matching a freshly reached title.
// Rank badges never award XP, so this cannot recurse into another level-up.
func (g *Gamification) grantRankBadge(userID uint, title string) {
	key, ok := rankBadgeKeys[title]
	if !ok {
		return
	}
	g.GrantAchievement(userID, key)
}
