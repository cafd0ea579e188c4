package utils

import (
	"comunidade/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StandardAchievements is the fixed achievement reference table. Image URLs
// are filled in by the content team through the admin tooling.
var StandardAchievements = []models.Achievement{
	// General
	{ID: "first_login", Name: "Primeiro Login", Description: "Você fez o seu primeiro login na plataforma.", XP: 10},
	{ID: "first_lesson_watched", Name: "Primeira Aula Assistida", Description: "Você assistiu à sua primeira aula.", XP: 10},
	{ID: "first_course_completed", Name: "Primeiro Curso Completo", Description: "Você completou o seu primeiro curso.", XP: 10},
	{ID: "first_live_lesson_watched", Name: "Primeira Aula ao Vivo", Description: "Você participou da sua primeira aula ao vivo.", XP: 10},
	{ID: "first_live_chat_message", Name: "Mensagem no Chat ao Vivo", Description: "Você enviou sua primeira mensagem no chat de uma aula ao vivo.", XP: 10},
	{ID: "first_transcript_download", Name: "Download de Transcrição", Description: "Você baixou a transcrição de uma aula pela primeira vez.", XP: 10},
	{ID: "first_course_search", Name: "Pesquisa de Curso", Description: "Você pesquisou por um curso pela primeira vez.", XP: 10},
	{ID: "first_ai_tutor_interaction", Name: "Interação com Tutor IA", Description: "Você interagiu com o tutor de IA pela primeira vez.", XP: 10},

	// Forum
	{ID: "first_forum_post", Name: "Primeiro Post no Fórum", Description: "Você criou o seu primeiro post no fórum.", XP: 10},
	{ID: "first_forum_comment", Name: "Primeiro Comentário no Fórum", Description: "Você respondeu a um tópico no fórum pela primeira vez.", XP: 10},
	{ID: "first_comment_like", Name: "Curtida em Comentário", Description: "Você curtiu um comentário no fórum pela primeira vez.", XP: 10},

	// News
	{ID: "first_news_read", Name: "Primeira Notícia Lida", Description: "Você leu a sua primeira notícia na plataforma.", XP: 10},

	// Rank badges, granted when a title tier is reached. The XP column is
	// ignored for the elo_ namespace.
	{ID: "elo_ferro", Name: "Elo Ferro", Description: "Você alcançou o elo Ferro.", XP: 10},
	{ID: "elo_bronze", Name: "Elo Bronze", Description: "Você alcançou o elo Bronze.", XP: 10},
	{ID: "elo_prata", Name: "Elo Prata", Description: "Você alcançou o elo Prata.", XP: 10},
	{ID: "elo_ouro", Name: "Elo Ouro", Description: "Você alcançou o elo Ouro.", XP: 10},
	{ID: "elo_platina", Name: "Elo Platina", Description: "Você alcançou o elo Platina.", XP: 10},
	{ID: "elo_esmeralda", Name: "Elo Esmeralda", Description: "Você alcançou o elo Esmeralda.", XP: 10},
	{ID: "elo_diamante", Name: "Elo Diamante", Description: "Você alcançou o elo Diamante.", XP: 10},
	{ID: "elo_mestre", Name: "Elo Mestre", Description: "Você alcançou o elo Mestre.", XP: 10},
	{ID: "elo_grao_mestre", Name: "Elo Grão-Mestre", Description: "Você alcançou o elo Grão-Mestre.", XP: 10},
	{ID: "elo_campeao", Name: "Elo Campeão", Description: "Você alcançou o elo Campeão.", XP: 10},
}

// SeedAchievements upserts the standard achievement table. Existing rows are
// refreshed so edits to the table ship with a deploy.
func SeedAchievements(db *gorm.DB) error {
	for _, a := range StandardAchievements {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "xp"}),
		}).Create(&a).Error
		if err != nil {
			return err
		}
	}
	return nil
}
