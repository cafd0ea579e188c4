package routes

import (
	"log"

	"comunidade/backend/config"
	"comunidade/backend/controllers"
	"comunidade/backend/live"
	"comunidade/backend/middleware"
	"comunidade/backend/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger) {
	// Shared services
	events := services.NewBus(logger)
	gamification := services.NewGamification(db, logger, events)
	hub := live.NewHub(logger)
	coordinator := live.NewCoordinator(db, hub, logger, events)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, gamification)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// User routes
	userController := controllers.NewUserController(db, cfg, gamification)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)
	app.Get("/api/users/:id", authMiddleware, userController.GetUserByID)

	// Content routes
	coursesController := controllers.NewCoursesController(db, cfg, gamification)
	content := app.Group("/api/content", authMiddleware)
	content.Get("/", coursesController.GetContentHierarchy)
	content.Get("/search", coursesController.SearchCourses)
	content.Get("/courses/:id", coursesController.GetCourse)
	content.Post("/courses/:id/lessons/:lessonId/complete", coursesController.CompleteLesson)
	content.Get("/courses/:id/lessons/:lessonId/transcript", coursesController.GetTranscript)

	// Forum routes
	forumController := controllers.NewForumController(db, cfg, gamification)
	forum := app.Group("/api/forum", authMiddleware)
	forum.Post("/posts", forumController.CreatePost)
	forum.Get("/posts", forumController.GetPosts)
	forum.Get("/posts/:id", forumController.GetPost)
	forum.Get("/authors/:authorId/posts", forumController.GetPostsByAuthor)
	forum.Post("/posts/:id/comments", forumController.AddComment)
	forum.Get("/posts/:id/comments", forumController.GetComments)
	forum.Post("/comments/:commentId/like", forumController.ToggleCommentLike)

	// News routes
	newsController := controllers.NewNewsController(db, cfg, gamification)
	news := app.Group("/api/news", authMiddleware)
	news.Get("/", newsController.GetArticles)
	news.Get("/:id", newsController.GetArticle)
	news.Post("/:id/like", newsController.ToggleLike)

	// Social routes
	socialController := controllers.NewSocialController(db, cfg, events)
	social := app.Group("/api/social", authMiddleware)
	social.Get("/users", socialController.FindUser)
	social.Post("/requests/:userId", socialController.SendFriendRequest)
	social.Get("/requests", socialController.GetFriendRequests)
	social.Post("/requests/:requestId/accept", socialController.AcceptFriendRequest)
	social.Delete("/requests/:requestId", socialController.DeclineFriendRequest)
	social.Get("/friends", socialController.GetFriends)
	social.Delete("/friends/:friendId", socialController.RemoveFriend)
	social.Post("/friends/:friendId/messages", socialController.SendMessage)
	social.Get("/friends/:friendId/messages", socialController.GetMessages)

	// Live session routes
	liveController := controllers.NewLiveController(db, cfg, coordinator, hub, gamification)
	app.Get("/api/live/session", authMiddleware, liveController.GetSession)
	app.Post("/api/live/token", authMiddleware, liveController.GetRTCToken)
	app.Get("/ws/live/:channel", liveController.UpgradeGuard, websocket.New(liveController.Presence))

	// Tutor routes
	tutorController := controllers.NewTutorController(db, cfg, gamification)
	app.Post("/api/tutor/ask", authMiddleware, tutorController.Ask)

	// Admin routes for live sessions
	adminLive := app.Group("/api/admin/live", authMiddleware, adminMiddleware)
	adminLive.Post("/start", liveController.StartSession)
	adminLive.Post("/pause", liveController.PauseSession)
	adminLive.Post("/resume", liveController.ResumeSession)
	adminLive.Post("/stop", liveController.StopSession)

	// Admin routes for content
	adminContent := app.Group("/api/admin/content", authMiddleware, adminMiddleware)
	adminContent.Post("/themes", coursesController.CreateTheme)
	adminContent.Post("/themes/:themeId/courses", coursesController.CreateCourse)
	adminContent.Post("/courses/:id/lessons", coursesController.CreateLesson)
	adminContent.Put("/lessons/:lessonId/attachments", coursesController.UpdateLessonAttachments)
	adminContent.Put("/courses/:id/featured", coursesController.UpdateCourseFeatured)

	// Admin routes for news
	adminNews := app.Group("/api/admin/news", authMiddleware, adminMiddleware)
	adminNews.Post("/", newsController.CreateArticle)
	adminNews.Put("/:id", newsController.UpdateArticle)
	adminNews.Delete("/:id", newsController.DeleteArticle)
}
