package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/wanjohi/questioner/config"
	"github.com/wanjohi/questioner/controllers"
	"github.com/wanjohi/questioner/middleware"
	"github.com/wanjohi/questioner/monitoring"
	"github.com/wanjohi/questioner/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.Ginzap(utils.Logger))
	r.Use(utils.RecoveryWithZap(utils.Logger))
	r.Use(monitoring.Middleware())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	blacklist := utils.NewBlacklistStore(db)
	blacklist.StartCleaner(5 * time.Minute)
	authed := middleware.AuthRequired(blacklist)

	authController := controllers.NewAuthController(db, blacklist)
	meetupController := controllers.NewMeetupController(db)
	questionController := controllers.NewQuestionController(db)
	answerController := controllers.NewAnswerController(db)
	rsvpController := controllers.NewRsvpController(db)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/signup/", authController.Signup)
	authGroup.POST("/activate/", authController.Activate)
	authGroup.POST("/resend/", authController.ResendActivation)
	authGroup.POST("/login/", authController.Login)
	authGroup.POST("/google/login", authController.GoogleLogin)
	authGroup.GET("/google/redirect", authController.GoogleRedirect)
	authGroup.GET("/google/callback", authController.GoogleCallback)
	authGroup.POST("/logout/", authed, authController.Logout)
	authGroup.POST("/change_password/", authed, authController.ChangePassword)
	authGroup.POST("/reset_password/", authController.ResetPassword)
	authGroup.POST("/reset_password_confirm/", authController.ResetPasswordConfirm)
	authGroup.GET("/me", authed, authController.Me)

	meetups := api.Group("/meetups")
	meetups.GET("", meetupController.List)
	meetups.GET("/upcoming/", meetupController.Upcoming)
	meetups.GET("/:meetup_id", meetupController.Get)
	meetups.POST("", authed, meetupController.Create)
	meetups.PUT("/:meetup_id", authed, meetupController.Update)
	meetups.DELETE("/:meetup_id", authed, meetupController.Delete)

	meetups.POST("/:meetup_id/rsvp", authed, rsvpController.Create)
	meetups.GET("/:meetup_id/rsvps", rsvpController.ListForMeetup)
	api.GET("/rsvps", rsvpController.ListAll)

	questions := meetups.Group("/:meetup_id/questions")
	questions.GET("", questionController.List)
	questions.GET("/:question_id", questionController.Get)
	questions.POST("", authed, questionController.Create)
	questions.PUT("/:question_id", authed, questionController.Update)
	questions.DELETE("/:question_id", authed, questionController.Delete)
	questions.PATCH("/:question_id/upvote", authed, questionController.Upvote)
	questions.PATCH("/:question_id/downvote", authed, questionController.Downvote)

	answers := questions.Group("/:question_id/answers")
	answers.GET("", answerController.List)
	answers.POST("", authed, answerController.Create)
	answers.PUT("/:answer_id", authed, answerController.Update)
	answers.DELETE("/:answer_id", authed, answerController.Delete)
	answers.PATCH("/:answer_id/upvote", authed, answerController.Upvote)
	answers.PATCH("/:answer_id/downvote", authed, answerController.Downvote)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "route not found")
	})

	return r
}
