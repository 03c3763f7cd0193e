package api

import (
	"github.com/gin-gonic/gin"

	"stackit/internal/config"
)

func SetupRoutes(router *gin.Engine, server *Server, cfg *config.Config) {
	router.Use(CORS(cfg.GetCORSOrigins()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "stackit",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", server.Register)
			auth.POST("/login", server.Login)
			auth.POST("/reset", server.ResetPassword)
			auth.GET("/provider/:name", server.ProviderRedirect)
			auth.GET("/me", server.RequireAuth(), server.Me)
			auth.POST("/logout", server.RequireAuth(), server.Logout)
		}

		questions := v1.Group("/questions")
		{
			questions.GET("", server.ListQuestions)
			questions.POST("", server.RequireAuth(), server.CreateQuestion)
			questions.GET("/:id", server.GetQuestion)

			questions.GET("/:id/answers", server.ListAnswers)
			questions.GET("/:id/answers/watch", server.WatchAnswers)
			questions.POST("/:id/answers", server.RequireAuth(), server.SubmitAnswer)
			questions.PUT("/:id/answers/:answerID", server.RequireAuth(), server.UpdateAnswer)
			questions.DELETE("/:id/answers/:answerID", server.RequireAuth(), server.DeleteAnswer)
			questions.POST("/:id/answers/:answerID/vote", server.RequireAuth(), server.VoteAnswer)
			questions.POST("/:id/answers/:answerID/accept", server.RequireAuth(), server.AcceptAnswer)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.GET("/watch", server.WatchNotifications)
			notifications.GET("", server.RequireAuth(), server.ListNotifications)
			notifications.POST("/:id/read", server.RequireAuth(), server.MarkNotificationRead)
		}

		if server.suggest != nil {
			v1.POST("/suggest/title", server.RequireAuth(), server.SuggestTitle)
		}
	}
}
