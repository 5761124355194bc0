package router

import (
	"devsquare/internal/handlers"
	"devsquare/internal/middleware"
	"devsquare/internal/services"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the JSON API. authLimiter guards sign-up and sign-in;
// nil disables it.
func RegisterRoutes(r *gin.Engine, svc *services.Services, authLimiter *middleware.IPRateLimiter) {
	// Handlers
	authHandler := handlers.NewAuthHandler(svc)
	userHandler := handlers.NewUserHandler(svc)
	postHandler := handlers.NewPostHandler(svc)
	voteHandler := handlers.NewVoteHandler(svc)
	messageHandler := handlers.NewMessageHandler(svc)
	groupHandler := handlers.NewGroupHandler(svc)
	friendHandler := handlers.NewFriendHandler(svc)
	notificationHandler := handlers.NewNotificationHandler(svc)
	adminHandler := handlers.NewAdminHandler(svc)

	r.GET("/healthz", handlers.Health)

	api := r.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/signup", middleware.RateLimit(authLimiter), authHandler.SignUp)
		auth.POST("/signin", middleware.RateLimit(authLimiter), authHandler.SignIn)
		auth.POST("/signout", authHandler.SignOut)
		auth.GET("/me", authHandler.Me)
	}
	api.GET("/users/search", userHandler.Search)
	api.GET("/users/:username", userHandler.Profile)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/:id", postHandler.Detail)

	// Protected routes
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/auth/change-password", authHandler.ChangePassword)
		authorized.DELETE("/auth/account", authHandler.DeleteAccount)

		authorized.GET("/user", userHandler.Current)
		authorized.PUT("/user", userHandler.Update)

		authorized.POST("/posts", postHandler.Create)
		authorized.DELETE("/posts/:id", postHandler.Delete)
		authorized.POST("/posts/:id/vote", voteHandler.Vote)
		authorized.POST("/posts/:id/comments", postHandler.AddComment)
		authorized.POST("/posts/:id/comments/:commentId/vote", voteHandler.VoteComment)

		authorized.GET("/messages", messageHandler.List)
		authorized.POST("/messages", messageHandler.Send)
		authorized.GET("/messages/:id", messageHandler.Conversation)
		authorized.POST("/messages/:id", messageHandler.Reply)

		authorized.GET("/groups", groupHandler.List)
		authorized.POST("/groups", groupHandler.Create)
		authorized.PUT("/groups", groupHandler.Manage)
		authorized.GET("/groups/:id", groupHandler.Detail)
		authorized.POST("/groups/:id/messages", groupHandler.SendMessage)

		authorized.GET("/friends", friendHandler.List)
		authorized.POST("/friends", friendHandler.SendRequest)
		authorized.PUT("/friends", friendHandler.Respond)
		authorized.GET("/friends/requests", friendHandler.Requests)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.GET("/notifications/count", notificationHandler.Count)
		authorized.PUT("/notifications/read-all", notificationHandler.ReadAll)
		authorized.PUT("/notifications/:id/read", notificationHandler.Read)
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)
	}

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/users", adminHandler.Users)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
		admin.GET("/posts", adminHandler.Posts)
		admin.DELETE("/posts/:id", adminHandler.DeletePost)
	}
}
