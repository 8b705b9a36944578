package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureMemberIndexes(db); err != nil {
		log.Printf("member index warning: %v", err)
	}
	if err := database.EnsureComplaintIndexes(db); err != nil {
		log.Printf("complaint index warning: %v", err)
	}
	if err := database.EnsurePaymentIndexes(db); err != nil {
		log.Printf("payment index warning: %v", err)
	}
	if err := database.EnsureTokenIndexes(db); err != nil {
		log.Printf("token index warning: %v", err)
	}
	if err := database.EnsureRedevelopmentIndexes(db); err != nil {
		log.Printf("redevelopment index warning: %v", err)
	}

	r := gin.Default()

	r.POST("/auth/login", handlers.Login(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/auth/refresh", handlers.Refresh(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/auth/logout", handlers.Logout(db))
	r.POST("/auth/reset-password", handlers.RequestPasswordReset(db, config.AppEnv.ResetTokenTTL))
	r.POST("/auth/reset-password/confirm", handlers.ConfirmPasswordReset(db))

	authed := r.Group("/")
	authed.Use(middleware.AuthGuard(config.AppEnv.JWTSecret, "member", "admin"))
	{
		authed.GET("/suggestions", handlers.ListSuggestions(db))
		authed.GET("/notices", handlers.GetNotices(db))
		authed.GET("/events", handlers.GetEvents(db))
		authed.GET("/testimonials", handlers.GetTestimonials(db))
		authed.GET("/service-providers", handlers.GetServiceProviders(db))
	}

	member := r.Group("/member")
	member.Use(middleware.MemberAuth(config.AppEnv.JWTSecret))
	{
		member.GET("/profile", handlers.GetProfile(db))
		member.PUT("/profile", handlers.UpdateProfile(db))

		member.POST("/suggestions", handlers.CreateSuggestion(db))
		member.POST("/suggestions/:id/vote", handlers.VoteSuggestion(db))
		member.POST("/suggestions/:id/comments", handlers.CommentSuggestion(db))

		member.POST("/complaints", handlers.CreateComplaint(db))
		member.GET("/complaints", handlers.ListMyComplaints(db))
		member.GET("/complaints-unread/stream", handlers.StreamUnreadCounts(db))
		member.GET("/complaints/:id/messages", handlers.ListComplaintMessages(db, "member"))
		member.POST("/complaints/:id/messages", handlers.SendComplaintMessage(db, "member"))
		member.POST("/complaints/:id/read", handlers.MarkComplaintRead(db))

		member.POST("/redevelopment", handlers.SubmitRedevelopmentForm(db))
		member.GET("/redevelopment", handlers.GetMyRedevelopmentForm(db))
		member.PUT("/redevelopment/:id", handlers.UpdateRedevelopmentForm(db))
		member.POST("/redevelopment/:id/comments", handlers.CommentRedevelopmentForm(db, "member"))

		member.GET("/payments", handlers.ListMyPayments(db))
		member.POST("/testimonials", handlers.CreateTestimonial(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/members", handlers.ListMembers(db))
		admin.POST("/members", handlers.ProvisionMember(db))

		admin.GET("/complaints", handlers.ListAllComplaints(db))
		admin.PUT("/complaints/:id/status", handlers.UpdateComplaintStatus(db))
		admin.GET("/complaints/:id/messages", handlers.ListComplaintMessages(db, "admin"))
		admin.POST("/complaints/:id/messages", handlers.SendComplaintMessage(db, "admin"))

		admin.PUT("/suggestions/:id/status", handlers.UpdateSuggestionStatus(db))

		admin.GET("/redevelopment", handlers.ListRedevelopmentForms(db))
		admin.GET("/redevelopment/:id", handlers.GetRedevelopmentForm(db))
		admin.PUT("/redevelopment/:id/status", handlers.UpdateRedevelopmentStatus(db))
		admin.POST("/redevelopment/:id/comments", handlers.CommentRedevelopmentForm(db, "admin"))

		admin.GET("/payments", handlers.ListAllPayments(db))
		admin.POST("/payments", handlers.RecordPayment(db))

		admin.POST("/notices", handlers.CreateNotice(db))
		admin.PUT("/notices/:id", handlers.UpdateNotice(db))
		admin.DELETE("/notices/:id", handlers.DeleteNotice(db))

		admin.POST("/events", handlers.CreateEvent(db))
		admin.PUT("/events/:id", handlers.UpdateEvent(db))
		admin.DELETE("/events/:id", handlers.DeleteEvent(db))

		admin.GET("/testimonials", handlers.GetAllTestimonials(db))
		admin.PUT("/testimonials/:id/approve", handlers.ApproveTestimonial(db))
		admin.DELETE("/testimonials/:id", handlers.DeleteTestimonial(db))

		admin.POST("/service-providers", handlers.CreateServiceProvider(db))
		admin.PUT("/service-providers/:id", handlers.UpdateServiceProvider(db))
		admin.DELETE("/service-providers/:id", handlers.DeleteServiceProvider(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
