package api

import (
	"log"
	stdhttp "net/http"

	intconfig "klaimportal/internal/config"
	h "klaimportal/internal/http/handlers"
	"klaimportal/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(),
		middleware.Auth([]byte(env.JWTSecret)),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/profile", middleware.RequireAuth(), h.Profile)
		auth.PUT("/profile", middleware.RequireAuth(), h.UpdateProfile)
		auth.PUT("/change-password", middleware.RequireAuth(), h.ChangePassword)

		// Claims
		claims := api.Group("/claims")
		claims.POST("", h.CreateClaim)
		claims.GET("", middleware.RequireAdmin(), h.ListClaims)
		claims.GET("/my-claims", middleware.RequireAuth(), h.ListMyClaims)
		claims.GET("/search/:query", h.SearchClaim)
		claims.GET("/:id", h.GetClaim)
		claims.GET("/:id/pdf", h.GetClaimSummaryPDF)
		claims.GET("/:id/transfer-receipt-pdf", h.GetTransferReceiptPDF)
		claims.GET("/:id/documents/:docID", middleware.RequireAdmin(), h.DownloadClaimDocument)
		claims.PUT("/:id/status", middleware.RequireAdmin(), h.TransitionClaim)
		claims.POST("/:id/transfer-proof", middleware.RequireAdmin(), h.UploadTransferProof)
		claims.DELETE("/:id", middleware.RequireAdmin(), h.DeleteClaim)

		// Verifications
		verifications := api.Group("/verifications")
		verifications.POST("", h.CreateVerification)
		verifications.GET("", middleware.RequireAdmin(), h.ListVerifications)
		verifications.GET("/search/:query", h.SearchVerifications)
		verifications.GET("/:id", h.GetVerification)
		verifications.PUT("/:id/status", middleware.RequireAdmin(), h.DecideVerification)
		verifications.DELETE("/:id", middleware.RequireAdmin(), h.DeleteVerification)

		// Notifications
		notifications := api.Group("/notifications")
		notifications.GET("", middleware.RequireAuth(), h.ListNotifications)
		notifications.GET("/feed", middleware.RequireAdmin(), h.AdminFeed)
		notifications.PUT("/read-all", middleware.RequireAuth(), h.MarkAllNotificationsRead)
		notifications.PUT("/:id/read", middleware.RequireAuth(), h.MarkNotificationRead)
		notifications.DELETE("/:id", middleware.RequireAuth(), h.DeleteNotification)

		// Stats
		stats := api.Group("/stats")
		stats.GET("/public", h.PublicStats)
		stats.GET("/dashboard", middleware.RequireAdmin(), h.DashboardStats)

		// Stored files (dokumen pemohon, bukti transfer)
		api.GET("/files/*path", middleware.RequireAdmin(), h.ServeStoredFile)
	}

	h.SetRouter(r)
	h.SetEnv(env)
	return r
}
