package handlers

import (
	"net/http"
	"strconv"

	"klaimportal/internal/http/middleware"
	"klaimportal/internal/repositories"
	"klaimportal/internal/services"

	"github.com/gin-gonic/gin"
)

func notificationService(c *gin.Context) services.NotificationService {
	return services.NotificationService{
		Repo:             repositories.NotificationRepository{},
		ClaimRepo:        repositories.ClaimRepository{},
		VerificationRepo: repositories.VerificationRepository{},
		RequestID:        middleware.GetRequestID(c),
	}
}

// GET /api/notifications
func ListNotifications(c *gin.Context) {
	rc, _ := middleware.GetAuthUser(c)
	out, err := notificationService(c).ListByUser(rc.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

// PUT /api/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	rc, _ := middleware.GetAuthUser(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "id notifikasi tidak valid", err)
		return
	}
	if err := notificationService(c).MarkRead(id, rc.UserID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notifikasi ditandai terbaca"})
}

// PUT /api/notifications/read-all
func MarkAllNotificationsRead(c *gin.Context) {
	rc, _ := middleware.GetAuthUser(c)
	if err := notificationService(c).MarkAllRead(rc.UserID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "semua notifikasi ditandai terbaca"})
}

// DELETE /api/notifications/:id
func DeleteNotification(c *gin.Context) {
	rc, _ := middleware.GetAuthUser(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "id notifikasi tidak valid", err)
		return
	}
	if err := notificationService(c).Delete(id, rc.UserID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notifikasi dihapus"})
}

// GET /api/notifications/feed
func AdminFeed(c *gin.Context) {
	feed, err := notificationService(c).AdminFeed()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": feed})
}
