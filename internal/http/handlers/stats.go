package handlers

import (
	"net/http"

	"klaimportal/internal/http/middleware"
	"klaimportal/internal/repositories"
	"klaimportal/internal/services"

	"github.com/gin-gonic/gin"
)

func statsService(c *gin.Context) services.StatsService {
	return services.StatsService{
		ClaimRepo:        repositories.ClaimRepository{},
		VerificationRepo: repositories.VerificationRepository{},
		RequestID:        middleware.GetRequestID(c),
	}
}

// GET /api/stats/public
func PublicStats(c *gin.Context) {
	out, err := statsService(c).Public()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": out})
}

// GET /api/stats/dashboard
func DashboardStats(c *gin.Context) {
	out, err := statsService(c).Dashboard()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": out})
}
