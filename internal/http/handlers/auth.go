package handlers

import (
	"net/http"
	"sync"

	intconfig "klaimportal/internal/config"
	"klaimportal/internal/http/middleware"
	"klaimportal/internal/repositories"
	"klaimportal/internal/services"

	"github.com/gin-gonic/gin"
)

var (
	envMu  sync.RWMutex
	appEnv intconfig.Env
)

// SetEnv stores the loaded environment for handlers that need it (JWT secret,
// upload dir). Called once from main before the router starts serving.
func SetEnv(env intconfig.Env) {
	envMu.Lock()
	defer envMu.Unlock()
	appEnv = env
}

func currentEnv() intconfig.Env {
	envMu.RLock()
	defer envMu.RUnlock()
	return appEnv
}

func authService(c *gin.Context) services.AuthService {
	return services.AuthService{
		Repo:      repositories.UserRepository{},
		JWTSecret: []byte(currentEnv().JWTSecret),
		RequestID: middleware.GetRequestID(c),
	}
}

// POST /api/auth/register
func Register(c *gin.Context) {
	var req services.RegisterInput
	if !BindJSONOrError(c, &req) {
		return
	}

	user, err := authService(c).Register(req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registrasi berhasil", "user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	result, err := authService(c).Login(req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/auth/profile
func Profile(c *gin.Context) {
	rc, _ := middleware.GetAuthUser(c)
	user, err := authService(c).Profile(rc.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// PUT /api/auth/profile
func UpdateProfile(c *gin.Context) {
	rc, _ := middleware.GetAuthUser(c)
	var req updateProfileRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	user, err := authService(c).UpdateProfile(rc.UserID, req.Name, req.Phone)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profil diperbarui", "user": user})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// PUT /api/auth/change-password
func ChangePassword(c *gin.Context) {
	rc, _ := middleware.GetAuthUser(c)
	var req changePasswordRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	if err := authService(c).ChangePassword(rc.UserID, req.OldPassword, req.NewPassword); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password diperbarui"})
}
