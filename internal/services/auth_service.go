package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"klaimportal/internal/domain"
	"klaimportal/internal/domain/models"
	"klaimportal/internal/repositories"
	"klaimportal/internal/utils"
)

// AuthService menangani registrasi, login, dan pengelolaan akun.
type AuthService struct {
	Repo      repositories.UserRepository
	JWTSecret []byte
	RequestID string

	Now func() time.Time
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) Register(in RegisterInput) (models.User, error) {
	name := utils.NormalizeSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		return models.User{}, domain.ValidationError{Field: "name", Msg: "nama wajib diisi"}
	}
	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, domain.ValidationError{Field: "email", Msg: "email tidak valid"}
	}
	if len(in.Password) < 8 {
		return models.User{}, domain.ValidationError{Field: "password", Msg: "password minimal 8 karakter"}
	}

	exists, err := s.Repo.EmailExists(email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, domain.ConflictError{Resource: "user", Msg: "email sudah terdaftar"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	u := models.User{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		Role:         "user",
		Status:       "active",
	}
	id, err := s.Repo.Insert(u)
	if err != nil {
		return models.User{}, err
	}
	u.ID = id
	u.PasswordHash = ""

	utils.LogEvent(s.RequestID, "auth", "register", fmt.Sprintf("user_id=%d", id))
	return u, nil
}

// Login checks credentials and issues a signed 24h token. Wrong email and
// wrong password are indistinguishable on purpose.
func (s AuthService) Login(email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Repo.GetByEmail(email)
	if err != nil {
		if domain.IsNotFound(err) {
			return LoginResult{}, domain.ValidationError{Field: "credentials", Msg: "email atau password salah"}
		}
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, domain.ValidationError{Field: "credentials", Msg: "email atau password salah"}
	}
	if u.Status != "active" {
		return LoginResult{}, domain.InvalidStateError{Resource: "user", Current: u.Status, Msg: "akun tidak aktif"}
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"name":    u.Name,
		"role":    u.Role,
		"exp":     now.Add(24 * time.Hour).Unix(),
		"iat":     now.Unix(),
	})
	signed, err := token.SignedString(s.JWTSecret)
	if err != nil {
		return LoginResult{}, err
	}

	u.PasswordHash = ""
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d", u.ID))
	return LoginResult{Token: signed, User: u}, nil
}

func (s AuthService) Profile(userID int64) (models.User, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (s AuthService) UpdateProfile(userID int64, name, phone string) (models.User, error) {
	name = utils.NormalizeSpace(name)
	if name == "" {
		return models.User{}, domain.ValidationError{Field: "name", Msg: "nama wajib diisi"}
	}
	if _, err := s.Repo.GetByID(userID); err != nil {
		return models.User{}, err
	}
	if err := s.Repo.UpdateProfile(userID, name, strings.TrimSpace(phone)); err != nil {
		return models.User{}, err
	}
	return s.Profile(userID)
}

func (s AuthService) ChangePassword(userID int64, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return domain.ValidationError{Field: "new_password", Msg: "password baru minimal 8 karakter"}
	}
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return domain.ValidationError{Field: "old_password", Msg: "password lama salah"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(userID, string(hash)); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "auth", "change_password", fmt.Sprintf("user_id=%d", userID))
	return nil
}
