package controllers

import (
	"net/http"
	"time"

	"creditapproval/config"
	"creditapproval/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AuthController выдает токены администратора
type AuthController struct {
	validate *validator.Validate
	config   *config.Config
}

type SignInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignInResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewAuthController создает новый экземпляр AuthController
func NewAuthController(cfg *config.Config) *AuthController {
	return &AuthController{
		validate: validator.New(),
		config:   cfg,
	}
}

// SignIn обрабатывает POST /admin/token
func (ctl *AuthController) SignIn(c *gin.Context) {
	var req SignInRequest
	if !bindJSON(c, &req) {
		return
	}

	// Валидация запроса
	if err := ctl.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	// Проверяем имя и пароль
	if req.Username != ctl.config.Admin.Username || !utils.VerifyPassword(req.Password, ctl.config.Admin.PasswordHash) {
		utils.LogWarn("Неудачная попытка входа администратора %q с адреса %s", req.Username, c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, expiresAt, err := utils.GenerateToken(req.Username, ctl.GetJWTKey(), ctl.GetJWTExpiresIn())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SignInResponse{Token: token, ExpiresAt: expiresAt})
}

// GetJWTKey возвращает ключ для JWT
func (ctl *AuthController) GetJWTKey() []byte {
	return []byte(ctl.config.JWT.SecretKey)
}

// GetJWTExpiresIn возвращает время жизни JWT токена
func (ctl *AuthController) GetJWTExpiresIn() time.Duration {
	return time.Duration(ctl.config.JWT.ExpiresIn) * time.Hour
}
