package middleware

import (
	"net/http"
	"strings"

	"creditapproval/utils"

	"github.com/gin-gonic/gin"
)

const adminKey = "admin"

// AdminAuth проверяет JWT администратора в заголовке Authorization
func AdminAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		// Убираем префикс "Bearer " если он есть
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims, err := utils.ParseToken(tokenString, secret)
		if err != nil {
			utils.LogDebug("Отклонен токен администратора: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(adminKey, claims.Username)
		c.Next()
	}
}

// GetAdmin возвращает имя администратора из контекста запроса
func GetAdmin(c *gin.Context) (string, bool) {
	username, ok := c.Get(adminKey)
	if !ok {
		return "", false
	}
	s, ok := username.(string)
	return s, ok
}
