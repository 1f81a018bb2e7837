package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"creditapproval/services"
	"creditapproval/utils"

	"github.com/gin-gonic/gin"
)

// respondError переводит ошибку сервиса в HTTP-ответ
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var nferr *services.NotFoundError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.As(err, &nferr):
		c.JSON(http.StatusNotFound, gin.H{"error": nferr.Error()})
	case errors.Is(err, services.ErrIngestionInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "Ingestion is already in progress."})
	default:
		_ = c.Error(err)
		utils.LogError("Ошибка обработки запроса %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindJSON разбирает тело запроса. При ошибке отвечает 400 и возвращает false.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

// pathID разбирает числовой идентификатор из пути.
// Нечисловой идентификатор не соответствует ни одному маршруту, поэтому ответ 404.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return 0, false
	}
	return uint(id), true
}
