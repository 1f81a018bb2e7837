package controllers

import (
	"net/http"

	"creditapproval/middleware"
	"creditapproval/services"
	"creditapproval/utils"

	"github.com/gin-gonic/gin"
)

// IngestionController запускает импорт данных из таблиц
type IngestionController struct {
	ingestionService *services.IngestionService
}

// NewIngestionController создает новый экземпляр IngestionController
func NewIngestionController(ingestionService *services.IngestionService) *IngestionController {
	return &IngestionController{ingestionService: ingestionService}
}

// Start обрабатывает POST /admin/ingest
func (ctl *IngestionController) Start(c *gin.Context) {
	if err := ctl.ingestionService.Start(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	admin, _ := middleware.GetAdmin(c)
	utils.LogInfo("Импорт запущен администратором %s", admin)
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// Status обрабатывает GET /admin/ingest/status
func (ctl *IngestionController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.ingestionService.Status())
}
