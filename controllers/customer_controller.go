package controllers

import (
	"net/http"

	"creditapproval/services"

	"github.com/gin-gonic/gin"
)

// CustomerController обрабатывает регистрацию клиентов
type CustomerController struct {
	customerService *services.CustomerService
}

// NewCustomerController создает новый экземпляр CustomerController
func NewCustomerController(customerService *services.CustomerService) *CustomerController {
	return &CustomerController{customerService: customerService}
}

// Register обрабатывает POST /register
func (ctl *CustomerController) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := ctl.customerService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}
