package controllers

import (
	"net/http"

	"creditapproval/services"

	"github.com/gin-gonic/gin"
)

// LoanController обрабатывает запросы, связанные с кредитами
type LoanController struct {
	loanService *services.LoanService
}

// NewLoanController создает новый экземпляр LoanController
func NewLoanController(loanService *services.LoanService) *LoanController {
	return &LoanController{loanService: loanService}
}

// CheckEligibility обрабатывает POST /check-eligibility
func (ctl *LoanController) CheckEligibility(c *gin.Context) {
	var req services.LoanRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctl.loanService.CheckEligibility(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateLoan обрабатывает POST /create-loan.
// Одобренный кредит возвращается со статусом 201, отказ со статусом 200.
func (ctl *LoanController) CreateLoan(c *gin.Context) {
	var req services.LoanRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctl.loanService.CreateLoan(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.LoanApproved {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// ViewLoan обрабатывает GET /view-loan/:loan_id
func (ctl *LoanController) ViewLoan(c *gin.Context) {
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return
	}

	loan, err := ctl.loanService.ViewLoan(c.Request.Context(), loanID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loan)
}

// ViewLoans обрабатывает GET /view-loans/:customer_id
func (ctl *LoanController) ViewLoans(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return
	}

	loans, err := ctl.loanService.ViewLoans(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loans)
}
