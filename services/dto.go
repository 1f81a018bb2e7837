package services

import (
	"github.com/shopspring/decimal"
)

// RegisterRequest тело запроса POST /register.
// Верхняя граница дохода: лимит 36 × доход, округленный до 100000, помещается в NUMERIC(12,2).
type RegisterRequest struct {
	FirstName     string `json:"first_name" validate:"required,max=100"`
	LastName      string `json:"last_name" validate:"required,max=100"`
	Age           *int   `json:"age" validate:"required,gte=0,lte=150"`
	MonthlyIncome *int64 `json:"monthly_income" validate:"required,gte=0,lte=277776388"`
	PhoneNumber   string `json:"phone_number" validate:"required,max=20"`
}

// CustomerResponse ответ на регистрацию клиента
type CustomerResponse struct {
	CustomerID    uint   `json:"customer_id"`
	Name          string `json:"name"`
	Age           *int   `json:"age"`
	MonthlyIncome string `json:"monthly_income"`
	ApprovedLimit string `json:"approved_limit"`
	PhoneNumber   string `json:"phone_number"`
}

// LoanRequest тело запросов POST /check-eligibility и POST /create-loan
type LoanRequest struct {
	CustomerID   *uint            `json:"customer_id" validate:"required"`
	LoanAmount   *decimal.Decimal `json:"loan_amount" validate:"required,gt=0,lt=10000000000"`
	InterestRate *decimal.Decimal `json:"interest_rate" validate:"required,gte=0,lt=1000"`
	Tenure       *int             `json:"tenure" validate:"required,gt=0,lte=1200"`
}

// EligibilityResponse результат проверки кредитоспособности
type EligibilityResponse struct {
	CustomerID            uint    `json:"customer_id"`
	Approval              bool    `json:"approval"`
	InterestRate          string  `json:"interest_rate"`
	CorrectedInterestRate *string `json:"corrected_interest_rate"`
	Tenure                int     `json:"tenure"`
	MonthlyInstallment    string  `json:"monthly_installment"`
}

// CreateLoanResponse результат создания кредита.
// При отказе loan_id и monthly_installment равны null.
type CreateLoanResponse struct {
	LoanID             *uint   `json:"loan_id"`
	CustomerID         uint    `json:"customer_id"`
	LoanApproved       bool    `json:"loan_approved"`
	Message            string  `json:"message"`
	MonthlyInstallment *string `json:"monthly_installment"`
}

// LoanCustomerDTO данные клиента в карточке кредита
type LoanCustomerDTO struct {
	ID          uint   `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Age         *int   `json:"age"`
}

// LoanDetailResponse ответ GET /view-loan/:loan_id
type LoanDetailResponse struct {
	LoanID             uint            `json:"loan_id"`
	Customer           LoanCustomerDTO `json:"customer"`
	LoanAmount         string          `json:"loan_amount"`
	InterestRate       string          `json:"interest_rate"`
	MonthlyInstallment string          `json:"monthly_installment"`
	Tenure             int             `json:"tenure"`
}

// LoanSummaryResponse элемент ответа GET /view-loans/:customer_id
type LoanSummaryResponse struct {
	LoanID             uint   `json:"loan_id"`
	LoanAmount         string `json:"loan_amount"`
	InterestRate       string `json:"interest_rate"`
	MonthlyInstallment string `json:"monthly_installment"`
	RepaymentsLeft     int    `json:"repayments_left"`
}

// money форматирует сумму с двумя знаками после запятой
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func moneyPtr(d decimal.Decimal) *string {
	s := money(d)
	return &s
}
