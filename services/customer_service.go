package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"creditapproval/database"
	"creditapproval/engine"
	"creditapproval/models"
	"creditapproval/utils"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// CustomerService предоставляет методы для работы с клиентами
type CustomerService struct {
	repo      database.Repository
	validator *validator.Validate
}

// NewCustomerService создает новый экземпляр CustomerService
func NewCustomerService(repo database.Repository) *CustomerService {
	return &CustomerService{
		repo:      repo,
		validator: newValidator(),
	}
}

// Register регистрирует клиента и рассчитывает одобренный лимит
func (s *CustomerService) Register(ctx context.Context, req RegisterRequest) (*CustomerResponse, error) {
	startTime := time.Now()

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}

	salary := decimal.NewFromInt(*req.MonthlyIncome)
	customer := &models.Customer{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Age:           req.Age,
		PhoneNumber:   req.PhoneNumber,
		MonthlySalary: salary,
		ApprovedLimit: engine.ComputeApprovedLimit(salary),
		CurrentDebt:   decimal.Zero,
	}

	err := s.repo.CreateCustomer(ctx, customer)
	utils.LogOperation("register_customer", startTime, err)
	if err != nil {
		return nil, fmt.Errorf("ошибка регистрации клиента: %w", err)
	}

	return &CustomerResponse{
		CustomerID:    customer.ID,
		Name:          customer.FullName(),
		Age:           customer.Age,
		MonthlyIncome: money(customer.MonthlySalary),
		ApprovedLimit: money(customer.ApprovedLimit),
		PhoneNumber:   customer.PhoneNumber,
	}, nil
}
