package services

import (
	"context"
	"fmt"
	"time"

	"creditapproval/database"
	"creditapproval/engine"
	"creditapproval/models"
	"creditapproval/utils"

	"github.com/go-playground/validator/v10"
)

const (
	msgLoanApproved = "Loan approved successfully."
	msgLoanRejected = "Loan not approved based on eligibility criteria."
)

// LoanService предоставляет методы для проверки и выдачи кредитов
type LoanService struct {
	repo      database.Repository
	validator *validator.Validate
	metrics   *utils.Metrics
	now       func() time.Time
}

// NewLoanService создает новый экземпляр LoanService
func NewLoanService(repo database.Repository, metrics *utils.Metrics, now func() time.Time) *LoanService {
	if now == nil {
		now = time.Now
	}
	return &LoanService{
		repo:      repo,
		validator: newValidator(),
		metrics:   metrics,
		now:       now,
	}
}

func (s *LoanService) today() time.Time {
	return models.DateOnly(s.now())
}

func (s *LoanService) validate(req LoanRequest) error {
	if err := validateStruct(s.validator, req); err != nil {
		return err
	}
	verr := &ValidationError{}
	checkDecimalPlaces(verr, "loan_amount", req.LoanAmount, 2)
	checkDecimalPlaces(verr, "interest_rate", req.InterestRate, 2)
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// evaluate загружает клиента и историю кредитов и принимает решение
func (s *LoanService) evaluate(ctx context.Context, repo database.Repository, req LoanRequest) (*models.Customer, engine.Eligibility, error) {
	customer, err := repo.FindCustomer(ctx, *req.CustomerID)
	if err != nil {
		return nil, engine.Eligibility{}, notFound(err, "Customer", *req.CustomerID)
	}

	loans, err := repo.ListLoans(ctx, customer.ID)
	if err != nil {
		return nil, engine.Eligibility{}, err
	}

	result := engine.CheckLoanEligibility(*customer, loans, *req.LoanAmount, *req.InterestRate, *req.Tenure, s.today())
	if s.metrics != nil {
		s.metrics.RecordDecision(result.Approval, result.CreditScore)
	}
	utils.LogDebug("Решение по клиенту %d: рейтинг %d, одобрено %t", customer.ID, result.CreditScore, result.Approval)
	return customer, result, nil
}

// CheckEligibility проверяет возможность выдачи кредита без его создания
func (s *LoanService) CheckEligibility(ctx context.Context, req LoanRequest) (*EligibilityResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	_, result, err := s.evaluate(ctx, s.repo, req)
	if err != nil {
		return nil, err
	}

	response := &EligibilityResponse{
		CustomerID:         result.CustomerID,
		Approval:           result.Approval,
		InterestRate:       money(result.InterestRate),
		Tenure:             result.Tenure,
		MonthlyInstallment: money(result.MonthlyInstallment),
	}
	if result.CorrectedInterestRate != nil {
		response.CorrectedInterestRate = moneyPtr(*result.CorrectedInterestRate)
	}
	return response, nil
}

// CreateLoan выдает кредит, если заявка одобрена.
// Проверка и запись выполняются под блокировкой клиента, поэтому
// параллельные заявки одного клиента учитывают друг друга.
func (s *LoanService) CreateLoan(ctx context.Context, req LoanRequest) (*CreateLoanResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	startTime := time.Now()
	var response *CreateLoanResponse
	err := s.repo.WithCustomerLock(ctx, *req.CustomerID, func(repo database.Repository) error {
		customer, result, err := s.evaluate(ctx, repo, req)
		if err != nil {
			return err
		}

		if !result.Approval {
			response = &CreateLoanResponse{
				CustomerID:   customer.ID,
				LoanApproved: false,
				Message:      msgLoanRejected,
			}
			return nil
		}

		startDate := s.today()
		endDate := engine.AddMonths(startDate, result.Tenure)
		loan := &models.Loan{
			CustomerID:         customer.ID,
			Amount:             *req.LoanAmount,
			Tenure:             result.Tenure,
			InterestRate:       result.EffectiveRate(),
			MonthlyInstallment: result.MonthlyInstallment,
			EMIsPaidOnTime:     0,
			StartDate:          &startDate,
			EndDate:            &endDate,
			IsActive:           true,
		}
		if err := repo.CreateLoan(ctx, loan); err != nil {
			return err
		}

		// Увеличиваем текущую задолженность клиента
		if err := repo.UpdateCustomerDebt(ctx, customer.ID, customer.CurrentDebt.Add(loan.Amount)); err != nil {
			return err
		}

		loanID := loan.ID
		response = &CreateLoanResponse{
			LoanID:             &loanID,
			CustomerID:         customer.ID,
			LoanApproved:       true,
			Message:            msgLoanApproved,
			MonthlyInstallment: moneyPtr(loan.MonthlyInstallment),
		}
		return nil
	})
	if err != nil {
		err = notFound(err, "Customer", *req.CustomerID)
		utils.LogOperation("create_loan", startTime, err)
		if s.metrics != nil {
			s.metrics.RecordError("create_loan")
		}
		return nil, err
	}

	if response.LoanApproved {
		utils.LogInfo("Клиенту %d выдан кредит %d", response.CustomerID, *response.LoanID)
		if s.metrics != nil {
			s.metrics.LoansCreated.Inc()
		}
	}
	return response, nil
}

// ViewLoan возвращает кредит вместе с данными клиента
func (s *LoanService) ViewLoan(ctx context.Context, loanID uint) (*LoanDetailResponse, error) {
	loan, err := s.repo.FindLoan(ctx, loanID)
	if err != nil {
		return nil, notFound(err, "Loan", loanID)
	}

	customer, err := s.repo.FindCustomer(ctx, loan.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("клиент кредита %d: %w", loanID, notFound(err, "Customer", loan.CustomerID))
	}

	return &LoanDetailResponse{
		LoanID: loan.ID,
		Customer: LoanCustomerDTO{
			ID:          customer.ID,
			FirstName:   customer.FirstName,
			LastName:    customer.LastName,
			PhoneNumber: customer.PhoneNumber,
			Age:         customer.Age,
		},
		LoanAmount:         money(loan.Amount),
		InterestRate:       money(loan.InterestRate),
		MonthlyInstallment: money(loan.MonthlyInstallment),
		Tenure:             loan.Tenure,
	}, nil
}

// ViewLoans возвращает действующие кредиты клиента
func (s *LoanService) ViewLoans(ctx context.Context, customerID uint) ([]LoanSummaryResponse, error) {
	if _, err := s.repo.FindCustomer(ctx, customerID); err != nil {
		return nil, notFound(err, "Customer", customerID)
	}

	loans, err := s.repo.ListActiveLoans(ctx, customerID, s.today())
	if err != nil {
		return nil, err
	}

	response := make([]LoanSummaryResponse, 0, len(loans))
	for _, loan := range loans {
		response = append(response, LoanSummaryResponse{
			LoanID:             loan.ID,
			LoanAmount:         money(loan.Amount),
			InterestRate:       money(loan.InterestRate),
			MonthlyInstallment: money(loan.MonthlyInstallment),
			RepaymentsLeft:     engine.RepaymentsLeft(loan),
		})
	}
	return response, nil
}
