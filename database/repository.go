package database

import (
	"context"
	"errors"
	"time"

	"creditapproval/models"

	"github.com/shopspring/decimal"
)

// ErrNotFound возвращается, если клиент или кредит не найден
var ErrNotFound = errors.New("record not found")

// Repository описывает операции хранилища, нужные API кредитного сервиса
type Repository interface {
	FindCustomer(ctx context.Context, id uint) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	ListLoans(ctx context.Context, customerID uint) ([]models.Loan, error)
	// ListActiveLoans возвращает кредиты, действующие на дату today
	ListActiveLoans(ctx context.Context, customerID uint, today time.Time) ([]models.Loan, error)
	FindLoan(ctx context.Context, loanID uint) (*models.Loan, error)
	CreateLoan(ctx context.Context, loan *models.Loan) error
	UpdateCustomerDebt(ctx context.Context, id uint, debt decimal.Decimal) error
	// WithCustomerLock выполняет fn, удерживая блокировку клиента id.
	// Все вызовы fn для одного клиента выполняются последовательно.
	WithCustomerLock(ctx context.Context, id uint, fn func(Repository) error) error
	Ping(ctx context.Context) error
}

// IngestionStore описывает операции массовой загрузки данных
type IngestionStore interface {
	UpsertCustomer(ctx context.Context, customer *models.Customer) (created bool, err error)
	UpsertLoan(ctx context.Context, loan *models.Loan) (created bool, err error)
	CustomerExists(ctx context.Context, id uint) (bool, error)
	RecomputeAllDebts(ctx context.Context, today time.Time) error
	DeactivateMaturedLoans(ctx context.Context, today time.Time) (int64, error)
	ResetSequences(ctx context.Context) error
}

// Store объединяет оба интерфейса
type Store interface {
	Repository
	IngestionStore
}

var (
	_ Store = (*Database)(nil)
	_ Store = (*MemoryStore)(nil)
)
