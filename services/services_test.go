package services

import (
	"context"
	"testing"
	"time"

	"creditapproval/database"
	"creditapproval/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func seedCustomer(t *testing.T, store *database.MemoryStore, salary, limit string) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		FirstName:     "Ivan",
		LastName:      "Petrov",
		Age:           ptr(35),
		PhoneNumber:   "9990001122",
		MonthlySalary: decimal.RequireFromString(salary),
		ApprovedLimit: decimal.RequireFromString(limit),
	}
	require.NoError(t, store.CreateCustomer(context.Background(), customer))
	return customer
}
