package engine

import (
	"testing"
	"time"

	"creditapproval/models"
	"github.com/stretchr/testify/assert"
)

func TestAddMonths(t *testing.T) {
	cases := []struct {
		from time.Time
		n    int
		want time.Time
	}{
		{time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), 12, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC), 10, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), 0, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AddMonths(tc.from, tc.n), "%s + %d", tc.from.Format("2006-01-02"), tc.n)
	}
}

func TestRepaymentsLeft(t *testing.T) {
	assert.Equal(t, 10, RepaymentsLeft(models.Loan{Tenure: 12, EMIsPaidOnTime: 2}))
	assert.Equal(t, 0, RepaymentsLeft(models.Loan{Tenure: 12, EMIsPaidOnTime: 15}))
}

func TestActiveDebtAndInstallments(t *testing.T) {
	loans := []models.Loan{
		activeLoan("1000", "100"),
		activeLoan("2000", "200"),
		{Amount: d("5000"), MonthlyInstallment: d("500"), IsActive: false},
		{Amount: d("7000"), MonthlyInstallment: d("700"), IsActive: true, EndDate: date(2025, time.June, 14)},
		{Amount: d("9000"), MonthlyInstallment: d("900"), IsActive: true, EndDate: date(2025, time.June, 15)},
	}

	assert.Equal(t, "12000.00", ActiveDebt(loans, today).StringFixed(2))
	assert.Equal(t, "1200.00", ActiveInstallments(loans, today).StringFixed(2))
}
