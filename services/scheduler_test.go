package services

import (
	"context"
	"testing"
	"time"

	"creditapproval/database"
	"creditapproval/models"
	"creditapproval/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_SweepMaturedLoans(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	customer := seedCustomer(t, store, "50000", "1800000")
	for _, loan := range []*models.Loan{
		{CustomerID: customer.ID, Amount: decimal.NewFromInt(1000), IsActive: true, EndDate: date(2025, 6, 14)},
		{CustomerID: customer.ID, Amount: decimal.NewFromInt(2500), IsActive: true, EndDate: date(2025, 6, 15)},
	} {
		require.NoError(t, store.CreateLoan(ctx, loan))
	}
	require.NoError(t, store.UpdateCustomerDebt(ctx, customer.ID, decimal.NewFromInt(3500)))

	s := NewScheduler(store, nil, utils.NewLocalJobLock(), utils.GetMetrics(), SchedulerOptions{}, clock)

	n, err := s.SweepMaturedLoans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stored, err := store.FindCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "2500.00", stored.CurrentDebt.StringFixed(2))

	n, err = s.SweepMaturedLoans(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduler_SweepSkippedWhileLocked(t *testing.T) {
	ctx := context.Background()
	lock := utils.NewLocalJobLock()
	s := NewScheduler(database.NewMemoryStore(), nil, lock, nil, SchedulerOptions{}, clock)

	release, err := lock.TryLock(ctx, sweepLockName)
	require.NoError(t, err)
	defer release()

	n, err := s.SweepMaturedLoans(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduler_StartStop(t *testing.T) {
	store := database.NewMemoryStore()
	ingestion := newIngestion(store, t.TempDir(), nil, nil)

	bad := NewScheduler(store, ingestion, utils.NewLocalJobLock(), nil, SchedulerOptions{MaturitySweep: "every hour"}, clock)
	assert.Error(t, bad.Start())

	badIngest := NewScheduler(store, ingestion, utils.NewLocalJobLock(), nil, SchedulerOptions{Ingestion: "61 * * * *"}, clock)
	assert.Error(t, badIngest.Start())

	s := NewScheduler(store, ingestion, utils.NewLocalJobLock(), nil, SchedulerOptions{
		MaturitySweep: "@every 1h",
		Ingestion:     "0 3 * * *",
	}, clock)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestScheduler_SweepRepairsDebtDrift(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	customer := seedCustomer(t, store, "50000", "1800000")
	require.NoError(t, store.CreateLoan(ctx, &models.Loan{
		CustomerID: customer.ID, Amount: decimal.NewFromInt(4000), IsActive: true, EndDate: date(2026, 1, 1),
	}))
	// Задолженность разошлась с кредитами, истекших кредитов нет
	require.NoError(t, store.UpdateCustomerDebt(ctx, customer.ID, decimal.NewFromInt(9000)))

	s := NewScheduler(store, nil, utils.NewLocalJobLock(), nil, SchedulerOptions{}, clock)
	n, err := s.SweepMaturedLoans(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	stored, err := store.FindCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "4000.00", stored.CurrentDebt.StringFixed(2))
}
