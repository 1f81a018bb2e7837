package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"creditapproval/database"
	"creditapproval/models"
	"creditapproval/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const customersCSV = `Customer ID,First Name,Last Name,Age,Phone Number,Monthly Salary,Approved Limit
1,Aaron,Garcia,63,9629317944,50000,1800000
2,Bella,Chen,,9.1234567E9,30000,1100000
x,Bad,Row,30,1,1,1
,Ghost,Row,30,1,1,1
,,,,,,
`

const loansCSV = `Customer ID,Loan ID,Loan Amount,Tenure,Interest Rate,Monthly payment,EMIs paid on Time,Date of Approval,End Date
1,100,90000,12,10.5,7934.12,12,2024-01-10,2030-01-10
1,101,50000,24,12,2353.67,5,15/03/2020,15/03/2022
2,102,40000,6,9,6843,6,2025-01-01,
9,103,1000,6,9,171,0,2025-01-01,2025-07-01
2,104,abc,6,9,171,0,2025-01-01,2025-07-01
`

type fakeNotifier struct {
	mu   sync.Mutex
	to   []string
	runs []IngestionRun
}

func (n *fakeNotifier) SendIngestionReport(to string, run IngestionRun) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.to = append(n.to, to)
	n.runs = append(n.runs, run)
	return nil
}

func writeData(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func newIngestion(store *database.MemoryStore, dir string, lock utils.JobLock, notifier Notifier) *IngestionService {
	if lock == nil {
		lock = utils.NewLocalJobLock()
	}
	return NewIngestionService(store, lock, notifier, nil, IngestionOptions{
		Dir:          dir,
		CustomerFile: "customers.csv",
		LoanFile:     "loans.csv",
		ReportTo:     "ops@example.com",
	}, clock)
}

func TestIngestionService_Run(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	dir := writeData(t, map[string]string{"customers.csv": customersCSV, "loans.csv": loansCSV})
	notifier := &fakeNotifier{}
	svc := newIngestion(store, dir, nil, notifier)

	run, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, IngestionSucceeded, run.Status)
	require.Len(t, run.Reports, 2)

	customers := run.Reports[0]
	assert.Equal(t, "customers", customers.Kind)
	assert.Equal(t, 2, customers.Created)
	assert.Equal(t, 1, customers.Skipped)
	assert.Equal(t, "Customer ingestion complete: 2 created, 0 updated, 1 skipped.", customers.Message)

	loans := run.Reports[1]
	assert.Equal(t, 3, loans.Created)
	assert.Equal(t, 2, loans.Skipped)
	assert.Equal(t, "Loan ingestion complete: 3 created, 0 updated, 2 skipped.", loans.Message)

	aaron, err := store.FindCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Aaron", aaron.FirstName)
	assert.Equal(t, 63, *aaron.Age)
	assert.Equal(t, "9629317944", aaron.PhoneNumber)
	assert.Equal(t, "90000.00", aaron.CurrentDebt.StringFixed(2))

	bella, err := store.FindCustomer(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, bella.Age)
	assert.Equal(t, "9123456700", bella.PhoneNumber)
	assert.Equal(t, "40000.00", bella.CurrentDebt.StringFixed(2))

	matured, err := store.FindLoan(ctx, 101)
	require.NoError(t, err)
	assert.False(t, matured.IsActive)
	assert.Equal(t, "2020-03-15", matured.StartDate.Format("2006-01-02"))

	open, err := store.FindLoan(ctx, 102)
	require.NoError(t, err)
	assert.True(t, open.IsActive)
	assert.Nil(t, open.EndDate)

	_, err = store.FindLoan(ctx, 103)
	assert.ErrorIs(t, err, database.ErrNotFound)

	// Последовательности продолжаются после загруженных идентификаторов
	next := &models.Customer{FirstName: "New"}
	require.NoError(t, store.CreateCustomer(ctx, next))
	assert.Equal(t, uint(3), next.ID)

	status := svc.Status()
	assert.False(t, status.Running)
	assert.Equal(t, run, status.LastRun)

	require.Len(t, notifier.runs, 1)
	assert.Equal(t, []string{"ops@example.com"}, notifier.to)
}

func TestIngestionService_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	dir := writeData(t, map[string]string{"customers.csv": customersCSV, "loans.csv": loansCSV})
	svc := newIngestion(store, dir, nil, nil)

	_, err := svc.Run(ctx)
	require.NoError(t, err)
	first, err := store.ListLoans(ctx, 1)
	require.NoError(t, err)

	run, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Customer ingestion complete: 0 created, 2 updated, 1 skipped.", run.Reports[0].Message)
	assert.Equal(t, "Loan ingestion complete: 0 created, 3 updated, 2 skipped.", run.Reports[1].Message)

	second, err := store.ListLoans(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for id, debt := range map[uint]string{1: "90000.00", 2: "40000.00"} {
		c, err := store.FindCustomer(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, debt, c.CurrentDebt.StringFixed(2))
	}
}

func TestIngestionService_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	svc := newIngestion(database.NewMemoryStore(), dir, nil, nil)

	run, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, IngestionSucceeded, run.Status)
	assert.Equal(t, "File not found: "+filepath.Join(dir, "customers.csv"), run.Reports[0].Message)
	assert.Equal(t, "File not found: "+filepath.Join(dir, "loans.csv"), run.Reports[1].Message)
}

func TestIngestionService_UnreadableFileFailsRun(t *testing.T) {
	dir := writeData(t, map[string]string{"customers.csv": "a,\"b\n1,2\n"})
	svc := newIngestion(database.NewMemoryStore(), dir, nil, nil)

	run, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, IngestionFailed, run.Status)
	assert.Len(t, run.Reports, 1)
	assert.NotEmpty(t, svc.Status().LastRun.Error)
}

func TestIngestionService_PositionalXLSX(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	customers := excelize.NewFile()
	require.NoError(t, customers.SetSheetRow("Sheet1", "A1", &[]interface{}{"c1", "c2", "c3", "c4", "c5", "c6"}))
	require.NoError(t, customers.SetSheetRow("Sheet1", "A2", &[]interface{}{7, "Dana", "Ortiz", 9876543210, 45000, 1600000}))
	require.NoError(t, customers.SaveAs(filepath.Join(dir, "customer_data.xlsx")))
	require.NoError(t, customers.Close())

	loans := excelize.NewFile()
	require.NoError(t, loans.SetSheetRow("Sheet1", "A1", &[]interface{}{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8", "c9"}))
	require.NoError(t, loans.SetSheetRow("Sheet1", "A2", &[]interface{}{
		7, 500, 120000, 24, 11.5, 5621.33, 10,
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, loans.SaveAs(filepath.Join(dir, "loan_data.xlsx")))
	require.NoError(t, loans.Close())

	store := database.NewMemoryStore()
	svc := NewIngestionService(store, utils.NewLocalJobLock(), nil, utils.GetMetrics(), IngestionOptions{
		Dir:          dir,
		CustomerFile: "customer_data.xlsx",
		LoanFile:     "loan_data.xlsx",
	}, clock)

	_, err := svc.Run(ctx)
	require.NoError(t, err)

	customer, err := store.FindCustomer(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", customer.PhoneNumber)
	assert.Equal(t, "1600000.00", customer.ApprovedLimit.StringFixed(2))
	assert.Equal(t, "120000.00", customer.CurrentDebt.StringFixed(2))

	loan, err := store.FindLoan(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, "11.50", loan.InterestRate.StringFixed(2))
	assert.Equal(t, "2024-05-01", loan.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2026-05-01", loan.EndDate.Format("2006-01-02"))
	assert.True(t, loan.IsActive)
}

func TestIngestionService_InProgress(t *testing.T) {
	ctx := context.Background()
	lock := utils.NewLocalJobLock()
	svc := newIngestion(database.NewMemoryStore(), t.TempDir(), lock, nil)

	release, err := lock.TryLock(ctx, ingestionLockName)
	require.NoError(t, err)

	_, err = svc.Run(ctx)
	assert.ErrorIs(t, err, ErrIngestionInProgress)
	assert.ErrorIs(t, svc.Start(ctx), ErrIngestionInProgress)

	release()
	_, err = svc.Run(ctx)
	assert.NoError(t, err)
}

func TestIngestionService_Start(t *testing.T) {
	store := database.NewMemoryStore()
	dir := writeData(t, map[string]string{"customers.csv": customersCSV, "loans.csv": loansCSV})
	svc := newIngestion(store, dir, nil, nil)

	require.NoError(t, svc.Start(context.Background()))

	assert.Eventually(t, func() bool {
		status := svc.Status()
		return !status.Running && status.LastRun != nil
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, IngestionSucceeded, svc.Status().LastRun.Status)

	exists, err := store.CustomerExists(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestIngestionReportBody(t *testing.T) {
	body := ingestionReportBody(IngestionRun{
		Status:  IngestionFailed,
		Reports: []IngestionReport{{Kind: "customers", Message: "File not found: <dir>/customers.csv"}},
		Error:   "boom",
	})
	assert.Contains(t, body, "Status: failed")
	assert.Contains(t, body, "File not found: &lt;dir&gt;/customers.csv")
	assert.Contains(t, body, "Error: boom")
}
