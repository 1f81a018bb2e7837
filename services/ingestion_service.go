package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"creditapproval/config"
	"creditapproval/database"
	"creditapproval/models"
	"creditapproval/spreadsheet"
	"creditapproval/utils"
)

const ingestionLockName = "ingestion"

// Статусы запуска импорта
const (
	IngestionSucceeded = "succeeded"
	IngestionFailed    = "failed"
)

var customerFields = []spreadsheet.Field{
	{Key: "customer_id", Aliases: []string{"id"}, Position: 0},
	{Key: "first_name", Position: 1},
	{Key: "last_name", Position: 2},
	{Key: "phone_number", Aliases: []string{"phone"}, Position: 3},
	{Key: "monthly_salary", Aliases: []string{"monthly_income", "salary"}, Position: 4},
	{Key: "approved_limit", Position: 5},
	{Key: "age", Position: -1},
}

var loanFields = []spreadsheet.Field{
	{Key: "customer_id", Position: 0},
	{Key: "loan_id", Position: 1},
	{Key: "loan_amount", Position: 2},
	{Key: "tenure", Position: 3},
	{Key: "interest_rate", Position: 4},
	{Key: "monthly_payment", Aliases: []string{"monthly_repayment", "monthly_repayment_emi", "monthly_installment", "emi"}, Position: 5},
	{Key: "emis_paid_on_time", Position: 6},
	{Key: "date_of_approval", Aliases: []string{"start_date", "approval_date"}, Position: 7},
	{Key: "end_date", Position: 8},
}

// IngestionReport итоги импорта одного файла
type IngestionReport struct {
	Kind       string    `json:"kind"`
	File       string    `json:"file"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	Message    string    `json:"message"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// IngestionRun итоги полного запуска: сначала клиенты, затем кредиты
type IngestionRun struct {
	Status     string            `json:"status"`
	Reports    []IngestionReport `json:"reports"`
	Error      string            `json:"error,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

// IngestionStatus состояние импорта для GET /admin/ingest/status
type IngestionStatus struct {
	Running bool          `json:"running"`
	LastRun *IngestionRun `json:"last_run"`
}

// IngestionOptions пути к файлам и получатель отчета
type IngestionOptions struct {
	Dir          string
	CustomerFile string
	LoanFile     string
	ReportTo     string
}

// IngestionOptionsFromConfig берет настройки импорта из конфигурации
func IngestionOptionsFromConfig(cfg *config.Config) IngestionOptions {
	return IngestionOptions{
		Dir:          cfg.Ingestion.Dir,
		CustomerFile: cfg.Ingestion.CustomerFile,
		LoanFile:     cfg.Ingestion.LoanFile,
		ReportTo:     cfg.Ingestion.ReportTo,
	}
}

// IngestionService загружает клиентов и кредиты из таблиц
type IngestionService struct {
	store    database.IngestionStore
	registry *spreadsheet.Registry
	lock     utils.JobLock
	notifier Notifier
	metrics  *utils.Metrics
	opts     IngestionOptions
	now      func() time.Time

	mu      sync.RWMutex
	running bool
	lastRun *IngestionRun
}

// NewIngestionService создает новый экземпляр IngestionService.
// notifier и metrics могут быть nil.
func NewIngestionService(
	store database.IngestionStore,
	lock utils.JobLock,
	notifier Notifier,
	metrics *utils.Metrics,
	opts IngestionOptions,
	now func() time.Time,
) *IngestionService {
	if now == nil {
		now = time.Now
	}
	return &IngestionService{
		store:    store,
		registry: spreadsheet.DefaultRegistry(),
		lock:     lock,
		notifier: notifier,
		metrics:  metrics,
		opts:     opts,
		now:      now,
	}
}

// Run выполняет импорт синхронно
func (s *IngestionService) Run(ctx context.Context) (*IngestionRun, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	run := s.run(ctx)
	if run.Status == IngestionFailed {
		return run, errors.New(run.Error)
	}
	return run, nil
}

// Start запускает импорт в фоне. Возвращает ErrIngestionInProgress,
// если импорт уже выполняется в этом или другом процессе.
func (s *IngestionService) Start(ctx context.Context) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}

	go func() {
		defer release()
		s.run(context.Background())
	}()
	return nil
}

// Status возвращает состояние импорта и итоги последнего запуска
func (s *IngestionService) Status() IngestionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return IngestionStatus{Running: s.running, LastRun: s.lastRun}
}

func (s *IngestionService) acquire(ctx context.Context) (func(), error) {
	release, err := s.lock.TryLock(ctx, ingestionLockName)
	if errors.Is(err, utils.ErrLockHeld) {
		return nil, ErrIngestionInProgress
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		release()
	}, nil
}

func (s *IngestionService) run(ctx context.Context) *IngestionRun {
	run := &IngestionRun{StartedAt: s.now()}

	err := func() error {
		customers, err := s.IngestCustomers(ctx)
		run.Reports = append(run.Reports, customers)
		if err != nil {
			return err
		}
		loans, err := s.IngestLoans(ctx)
		run.Reports = append(run.Reports, loans)
		return err
	}()

	run.FinishedAt = s.now()
	run.Status = IngestionSucceeded
	if err != nil {
		run.Status = IngestionFailed
		run.Error = err.Error()
		utils.LogError("Импорт завершился с ошибкой: %v", err)
		if s.metrics != nil {
			s.metrics.RecordError("ingestion")
		}
	}

	s.mu.Lock()
	s.lastRun = run
	s.mu.Unlock()

	s.notify(*run)
	return run
}

func (s *IngestionService) notify(run IngestionRun) {
	if s.notifier == nil || s.opts.ReportTo == "" {
		return
	}
	if err := s.notifier.SendIngestionReport(s.opts.ReportTo, run); err != nil {
		utils.LogError("Ошибка отправки отчета об импорте: %v", err)
	}
}

// open читает файл. Отсутствующий файл не является ошибкой: ok = false.
func (s *IngestionService) open(report *IngestionReport, name string) (*spreadsheet.Sheet, bool, error) {
	path := filepath.Join(s.opts.Dir, name)
	report.File = path

	sheet, err := s.registry.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		report.Message = "File not found: " + path
		utils.LogWarn("%s", report.Message)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return sheet, true, nil
}

func (s *IngestionService) finish(report *IngestionReport) {
	report.FinishedAt = s.now()
	if s.metrics != nil {
		s.metrics.RecordIngestion(report.Kind, report.Created, report.Updated, report.Skipped, report.FinishedAt.Sub(report.StartedAt))
	}
	utils.LogInfo("%s", report.Message)
}

// IngestCustomers загружает клиентов. Текущая задолженность обнуляется
// и пересчитывается после загрузки кредитов.
func (s *IngestionService) IngestCustomers(ctx context.Context) (IngestionReport, error) {
	report := IngestionReport{Kind: "customers", StartedAt: s.now()}
	defer s.finish(&report)

	sheet, ok, err := s.open(&report, s.opts.CustomerFile)
	if !ok {
		if err != nil {
			report.Message = err.Error()
		}
		return report, err
	}

	for _, rec := range sheet.Records(customerFields) {
		if rec.Get("customer_id") == "" {
			continue
		}
		customer, err := parseCustomer(rec)
		if err != nil {
			report.Skipped++
			utils.LogWarn("Строка %d файла %s пропущена: %v", rec.Line, report.File, err)
			continue
		}

		created, err := s.store.UpsertCustomer(ctx, customer)
		if err != nil {
			report.Message = err.Error()
			return report, fmt.Errorf("строка %d: %w", rec.Line, err)
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	report.Message = fmt.Sprintf("Customer ingestion complete: %d created, %d updated.", report.Created, report.Updated)
	if report.Skipped > 0 {
		report.Message = fmt.Sprintf("Customer ingestion complete: %d created, %d updated, %d skipped.",
			report.Created, report.Updated, report.Skipped)
	}
	return report, nil
}

// IngestLoans загружает кредиты, затем пересчитывает задолженность всех клиентов
// и выравнивает последовательности идентификаторов.
func (s *IngestionService) IngestLoans(ctx context.Context) (IngestionReport, error) {
	report := IngestionReport{Kind: "loans", StartedAt: s.now()}
	defer s.finish(&report)

	sheet, ok, err := s.open(&report, s.opts.LoanFile)
	if !ok {
		if err != nil {
			report.Message = err.Error()
		}
		return report, err
	}

	today := models.DateOnly(s.now())
	fail := func(line int, err error) (IngestionReport, error) {
		report.Message = err.Error()
		if line > 0 {
			err = fmt.Errorf("строка %d: %w", line, err)
		}
		return report, err
	}

	for _, rec := range sheet.Records(loanFields) {
		if rec.Get("customer_id") == "" {
			continue
		}
		loan, err := parseLoan(rec, today)
		if err != nil {
			report.Skipped++
			utils.LogWarn("Строка %d файла %s пропущена: %v", rec.Line, report.File, err)
			continue
		}

		exists, err := s.store.CustomerExists(ctx, loan.CustomerID)
		if err != nil {
			return fail(rec.Line, err)
		}
		if !exists {
			report.Skipped++
			utils.LogDebug("Кредит %d пропущен: клиент %d не найден", loan.ID, loan.CustomerID)
			continue
		}

		created, err := s.store.UpsertLoan(ctx, loan)
		if err != nil {
			return fail(rec.Line, err)
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	if err := s.store.RecomputeAllDebts(ctx, today); err != nil {
		return fail(0, err)
	}
	if err := s.store.ResetSequences(ctx); err != nil {
		return fail(0, err)
	}

	report.Message = fmt.Sprintf("Loan ingestion complete: %d created, %d updated, %d skipped.",
		report.Created, report.Updated, report.Skipped)
	return report, nil
}

func parseCustomer(rec spreadsheet.Record) (*models.Customer, error) {
	id, err := spreadsheet.ParseID(rec.Get("customer_id"))
	if err != nil {
		return nil, fmt.Errorf("customer_id: %w", err)
	}
	salary, err := spreadsheet.ParseDecimal(rec.Get("monthly_salary"))
	if err != nil {
		return nil, fmt.Errorf("monthly_salary: %w", err)
	}
	limit, err := spreadsheet.ParseDecimal(rec.Get("approved_limit"))
	if err != nil {
		return nil, fmt.Errorf("approved_limit: %w", err)
	}

	customer := &models.Customer{
		ID:            id,
		FirstName:     strings.TrimSpace(rec.Get("first_name")),
		LastName:      strings.TrimSpace(rec.Get("last_name")),
		PhoneNumber:   spreadsheet.ParsePhone(rec.Get("phone_number")),
		MonthlySalary: salary.Round(2),
		ApprovedLimit: limit.Round(2),
	}

	if raw := rec.Get("age"); raw != "" {
		age, err := spreadsheet.ParseInt(raw)
		if err != nil {
			return nil, fmt.Errorf("age: %w", err)
		}
		customer.Age = &age
	}
	return customer, nil
}

func parseLoan(rec spreadsheet.Record, today time.Time) (*models.Loan, error) {
	customerID, err := spreadsheet.ParseID(rec.Get("customer_id"))
	if err != nil {
		return nil, fmt.Errorf("customer_id: %w", err)
	}
	loanID, err := spreadsheet.ParseID(rec.Get("loan_id"))
	if err != nil {
		return nil, fmt.Errorf("loan_id: %w", err)
	}

	loan := &models.Loan{ID: loanID, CustomerID: customerID}
	if loan.Amount, err = spreadsheet.ParseDecimal(rec.Get("loan_amount")); err != nil {
		return nil, fmt.Errorf("loan_amount: %w", err)
	}
	if loan.InterestRate, err = spreadsheet.ParseDecimal(rec.Get("interest_rate")); err != nil {
		return nil, fmt.Errorf("interest_rate: %w", err)
	}
	if loan.MonthlyInstallment, err = spreadsheet.ParseDecimal(rec.Get("monthly_payment")); err != nil {
		return nil, fmt.Errorf("monthly_payment: %w", err)
	}
	if loan.Tenure, err = spreadsheet.ParseInt(rec.Get("tenure")); err != nil {
		return nil, fmt.Errorf("tenure: %w", err)
	}
	if loan.EMIsPaidOnTime, err = spreadsheet.ParseInt(rec.Get("emis_paid_on_time")); err != nil {
		return nil, fmt.Errorf("emis_paid_on_time: %w", err)
	}
	loan.Amount = loan.Amount.Round(2)
	loan.InterestRate = loan.InterestRate.Round(2)
	loan.MonthlyInstallment = loan.MonthlyInstallment.Round(2)

	loan.StartDate = spreadsheet.ParseDate(rec.Get("date_of_approval"))
	loan.EndDate = spreadsheet.ParseDate(rec.Get("end_date"))
	loan.IsActive = loan.EndDate == nil || !loan.EndDate.Before(today)
	return loan, nil
}
