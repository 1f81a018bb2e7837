package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creditapproval/database"
	"creditapproval/models"
	"creditapproval/utils"

	"github.com/robfig/cron/v3"
)

const sweepLockName = "maturity-sweep"

// SchedulerOptions расписания фоновых задач в формате cron.
// Пустое расписание отключает задачу.
type SchedulerOptions struct {
	MaturitySweep string
	Ingestion     string
}

// Scheduler запускает фоновые задачи: закрытие погашенных кредитов и импорт по расписанию
type Scheduler struct {
	cron      *cron.Cron
	store     database.IngestionStore
	ingestion *IngestionService
	lock      utils.JobLock
	metrics   *utils.Metrics
	opts      SchedulerOptions
	now       func() time.Time
}

// NewScheduler создает новый экземпляр Scheduler. ingestion может быть nil.
func NewScheduler(
	store database.IngestionStore,
	ingestion *IngestionService,
	lock utils.JobLock,
	metrics *utils.Metrics,
	opts SchedulerOptions,
	now func() time.Time,
) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		cron:      cron.New(),
		store:     store,
		ingestion: ingestion,
		lock:      lock,
		metrics:   metrics,
		opts:      opts,
		now:       now,
	}
}

// Start регистрирует задачи и запускает планировщик
func (s *Scheduler) Start() error {
	if s.opts.MaturitySweep != "" {
		_, err := s.cron.AddFunc(s.opts.MaturitySweep, func() {
			if _, err := s.SweepMaturedLoans(context.Background()); err != nil {
				utils.LogError("Ошибка закрытия погашенных кредитов: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("неверное расписание закрытия кредитов %q: %w", s.opts.MaturitySweep, err)
		}
	}

	if s.opts.Ingestion != "" && s.ingestion != nil {
		_, err := s.cron.AddFunc(s.opts.Ingestion, func() {
			_, err := s.ingestion.Run(context.Background())
			if errors.Is(err, ErrIngestionInProgress) {
				utils.LogInfo("Импорт по расписанию пропущен: импорт уже выполняется")
				return
			}
			if err != nil {
				utils.LogError("Ошибка импорта по расписанию: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("неверное расписание импорта %q: %w", s.opts.Ingestion, err)
		}
	}

	s.cron.Start()
	utils.LogInfo("Планировщик запущен: задач %d", len(s.cron.Entries()))
	return nil
}

// Stop останавливает планировщик и ждет завершения выполняющихся задач
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SweepMaturedLoans снимает флаг is_active с кредитов, срок которых истек,
// и пересчитывает задолженность клиентов. Пересчет выполняется при каждом запуске:
// он идет без блокировок клиентов и исправляет расхождение, если параллельная
// выдача кредита перезаписала задолженность. Если задача уже выполняется, возвращает 0.
func (s *Scheduler) SweepMaturedLoans(ctx context.Context) (int64, error) {
	startTime := time.Now()

	release, err := s.lock.TryLock(ctx, sweepLockName)
	if errors.Is(err, utils.ErrLockHeld) {
		utils.LogDebug("Закрытие погашенных кредитов уже выполняется")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer release()

	today := models.DateOnly(s.now())
	n, err := s.store.DeactivateMaturedLoans(ctx, today)
	if err == nil {
		err = s.store.RecomputeAllDebts(ctx, today)
	}
	utils.LogOperation("maturity_sweep", startTime, err)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordError("maturity_sweep")
		}
		return 0, err
	}

	if n > 0 {
		utils.LogInfo("Закрыто погашенных кредитов: %d", n)
		if s.metrics != nil {
			s.metrics.MaturedLoans.Add(float64(n))
		}
	}
	return n, nil
}
