package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"creditapproval/routes"
	"creditapproval/services"
	"creditapproval/utils"
)

func newServeCommand(a *app) *cobra.Command {
	var store string
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the ops server and the background scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := useStore(a.cfg, store); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, migrate)
		},
	}

	cmd.Flags().StringVar(&store, "store", "", "storage backend: postgres or memory (overrides DB_DRIVER)")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply database migrations before start")

	return cmd
}

func (a *app) serve(ctx context.Context, migrate bool) error {
	cfg := a.cfg
	gin.SetMode(cfg.Server.GinMode)

	store, closeStore, err := openStore(cfg, migrate)
	if err != nil {
		return err
	}
	defer closeStore()

	lock, closeLock, err := newJobLock(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLock()

	metrics := utils.GetMetrics()
	ingestion := newIngestionService(cfg, store, lock)

	scheduler := services.NewScheduler(store, ingestion, lock, metrics, services.SchedulerOptions{
		MaturitySweep: cfg.Scheduler.MaturitySweep,
		Ingestion:     cfg.Ingestion.Schedule,
	}, nil)
	if err := scheduler.Start(); err != nil {
		return err
	}

	router := routes.SetupRouter(routes.Dependencies{
		Config:    cfg,
		Customers: services.NewCustomerService(store),
		Loans:     services.NewLoanService(store, metrics, nil),
		Ingestion: ingestion,
		Metrics:   metrics,
	})

	servers := []*http.Server{
		{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: router},
		{Addr: fmt.Sprintf(":%d", cfg.Server.OpsPort), Handler: routes.SetupOpsRouter(store, metrics)},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			utils.LogInfo("Сервер запущен на %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("ошибка запуска сервера %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	// Остановка по сигналу или при ошибке любого из серверов
	g.Go(func() error {
		<-gctx.Done()
		utils.LogInfo("Останавливаем сервис")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				utils.LogError("Ошибка остановки сервера %s: %v", srv.Addr, err)
			}
		}
		if err := scheduler.Stop(shutdownCtx); err != nil {
			utils.LogError("Планировщик не завершил задачи: %v", err)
		}
		return nil
	})

	return g.Wait()
}
