package commands

import (
	"context"
	"fmt"

	"creditapproval/config"
	"creditapproval/database"
	"creditapproval/services"
	"creditapproval/utils"
)

// useStore переопределяет хранилище из флага --store
func useStore(cfg *config.Config, store string) error {
	switch store {
	case "":
	case "postgres", "memory":
		cfg.DB.Driver = store
	default:
		return fmt.Errorf("неизвестное хранилище: %q", store)
	}
	return nil
}

// openStore открывает хранилище, выбранное в конфигурации
func openStore(cfg *config.Config, migrate bool) (database.Store, func(), error) {
	if cfg.DB.Driver == "memory" {
		utils.LogWarn("Используется хранилище в памяти: данные не сохраняются между запусками")
		return database.NewMemoryStore(), func() {}, nil
	}

	if migrate {
		if err := database.RunMigrations(cfg, false); err != nil {
			return nil, nil, err
		}
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := db.Close(); err != nil {
			utils.LogError("Ошибка закрытия соединения с базой данных: %v", err)
		}
	}, nil
}

// newJobLock возвращает блокировку фоновых задач: Redis, если он настроен, иначе локальную
func newJobLock(ctx context.Context, cfg *config.Config) (utils.JobLock, func(), error) {
	if cfg.Redis.Addr == "" {
		return utils.NewLocalJobLock(), func() {}, nil
	}

	client, err := utils.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}
	utils.LogInfo("Блокировки задач хранятся в Redis %s", cfg.Redis.Addr)
	return utils.NewRedisJobLock(client, cfg.Ingestion.LockTTL), func() { client.Close() }, nil
}

// newNotifier возвращает отправителя отчетов или nil, если получатель не задан
func newNotifier(cfg *config.Config) services.Notifier {
	if cfg.Ingestion.ReportTo == "" || cfg.SMTP.Host == "" {
		return nil
	}
	return services.NewEmailService(cfg)
}

func newIngestionService(cfg *config.Config, store database.IngestionStore, lock utils.JobLock) *services.IngestionService {
	return services.NewIngestionService(
		store,
		lock,
		newNotifier(cfg),
		utils.GetMetrics(),
		services.IngestionOptionsFromConfig(cfg),
		nil,
	)
}
