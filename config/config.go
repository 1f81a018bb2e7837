package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port            int
		OpsPort         int // порт для /healthz, /readyz и /metrics
		ShutdownTimeout time.Duration
		GinMode         string
	}
	DB struct {
		Driver         string // postgres или memory
		Host           string
		Port           int
		User           string
		Password       string
		DBName         string
		SSLMode        string
		MigrationsPath string
		MaxIdleConns   int
		MaxOpenConns   int
		LogLevel       string
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // в часах
	}
	Admin struct {
		Username     string
		PasswordHash string // bcrypt
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Redis struct {
		Addr     string // пустое значение отключает Redis
		Password string
		DB       int
	}
	Ingestion struct {
		Dir          string
		CustomerFile string
		LoanFile     string
		Schedule     string // cron-выражение, пустое значение отключает расписание
		ReportTo     string // адрес для отчета об импорте
		LockTTL      time.Duration
	}
	Scheduler struct {
		MaturitySweep string
	}
	RateLimit struct {
		Requests int
		Window   time.Duration
	}
	Log struct {
		Level  string
		Output []string
	}
}

// insecureSecretKey общеизвестный ключ из примеров конфигурации
const insecureSecretKey = "your-secret-key-here"

// defaults задает значения по умолчанию
var defaults = map[string]interface{}{
	"server.port":             8080,
	"server.ops_port":         9090,
	"server.shutdown_timeout": "15s",
	"server.gin_mode":         "release",

	"db.driver":          "postgres",
	"db.host":            "localhost",
	"db.port":            5432,
	"db.user":            "postgres",
	"db.password":        "postgres",
	"db.name":            "credit_db",
	"db.sslmode":         "disable",
	"db.migrations_path": "migrations",
	"db.max_idle_conns":  10,
	"db.max_open_conns":  100,
	"db.log_level":       "warn",

	"jwt.secret_key": "",
	"jwt.expires_in": 24,

	"admin.username":      "admin",
	"admin.password_hash": "",

	"smtp.host":     "smtp.gmail.com",
	"smtp.port":     587,
	"smtp.username": "",
	"smtp.password": "",
	"smtp.from":     "credit-approval@example.com",

	"redis.addr":     "",
	"redis.password": "",
	"redis.db":       0,

	"ingest.dir":           ".",
	"ingest.customer_file": "customer_data.xlsx",
	"ingest.loan_file":     "loan_data.xlsx",
	"ingest.schedule":      "",
	"ingest.report_to":     "",
	"ingest.lock_ttl":      "30m",

	"scheduler.maturity_sweep": "@every 1h",

	"rate_limit.requests": 100,
	"rate_limit.window":   "1m",

	"log.level":  "info",
	"log.output": "stdout",
}

// NewConfig создает новый экземпляр конфигурации.
// Значения берутся из переменных окружения (SERVER_PORT, DB_HOST, ...),
// файла .env и, если задан CONFIG_FILE, из файла конфигурации.
func NewConfig() (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	// Настройки сервера
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.OpsPort = v.GetInt("server.ops_port")
	cfg.Server.ShutdownTimeout = v.GetDuration("server.shutdown_timeout")
	cfg.Server.GinMode = v.GetString("server.gin_mode")

	// Настройки базы данных
	cfg.DB.Driver = strings.ToLower(v.GetString("db.driver"))
	cfg.DB.Host = v.GetString("db.host")
	cfg.DB.Port = v.GetInt("db.port")
	cfg.DB.User = v.GetString("db.user")
	cfg.DB.Password = v.GetString("db.password")
	cfg.DB.DBName = v.GetString("db.name")
	cfg.DB.SSLMode = v.GetString("db.sslmode")
	cfg.DB.MigrationsPath = v.GetString("db.migrations_path")
	cfg.DB.MaxIdleConns = v.GetInt("db.max_idle_conns")
	cfg.DB.MaxOpenConns = v.GetInt("db.max_open_conns")
	cfg.DB.LogLevel = v.GetString("db.log_level")

	// Настройки JWT и администратора
	cfg.JWT.SecretKey = v.GetString("jwt.secret_key")
	cfg.JWT.ExpiresIn = v.GetInt("jwt.expires_in")
	cfg.Admin.Username = v.GetString("admin.username")
	cfg.Admin.PasswordHash = v.GetString("admin.password_hash")

	// Настройки SMTP
	cfg.SMTP.Host = v.GetString("smtp.host")
	cfg.SMTP.Port = v.GetInt("smtp.port")
	cfg.SMTP.Username = v.GetString("smtp.username")
	cfg.SMTP.Password = v.GetString("smtp.password")
	cfg.SMTP.From = v.GetString("smtp.from")

	// Настройки Redis
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")

	// Настройки импорта
	cfg.Ingestion.Dir = v.GetString("ingest.dir")
	cfg.Ingestion.CustomerFile = v.GetString("ingest.customer_file")
	cfg.Ingestion.LoanFile = v.GetString("ingest.loan_file")
	cfg.Ingestion.Schedule = v.GetString("ingest.schedule")
	cfg.Ingestion.ReportTo = v.GetString("ingest.report_to")
	cfg.Ingestion.LockTTL = v.GetDuration("ingest.lock_ttl")

	cfg.Scheduler.MaturitySweep = v.GetString("scheduler.maturity_sweep")

	cfg.RateLimit.Requests = v.GetInt("rate_limit.requests")
	cfg.RateLimit.Window = v.GetDuration("rate_limit.window")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Output = splitList(v.GetString("log.output"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate проверяет значения, которые viper не может проверить сам
func (c *Config) validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, errors.New("неверный формат порта сервера"))
	}
	if c.Server.OpsPort <= 0 {
		errs = append(errs, errors.New("неверный формат порта служебного сервера"))
	}
	if c.DB.Driver != "postgres" && c.DB.Driver != "memory" {
		errs = append(errs, fmt.Errorf("неизвестный драйвер базы данных: %q", c.DB.Driver))
	}
	if c.DB.Driver == "postgres" && c.DB.Port <= 0 {
		errs = append(errs, errors.New("неверный формат порта базы данных"))
	}
	// С PostgreSQL сервис работает с реальными данными: нужен собственный ключ подписи
	if c.DB.Driver == "postgres" && (c.JWT.SecretKey == "" || c.JWT.SecretKey == insecureSecretKey) {
		errs = append(errs, errors.New("не задан ключ подписи JWT (JWT_SECRET_KEY)"))
	}
	if c.JWT.ExpiresIn <= 0 {
		errs = append(errs, errors.New("неверный формат времени жизни JWT"))
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("неверные параметры ограничения частоты запросов"))
	}
	if c.Ingestion.LockTTL <= 0 {
		errs = append(errs, errors.New("неверное время блокировки импорта"))
	}
	return errors.Join(errs...)
}

// DSN возвращает строку подключения к PostgreSQL для GORM
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.DBName,
		c.DB.SSLMode,
	)
}

// MigrationURL возвращает URL базы данных для golang-migrate
func (c *Config) MigrationURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     net.JoinHostPort(c.DB.Host, strconv.Itoa(c.DB.Port)),
		Path:     "/" + c.DB.DBName,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}
	return u.String()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
