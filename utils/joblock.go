package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld возвращается, если задача уже выполняется
var ErrLockHeld = errors.New("job lock is already held")

// JobLock обеспечивает исключительное выполнение фоновых задач
type JobLock interface {
	// TryLock захватывает блокировку name без ожидания.
	// Возвращает функцию освобождения или ErrLockHeld.
	TryLock(ctx context.Context, name string) (func(), error)
}

// LocalJobLock блокировка в пределах одного процесса
type LocalJobLock struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalJobLock создает блокировку в памяти процесса
func NewLocalJobLock() *LocalJobLock {
	return &LocalJobLock{held: make(map[string]bool)}
}

func (l *LocalJobLock) TryLock(_ context.Context, name string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[name] {
		return nil, ErrLockHeld
	}
	l.held[name] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, name)
			l.mu.Unlock()
		})
	}, nil
}

// releaseScript удаляет ключ, только если он все еще принадлежит владельцу
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// renewScript продлевает ключ, только если он все еще принадлежит владельцу
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// RedisJobLock распределенная блокировка на основе SET NX PX.
// Пока блокировка удерживается, ключ продлевается каждую треть TTL,
// поэтому TTL ограничивает время жизни блокировки только после аварийного завершения процесса.
type RedisJobLock struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisJobLock создает блокировку поверх клиента Redis
func NewRedisJobLock(client *redis.Client, ttl time.Duration) *RedisJobLock {
	return &RedisJobLock{client: client, ttl: ttl, prefix: "creditapproval:lock:"}
}

func (l *RedisJobLock) TryLock(ctx context.Context, name string) (func(), error) {
	key := l.prefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("ошибка захвата блокировки %s: %w", name, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.renew(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				LogError("Ошибка освобождения блокировки %s: %v", name, err)
			}
		})
	}, nil
}

// renew продлевает ключ до закрытия stop или до потери владения
func (l *RedisJobLock) renew(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := l.ttl / 3
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			renewed, err := renewScript.Run(ctx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int()
			cancel()
			if err != nil {
				LogWarn("Ошибка продления блокировки %s: %v", key, err)
				continue
			}
			if renewed == 0 {
				LogWarn("Блокировка %s потеряна: ключ истек или принадлежит другому владельцу", key)
				return
			}
		}
	}
}

// NewRedisClient создает клиент Redis и проверяет соединение
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
