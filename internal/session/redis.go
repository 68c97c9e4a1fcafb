package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grillpoint/grillpoint-bot/internal/model"
)

// lockStripes — размер набора мьютексов, сериализующих Update.
const lockStripes = 64

// RedisStore хранит сессии в Redis с TTL средствами самого Redis,
// поэтому отдельный sweep ему не нужен. Атомарность Update обеспечивается
// фиксированным набором мьютексов внутри процесса: пользователь всегда
// попадает на один и тот же мьютекс, занятая память не растёт с числом
// пользователей. Бот работает в одном экземпляре, межпроцессное разделение
// сессий вне рамок задачи.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration

	locks [lockStripes]sync.Mutex
}

// NewRedisStore создаёт хранилище сессий поверх указанного Redis.
func NewRedisStore(addr string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
	}, nil
}

// Close закрывает соединение с Redis.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func sessionKey(userID int64) string {
	return "session:" + strconv.FormatInt(userID, 10)
}

func (r *RedisStore) userLock(userID int64) *sync.Mutex {
	idx := userID % lockStripes
	if idx < 0 {
		idx += lockStripes
	}
	return &r.locks[idx]
}

func (r *RedisStore) load(ctx context.Context, userID int64) (*model.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) save(ctx context.Context, s *model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// Get возвращает сессию пользователя или ErrNotFound.
func (r *RedisStore) Get(ctx context.Context, userID int64) (*model.Session, error) {
	return r.load(ctx, userID)
}

// GetOrCreate возвращает сессию, создавая пустую при её отсутствии.
func (r *RedisStore) GetOrCreate(ctx context.Context, userID int64) (*model.Session, error) {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s, err := r.load(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		s = model.NewSession(userID)
		if err := r.save(ctx, s); err != nil {
			return nil, err
		}
		return s, nil
	}
	return s, err
}

// Upsert сохраняет сессию с обновлением отметки активности.
func (r *RedisStore) Upsert(ctx context.Context, s *model.Session) error {
	lock := r.userLock(s.UserID)
	lock.Lock()
	defer lock.Unlock()

	s.LastActivity = time.Now().UTC()
	return r.save(ctx, s)
}

// Update атомарно применяет fn к актуальному значению сессии.
func (r *RedisStore) Update(ctx context.Context, userID int64, fn func(*model.Session) error) (*model.Session, error) {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s, err := r.load(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		s = model.NewSession(userID)
	} else if err != nil {
		return nil, err
	}

	if err := fn(s); err != nil {
		return nil, err
	}

	s.LastActivity = time.Now().UTC()
	if err := r.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Remove удаляет сессию пользователя.
func (r *RedisStore) Remove(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("del session: %w", err)
	}
	return nil
}
