package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/grillpoint/grillpoint-bot/internal/model"
)

// MemoryStore — потокобезопасное хранилище сессий в памяти процесса.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[int64]*memoryEntry
}

type memoryEntry struct {
	session   *model.Session
	expiresAt time.Time
	// userMu сериализует Update одной и той же сессии.
	userMu sync.Mutex
}

// NewMemoryStore создаёт хранилище с указанным TTL сессий.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[int64]*memoryEntry),
	}
}

// SetNow подменяет источник времени хранилища. Используется в тестах.
func (m *MemoryStore) SetNow(fn func() time.Time) {
	m.now = fn
}

func (m *MemoryStore) entry(userID int64, create bool) (*memoryEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[userID]
	if ok && m.now().Before(e.expiresAt) {
		return e, true
	}
	if ok {
		delete(m.sessions, userID)
	}
	if !create {
		return nil, false
	}

	e = &memoryEntry{
		session:   model.NewSession(userID),
		expiresAt: m.now().Add(m.ttl),
	}
	e.session.LastActivity = m.now().UTC()
	m.sessions[userID] = e
	return e, true
}

// Get возвращает копию сессии пользователя или ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, userID int64) (*model.Session, error) {
	e, ok := m.entry(userID, false)
	if !ok {
		return nil, ErrNotFound
	}

	e.userMu.Lock()
	defer e.userMu.Unlock()
	return cloneSession(e.session), nil
}

// GetOrCreate возвращает сессию, создавая пустую при её отсутствии.
func (m *MemoryStore) GetOrCreate(_ context.Context, userID int64) (*model.Session, error) {
	e, _ := m.entry(userID, true)

	e.userMu.Lock()
	defer e.userMu.Unlock()
	return cloneSession(e.session), nil
}

// Upsert сохраняет сессию и продлевает её TTL.
func (m *MemoryStore) Upsert(_ context.Context, s *model.Session) error {
	e, _ := m.entry(s.UserID, true)

	e.userMu.Lock()
	defer e.userMu.Unlock()

	snap := cloneSession(s)
	snap.LastActivity = m.now().UTC()
	e.session = snap

	m.mu.Lock()
	e.expiresAt = m.now().Add(m.ttl)
	m.mu.Unlock()
	return nil
}

// Update атомарно применяет fn к актуальному значению сессии.
func (m *MemoryStore) Update(_ context.Context, userID int64, fn func(*model.Session) error) (*model.Session, error) {
	e, _ := m.entry(userID, true)

	e.userMu.Lock()
	defer e.userMu.Unlock()

	working := cloneSession(e.session)
	if err := fn(working); err != nil {
		return nil, err
	}

	working.LastActivity = m.now().UTC()
	e.session = working

	m.mu.Lock()
	e.expiresAt = m.now().Add(m.ttl)
	m.mu.Unlock()

	return cloneSession(working), nil
}

// Remove удаляет сессию пользователя.
func (m *MemoryStore) Remove(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

// StartSweep запускает периодическое вытеснение просроченных сессий
// и блокируется до отмены контекста.
func (m *MemoryStore) StartSweep(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.sweep(); n > 0 {
				logger.Info("evicted stale sessions", zap.Int("count", n))
			}
		}
	}
}

func (m *MemoryStore) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var evicted int
	for id, e := range m.sessions {
		if now.After(e.expiresAt) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// cloneSession делает глубокую копию сессии, чтобы обработчики не делили
// изменяемое состояние с хранилищем.
func cloneSession(s *model.Session) *model.Session {
	cp := *s

	cp.Cart.Lines = append([]model.CartLine(nil), s.Cart.Lines...)

	if s.Draft.ScheduledAt != nil {
		at := *s.Draft.ScheduledAt
		cp.Draft.ScheduledAt = &at
	}

	cp.Trails = make(map[string][]int, len(s.Trails))
	for group, ids := range s.Trails {
		cp.Trails[group] = append([]int(nil), ids...)
	}

	return &cp
}
