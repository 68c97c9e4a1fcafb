// Package session содержит хранилище сессий диалогов с TTL-вытеснением.
package session

import (
	"context"
	"errors"

	"github.com/grillpoint/grillpoint-bot/internal/model"
)

// ErrNotFound возвращается, если сессия отсутствует или уже вытеснена.
var ErrNotFound = errors.New("session not found")

// Store описывает контракт хранилища сессий.
//
// Update выполняет атомарный цикл «прочитать-изменить-сохранить»: fn получает
// актуальную (при необходимости только что созданную) сессию, конкурирующие
// Update той же сессии сериализуются. Это закрывает потерю обновлений при
// одновременных действиях с двух устройств.
type Store interface {
	// Get возвращает сессию пользователя или ErrNotFound.
	Get(ctx context.Context, userID int64) (*model.Session, error)
	// GetOrCreate возвращает сессию, создавая пустую при отсутствии.
	GetOrCreate(ctx context.Context, userID int64) (*model.Session, error)
	// Upsert сохраняет сессию с обновлением отметки активности.
	Upsert(ctx context.Context, s *model.Session) error
	// Update атомарно применяет fn к актуальной сессии и сохраняет результат.
	Update(ctx context.Context, userID int64, fn func(*model.Session) error) (*model.Session, error)
	// Remove удаляет сессию.
	Remove(ctx context.Context, userID int64) error
}
