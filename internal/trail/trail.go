// Package trail управляет жизненным циклом эфемерных сообщений бота:
// сообщения одного шага диалога копятся в именованной группе и удаляются
// сводно, когда шаг заканчивается.
package trail

import (
	"context"

	"go.uber.org/zap"

	"github.com/grillpoint/grillpoint-bot/internal/model"
)

// Deleter удаляет одно сообщение чата.
type Deleter interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// Manager выполняет сводное удаление групп сообщений.
type Manager struct {
	deleter Deleter
	logger  *zap.Logger
}

// NewManager создаёт менеджер поверх транспорта, умеющего удалять сообщения.
func NewManager(deleter Deleter, logger *zap.Logger) *Manager {
	return &Manager{deleter: deleter, logger: logger}
}

// Retract удаляет все сообщения группы и очищает её. Ошибки удаления
// отдельных сообщений (уже удалено, слишком старое) игнорируются, поэтому
// повторный вызов безопасен и ничего дополнительно не делает.
func (m *Manager) Retract(ctx context.Context, chatID int64, s *model.Session, group string) {
	ids := s.Trails[group]
	if len(ids) == 0 {
		return
	}

	for _, id := range ids {
		if err := m.deleter.DeleteMessage(ctx, chatID, id); err != nil {
			m.logger.Debug("delete tracked message",
				zap.Int64("chatID", chatID),
				zap.Int("messageID", id),
				zap.Error(err))
		}
	}

	delete(s.Trails, group)
}

// RetractAll удаляет сообщения всех групп сессии.
func (m *Manager) RetractAll(ctx context.Context, chatID int64, s *model.Session) {
	for group := range s.Trails {
		m.Retract(ctx, chatID, s, group)
	}
}

// Clear очищает группу без удаления сообщений.
func (m *Manager) Clear(s *model.Session, group string) {
	delete(s.Trails, group)
}
