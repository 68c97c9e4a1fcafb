// Package order финализирует подтверждённые заказы: собирает неизменяемый
// снимок корзины, сохраняет его и уведомляет оператора.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grillpoint/grillpoint-bot/internal/model"
)

var (
	// ErrEmptyCart возвращается при попытке оформить пустую корзину.
	ErrEmptyCart = errors.New("cart is empty")
)

// Catalog — доступ к позициям меню.
type Catalog interface {
	ItemByID(id string) (model.MenuItem, bool)
}

// Repository — персистентное хранилище заказов.
type Repository interface {
	SaveOrder(ctx context.Context, o *model.Order) error
}

// Notifier уведомляет оператора о новом заказе.
type Notifier interface {
	NotifyOrder(ctx context.Context, o *model.Order) error
}

// Service превращает сессии в заказы.
type Service struct {
	catalog  Catalog
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService создаёт финализатор заказов.
func NewService(catalog Catalog, repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		catalog:  catalog,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Finalize собирает заказ из сессии, сохраняет его и сбрасывает сессию.
// Позиции, исчезнувшие из каталога с момента добавления, молча опускаются;
// если не осталось ни одной, заказ не создаётся. Ошибка уведомления
// оператора заказ не отменяет.
func (s *Service) Finalize(ctx context.Context, sess *model.Session) (*model.Order, error) {
	if sess.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := make([]model.OrderLine, 0, len(sess.Cart.Lines))
	for _, cl := range sess.Cart.Lines {
		item, ok := s.catalog.ItemByID(cl.ItemID)
		if !ok {
			s.logger.Warn("cart line dropped: item gone from catalog",
				zap.String("item_id", cl.ItemID),
				zap.Int64("user_id", sess.UserID))
			continue
		}
		lines = append(lines, model.OrderLine{
			ItemID:       item.ID,
			ItemName:     item.Name,
			UnitKopecks:  item.PriceKopecks,
			WeightGrams:  item.WeightGrams,
			Quantity:     cl.Quantity,
			TotalKopecks: item.PriceKopecks * int64(cl.Quantity),
		})
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	order := &model.Order{
		ID:        uuid.NewString(),
		UserID:    sess.UserID,
		UserName:  sess.UserNick,
		Lines:     lines,
		Delivery:  sess.Draft,
		Comment:   sess.Comment,
		Status:    model.OrderStatusCreated,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.SaveOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	if err := s.notifier.NotifyOrder(ctx, order); err != nil {
		s.logger.Error("notify operator", zap.String("order_id", order.ID), zap.Error(err))
	}

	sess.Reset()
	return order, nil
}
