package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/grillpoint/grillpoint-bot/internal/model"
)

// MemoryRepository хранит заказы и отзывы в памяти процесса. Используется,
// когда DATABASE_URI не задан: данные живут до перезапуска.
type MemoryRepository struct {
	mu      sync.RWMutex
	orders  []model.Order
	reviews []model.Review
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) SaveOrder(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.orders {
		if existing.ID == o.ID {
			return ErrOrderExists
		}
	}
	r.orders = append(r.orders, *o)
	return nil
}

func (r *MemoryRepository) ListOrders(_ context.Context, limit int) ([]model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Order, 0, limit)
	for i := len(r.orders) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.orders[i])
	}
	return out, nil
}

func (r *MemoryRepository) UpdateOrderStatus(_ context.Context, orderID string, status model.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.orders {
		if r.orders[i].ID == orderID {
			r.orders[i].Status = status
			break
		}
	}
	return nil
}

func (r *MemoryRepository) Add(_ context.Context, review *model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *MemoryRepository) Recent(_ context.Context, limit int) ([]model.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Review, 0, limit)
	for i := len(r.reviews) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.reviews[i])
	}
	return out, nil
}
