// Package handler содержит HTTP-обработчики операторского API и вебхука бота.
package handler

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/grillpoint/grillpoint-bot/internal/middleware"
	"github.com/grillpoint/grillpoint-bot/internal/model"
	"github.com/grillpoint/grillpoint-bot/internal/telegram"
)

const defaultListLimit = 50

// UpdateSink принимает входящие события Bot API.
type UpdateSink interface {
	HandleUpdate(ctx context.Context, upd telegram.Update)
}

// OrderLister отдаёт последние заказы для операторского API.
type OrderLister interface {
	ListOrders(ctx context.Context, limit int) ([]model.Order, error)
}

// ReviewLister отдаёт последние отзывы для операторского API.
type ReviewLister interface {
	Recent(ctx context.Context, limit int) ([]model.Review, error)
}

// Handler реализует HTTP-обработчики бота.
type Handler struct {
	updates        UpdateSink
	orders         OrderLister
	reviews        ReviewLister
	logger         *zap.Logger
	webhookSecret  string
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт обработчик HTTP-запросов.
func NewHandler(updates UpdateSink, orders OrderLister, reviews ReviewLister, logger *zap.Logger, webhookSecret string, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		updates:        updates,
		orders:         orders,
		reviews:        reviews,
		logger:         logger,
		webhookSecret:  webhookSecret,
		authMiddleware: auth,
	}
}

// Health отвечает на проверку живости.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Webhook принимает событие Bot API. Секрет в пути сверяется с настроенным,
// как и заголовок X-Telegram-Bot-Api-Secret-Token, который Telegram шлёт
// после setWebhook с secret_token; несовпадение любого из них неотличимо от
// несуществующего маршрута. Событие обрабатывается асинхронно: Telegram ждёт
// только подтверждения приёма.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	secret := chi.URLParam(r, "secret")
	if h.webhookSecret == "" || !hmac.Equal([]byte(secret), []byte(h.webhookSecret)) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	if token := r.Header.Get("X-Telegram-Bot-Api-Secret-Token"); token != "" && !hmac.Equal([]byte(token), []byte(h.webhookSecret)) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	var upd telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	go h.updates.HandleUpdate(context.Background(), upd)

	w.WriteHeader(http.StatusOK)
}

// GetOrders возвращает последние заказы.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), listLimit(r))
	if err != nil {
		h.logger.Error("list orders", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, orders)
}

// GetReviews возвращает последние отзывы.
func (h *Handler) GetReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.Recent(r.Context(), listLimit(r))
	if err != nil {
		h.logger.Error("list reviews", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	writeJSON(w, reviews)
}

func listLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
