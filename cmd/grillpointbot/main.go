// Package main запускает телеграм-бота приёма заказов и операторский HTTP-сервер.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/grillpoint/grillpoint-bot/internal/config"
	"github.com/grillpoint/grillpoint-bot/internal/flow"
	"github.com/grillpoint/grillpoint-bot/internal/geo"
	"github.com/grillpoint/grillpoint-bot/internal/geocoder"
	"github.com/grillpoint/grillpoint-bot/internal/handler"
	"github.com/grillpoint/grillpoint-bot/internal/menu"
	"github.com/grillpoint/grillpoint-bot/internal/middleware"
	"github.com/grillpoint/grillpoint-bot/internal/model"
	"github.com/grillpoint/grillpoint-bot/internal/notify"
	"github.com/grillpoint/grillpoint-bot/internal/order"
	"github.com/grillpoint/grillpoint-bot/internal/repository"
	"github.com/grillpoint/grillpoint-bot/internal/session"
	"github.com/grillpoint/grillpoint-bot/internal/telegram"
	"github.com/grillpoint/grillpoint-bot/internal/trail"
)

const (
	pollTimeoutSec   = 30
	sessionSweepStep = 10 * time.Minute
)

// storage объединяет хранилище заказов и отзывов: его реализуют и
// PostgresRepository, и MemoryRepository.
type storage interface {
	SaveOrder(ctx context.Context, o *model.Order) error
	ListOrders(ctx context.Context, limit int) ([]model.Order, error)
	Add(ctx context.Context, review *model.Review) error
	Recent(ctx context.Context, limit int) ([]model.Review, error)
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	// .env нужен только для локального запуска, его отсутствие не ошибка.
	_ = godotenv.Load()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	var repo storage
	if cfg.DatabaseURI != "" {
		pg, err := repository.NewPostgresRepository(cfg.DatabaseURI)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
		defer pg.Close()
		repo = pg
	} else {
		sugar.Info("DATABASE_URI is empty, orders and reviews are kept in memory")
		repo = repository.NewMemoryRepository()
	}

	var sessions session.Store
	var memSessions *session.MemoryStore
	if cfg.RedisAddr != "" {
		rs, err := session.NewRedisStore(cfg.RedisAddr, cfg.SessionTTL)
		if err != nil {
			sugar.Fatalw("redis initialization error", "error", err.Error())
		}
		defer rs.Close()
		sessions = rs
	} else {
		memSessions = session.NewMemoryStore(cfg.SessionTTL)
		sessions = memSessions
	}

	catalog, err := menu.NewService(cfg.MenuPath)
	if err != nil {
		sugar.Fatalw("menu load error", "path", cfg.MenuPath, "error", err.Error())
	}

	bot := telegram.NewClient(cfg.BotToken, "")
	trails := trail.NewManager(bot, logger)

	engine := flow.New(flow.Deps{
		Bot:      bot,
		Sessions: sessions,
		Catalog:  catalog,
		Resolver: geocoder.NewClient(cfg.GeocoderAddr),
		Zone:     geo.DeliveryZone(),
		Trails:   trails,
		Orders:   order.NewService(catalog, repo, notify.NewAdminNotifier(bot, cfg.AdminChatID), logger),
		Reviews:  repo,
		Logger:   logger,
	}, flow.Options{
		StaleAfter:   cfg.StaleAfter,
		ZoneImageURL: cfg.ZoneImageURL,
	})

	h := handler.NewHandler(engine, repo, repo, logger, cfg.WebhookSecret, middleware.NewAuthMiddleware(cfg.OpsToken))

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: h.SetupRouter(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if memSessions != nil {
		g.Go(func() error {
			memSessions.StartSweep(ctx, sessionSweepStep, logger)
			return nil
		})
	}

	if cfg.WebhookURL != "" {
		// Telegram должен попасть на маршрут /webhook/{secret}, поэтому путь
		// с секретом достраивается к публичному базовому URL.
		hookURL := strings.TrimSuffix(cfg.WebhookURL, "/") + "/webhook/" + cfg.WebhookSecret
		if err := bot.SetWebhook(ctx, hookURL, cfg.WebhookSecret); err != nil {
			sugar.Fatalw("webhook registration error", "error", err.Error())
		}
		sugar.Infow("webhook registered", "url", hookURL)
	} else {
		g.Go(func() error {
			sugar.Info("starting long polling")
			runPolling(ctx, bot, engine, sugar)
			return nil
		})
	}

	g.Go(func() error {
		sugar.Infow("starting grillpoint server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

// runPolling крутит цикл getUpdates до отмены контекста. Ошибки сети не
// фатальны: после паузы опрос продолжается с того же offset.
func runPolling(ctx context.Context, bot *telegram.Client, engine *flow.Engine, sugar *zap.SugaredLogger) {
	var offset int64
	for {
		updates, err := bot.GetUpdates(ctx, offset, pollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			sugar.Errorw("get updates", "error", err.Error())
			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * time.Second):
			}
			continue
		}
		for _, upd := range updates {
			engine.HandleUpdate(ctx, upd)
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
		}
	}
}
