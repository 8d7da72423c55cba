// Package pixelpick собирает основное приложение: хранилище, миграции,
// кеш, очередь уведомлений, бизнес-сервисы и HTTP-сервер.
package pixelpick

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/pixelpick/pixelpick-backend/internal/cache"
	"github.com/pixelpick/pixelpick-backend/internal/config"
	"github.com/pixelpick/pixelpick-backend/internal/lib/jwt"
	"github.com/pixelpick/pixelpick-backend/internal/migrations"
	"github.com/pixelpick/pixelpick-backend/internal/paymentprovider"
	"github.com/pixelpick/pixelpick-backend/internal/rabbitmq"
	authservice "github.com/pixelpick/pixelpick-backend/internal/services/auth"
	catalogservice "github.com/pixelpick/pixelpick-backend/internal/services/catalog"
	paymentservice "github.com/pixelpick/pixelpick-backend/internal/services/payment"
	profileservice "github.com/pixelpick/pixelpick-backend/internal/services/profile"
	progressservice "github.com/pixelpick/pixelpick-backend/internal/services/progress"
	recommendservice "github.com/pixelpick/pixelpick-backend/internal/services/recommend"
	"github.com/pixelpick/pixelpick-backend/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	emailPublisher := rabbitmq.NewEmailPublisher(ch)
	providerClient := paymentprovider.NewClient(cfg.StripeSecretKey)

	authService := authservice.New(db, emailPublisher, jwtMaker, logger, cfg.BaseURL)
	profileService := profileservice.New(db, logger)
	catalogService := catalogservice.New(db, cacheRedis, logger)
	progressService := progressservice.New(db, cacheRedis, logger)
	recommendService := recommendservice.New(db, cacheRedis, logger)
	paymentService := paymentservice.New(db, providerClient, logger, cfg.PlanAmount, cfg.PlanCurrency)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:      authService,
		Profile:   profileService,
		Catalog:   catalogService,
		Progress:  progressService,
		Recommend: recommendService,
		Payment:   paymentService,
	}, jwtMaker, cfg.StripeWebhookSecret)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if chErr := a.ch.Close(); chErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", chErr))
		}
		if connErr := a.conn.Close(); connErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", connErr))
		}
		a.db.DB.Close()
		return err
	}
}
