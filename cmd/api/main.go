package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/harborstay/reservations/internal/http/handlers"
	mw "github.com/harborstay/reservations/internal/http/middleware"
	"github.com/harborstay/reservations/internal/notify"
	"github.com/harborstay/reservations/internal/platform/mailer"
	"github.com/harborstay/reservations/internal/repo/postgres"
	"github.com/harborstay/reservations/internal/service"
	"github.com/harborstay/reservations/pkg/cache"
	"github.com/harborstay/reservations/pkg/config"
	"github.com/harborstay/reservations/pkg/database"
	"github.com/harborstay/reservations/pkg/events"
	"github.com/harborstay/reservations/pkg/logger"
	pkgmw "github.com/harborstay/reservations/pkg/middleware"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		// Metrics caching is optional; run without it.
		logger.Warn("Failed to connect to redis, metrics cache disabled", "error", err)
		redisClient = nil
	}

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Repositories
	reservationsRepo := postgres.NewReservationsRepo(pool)
	listingsRepo := postgres.NewListingsRepo(pool)
	usersRepo := postgres.NewUsersRepo(pool)
	reviewsRepo := postgres.NewReviewsRepo(pool)
	paymentsRepo := postgres.NewPaymentsRepo(pool)
	idempotencyRepo := postgres.NewIdempotencyRepo(pool)

	// Services
	reservationSvc := service.NewReservationService(reservationsRepo, listingsRepo, usersRepo, idempotencyRepo, eventBus, cfg)
	metricsSvc := service.NewMetricsService(reservationsRepo, listingsRepo, reviewsRepo, redisClient, cfg.Booking.MetricsCacheTTL)
	paymentsSvc := service.NewPaymentsService(paymentsRepo, reservationsRepo, eventBus)

	// Mailer + notification consumer
	var mailSvc mailer.Service
	if cfg.Email.DevMode || cfg.Email.MailerSendKey == "" {
		mailSvc = mailer.NewDevMailer()
	} else {
		mailSvc = mailer.NewMailerSend(cfg.Email.MailerSendKey, "Harborstay", cfg.Email.From)
	}
	notifier := notify.NewConsumer(usersRepo, reservationsRepo, mailSvc)

	// Booking creation is throttled per client IP.
	limiter := mw.NewRateLimiter(pool, mw.RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
		KeyFunc:  mw.BookingRateLimitKeyFunc,
	})

	reservationsHandler := handlers.NewReservationsHandler(reservationSvc, cfg.Auth.JWTSecret, limiter)
	listingsHandler := handlers.NewListingsHandler(reservationSvc, metricsSvc)
	paymentsHandler := handlers.NewPaymentsHandler(eventBus, cfg.Stripe.WebhookSecret)

	r := chi.NewRouter()
	r.Use(pkgmw.RequestID)
	r.Use(pkgmw.ServiceName("reservations"))
	r.Use(pkgmw.Logging)
	r.Use(pkgmw.CORS)
	r.Use(pkgmw.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Mount("/reservations", reservationsHandler.Routes())
		r.Mount("/listings", listingsHandler.Routes())
		r.Mount("/payments", paymentsHandler.Routes())
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting reservations service", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := paymentsSvc.StartConsumer(eventBus, cfg.NATS.QueueName); err != nil {
			return err
		}
		if err := notifier.Start(eventBus, cfg.NATS.QueueName); err != nil {
			return err
		}
		<-gctx.Done()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("Shutting down reservations service...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Reservations service error", "error", err)
		os.Exit(1)
	}
}
