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
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/staynest/staynest-api/internal/config"
	"github.com/staynest/staynest-api/internal/domain/auth"
	"github.com/staynest/staynest-api/internal/domain/booking"
	"github.com/staynest/staynest-api/internal/domain/paymentmethod"
	"github.com/staynest/staynest-api/internal/domain/property"
	"github.com/staynest/staynest-api/internal/domain/user"
	"github.com/staynest/staynest-api/internal/domain/wallet"
	"github.com/staynest/staynest-api/internal/middleware"
	"github.com/staynest/staynest-api/internal/pkg/database"
	"github.com/staynest/staynest-api/internal/pkg/jwt"
	"github.com/staynest/staynest-api/internal/pkg/logger"
	"github.com/staynest/staynest-api/internal/pkg/password"
	"github.com/staynest/staynest-api/internal/pkg/ratelimit"
	pkgresponse "github.com/staynest/staynest-api/internal/pkg/response"
	"github.com/staynest/staynest-api/internal/pkg/securestore"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		Service:     "staynest-api",
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("storage_mode", cfg.StorageMode).
		Msg("Starting StayNest API")

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	db, err := database.NewPostgres(startCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisClient, err := database.NewRedis(startCtx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	app := newApp(cfg, db, redisClient)
	defer app.close()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

type app struct {
	router     http.Handler
	drafts     *booking.Drafts
	properties *property.CachedRepository
}

func (a *app) close() {
	a.drafts.Close()
	a.properties.Close()
}

// newApp wires repositories, services and routes. A nil redis client keeps
// drafts in process memory.
func newApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client) *app {
	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	propertyRepo := property.NewCachedRepository(property.NewRepository(db), cfg.PropertyCacheTTL)
	bookingRepo := booking.NewRepository(db)
	paymentMethodRepo := paymentmethod.NewRepository(db)
	walletRepo := wallet.NewRepository(db)

	// ---------- Draft storage ----------
	var kv securestore.KV = securestore.NewMemoryKV()
	if redisClient != nil {
		kv = securestore.NewRedisKV(redisClient, "staynest:")
	}
	storage := securestore.New(kv,
		securestore.KeySourceFor(securestore.Mode(cfg.StorageMode), cfg.StoragePassphrase, cfg.StorageSalt),
		securestore.WithDefaultTTL(cfg.DraftTTL),
	)
	drafts := booking.NewDrafts(storage, cfg.DraftTTL)

	// ---------- Services ----------
	authService := auth.NewService(userRepo, jwtService)
	paymentMethodService := paymentmethod.NewService(paymentMethodRepo)
	walletService := wallet.NewService(walletRepo)

	flow := booking.NewFlow(
		ratelimit.NewFixedWindow(cfg.BookingRateLimitMax, cfg.BookingRateLimitWindow),
		&authAccountAdapter{service: authService},
		bookingRepo,
		paymentMethodService,
	)
	bookingService := booking.NewService(drafts, propertyRepo, bookingRepo, flow)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	bookingHandler := booking.NewHandler(bookingService)
	paymentMethodHandler := paymentmethod.NewHandler(paymentMethodService)
	walletHandler := wallet.NewHandler(walletService)

	authMiddleware := middleware.Auth(jwtService)
	optionalAuth := middleware.OptionalAuth(jwtService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.RealIP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))

		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/bookings", bookingHandler.Routes(authMiddleware, optionalAuth))
		r.Mount("/payment-methods", paymentMethodHandler.Routes(authMiddleware))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware))
	})

	return &app{router: r, drafts: drafts, properties: propertyRepo}
}

// authAccountAdapter signs guests up through the auth service
type authAccountAdapter struct {
	service *auth.Service
}

func (a *authAccountAdapter) CreateAccount(ctx context.Context, acc booking.NewAccount) (*booking.CreatedAccount, error) {
	resp, err := a.service.Register(ctx, &auth.RegisterRequest{
		Email:     acc.Email,
		Password:  acc.Password,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailAlreadyExists):
			return nil, booking.ErrDuplicateEmail
		case errors.Is(err, password.ErrTooLong):
			return nil, &booking.RejectedError{Message: "password must be at most 72 bytes"}
		}
		return nil, err
	}

	return &booking.CreatedAccount{
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
		AccessToken: resp.Tokens.AccessToken,
	}, nil
}
