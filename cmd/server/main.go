package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devsquare/internal/config"
	"devsquare/internal/db"
	"devsquare/internal/logger"
	"devsquare/internal/middleware"
	"devsquare/internal/router"
	"devsquare/internal/services"
	"devsquare/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := os.Getenv("DEVSQUARE_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Configure(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize record store
	store, err := db.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open record store")
	}
	defer store.Close()

	svc := services.New(db.NewCollections(store), services.Options{
		SessionTTL: cfg.SessionTTL(),
		Hasher:     utils.BcryptHasher{Cost: cfg.Auth.BcryptCost},
		Logger:     log,
	})

	if cfg.Admin.Username != "" {
		if _, err := svc.Auth.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.DisplayName); err != nil {
			log.Fatal().Err(err).Str("username", cfg.Admin.Username).Msg("failed to seed admin account")
		}
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxy); err != nil {
		log.Fatal().Err(err).Msg("invalid trusted proxies")
	}

	// Setup sessions; the cookie only carries the opaque session token
	cookieStore := cookie.NewStore([]byte(cfg.Session.Secret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	// Middleware
	r.Use(logger.GinLogger(log))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(sessions.Sessions(cfg.Session.CookieName, cookieStore))
	r.Use(middleware.LoadUser(svc))

	router.RegisterRoutes(r, svc, middleware.NewIPRateLimiter(cfg.Server.AuthRateRPM, time.Minute))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Driver).Msg("devsquare server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
