// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command recipe-console serves the recipe management console: a
// session-backed JSON view layer over the recipe backend.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/cache"
	"github.com/olegiv/recipe-console/internal/config"
	"github.com/olegiv/recipe-console/internal/form"
	"github.com/olegiv/recipe-console/internal/handler"
	"github.com/olegiv/recipe-console/internal/logging"
	"github.com/olegiv/recipe-console/internal/middleware"
	"github.com/olegiv/recipe-console/internal/query"
	"github.com/olegiv/recipe-console/internal/render"
	"github.com/olegiv/recipe-console/internal/session"
	"github.com/olegiv/recipe-console/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "recipe-console - recipe management console\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RECIPE_API_BASE_URL     Backend API base URL (default: http://localhost:8080/api)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RECIPE_SESSION_SECRET   Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RECIPE_SESSION_DB       SQLite session database path (default: in-memory)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RECIPE_SERVER_PORT      Server port (default: 8081)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RECIPE_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RECIPE_REDIS_URL        Redis URL for a shared query cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RECIPE_DEV_LOGIN        Enable sign-in through the backend's dev token (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("recipe-console %s\n", version.Get().String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.SlogLevel())
	slog.SetDefault(logger)
	slog.Info("starting recipe console", "version", version.Version, "backend", cfg.APIBaseURL)

	// Query cache
	cacheConfig := cache.Config{
		Type:             cache.TypeMemory,
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       cfg.CacheTTL,
		MaxSize:          cfg.CacheMaxSize,
		FallbackToMemory: true,
	}
	if cfg.UseRedisCache() {
		cacheConfig.Type = cache.TypeRedis
	}
	store, cacheInfo, err := cache.New(cacheConfig)
	if err != nil {
		return fmt.Errorf("initializing query cache: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("error closing query cache", "error", err)
		}
	}()
	switch {
	case cacheInfo.IsFallback:
		slog.Warn("query cache initialized", "backend", cacheInfo.Backend, "note", "Redis unavailable, using fallback")
	default:
		slog.Info("query cache initialized", "backend", cacheInfo.Backend)
	}

	// Sessions
	var sessionDB *sql.DB
	if cfg.UseSessionDB() {
		if err := os.MkdirAll(filepath.Dir(cfg.SessionDB), 0o750); err != nil {
			return fmt.Errorf("creating session directory: %w", err)
		}
		sessionDB, err = session.OpenDB(cfg.SessionDB)
		if err != nil {
			return err
		}
		defer func() {
			if err := sessionDB.Close(); err != nil {
				slog.Error("error closing session database", "error", err)
			}
		}()
	}
	sessionManager := session.NewManager(sessionDB, cfg.IsDevelopment())
	tokens := session.NewScsStore(sessionManager)
	slog.Info("session manager initialized", "persistent", sessionDB != nil)

	api := apiclient.New(apiclient.Options{
		BaseURL:   cfg.APIBaseURL,
		Tokens:    tokens,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		OnUnauthorized: func(ctx context.Context) {
			if s := session.FromContext(ctx); s != nil {
				if err := s.Expire(ctx); err != nil {
					slog.ErrorContext(ctx, "failed to expire session", "error", err)
				}
			}
		},
	})
	queries := query.NewClient(store, query.Options{
		StaleTime: cfg.CacheStaleTime,
		Retention: cfg.CacheTTL,
		Retries:   uint64(max(cfg.QueryRetries, 0)),
		Scope:     query.ScopeFromTokens(tokens),
	})

	renderer := render.New(render.Config{SessionManager: sessionManager, IsDev: cfg.IsDevelopment()})

	csrfConfig := middleware.ConsoleCSRFConfig([]byte(cfg.SessionSecret), cfg.ServerAddr(), cfg.IsDevelopment())
	csrfMiddleware := middleware.CSRF(csrfConfig)
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestContext)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.Timeout(30 * time.Second))

	// Metrics are served outside the session and CSRF layers.
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.SkipCSRF("/oauth2/callback"))
		r.Use(csrfMiddleware)
		r.Use(middleware.LoadSession(middleware.SessionConfig{
			Manager: sessionManager,
			Profile: query.Profile(queries, api),
		}))

		handler.MountHealth(r, handler.NewHealthHandler(sessionDB, store, cacheInfo))
		handler.Mount(r, handler.Routes(handler.Deps{
			Renderer:     renderer,
			API:          api,
			Queries:      queries,
			Forms:        form.New(),
			DevLogin:     cfg.DevLogin,
			PollInterval: cfg.PollInterval,
			LoginLimit:   middleware.LoginRateLimit(middleware.DefaultLoginRateLimitConfig()),
		}), renderer)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		render.JSONError(w, http.StatusNotFound, "Not found")
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
