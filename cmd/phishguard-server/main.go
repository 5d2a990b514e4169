package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/phishguard/internal/config"
	"github.com/jmerrifield20/phishguard/internal/handler"
	"github.com/jmerrifield20/phishguard/internal/logging"
	"github.com/jmerrifield20/phishguard/internal/threat"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("PHISHGUARD_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "phishguard-server: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "phishguard-server: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.File == "" {
		logger.Warn("no config file found, using defaults and env vars")
	} else {
		logger.Info("config loaded", zap.String("file", cfg.File))
	}

	// ── Scorer ────────────────────────────────────────────────────────────────
	scorer, err := threat.NewRuleBasedScorer(
		threat.WithRuleSet(cfg.Rules),
		threat.WithLogger(logger.Named("threat")),
	)
	if err != nil {
		return fmt.Errorf("build scorer: %w", err)
	}
	logger.Info("scorer ready",
		zap.Strings("rules", scorer.RuleNames()),
		zap.Int("keywords", len(cfg.Rules.Keywords)),
		zap.Int("brands", len(cfg.Rules.Brands)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── HTTP Router ───────────────────────────────────────────────────────────
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(ctx, handler.RouterConfig{
		CORSOrigins:  cfg.Server.CORSOrigins,
		RateLimitRPS: cfg.Server.RateLimitRPS,
	}, scorer, logger)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("phishguard HTTP listening", zap.Int("port", cfg.Server.Port))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// ── Graceful shutdown ──────────────────────────────────────────────────────
	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP listen: %w", err)
	case <-quit:
	}
	logger.Info("shutting down phishguard...")
	cancel()

	shutCtx, shutCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutCancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	logger.Info("phishguard stopped")
	return nil
}
