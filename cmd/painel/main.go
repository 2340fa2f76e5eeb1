package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"painel/internal/auth"
	"painel/internal/backend"
	"painel/internal/cache"
	"painel/internal/cli"
	"painel/internal/config"
	"painel/internal/dashboard"
	apphttp "painel/internal/http"
	"painel/internal/log"
	"painel/internal/parser"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	layout, err := config.LoadLayout(cfg.LayoutFile)
	if err != nil {
		cli.Fatal(logger, "Failed to load layout", err, "path", cfg.LayoutFile)
	}
	p, err := parser.New(layout)
	if err != nil {
		cli.Fatal(logger, "Invalid layout", err)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	grid, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize grid backend", err, "backend", cfg.GridBackend)
	}
	if grid.Cleanup != nil {
		defer grid.Cleanup()
	}

	policy, _ := dashboard.ParseStartPolicy(cfg.StartPolicy)
	dash := dashboard.NewService(grid.Reader, p, policy,
		dashboard.WithTimeout(cfg.FetchTimeout),
		dashboard.WithLogger(logger))

	caches := cache.NewManager(logger)

	var gate *auth.Gate
	if cfg.AuthConfigured() {
		provider, err := auth.NewGoTrue(cfg.SupabaseURL, cfg.SupabaseAnonKey, nil)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize identity provider", err)
		}
		gate = auth.NewGate(provider, cfg.AuthCacheTTL,
			auth.WithSecureCookie(cfg.CookieSecure),
			auth.WithGateLogger(logger))
		caches.Register("auth", gate.Cache())
	} else {
		logger.Warn("SUPABASE_URL and SUPABASE_ANON_KEY not set; serving the setup notice")
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Dashboard:        dash,
		Gate:             gate,
		RefetchPerMinute: cfg.RefetchPerMinute,
		Logger:           logger,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to build HTTP server", err)
	}

	// Configure server timeouts and limits. A refetch waits on the download,
	// so writes get the fetch timeout on top.
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10*time.Second + cfg.FetchTimeout
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	caches.StartCleanup(5 * time.Minute)
	defer caches.Stop()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, srv.Shutdown)
	dash.Start(ctx)

	logger.Info("Starting painel server",
		"port", cfg.Port,
		"backend", cfg.GridBackend,
		"auth", cfg.AuthConfigured(),
		"start_policy", string(policy),
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err, "port", cfg.Port)
	}

	cli.WaitForShutdown(done)
	logger.Info("Server stopped gracefully")
}
