package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/app"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/config"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/rules"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

const shutdownTimeout = 15 * time.Second

func main() {
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	configFile := flags.String("config", "", "path to a YAML config file")
	envFile := flags.String("env-file", ".env", "path to a .env file")
	flags.Int("port", 0, "listen port")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(
		config.WithConfigFile(*configFile),
		config.WithEnvFile(*envFile),
		config.WithFlag("server.port", flags.Lookup("port")),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Configure(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	ctx := context.Background()
	log := logging.NewLogger(ctx)

	orchestrator, err := app.NewOrchestrator(ctx, cfg)
	if err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(orchestrator, rules.NewFileSource(cfg.Rules.Path), server.Options{
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s (base path %s)", srv.Addr, cfg.Server.BasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	log.Info("server stopped")
}
