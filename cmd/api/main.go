package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feedbacklab/insight-synthesizer/internal/application"
	appinsights "github.com/feedbacklab/insight-synthesizer/internal/application/insights"
	"github.com/feedbacklab/insight-synthesizer/internal/config"
	aiclient "github.com/feedbacklab/insight-synthesizer/internal/infra/ai/openai"
	"github.com/feedbacklab/insight-synthesizer/internal/infra/httpserver"
	"github.com/feedbacklab/insight-synthesizer/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config; a missing credential halts before any interaction
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	// init model client
	client := aiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	// init service
	svc := &appinsights.Service{
		Client: client,
		Clock:  application.SystemClock{},
	}

	// init router
	health := map[string]middleware.HealthChecker{
		"credential": &middleware.CredentialHealthChecker{APIKey: cfg.OpenAI.APIKey},
	}
	handler := httpserver.NewRouter(svc, cfg.Analysis.PreviewRows, health)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
