package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-admin/internal/courseform"
	"github.com/noah-isme/course-admin/internal/gateway"
	"github.com/noah-isme/course-admin/pkg/config"
	"github.com/noah-isme/course-admin/pkg/logger"
)

func main() {
	baseURL := flag.String("api", "", "course API base URL (overrides COURSE_API_BASE_URL)")
	token := flag.String("token", "", "bearer token (overrides COURSE_API_TOKEN)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *baseURL != "" {
		cfg.Client.BaseURL = *baseURL
	}
	if *token != "" {
		cfg.Client.Token = *token
	}

	// zap writes to stderr; keep it readable next to the prompt on stdout.
	cfg.Log.Format = "console"
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	client := gateway.NewHTTPClient(gateway.Config{
		BaseURL: cfg.Client.BaseURL,
		Token:   cfg.Client.Token,
		Timeout: cfg.Client.Timeout,
	}, nil, logr.Named("gateway"))
	ctrl := courseform.NewController(client, validator.New(), logr.Named("courseform"), cfg.Client.DefaultInstructorID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logr.Info("course form ready", zap.String("api", cfg.Client.BaseURL))
	s := &session{ctrl: ctrl, out: os.Stdout}
	_ = ctrl.LoadCourses(ctx)
	s.printStatus()
	if err := s.run(ctx, os.Stdin); err != nil {
		logr.Error("input closed", zap.Error(err))
	}
}
