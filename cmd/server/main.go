package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/qqbek24/transport-request-form-app/internal/api"
	"github.com/qqbek24/transport-request-form-app/internal/attachment"
	"github.com/qqbek24/transport-request-form-app/internal/audit"
	"github.com/qqbek24/transport-request-form-app/internal/config"
	"github.com/qqbek24/transport-request-form-app/internal/intake"
	"github.com/qqbek24/transport-request-form-app/internal/record"
	"github.com/qqbek24/transport-request-form-app/internal/requestid"
	"github.com/qqbek24/transport-request-form-app/internal/validation"
)

func main() {
	// Setup structured JSON logging.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ref, err := config.LoadReference(cfg.ReferencePath)
	if err != nil {
		slog.Error("failed to load reference data", "error", err, "path", cfg.ReferencePath)
		os.Exit(1)
	}
	slog.Info("reference data loaded",
		"countries", len(ref.Countries),
		"border_crossings", len(ref.BorderCrossings),
	)

	records, err := record.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open record store", "error", err, "db_path", cfg.DBPath)
		os.Exit(1)
	}
	defer func() {
		if err := records.Close(); err != nil {
			slog.Error("failed to close record store", "error", err)
		}
	}()
	slog.Info("record store opened", "db_path", cfg.DBPath)

	validator := validation.New(ref.Countries, ref.BorderCrossings, validation.Options{
		MaxAttachmentBytes: cfg.MaxAttachmentBytes,
		MaxAttachments:     cfg.MaxAttachmentsPerRequest,
	})

	auditLogger := audit.New(cfg.LogDir, logger)

	service := intake.New(intake.Options{
		Validator:      validator,
		IDs:            requestid.New(time.UTC),
		Attachments:    attachment.NewStore(cfg.AttachmentsDir),
		Records:        records,
		Audit:          auditLogger,
		Log:            logger,
		StorageTimeout: cfg.StorageTimeout,
	})

	submitHandler := api.NewSubmitHandler(service, auditLogger, logger)
	listHandler := api.NewListHandler(records, logger)

	// Setup router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/api/submit", submitHandler.Submit)
	r.Get("/api/requests", listHandler.List)
	r.Get("/api/health", api.Health)
	r.Get("/", api.Health)

	addr := fmt.Sprintf(":%s", cfg.Port)
	slog.Info("starting transport request server", "addr", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		slog.Info("shutting down server")
		if err := server.Close(); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
