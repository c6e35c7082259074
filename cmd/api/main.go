package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	pg "vet-clinic-api/internal/adapters/storage/postgres"
	"vet-clinic-api/internal/config"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/platform/mail"
	"vet-clinic-api/internal/router"
)

// @title Vet Clinic API
// @version 1.0
// @description API de agenda y fichas clínicas para clínicas veterinarias.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Options{
		Level: cfg.LogLevel,
		Env:   cfg.Server.Env,
		App:   cfg.AppName,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		defer db.Close()
		log.Info("using postgres storage")
	} else {
		log.Info("using in-memory storage")
	}

	var mailer mail.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		mailer = mail.NewLogMailer(log)
	}

	handler, svcs := router.NewRouter(router.Options{
		Config: cfg,
		Logger: log,
		DB:     db,
		Mailer: mailer,
	})

	if cfg.Admin.Email != "" {
		if err := svcs.Users.SeedAdmin(context.Background(), cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Warn("admin seed failed", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
