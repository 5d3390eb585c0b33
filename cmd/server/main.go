// cmd/server/main.go
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

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/storefront-api/internal/bootstrap"
	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/i18n"
	"github.com/storefront-labs/storefront-api/internal/middleware"
	"github.com/storefront-labs/storefront-api/internal/router"
	"github.com/storefront-labs/storefront-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := utils.NewLogger("storefront-api", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.LocalesPath, cfg.I18n.DefaultLocale); err != nil {
		log.WithError(err).Fatal("Failed to initialize i18n")
	}

	st, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize store")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to close store")
		}
	}()

	events := bootstrap.NewEventPublisher(cfg, log)
	defer events.Close()

	revoker, closeRevoker := bootstrap.NewTokenRevoker(ctx, cfg, log)
	defer closeRevoker()

	svc, err := bootstrap.NewServices(cfg, log, st, events, revoker)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize services")
	}

	if cfg.Admin.Password != "" {
		created, err := svc.Auth.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.WithError(err).Warn("Failed to ensure admin account")
		} else if created {
			log.WithField("email", cfg.Admin.Email).Info("Admin account created")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiters := middleware.DefaultLimiters()
	limiters.Run(ctx)

	r := router.New(router.Deps{
		Config:    cfg,
		Log:       log,
		Store:     st,
		Limiters:  limiters,
		Auth:      svc.Auth,
		Queries:   svc.Queries,
		Products:  svc.Products,
		Carts:     svc.Carts,
		Checkouts: svc.Checkouts,
		Tickets:   svc.Tickets,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Server.Port, "store": cfg.Store.Driver}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	// Create a deadline for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
		os.Exit(1)
	}

	log.Info("Server exited")
}
