package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"visit_tracker/internal/config"
	"visit_tracker/internal/controllers"
	"visit_tracker/internal/directory"
	"visit_tracker/internal/feed"
	"visit_tracker/internal/logger"
	"visit_tracker/internal/middleware"
	"visit_tracker/internal/routes"
	"visit_tracker/internal/visits"
)

func main() {
	settings := config.Load()

	// Initialize structured logging to stdout and file
	logger.Setup(settings.LogFile, settings.LogLevel)

	db, err := config.OpenDB(settings)
	if err != nil {
		logrus.WithError(err).Fatal("Database setup failed")
	}

	policy, err := visits.ParsePolicy(settings.IdentityFields)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid IDENTITY_FIELDS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := directory.New(db)
	hub := feed.NewHub()
	engine := visits.NewEngine(dir, policy, settings.VisitThreshold)
	engine.Notifier = hub

	tokens := middleware.NewTokens(settings.JWTSecret, settings.JWTTTL)
	auth := &controllers.AuthController{DB: db, Tokens: tokens}
	if err := auth.EnsureSuperAdmin(ctx, settings.SuperAdminUsername, settings.SuperAdminPassword); err != nil {
		logrus.WithError(err).Fatal("Could not create bootstrap superadmin")
	}

	r := routes.SetupRouter(routes.Dependencies{
		Tokens:  tokens,
		Auth:    auth,
		Visits:  &controllers.VisitController{Engine: engine},
		Drivers: &controllers.DriverController{Directory: dir},
		Feed:    &controllers.VisitFeedController{Hub: hub, AllowedOrigins: settings.CORSOrigins},
	})

	srv := &http.Server{
		Addr:              settings.HTTPAddr,
		Handler:           middleware.EnableCORS(settings.CORSOrigins, r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		logrus.WithFields(logrus.Fields{
			"addr":            settings.HTTPAddr,
			"identity_fields": policy.String(),
			"threshold":       engine.Threshold,
		}).Info("🚀 Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Fatal("Server stopped with error")
	}
	logrus.Info("Server stopped")
}
