package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"food-order-desk/config"
	"food-order-desk/dispatcher"
	"food-order-desk/handlers"
	"food-order-desk/middleware"
	"food-order-desk/routes"
	"food-order-desk/services"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, err := config.OpenDB(cfg.DB)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if cfg.SeedDemo {
		if err := config.SeedDemo(db); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		slog.Info("demo data ready")
	}

	store := services.NewGormTicketStore(db)
	tickets := services.NewTicketService(store, services.WithIdleTimeout(cfg.Tickets.IdleTimeout))
	policy := services.NewPolicyService(db,
		services.WithLocation(cfg.Restaurant.Location),
		services.WithDefaultETA(cfg.Restaurant.DefaultETAMinutes))
	orders := services.NewOrderService(db, store, policy)
	h := handlers.New(tickets, orders, policy, dispatcher.New(tickets, orders, policy))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := services.NewSweeper(tickets, cfg.Tickets.SweepInterval, slog.Default())
	sweepDone := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(sweepDone)
	}()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.CORS(), middleware.RequestID())
	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "db_driver", cfg.DB.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		stop()
		<-sweepDone
		return fmt.Errorf("serve http: %w", err)
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	<-sweepDone
	return nil
}
