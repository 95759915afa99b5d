package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/clinic"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/config"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/lifecycle"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/orchestrator"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/permission"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/reconcile"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/server"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/sweepqueue"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/taskstore"
)

func main() {
	cfg, err := config.LoadRuntime()
	if err != nil {
		log.Fatalf("load runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := taskstore.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("task store: %v", err)
	}
	defer pool.Close()
	store := taskstore.NewPostgres(pool)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()
	queue := sweepqueue.New(rdb)

	clinicClient := clinic.NewClient(cfg.ClinicBaseURL, cfg.ClinicAPIKey, cfg.ClinicTimeout)
	guard := permission.NewGuard(store)
	engine := lifecycle.New(store, clinicClient, guard, queue, cfg.Location)
	reconciler := reconcile.New(clinicClient, cfg.RecordMatchTolerance, cfg.Location)
	loader := orchestrator.New(store, engine, reconciler, cfg.Location)

	go sweepqueue.NewWorker(queue, store).Run(ctx)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.New(loader, engine, reconciler, guard, store, cfg.Location).Router(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("task service listening on %s (tz=%s, tolerance=%dd)", cfg.HTTPAddr, cfg.Location, cfg.RecordMatchTolerance)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped: %v", err)
	}
	log.Println("server exited")
}
