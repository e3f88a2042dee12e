package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cipherdrop/relay-service/config"
	"github.com/cipherdrop/relay-service/internal/memstore"
	"github.com/cipherdrop/relay-service/internal/service"
	httpx "github.com/cipherdrop/relay-service/internal/transport/http"
	"github.com/cipherdrop/relay-service/internal/transport/ws"
	"github.com/cipherdrop/relay-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting relay-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- stores ---
	// All state is volatile; a restart starts empty by design.
	roomRepo := memstore.NewRoomRepository(nil)
	keyRepo := memstore.NewKeyRepository(nil)
	msgRepo := memstore.NewMessageRepository(nil, cfg.MessageTTL())
	receiptRepo := memstore.NewReceiptRepository(nil, cfg.ReceiptVisibility(), cfg.ReceiptRetention())

	// --- WS hub & server ---
	hub := ws.NewHub()

	// --- services ---
	stats := service.NewStats()
	roomSvc := service.NewRoomService(roomRepo, msgRepo, receiptRepo, stats)
	keySvc := service.NewKeyService(roomRepo, keyRepo)
	wsServer := ws.NewServer(hub, roomSvc)
	msgSvc := service.NewMessageService(roomRepo, msgRepo, stats, wsServer)
	receiptSvc := service.NewReceiptService(receiptRepo, wsServer)

	// --- HTTP ---
	handler := httpx.NewHandler(roomSvc, keySvc, msgSvc, receiptSvc, stats)
	router := httpx.NewRouter(handler, wsServer, stats, cfg.CORS.AllowedOrigins)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- background sweep ---
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweeper := service.NewSweeper(msgRepo, cfg.SweepInterval())
	go sweeper.Run(sweepCtx)

	// --- run server ---
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopSweep()
	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
