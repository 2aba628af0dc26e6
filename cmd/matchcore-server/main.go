// Command matchcore-server boots one multiplexed matching-engine runtime:
// it loads configuration, registers an Engine per configured symbol, and
// serves the HTTP admin/command surface until terminated.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aowss/orderbook/internal/bus"
	"github.com/aowss/orderbook/internal/cache"
	"github.com/aowss/orderbook/internal/config"
	"github.com/aowss/orderbook/internal/ratelimit"
	"github.com/aowss/orderbook/internal/runtime"
	"github.com/aowss/orderbook/internal/store"
	"github.com/aowss/orderbook/pkg/matchcore"
)

func main() {
	configPath := flag.String("config", "", "path to config directory (defaults to ., ./config, /etc/matchcore)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.InitLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// Specs are warmed once and never refreshed, so entries must not expire
	// (a negative ttl is go-cache's NoExpiration).
	symbolCache := cache.New(-1, 0)
	symbolCache.Warm(cfg.Symbols)

	mux, err := runtime.NewMultiplexer(len(cfg.Symbols), logger)
	if err != nil {
		return fmt.Errorf("create multiplexer: %w", err)
	}
	defer mux.Close()

	for _, spec := range cfg.Symbols {
		symbol := matchcore.NewSymbol(spec.Name, spec.ExchangeType, spec.TickSize, symbolSeed(spec.Name))
		if err := mux.Register(symbol); err != nil {
			return fmt.Errorf("register symbol %q: %w", spec.Name, err)
		}
		logger.Info("registered symbol", zap.String("symbol", spec.Name), zap.Int64("tick_size", spec.TickSize))
	}

	limiter, err := ratelimit.New(cfg.RateLimit.Rate, cfg.RateLimit.Period)
	if err != nil {
		return fmt.Errorf("create rate limiter: %w", err)
	}

	publisher, err := bus.NewPublisher(cfg.NATS.URL, cfg.NATS.Subject, logger)
	if err != nil {
		logger.Warn("event bus publisher unavailable, trades will not be republished", zap.Error(err))
		publisher = nil
	} else {
		defer publisher.Close()
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode)
	snapshotStore, err := store.Open(dsn)
	if err != nil {
		logger.Warn("snapshot store unavailable, periodic snapshots disabled", zap.Error(err))
		snapshotStore = nil
	} else {
		defer snapshotStore.Close()
	}

	server := runtime.NewServer(mux, limiter, publisher, symbolCache, cfg.Auth.JWTSecret, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: server.Handler(),
	}

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
		Handler: promhttp.Handler(),
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("admin/command server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("admin server: %w", err)
		}
	}()
	go func() {
		logger.Info("metrics server listening", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	if snapshotStore != nil {
		go snapshotLoop(mux, snapshotStore, logger)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("fatal server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)
	metricsServer.Shutdown(ctx)
	return nil
}

// snapshotLoop periodically persists every registered symbol's L2 depth.
func snapshotLoop(mux *runtime.Multiplexer, snapshotStore *store.Store, logger *zap.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		for _, symbol := range mux.Symbols() {
			var asks, bids []matchcore.L2Entry
			var stateHash int32
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := mux.RunOnEngine(ctx, symbol, func(e *matchcore.Engine) {
				asks = e.FillAsks(0)
				bids = e.FillBids(0)
				stateHash = e.StateHash()
			})
			cancel()
			if err != nil {
				logger.Error("failed to snapshot symbol", zap.String("symbol", symbol), zap.Error(err))
				continue
			}

			raw := encodeSnapshot(asks, bids)
			ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
			err = snapshotStore.Save(ctx, symbol, stateHash, raw)
			cancel()
			if err != nil {
				logger.Error("failed to persist snapshot", zap.String("symbol", symbol), zap.Error(err))
			}
		}
	}
}

func encodeSnapshot(asks, bids []matchcore.L2Entry) []byte {
	buf := make([]byte, 0, (len(asks)+len(bids))*20)
	out := matchcore.NewWriter(append(buf, make([]byte, (len(asks)+len(bids))*20)...), 0)
	emit := matchcore.NewEventEmitter(out)
	for _, a := range asks {
		emit.L2Record(a.Price, a.Volume, uint32(a.NumOrders))
	}
	for _, b := range bids {
		emit.L2Record(b.Price, b.Volume, uint32(b.NumOrders))
	}
	return out.Bytes(0)
}

// symbolSeed derives a stable per-symbol hash seed so two replicas
// trading different symbols never collide in Engine.StateHash (spec.md
// §3, "Symbol specification").
func symbolSeed(name string) int32 {
	var h int32 = 1
	for _, r := range name {
		h = h*31 + int32(r)
	}
	return h
}
