package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kestrelfi/solswap/internal/infrastructure/config"
	"github.com/kestrelfi/solswap/internal/infrastructure/jupiter"
	"github.com/kestrelfi/solswap/internal/infrastructure/logger"
	"github.com/kestrelfi/solswap/internal/infrastructure/metrics"
	"github.com/kestrelfi/solswap/internal/infrastructure/solana"
	"github.com/kestrelfi/solswap/internal/infrastructure/storage"
	"github.com/kestrelfi/solswap/internal/usecase/order"
	"github.com/kestrelfi/solswap/internal/usecase/swap"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	showVersion := flag.Bool("version", false, "show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("solswap %s (built: %s)\n", version, buildTime)
		os.Exit(0)
	}

	// .env is optional; real env always wins
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("fatal", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("version", version))

	store := storage.NewMemoryStore(storage.NewFileMirror(cfg.Storage.MirrorPath), log)

	quotes := jupiter.NewClient(jupiter.ClientConfig{
		BaseURL: cfg.Quote.BaseURL,
		Timeout: cfg.Quote.Timeout,
	}, log)

	chain := solana.NewClient(solana.Config{
		RPCURL:     cfg.Solana.RPCURL,
		WSURL:      cfg.Solana.WSURL,
		Commitment: cfg.Solana.Commitment,
		MaxRetries: cfg.Solana.MaxRetries,
	}, log)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
		go func() {
			log.Info("serving metrics", zap.String("addr", cfg.Metrics.Addr))
			if err := metrics.NewServer(cfg.Metrics.Addr).Run(); err != nil {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	executor := swap.NewExecutor(quotes, chain, log)
	manager := order.NewManager(order.Config{
		ProtocolFeeBps:     cfg.Fees.ProtocolFeeBps,
		TreasuryAddress:    cfg.Fees.TreasuryAddress,
		DefaultSlippageBps: cfg.Quote.DefaultSlippageBps,
		StalenessWindow:    cfg.Refresh.StalenessWindow,
	}, quotes, executor, store, m, log)

	if cfg.Solana.KeypairPath != "" {
		signer, err := solana.NewKeypairSignerFromFile(cfg.Solana.KeypairPath)
		if err != nil {
			return fmt.Errorf("load signer: %w", err)
		}
		lamports := chain.GetTokenBalance(ctx, signer.PublicKey(), solanago.SolMint)
		log.Info("signer loaded",
			zap.String("address", signer.PublicKey().String()),
			zap.Uint64("lamports", lamports))
	}

	status, err := chain.GetNetworkStatus(ctx)
	if err != nil {
		log.Warn("network status unavailable", zap.Error(err))
	} else {
		log.Info("network reachable",
			zap.Uint64("slot", status.Slot),
			zap.Uint64("block_height", status.BlockHeight))
	}

	stats := manager.GetOrderStats(ctx)
	log.Info("order book restored",
		zap.Int("total", stats.Total),
		zap.Int("pending", stats.Pending))

	ticker := time.NewTicker(cfg.Refresh.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("stopped")
			return nil
		case <-ticker.C:
			n := manager.RefreshPendingQuotes(ctx)
			if n > 0 {
				log.Info("pending quotes refreshed", zap.Int("count", n))
			}
		}
	}
}
