package main

import (
	"context"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"github.com/keene2/meme-server/internal/api"
	"github.com/keene2/meme-server/internal/graceful"
	"github.com/keene2/meme-server/internal/logging"
	"github.com/keene2/meme-server/internal/metrics"
	"github.com/keene2/meme-server/internal/okx"
	chain "github.com/keene2/meme-server/internal/solana"
	"github.com/keene2/meme-server/internal/swap"
	"github.com/keene2/meme-server/internal/watcher"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := newConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.LogFormat)

	metricsServer := metrics.StartServer(cfg.MetricsAddress, logger)
	defer func() {
		if err := metricsServer.Stop(ctx); err != nil {
			logger.Errorf("failed to stop metrics server: %v", err)
		}
	}()

	rpcClient := rpc.New(cfg.SolanaRPCURL)
	submitter := chain.NewSubmitter(rpcClient, cfg.ConfirmTimeout, logger)
	feeEstimator := chain.NewFeeEstimator(rpcClient, logger)

	okxClient := okx.NewClient(okx.ClientConfig{
		BaseURL:       cfg.OKX.BaseURL,
		APIKey:        cfg.OKX.APIKey,
		SecretKey:     cfg.OKX.SecretKey,
		APIPassphrase: cfg.OKX.APIPassphrase,
		ProjectID:     cfg.OKX.ProjectID,
	})

	registry := swap.NewRegistry()
	registry.Register(okx.ProviderName, func() (swap.Provider, error) {
		return okx.NewProvider(okxClient, feeEstimator, submitter, logger), nil
	})

	trading, err := registry.New(cfg.TradingProvider)
	if err != nil {
		logger.Fatalf("failed to initialize trading provider: %v", err)
	}
	logger.Infof("trading provider: %s", cfg.TradingProvider)

	market := okx.NewMarketService(okxClient, logger)

	slotWatcher := watcher.New(cfg.SolanaWSURL, logger)
	slotWatcher.Start(ctx)

	server := api.NewServer(
		api.Config{ListenAddress: cfg.ListenAddress},
		trading,
		market,
		slotWatcher,
		logger,
	)
	go func() {
		if err := server.Start(); err != nil {
			logger.Errorf("api server stopped: %v", err)
		}
	}()

	<-graceful.MakeSigintChan()
	logger.Info("shutting down")

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("failed to shut down api server: %v", err)
	}
	cancel()
	slotWatcher.Wait()
}
