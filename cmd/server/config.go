package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type config struct {
	ListenAddress  string `envconfig:"LISTEN_ADDRESS" default:":8080"`
	MetricsAddress string `envconfig:"METRICS_ADDRESS" default:":9090"`
	LogFormat      string `envconfig:"LOG_FORMAT" default:"text"`

	TradingProvider string `envconfig:"TRADING_PROVIDER" default:"okx"`

	OKX okxConfig

	SolanaRPCURL   string        `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	SolanaWSURL    string        `envconfig:"SOLANA_WS_URL" default:"wss://api.mainnet-beta.solana.com"`
	ConfirmTimeout time.Duration `envconfig:"CONFIRM_TIMEOUT" default:"60s"`
}

type okxConfig struct {
	BaseURL       string `envconfig:"OKX_BASE_URL"`
	APIKey        string `envconfig:"OKX_API_KEY"`
	SecretKey     string `envconfig:"OKX_SECRET_KEY"`
	APIPassphrase string `envconfig:"OKX_API_PASSPHRASE"`
	ProjectID     string `envconfig:"OKX_PROJECT_ID"`
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}
