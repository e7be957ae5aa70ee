package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/keene2/meme-server/internal/swap"
)

const (
	supportedChainsPath = "/api/v5/dex/market/supported/chain"
	tokenPricePath      = "/api/v5/dex/market/price"
	batchPricePath      = "/api/v5/dex/market/price-info"
	candlesPath         = "/api/v5/dex/market/candles"
	totalValuePath      = "/api/v5/dex/balance/total-value"
)

// popularSolanaMints are the tokens served by the popular-prices
// endpoint: SOL, USDC, USDT, JUP, RAY, BONK.
var popularSolanaMints = []string{
	wrappedSolMint,
	usdcMint,
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
	"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN",
	"4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R",
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
}

// MarketService proxies a subset of the OKX DEX market and balance
// endpoints, reusing the same signed transport as the trading provider.
// Responses are passed through as raw aggregator data.
type MarketService struct {
	client *Client
	logger *logrus.Logger
}

func NewMarketService(client *Client, logger *logrus.Logger) *MarketService {
	return &MarketService{
		client: client,
		logger: logger,
	}
}

// SupportedChains lists the chains the aggregator can quote on.
func (m *MarketService) SupportedChains(ctx context.Context) (json.RawMessage, error) {
	env, err := m.client.get(ctx, supportedChainsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supported chains: %w", err)
	}
	return m.dataOrError(env)
}

// TokenPrice returns the latest price record for one token, or null when
// the aggregator has no data for it.
func (m *MarketService) TokenPrice(ctx context.Context, chainIndex, tokenContractAddress string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("chainIndex", chainIndex)
	query.Set("tokenContractAddress", tokenContractAddress)

	env, err := m.client.get(ctx, tokenPricePath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token price: %w", err)
	}
	data, err := m.dataOrError(env)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price data: %w", err)
	}
	if len(items) == 0 {
		return json.RawMessage("null"), nil
	}
	return items[0], nil
}

type batchPriceRequest struct {
	ChainIndex           string `json:"chainIndex"`
	TokenContractAddress string `json:"tokenContractAddress"`
}

// BatchTokenPrices fetches prices for a comma-separated list of token
// addresses (at most 100 per the upstream contract) in one call.
func (m *MarketService) BatchTokenPrices(ctx context.Context, chainIndex, tokenContractAddresses string) (json.RawMessage, error) {
	env, err := m.client.post(ctx, batchPricePath, batchPriceRequest{
		ChainIndex:           chainIndex,
		TokenContractAddress: tokenContractAddresses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch batch token prices: %w", err)
	}
	return m.dataOrError(env)
}

// CandlesRequest selects a candlestick window. Bar defaults upstream to
// 1m; After/Before paginate by timestamp.
type CandlesRequest struct {
	ChainIndex           string
	TokenContractAddress string
	Bar                  string
	After                string
	Before               string
	Limit                int
}

// Candles returns K-line data for a token.
func (m *MarketService) Candles(ctx context.Context, req CandlesRequest) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("chainIndex", req.ChainIndex)
	query.Set("tokenContractAddress", req.TokenContractAddress)
	if req.Bar != "" {
		query.Set("bar", req.Bar)
	}
	if req.After != "" {
		query.Set("after", req.After)
	}
	if req.Before != "" {
		query.Set("before", req.Before)
	}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}

	env, err := m.client.get(ctx, candlesPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candles: %w", err)
	}
	return m.dataOrError(env)
}

// PopularPrices fetches the popular Solana token prices, one signed call
// per token fanned out in parallel. Tokens the aggregator has no data
// for are skipped rather than failing the whole set.
func (m *MarketService) PopularPrices(ctx context.Context) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, len(popularSolanaMints))

	g, ctx := errgroup.WithContext(ctx)
	for _i, _mint := range popularSolanaMints {
		i, mint := _i, _mint
		g.Go(func() error {
			price, err := m.TokenPrice(ctx, ChainID, mint)
			if err != nil {
				return fmt.Errorf("failed to fetch price for %s: %w", mint, err)
			}
			results[i] = price
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prices := make([]json.RawMessage, 0, len(results))
	for _, price := range results {
		if string(price) != "null" {
			prices = append(prices, price)
		}
	}
	return prices, nil
}

// TotalValue returns the aggregated portfolio value of a wallet address.
// Chains is an optional comma-separated chain list.
func (m *MarketService) TotalValue(ctx context.Context, address, chains string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("address", address)
	if chains != "" {
		query.Set("chains", chains)
	}

	env, err := m.client.get(ctx, totalValuePath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch total value: %w", err)
	}
	return m.dataOrError(env)
}

func (m *MarketService) dataOrError(env *apiResponse) (json.RawMessage, error) {
	if env.Code != "0" {
		return nil, &swap.UpstreamError{Code: env.Code, Message: env.Msg}
	}
	if len(env.Data) == 0 {
		return json.RawMessage("[]"), nil
	}
	return env.Data, nil
}
