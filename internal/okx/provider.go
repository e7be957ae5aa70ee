package okx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/keene2/meme-server/internal/swap"
)

// ProviderName is the registry key for the OKX DEX aggregator provider.
const ProviderName = "okx"

const (
	quotePath = "/api/v5/dex/aggregator/quote"
	swapPath  = "/api/v5/dex/aggregator/swap"
)

// FeeEstimator resolves a priority fee for a swap when the caller did
// not supply one. Implementations are best-effort and never fail.
type FeeEstimator interface {
	Estimate(ctx context.Context, tradeAmount string) uint64
}

// Submitter broadcasts a user-signed transaction to the chain.
type Submitter interface {
	Submit(ctx context.Context, sub swap.Submission) (*swap.SubmissionResult, error)
}

// Provider implements swap.Provider against the OKX DEX aggregator API
// for Solana. It operates in platform mode: users sign their own
// transactions, the provider only ever handles unsigned payloads and
// already-signed blobs.
type Provider struct {
	client    *Client
	fees      FeeEstimator
	submitter Submitter
	logger    *logrus.Logger
}

func NewProvider(client *Client, fees FeeEstimator, submitter Submitter, logger *logrus.Logger) *Provider {
	return &Provider{
		client:    client,
		fees:      fees,
		submitter: submitter,
		logger:    logger,
	}
}

// GetQuote fetches a price quote for a token pair. The aggregator
// envelope is passed through verbatim; on 401 a deterministic mock quote
// tagged SourceMock is returned so the workflow stays demoable without
// valid credentials.
func (p *Provider) GetQuote(ctx context.Context, req swap.QuoteRequest) (*swap.Quote, error) {
	query := url.Values{}
	query.Set("chainId", ChainID)
	query.Set("fromTokenAddress", req.FromTokenAddress)
	query.Set("toTokenAddress", req.ToTokenAddress)
	query.Set("amount", req.Amount)
	query.Set("slippage", req.Slippage)

	raw, err := p.client.request(ctx, http.MethodGet, quotePath, query, nil)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			p.logger.Warn("quote request unauthorized, falling back to mock quote")
			return p.mockQuote(req), nil
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	return &swap.Quote{
		Source: swap.SourceLive,
		Data:   json.RawMessage(raw),
	}, nil
}

// swapBuildRequest is the body of the aggregator swap-build call. It is
// marshaled exactly once and those bytes are both signed and sent.
type swapBuildRequest struct {
	ChainID           string `json:"chainId"`
	FromTokenAddress  string `json:"fromTokenAddress"`
	ToTokenAddress    string `json:"toTokenAddress"`
	Amount            string `json:"amount"`
	Slippage          string `json:"slippage"`
	UserWalletAddress string `json:"userWalletAddress"`
	PriorityFee       string `json:"priorityFee"`
}

type swapBuildData struct {
	CallData string `json:"callData"`
}

// BuildTransaction requests an unsigned swap transaction from the
// aggregator. It resolves the priority fee (caller-supplied wins over
// the estimator), never signs or submits, and echoes the MEV-protection
// flag unchanged: no protection mechanism is implemented here.
func (p *Provider) BuildTransaction(ctx context.Context, req swap.SwapRequest) (*swap.UnsignedTransaction, error) {
	priorityFee := req.PriorityFee
	if priorityFee == "" {
		priorityFee = strconv.FormatUint(p.fees.Estimate(ctx, req.Amount), 10)
	}

	body := swapBuildRequest{
		ChainID:           ChainID,
		FromTokenAddress:  req.FromTokenAddress,
		ToTokenAddress:    req.ToTokenAddress,
		Amount:            req.Amount,
		Slippage:          req.Slippage,
		UserWalletAddress: req.UserWalletAddress,
		PriorityFee:       priorityFee,
	}

	env, err := p.client.post(ctx, swapPath, body)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			p.logger.Warn("swap build unauthorized, falling back to mock transaction")
			return p.mockTransaction(req), nil
		}
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	if env.Code != "0" {
		return nil, &swap.UpstreamError{Code: env.Code, Message: env.Msg}
	}

	var data []swapBuildData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal swap data: %w", err)
	}
	if len(data) == 0 || data[0].CallData == "" {
		return nil, &swap.UpstreamError{Code: env.Code, Message: "empty swap data"}
	}

	p.logger.WithFields(logrus.Fields{
		"from":        req.FromTokenAddress,
		"to":          req.ToTokenAddress,
		"amount":      req.Amount,
		"priorityFee": priorityFee,
	}).Info("built unsigned swap transaction")

	return &swap.UnsignedTransaction{
		Source:       swap.SourceLive,
		Payload:      data[0].CallData,
		MevProtected: req.EnableMevProtection,
	}, nil
}

// SubmitTransaction hands the signed blob to the chain submitter. The
// MEV-protection flag is passed through for the transport layer.
func (p *Provider) SubmitTransaction(ctx context.Context, sub swap.Submission) (*swap.SubmissionResult, error) {
	return p.submitter.Submit(ctx, sub)
}
