package okx

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/keene2/meme-server/internal/swap"
)

const (
	wrappedSolMint = "So11111111111111111111111111111111111111112"
	usdcMint       = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// mockQuoteEnvelope mirrors the aggregator quote envelope closely enough
// for clients to render it. Fixed destination amount and gas estimate;
// the source amount echoes the request.
type mockQuoteEnvelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data []mockQuoteData `json:"data"`
}

type mockQuoteData struct {
	ChainID         string         `json:"chainId"`
	FromToken       mockToken      `json:"fromToken"`
	ToToken         mockToken      `json:"toToken"`
	FromTokenAmount string         `json:"fromTokenAmount"`
	ToTokenAmount   string         `json:"toTokenAmount"`
	EstimatedGas    string         `json:"estimatedGas"`
	RouterResult    mockRouterInfo `json:"routerResult"`
}

type mockToken struct {
	TokenContractAddress string `json:"tokenContractAddress"`
	Symbol               string `json:"symbol"`
	Decimals             int    `json:"decimals"`
}

type mockRouterInfo struct {
	Routes []mockRoute `json:"routes"`
}

type mockRoute struct {
	SubRoutes []mockSubRoute `json:"subRoutes"`
}

type mockSubRoute struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Percentage int    `json:"percentage"`
}

func (p *Provider) mockQuote(req swap.QuoteRequest) *swap.Quote {
	env := mockQuoteEnvelope{
		Code: "0",
		Msg:  "success",
		Data: []mockQuoteData{{
			ChainID:         ChainID,
			FromToken:       mockTokenFor(req.FromTokenAddress),
			ToToken:         mockTokenFor(req.ToTokenAddress),
			FromTokenAmount: req.Amount,
			ToTokenAmount:   "1000",
			EstimatedGas:    "5000",
			RouterResult: mockRouterInfo{
				Routes: []mockRoute{{
					SubRoutes: []mockSubRoute{{
						From:       req.FromTokenAddress,
						To:         req.ToTokenAddress,
						Percentage: 100,
					}},
				}},
			},
		}},
	}

	raw, _ := json.Marshal(env)
	return &swap.Quote{
		Source: swap.SourceMock,
		Data:   raw,
	}
}

func mockTokenFor(address string) mockToken {
	switch address {
	case wrappedSolMint:
		return mockToken{TokenContractAddress: address, Symbol: "SOL", Decimals: 9}
	case usdcMint:
		return mockToken{TokenContractAddress: address, Symbol: "USDC", Decimals: 6}
	default:
		return mockToken{TokenContractAddress: address, Symbol: "TOKEN", Decimals: 9}
	}
}

func (p *Provider) mockTransaction(req swap.SwapRequest) *swap.UnsignedTransaction {
	payload := swap.NewMockPayload()
	p.logger.WithFields(logrus.Fields{
		"from":   req.FromTokenAddress,
		"to":     req.ToTokenAddress,
		"amount": req.Amount,
	}).Info("mock transaction built")

	return &swap.UnsignedTransaction{
		Source:       swap.SourceMock,
		Payload:      payload,
		MevProtected: req.EnableMevProtection,
	}
}
