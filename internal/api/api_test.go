package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keene2/meme-server/internal/okx"
	"github.com/keene2/meme-server/internal/swap"
)

type fakeProvider struct {
	quote     *swap.Quote
	quoteErr  error
	tx        *swap.UnsignedTransaction
	txErr     error
	result    *swap.SubmissionResult
	submitErr error

	lastQuote  swap.QuoteRequest
	lastSwap   swap.SwapRequest
	lastSubmit swap.Submission
}

func (f *fakeProvider) GetQuote(_ context.Context, req swap.QuoteRequest) (*swap.Quote, error) {
	f.lastQuote = req
	return f.quote, f.quoteErr
}

func (f *fakeProvider) BuildTransaction(_ context.Context, req swap.SwapRequest) (*swap.UnsignedTransaction, error) {
	f.lastSwap = req
	return f.tx, f.txErr
}

func (f *fakeProvider) SubmitTransaction(_ context.Context, sub swap.Submission) (*swap.SubmissionResult, error) {
	f.lastSubmit = sub
	return f.result, f.submitErr
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestServer(t *testing.T, provider *fakeProvider, upstream http.HandlerFunc) *Server {
	t.Helper()

	var market *okx.MarketService
	if upstream != nil {
		backend := httptest.NewServer(upstream)
		t.Cleanup(backend.Close)
		client := okx.NewClient(okx.ClientConfig{BaseURL: backend.URL, SecretKey: "test"})
		market = okx.NewMarketService(client, testLogger())
	}

	return NewServer(Config{ListenAddress: ":0"}, provider, market, nil, testLogger())
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestGetHealth(t *testing.T) {
	s := newTestServer(t, &fakeProvider{}, nil)

	rec := doRequest(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "stopped", body.Services["watcher"])
	assert.NotEmpty(t, body.Timestamp)
}

func TestGetQuote(t *testing.T) {
	provider := &fakeProvider{
		quote: &swap.Quote{Source: swap.SourceLive, Data: json.RawMessage(`{"code":"0"}`)},
	}
	s := newTestServer(t, provider, nil)

	rec := doRequest(s, http.MethodGet,
		"/api/quote?fromTokenAddress=mintA&toTokenAddress=mintB&amount=1000000&slippage=0.5&userWalletAddress=wallet1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body quoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, swap.SourceLive, body.Source)

	assert.Equal(t, "mintA", provider.lastQuote.FromTokenAddress)
	assert.Equal(t, "1000000", provider.lastQuote.Amount)
}

func TestGetQuote_MissingParameters(t *testing.T) {
	provider := &fakeProvider{}
	s := newTestServer(t, provider, nil)

	targets := []string{
		"/api/quote",
		"/api/quote?fromTokenAddress=a&amount=1&slippage=0.5&userWalletAddress=w",
		"/api/quote?fromTokenAddress=a&toTokenAddress=b&slippage=0.5&userWalletAddress=w",
		"/api/quote?fromTokenAddress=a&toTokenAddress=b&amount=1&userWalletAddress=w",
		"/api/quote?fromTokenAddress=a&toTokenAddress=b&amount=1&slippage=0.5",
	}
	for _, target := range targets {
		rec := doRequest(s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)

		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, missingQuoteParams, body.Error)
	}
	assert.Empty(t, provider.lastQuote.FromTokenAddress, "provider must not be called on invalid input")
}

func TestGetQuote_NonIntegerAmount(t *testing.T) {
	s := newTestServer(t, &fakeProvider{}, nil)

	rec := doRequest(s, http.MethodGet,
		"/api/quote?fromTokenAddress=a&toTokenAddress=b&amount=1.5&slippage=0.5&userWalletAddress=w", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetQuote_UpstreamError(t *testing.T) {
	provider := &fakeProvider{quoteErr: &swap.UpstreamError{Code: "82000", Message: "no liquidity"}}
	s := newTestServer(t, provider, nil)

	rec := doRequest(s, http.MethodGet,
		"/api/quote?fromTokenAddress=a&toTokenAddress=b&amount=1&slippage=0.5&userWalletAddress=w", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "82000")
}

func TestPostBuildTransaction(t *testing.T) {
	provider := &fakeProvider{
		tx: &swap.UnsignedTransaction{Source: swap.SourceLive, Payload: "dW5zaWduZWQ=", MevProtected: true},
	}
	s := newTestServer(t, provider, nil)

	rec := doRequest(s, http.MethodPost, "/api/build-transaction", `{
		"fromTokenAddress": "mintA",
		"toTokenAddress": "mintB",
		"amount": "1000000",
		"slippage": "0.5",
		"userWalletAddress": "wallet1",
		"enableMevProtection": true,
		"priorityFee": "9000",
		"enableTwap": true
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body buildTransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "dW5zaWduZWQ=", body.Transaction)
	assert.True(t, body.MevProtected)

	assert.Equal(t, "9000", provider.lastSwap.PriorityFee)
	assert.True(t, provider.lastSwap.EnableMevProtection)
	assert.True(t, provider.lastSwap.EnableTwap)
}

func TestPostBuildTransaction_MissingParameters(t *testing.T) {
	s := newTestServer(t, &fakeProvider{}, nil)

	rec := doRequest(s, http.MethodPost, "/api/build-transaction", `{"fromTokenAddress":"a"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing required parameters")
}

func TestPostBuildTransaction_InvalidPriorityFee(t *testing.T) {
	s := newTestServer(t, &fakeProvider{}, nil)

	rec := doRequest(s, http.MethodPost, "/api/build-transaction", `{
		"fromTokenAddress": "a",
		"toTokenAddress": "b",
		"amount": "1000",
		"slippage": "0.5",
		"userWalletAddress": "w",
		"priorityFee": "fast"
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "priorityFee")
}

func TestPostSubmitTransaction(t *testing.T) {
	provider := &fakeProvider{
		result: &swap.SubmissionResult{Source: swap.SourceLive, TxID: "5KtPsig", MevProtected: false},
	}
	s := newTestServer(t, provider, nil)

	rec := doRequest(s, http.MethodPost, "/api/submit-transaction", `{"signedTransaction":"c2lnbmVk"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body submitTransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "5KtPsig", body.TxID)
	assert.Equal(t, "c2lnbmVk", provider.lastSubmit.SignedTransaction)
}

func TestPostSubmitTransaction_MissingSignedTransaction(t *testing.T) {
	s := newTestServer(t, &fakeProvider{}, nil)

	rec := doRequest(s, http.MethodPost, "/api/submit-transaction", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing required parameter: signedTransaction")
}

func TestPostSubmitTransaction_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"decode error", swap.ErrDecode, http.StatusBadRequest},
		{"simulation error", swap.ErrSimulation, http.StatusInternalServerError},
		{"broadcast error", swap.ErrBroadcast, http.StatusInternalServerError},
		{"on-chain failure", swap.ErrTransactionFailed, http.StatusInternalServerError},
		{"confirmation timeout", swap.ErrConfirmationTimeout, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, &fakeProvider{submitErr: tc.err}, nil)

			rec := doRequest(s, http.MethodPost, "/api/submit-transaction", `{"signedTransaction":"c2lnbmVk"}`)
			assert.Equal(t, tc.wantStatus, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Contains(t, body.Error, tc.err.Error())
		})
	}
}

func TestGetTokenPrice_ProxiesUpstream(t *testing.T) {
	s := newTestServer(t, &fakeProvider{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "501", r.URL.Query().Get("chainIndex"))
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[{"price":"142.35"}]}`))
	})

	rec := doRequest(s, http.MethodGet, "/api/dex/price?chainIndex=501&tokenContractAddress=mintA", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "142.35")
}

func TestGetTokenPrice_MissingParameters(t *testing.T) {
	s := newTestServer(t, &fakeProvider{}, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("upstream must not be called")
	})

	rec := doRequest(s, http.MethodGet, "/api/dex/price?chainIndex=501", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetKline_InvalidLimit(t *testing.T) {
	s := newTestServer(t, &fakeProvider{}, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("upstream must not be called")
	})

	rec := doRequest(s, http.MethodGet, "/api/dex/kline?chainIndex=501&tokenContractAddress=mintA&limit=-5", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTotalValue_UpstreamErrorMapped(t *testing.T) {
	s := newTestServer(t, &fakeProvider{}, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":"51000","msg":"invalid address","data":[]}`))
	})

	rec := doRequest(s, http.MethodGet, "/api/dex/balance/total-value?address=bad", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "51000")
}
