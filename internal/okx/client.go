package okx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/keene2/meme-server/internal/util"
)

const (
	DefaultBaseURL = "https://www.okx.com"

	// Chain identifier the gateway is pinned to (Solana mainnet).
	ChainID = "501"
)

// ErrUnauthorized is returned when the aggregator rejects our API
// credentials (HTTP 401). Callers degrade to mock data instead of
// failing the request.
var ErrUnauthorized = errors.New("okx: invalid API credentials")

// ClientConfig carries the process-wide OKX credentials, initialized
// once at startup and read-only afterwards.
type ClientConfig struct {
	BaseURL       string
	APIKey        string
	SecretKey     string
	APIPassphrase string
	ProjectID     string
}

// Client issues signed requests against the OKX DEX API. Safe for
// concurrent use; it holds no mutable state.
type Client struct {
	baseURL    string
	apiKey     string
	passphrase string
	projectID  string
	signer     *Signer
	httpClient *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	return &Client{
		baseURL:    util.IfEmptyElse(cfg.BaseURL, DefaultBaseURL),
		apiKey:     cfg.APIKey,
		passphrase: cfg.APIPassphrase,
		projectID:  cfg.ProjectID,
		signer:     NewSigner(cfg.SecretKey),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// apiResponse is the OKX envelope shared by every endpoint. Code "0"
// means success; anything else carries an upstream error message.
type apiResponse struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// request signs and issues one API call and returns the raw response
// body. The signed body string and the wire body are the same byte
// slice, marshaled exactly once: any reserialization mismatch would
// invalidate the signature.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	requestPath := path
	if len(query) > 0 {
		requestPath = path + "?" + query.Encode()
	}

	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
	}

	timestamp := c.signer.Timestamp()
	signature := c.signer.Sign(timestamp, method, requestPath, string(bodyBytes))

	var reqBody io.Reader
	if bodyBytes != nil {
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("OK-ACCESS-KEY", c.apiKey)
	req.Header.Set("OK-ACCESS-SIGN", signature)
	req.Header.Set("OK-ACCESS-TIMESTAMP", timestamp)
	req.Header.Set("OK-ACCESS-PASSPHRASE", c.passphrase)
	if c.projectID != "" {
		req.Header.Set("OK-ACCESS-PROJECT", c.projectID)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make http call: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get successful response: status_code: %d, res_body: %s", res.StatusCode, string(resBytes))
	}

	return resBytes, nil
}

// get issues a signed GET and unmarshals the OKX envelope.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*apiResponse, error) {
	raw, err := c.request(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return parseEnvelope(raw)
}

// post issues a signed POST and unmarshals the OKX envelope.
func (c *Client) post(ctx context.Context, path string, body any) (*apiResponse, error) {
	raw, err := c.request(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	return parseEnvelope(raw)
}

func parseEnvelope(raw []byte) (*apiResponse, error) {
	var env apiResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &env, nil
}
