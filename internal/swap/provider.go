package swap

import (
	"context"
	"encoding/json"
)

// Source tags a quote or transaction payload as coming from the live
// aggregator or from the credential-less mock fallback. Callers must be
// able to tell synthetic data apart from real data.
type Source string

const (
	SourceLive Source = "live"
	SourceMock Source = "mock"
)

// Provider is the contract every trading provider implements. The flow is
// quote -> build unsigned transaction -> caller signs externally ->
// submit signed transaction. The provider never sees a private key.
type Provider interface {
	GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error)
	BuildTransaction(ctx context.Context, req SwapRequest) (*UnsignedTransaction, error)
	SubmitTransaction(ctx context.Context, sub Submission) (*SubmissionResult, error)
}

// QuoteRequest asks for a price quote for a token pair. Amount is the
// smallest-unit integer amount of the source token as a decimal string.
type QuoteRequest struct {
	FromTokenAddress  string
	ToTokenAddress    string
	Amount            string
	Slippage          string
	UserWalletAddress string
}

// Quote carries the aggregator response verbatim. The gateway does not
// reinterpret its numeric content beyond display.
type Quote struct {
	Source Source
	Data   json.RawMessage
}

// SwapRequest extends QuoteRequest with build options. PriorityFee is an
// optional integer string in lamports; when empty the fee estimator
// decides. MEV protection and TWAP are pass-through flags.
type SwapRequest struct {
	QuoteRequest
	EnableMevProtection bool
	PriorityFee         string
	EnableTwap          bool
}

// UnsignedTransaction is the base64-encoded transaction blob the caller
// must sign externally. The gateway keeps no copy past the response.
type UnsignedTransaction struct {
	Source       Source
	Payload      string
	MevProtected bool
}

// Submission carries a user-signed transaction back for broadcast.
type Submission struct {
	SignedTransaction   string
	EnableMevProtection bool
}

// SubmissionResult reports a successful submission. Failures are
// reported through the error return, typed per errors.go.
type SubmissionResult struct {
	Source       Source
	TxID         string
	MevProtected bool
}
