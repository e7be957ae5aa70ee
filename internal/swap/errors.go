package swap

import (
	"errors"
	"fmt"
)

// Submission error classes. The caller must be able to tell "not sent"
// (decode/simulation), "sent but rejected" (broadcast) and "sent and
// failed on-chain" (confirmation) apart, so each stage wraps its own
// sentinel.
var (
	ErrDecode              = errors.New("failed to decode signed transaction")
	ErrSimulation          = errors.New("transaction simulation failed")
	ErrBroadcast           = errors.New("failed to broadcast transaction")
	ErrTransactionFailed   = errors.New("transaction failed on-chain")
	ErrConfirmationTimeout = errors.New("timed out waiting for transaction confirmation")
)

// UpstreamError is a non-zero status code from the aggregator API,
// carrying the upstream message. It is never retried.
type UpstreamError struct {
	Code    string
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("aggregator API error: code %s: %s", e.Code, e.Message)
}
