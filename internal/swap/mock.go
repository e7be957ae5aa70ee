package swap

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// MockPayloadPrefix marks synthetic transaction blobs produced when the
// aggregator rejects our credentials. The submitter checks the decoded
// bytes for this prefix to short-circuit the mock quote -> build ->
// submit path without a live network.
const MockPayloadPrefix = "mock_transaction_"

const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewMockPayload returns a base64 blob that is valid base64 but not a
// real transaction. Time- and randomness-seeded so repeated calls never
// collide.
func NewMockPayload() string {
	raw := fmt.Sprintf("%s%d_%s", MockPayloadPrefix, time.Now().UnixMilli(), randomSuffix(9))
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// NewMockTxID returns a fresh mock transaction id of the form
// mock_tx_<timestamp>_<random>.
func NewMockTxID() string {
	return fmt.Sprintf("mock_tx_%d_%s", time.Now().UnixMilli(), randomSuffix(9))
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(buf)
}
