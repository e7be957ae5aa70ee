package okx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"time"
)

// timestampLayout matches the ISO-8601 UTC format the OKX API expects,
// millisecond precision with a literal Z.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Signer produces OKX API request signatures:
// Base64(HMAC-SHA256(secret, timestamp + UPPER(method) + path + body)).
// For GET requests path includes the encoded query string and body is
// empty; for other methods body must be the exact bytes sent on the
// wire, or the remote side rejects the request as unauthenticated.
type Signer struct {
	secret []byte
}

func NewSigner(secretKey string) *Signer {
	return &Signer{secret: []byte(secretKey)}
}

func (s *Signer) Sign(timestamp, method, requestPath, body string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte(strings.ToUpper(method)))
	mac.Write([]byte(requestPath))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Timestamp returns a fresh signing timestamp. Generated per call, never
// reused: reuse would allow replay within the signature's validity
// window on the remote API.
func (s *Signer) Timestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}
