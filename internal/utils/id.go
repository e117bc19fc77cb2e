package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// NewClaimNumber builds a human readable claim number: KLM-<year>-<4 digit
// random suffix>. Suffixes can collide within a year; callers retry on
// duplicate key.
func NewClaimNumber(now time.Time) string {
	return fmt.Sprintf("KLM-%d-%04d", now.Year(), rand.Intn(10000))
}

// NewVerificationID builds a verification id: VER-<unix ms>-<3 digit random
// suffix>.
func NewVerificationID(now time.Time) string {
	return fmt.Sprintf("VER-%d-%03d", now.UnixMilli(), rand.Intn(1000))
}

// NewNonce returns a lightweight unique id (time + rand) usable as an
// idempotency nonce or request id without heavy deps.
func NewNonce() string {
	return fmt.Sprintf("%d-%06d", time.Now().UnixNano(), rand.Intn(1000000))
}
