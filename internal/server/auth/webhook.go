package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"time"
)

// VerifySignature reports whether signature is the hex-encoded
// HMAC-SHA256 of timestamp||token under signingKey. It never panics and
// never returns an error: every malformed input is simply a rejection.
func VerifySignature(signingKey, timestamp, token, signature string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if signingKey == "" || timestamp == "" || token == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(signingKey))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(token))
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	if len(got) != len(expected) {
		return false
	}

	return subtle.ConstantTimeCompare(expected, got) == 1
}

// WebhookAuthenticator checks inbound mail webhooks against the shared
// signing key. A positive MaxAge additionally rejects timestamps further
// than MaxAge from the current time.
type WebhookAuthenticator struct {
	signingKey string
	MaxAge     time.Duration

	now func() time.Time
}

func NewWebhookAuthenticator(signingKey string, maxAge time.Duration) *WebhookAuthenticator {
	return &WebhookAuthenticator{signingKey: signingKey, MaxAge: maxAge, now: time.Now}
}

// Configured reports whether a signing key is present.
func (a *WebhookAuthenticator) Configured() bool {
	return a.signingKey != ""
}

// Authenticate reports whether the triple is correctly signed and fresh.
func (a *WebhookAuthenticator) Authenticate(timestamp, token, signature string) bool {
	if !VerifySignature(a.signingKey, timestamp, token, signature) {
		return false
	}
	return a.Fresh(timestamp, a.now())
}

// Fresh reports whether the unix-seconds timestamp lies within MaxAge of
// now. With MaxAge <= 0 every timestamp is fresh.
func (a *WebhookAuthenticator) Fresh(timestamp string, now time.Time) bool {
	if a.MaxAge <= 0 {
		return true
	}
	sec, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	t := time.Unix(sec, 0)
	return !t.Before(now.Add(-a.MaxAge)) && !t.After(now.Add(a.MaxAge))
}
