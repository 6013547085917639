package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// Signature headers sent with every interaction webhook request.
const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

// Verifier checks interaction webhook signatures against the
// application's public key.
type Verifier struct {
	key ed25519.PublicKey
}

// NewVerifier creates a verifier from the hex-encoded public key shown
// on the application's developer page.
func NewVerifier(hexKey string) (*Verifier, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key length: got %d bytes, want %d", len(raw), ed25519.PublicKeySize)
	}
	return &Verifier{key: ed25519.PublicKey(raw)}, nil
}

// Verify reports whether signatureHex is a valid signature over the
// timestamp concatenated with the raw request body. The raw bytes are
// the signed payload, so callers must verify before parsing the body.
func (v *Verifier) Verify(signatureHex, timestamp string, body []byte) bool {
	if signatureHex == "" || timestamp == "" {
		return false
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return ed25519.Verify(v.key, msg, sig)
}
