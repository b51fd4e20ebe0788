// Package entitlement verifies offline pro receipts.
//
// A receipt is the base64 encoding of a nacl/sign signed message whose body
// is the JSON Receipt. Only the resulting pro flag reaches the event engine.
package entitlement

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/nacl/sign"
)

// ProductID is the only product that unlocks pro.
const ProductID = "com.lizaria.countdown.pro"

var (
	ErrNoPublicKey    = errors.New("no receipt public key configured")
	ErrBadSignature   = errors.New("receipt signature does not verify")
	ErrWrongProduct   = errors.New("receipt is for a different product")
	ErrMissingReceipt = errors.New("no receipt")
)

// Receipt is the signed purchase record.
type Receipt struct {
	ProductID     string    `json:"product_id"`
	TransactionID string    `json:"transaction_id"`
	PurchasedAt   time.Time `json:"purchased_at"`
}

// Verifier checks receipts against one public key.
type Verifier struct {
	key *[32]byte
}

// NewVerifier parses a base64 public key.
func NewVerifier(publicKey string) (*Verifier, error) {
	publicKey = strings.TrimSpace(publicKey)
	if publicKey == "" {
		return nil, ErrNoPublicKey
	}
	raw, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("public key is %d bytes, want 32", len(raw))
	}
	var key [32]byte
	copy(key[:], raw)
	return &Verifier{key: &key}, nil
}

// Verify opens a base64 receipt and checks its product.
func (v *Verifier) Verify(data string) (Receipt, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return Receipt{}, ErrMissingReceipt
	}
	signed, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Receipt{}, fmt.Errorf("decode receipt: %w", err)
	}
	body, ok := sign.Open(nil, signed, v.key)
	if !ok {
		return Receipt{}, ErrBadSignature
	}
	var r Receipt
	if err := json.Unmarshal(body, &r); err != nil {
		return Receipt{}, fmt.Errorf("decode receipt body: %w", err)
	}
	if r.ProductID != ProductID {
		return r, ErrWrongProduct
	}
	return r, nil
}

// IsPro reports whether publicKey and receipt together grant pro. A
// missing key or receipt is simply "not pro".
func IsPro(publicKey, receipt string) (bool, error) {
	if strings.TrimSpace(publicKey) == "" || strings.TrimSpace(receipt) == "" {
		return false, nil
	}
	v, err := NewVerifier(publicKey)
	if err != nil {
		return false, err
	}
	if _, err := v.Verify(receipt); err != nil {
		return false, err
	}
	return true, nil
}

// GenerateKey returns a base64 key pair for issuing receipts.
func GenerateKey(rand io.Reader) (publicKey, privateKey string, err error) {
	pub, priv, err := sign.GenerateKey(rand)
	if err != nil {
		return "", "", err
	}
	return base64.StdEncoding.EncodeToString(pub[:]), base64.StdEncoding.EncodeToString(priv[:]), nil
}

// Issue signs r with a base64 private key and returns the receipt string.
func Issue(r Receipt, privateKey string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(privateKey))
	if err != nil {
		return "", fmt.Errorf("decode private key: %w", err)
	}
	if len(raw) != 64 {
		return "", fmt.Errorf("private key is %d bytes, want 64", len(raw))
	}
	var key [64]byte
	copy(key[:], raw)
	body, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sign.Sign(nil, body, &key)), nil
}
