package crypto

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SignatureHeader carries the gateway's HMAC of a webhook body
const SignatureHeader = "x-nowpayments-sig"

var ErrEmptySecret = errors.New("signing secret is empty")

// CanonicalJSON re-encodes a JSON document with object keys sorted at every
// depth. Number literals are kept verbatim and HTML characters are not
// escaped, so the output matches what the gateway signs.
func CanonicalJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid json payload: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid json payload: trailing data")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// encoding/json writes map keys in sorted order
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// SignPayload returns the hex HMAC-SHA512 of the canonical form of raw
func SignPayload(raw []byte, secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	canonical, err := CanonicalJSON(raw)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifyPayload recomputes the signature and compares it in constant time
func VerifyPayload(raw []byte, signature, secret string) (bool, error) {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return false, nil
	}
	expected, err := SignPayload(raw, secret)
	if err != nil {
		return false, err
	}
	provided, err := hex.DecodeString(strings.ToLower(signature))
	if err != nil {
		return false, nil
	}
	want, _ := hex.DecodeString(expected)
	return hmac.Equal(want, provided), nil
}
