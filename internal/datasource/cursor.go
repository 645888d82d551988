package datasource

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Pagination tokens are opaque to callers: a provider serializes whatever it
// needs to resume a listing (an offset and a fingerprint of the query, or a
// native continuation key) and gets back a string the caller can only echo.
// Base64 over JSON keeps the token URL- and log-safe without exposing the
// provider's internals as API.

// EncodeCursor serializes a provider-defined cursor value into an opaque
// token.
func EncodeCursor(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode page token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeCursor deserializes a token produced by EncodeCursor into the
// provider's cursor value. A token from a different provider or a tampered
// one fails to decode; providers treat that as "restart from the beginning"
// rather than an error the caller has to understand.
func DecodeCursor(token string, into any) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("decode page token: %w", err)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("decode page token: %w", err)
	}
	return nil
}
