package transform

import (
	"encoding/base64"
	"fmt"
)

// FromFilters builds the configured Transform from a base64-encoded XOR key
// and an optional Head length. headLen < 0 means "not configured" (no Head
// wrapper); the XOR transform alone is returned in that case.
func FromFilters(xorKeyB64 string, headLen int) (Transform, error) {
	key, err := base64.StdEncoding.DecodeString(xorKeyB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode xor_key from base64: %w", err)
	}

	var t Transform = NewXor(key)
	if headLen >= 0 {
		t = NewHead(t, headLen)
	}
	return t, nil
}
