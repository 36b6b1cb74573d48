package commit

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseHex decodes a hex string with an optional 0x prefix.
func ParseHex(s string) ([]byte, error) {
	ss := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if ss == "" {
		return nil, fmt.Errorf("hex: empty string")
	}
	if len(ss)%2 != 0 {
		return nil, fmt.Errorf("hex: odd length")
	}
	b, err := hex.DecodeString(ss)
	if err != nil {
		return nil, fmt.Errorf("hex: %w", err)
	}
	return b, nil
}

// ParseHash decodes a 0x-prefixed or bare hex string that must be exactly
// HashSize bytes.
func ParseHash(s string) ([]byte, error) {
	b, err := ParseHex(s)
	if err != nil {
		return nil, err
	}
	if len(b) != HashSize {
		return nil, fmt.Errorf("hex: want %d bytes, got %d", HashSize, len(b))
	}
	return b, nil
}

func FormatHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
