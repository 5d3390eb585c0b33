// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// CodeAlphabet is used for codes people read back from a receipt, so it
// leaves out 0, O, 1, I and L.
const CodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// RandomCode returns length characters drawn uniformly from CodeAlphabet.
// When group is positive the characters are split into dash separated
// blocks of that size.
func RandomCode(length, group int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", length)
	}

	// Bytes at or above limit are rejected so every symbol is equally likely.
	limit := byte(256 - 256%len(CodeAlphabet))
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, CodeAlphabet[int(b)%len(CodeAlphabet)])
			if len(out) == length {
				break
			}
		}
	}

	if group <= 0 || group >= length {
		return string(out), nil
	}
	var sb strings.Builder
	for i, ch := range out {
		if i > 0 && i%group == 0 {
			sb.WriteByte('-')
		}
		sb.WriteByte(ch)
	}
	return sb.String(), nil
}

// Fingerprint is a short, stable digest of input: the first n hex
// characters of its SHA-256.
func Fingerprint(input string, n int) string {
	sum := sha256.Sum256([]byte(input))
	digest := hex.EncodeToString(sum[:])
	if n <= 0 || n > len(digest) {
		return digest
	}
	return digest[:n]
}
