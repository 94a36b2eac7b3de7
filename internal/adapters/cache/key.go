// Package cache computes the content keys the transform cache tiers share.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key returns the stable cache key for one external transform call. Every
// input that influences the output participates, separated by NUL so field
// boundaries cannot collide.
func Key(model, systemPrompt, userPrompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(systemPrompt))
	h.Write([]byte{0})
	h.Write([]byte(userPrompt))
	return hex.EncodeToString(h.Sum(nil))
}
