package common

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"golang.org/x/text/cases"
)

// MakeRandHexString returns size random bytes encoded as hex (2*size chars).
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateRandByteArray returns size bytes from crypto/rand.
// It panics if the system random source fails.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b in place. Nil is allowed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// NormalizeEmail trims and lower-cases an email so that one mailbox maps to
// exactly one user row.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FoldKey trims s and applies Unicode case folding, so "Beyoncé" and
// "BEYONCÉ" share one key. Catalog and username uniqueness is checked on it.
func FoldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
