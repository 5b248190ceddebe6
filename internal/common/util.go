package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns a hex string backed by size random bytes.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
