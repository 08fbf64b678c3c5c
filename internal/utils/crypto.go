// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math/big"
)

const upperAlphanum = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0/O or 1/I

func randomFromCharset(charset string, length int) (string, error) {
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateReferenceCode returns an unambiguous uppercase code for humans to read back
func GenerateReferenceCode(length int) (string, error) {
	return randomFromCharset(upperAlphanum, length)
}
