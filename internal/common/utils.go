package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// AccessTokenHeaderName is the gRPC metadata key used to carry the session
// token on requests.
const AccessTokenHeaderName = "access_token"

// MakeRandHexString generates size random bytes and returns them hex-encoded,
// so the resulting string is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// GenerateRandByteArray returns size bytes read from crypto/rand.
// It panics if the system random source fails.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// RandomString returns length symbols drawn uniformly from alphabet.
func RandomString(alphabet string, length int) (string, error) {
	if len(alphabet) == 0 {
		return "", fmt.Errorf("empty alphabet: %w", ErrorInvalidInput)
	}

	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}

	return string(out), nil
}

// RandomDigits returns a zero-padded decimal string of exactly n digits.
func RandomDigits(n int) (string, error) {
	return RandomString("0123456789", n)
}

// WipeByteArray overwrites the contents of b with zeros. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
