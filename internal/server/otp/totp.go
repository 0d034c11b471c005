package otp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
)

// Base32Alphabet is the RFC 4648 alphabet used for time-based secrets.
const Base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

const MinSecretLength = 16

// TOTP computes RFC 6238 codes (HMAC-SHA1).
type TOTP struct {
	Step   time.Duration
	Digits int
	// Window is the number of steps accepted on each side of the current one.
	Window int
}

func DefaultTOTP() TOTP {
	return TOTP{Step: 30 * time.Second, Digits: 6, Window: 1}
}

// GenerateSecret returns length random base32 symbols.
func GenerateSecret(length int) (string, error) {
	if length < MinSecretLength {
		return "", fmt.Errorf("secret length %d < %d: %w", length, MinSecretLength, common.ErrorInvalidInput)
	}
	return common.RandomString(Base32Alphabet, length)
}

// DecodeSecret decodes base32 text into key bytes. Case is ignored, as are
// spaces, dashes and '=' padding. Trailing bits that do not fill a byte are
// dropped, so any length decodes.
func DecodeSecret(secret string) ([]byte, error) {
	var (
		out    []byte
		buffer uint32
		bits   uint
	)

	for _, r := range strings.ToUpper(secret) {
		if r == ' ' || r == '-' || r == '=' {
			continue
		}
		v := strings.IndexRune(Base32Alphabet, r)
		if v < 0 {
			return nil, fmt.Errorf("secret symbol %q: %w", r, common.ErrorInvalidInput)
		}

		buffer = buffer<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buffer>>bits))
			buffer &= (1 << bits) - 1
		}
	}

	if len(out) == 0 {
		return nil, common.ErrSecretNotProvisioned
	}
	return out, nil
}

var pow10 = [...]uint32{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000}

// HOTP is RFC 4226: HMAC-SHA1 over the big-endian counter, dynamic
// truncation to 31 bits, reduced modulo 10^digits and zero-padded.
func HOTP(key []byte, counter uint64, digits int) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", digits, value%pow10[digits])
}

func (t TOTP) counter(at time.Time) int64 {
	return at.Unix() / int64(t.Step/time.Second)
}

func (t TOTP) check() error {
	if t.Step < time.Second || t.Digits < 1 || t.Digits >= len(pow10) || t.Window < 0 {
		return fmt.Errorf("totp settings: %w", common.ErrorInvalidInput)
	}
	return nil
}

// Code returns the code for secret at the given instant.
func (t TOTP) Code(secret string, at time.Time) (string, error) {
	if err := t.check(); err != nil {
		return "", err
	}
	key, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}
	c := t.counter(at)
	if c < 0 {
		return "", fmt.Errorf("time before epoch: %w", common.ErrorInvalidInput)
	}
	return HOTP(key, uint64(c), t.Digits), nil
}

// Verify accepts code if it matches any step within Window of at. Nothing
// is consumed; the same code keeps verifying for the rest of its window.
func (t TOTP) Verify(secret, code string, at time.Time) error {
	if secret == "" {
		return common.ErrSecretNotProvisioned
	}
	if code == "" {
		return fmt.Errorf("empty code: %w", common.ErrorInvalidInput)
	}
	if err := t.check(); err != nil {
		return err
	}
	key, err := DecodeSecret(secret)
	if err != nil {
		return err
	}

	current := t.counter(at)
	matched := 0
	for k := -t.Window; k <= t.Window; k++ {
		c := current + int64(k)
		if c < 0 {
			continue
		}
		matched |= subtle.ConstantTimeCompare([]byte(HOTP(key, uint64(c), t.Digits)), []byte(code))
	}

	if matched != 1 {
		return common.ErrChallengeMismatch
	}
	return nil
}

// OTPAuthURL builds the otpauth:// URI understood by authenticator apps.
func (t TOTP) OTPAuthURL(issuer, account, secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	v.Set("algorithm", "SHA1")
	v.Set("digits", strconv.Itoa(t.Digits))
	v.Set("period", strconv.Itoa(int(t.Step/time.Second)))

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + account,
		RawQuery: v.Encode(),
	}
	return u.String()
}
