package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	rememberSecretSize = 32

	// ResetCodeLength is the fixed length of password-reset codes.
	ResetCodeLength = 32

	alphanumerics = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// NewSessionKey returns an opaque identifier suitable for naming a
// server-side session.
func NewSessionKey() string {
	return uuid.NewString()
}

// NewRememberToken returns a long-lived opaque secret for remember-me
// resumption. The value is compared byte-for-byte against the stored copy,
// so it carries no structure.
func NewRememberToken() (string, error) {
	var secret [rememberSecretSize]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(secret[:]), nil
}

// NewResetCode returns a reset code of length n drawn uniformly from the
// 62 alphanumeric characters.
func NewResetCode(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("invalid reset code length")
	}

	var b strings.Builder
	b.Grow(n)

	max := big.NewInt(int64(len(alphanumerics)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphanumerics[idx.Int64()])
	}

	return b.String(), nil
}

// NewLegacyResetCode reproduces the historical reset code generator: for each
// position one of three byte ranges is picked uniformly (digits 48–57,
// 64–90 which is '@' plus uppercase, lowercase 97–122), then one byte within
// that range. The resulting distribution is not uniform over the combined
// alphabet. Only for installations that must stay compatible with codes
// issued by the legacy system.
func NewLegacyResetCode(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("invalid reset code length")
	}

	ranges := [3][2]byte{
		{48, 57},
		{64, 90},
		{97, 122},
	}

	var b strings.Builder
	b.Grow(n)

	three := big.NewInt(3)
	for i := 0; i < n; i++ {
		cls, err := rand.Int(rand.Reader, three)
		if err != nil {
			return "", err
		}
		lo, hi := ranges[cls.Int64()][0], ranges[cls.Int64()][1]
		span := big.NewInt(int64(hi-lo) + 1)
		off, err := rand.Int(rand.Reader, span)
		if err != nil {
			return "", err
		}
		b.WriteByte(lo + byte(off.Int64()))
	}

	return b.String(), nil
}
