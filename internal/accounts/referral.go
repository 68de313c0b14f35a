package accounts

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	ReferralCodeLength = 6
	referralAlphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// MaxReferralInput bounds a supplied code to the referred_by column width.
	MaxReferralInput = 64
)

// GenerateReferralCode returns a random code of uppercase letters and digits.
// Uniqueness is enforced by the users_referral_code_key constraint.
func GenerateReferralCode() (string, error) {
	max := big.NewInt(int64(len(referralAlphabet)))
	buf := make([]byte, ReferralCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate referral code: %w", err)
		}
		buf[i] = referralAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// NormalizeReferralCode trims and uppercases a code supplied by a client.
// A code that matches no account is still kept; only input past
// MaxReferralInput characters is cut.
func NormalizeReferralCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if r := []rune(code); len(r) > MaxReferralInput {
		code = strings.TrimSpace(string(r[:MaxReferralInput]))
	}
	return code
}
