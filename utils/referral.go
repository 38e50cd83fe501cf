package utils

import (
	"crypto/rand"
	"strings"
)

// referralAlphabet excludes the ambiguous characters 0, O, 1 and I so codes
// survive being read aloud or copied by hand.
const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateReferralCode generates a referral code for a member.
// Format: {NAME}-{RANDOM} where NAME is the first 4 letters of the member's
// first name uppercased, and RANDOM is 6 characters from referralAlphabet.
// Example: ADAO-K4TQ2M, JO-8PWNXR
func GenerateReferralCode(fullName string) (string, error) {
	prefix := referralPrefix(fullName)

	randomBytes := make([]byte, 6)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, b := range randomBytes {
		sb.WriteByte(referralAlphabet[int(b)%len(referralAlphabet)])
	}

	return prefix + "-" + sb.String(), nil
}

// referralPrefix takes the first word of the name, keeps letters and digits
// only, uppercases and truncates to 4 characters. Names with no usable
// characters fall back to "USER".
func referralPrefix(fullName string) string {
	first := strings.Fields(strings.TrimSpace(fullName))
	prefix := ""
	if len(first) > 0 {
		prefix = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, first[0])
	}
	prefix = strings.ToUpper(prefix)
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	if prefix == "" {
		prefix = "USER"
	}
	return prefix
}
