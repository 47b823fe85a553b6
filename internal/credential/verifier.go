// Package credential validates leader credentials.
//
// A credential is a payload followed by one decimal check digit. The digit must
// equal the sum of the payload's code points modulo a configured divisor. This
// lets anyone holding a valid string become a leader without a secret store. It
// is low-entropy and trivially forgeable: it is not cryptographically secure and
// must not be treated as an authentication mechanism.
package credential

import "unicode/utf8"

// DefaultModulus is the divisor used when none is configured.
const DefaultModulus = 10

// Verify reports whether credential carries a valid check digit for modulus.
// Malformed input (empty, non-digit trailer, non-positive modulus) is simply
// invalid.
func Verify(credential string, modulus int) bool {
	if credential == "" || modulus <= 0 {
		return false
	}

	last, size := utf8.DecodeLastRuneInString(credential)
	if last < '0' || last > '9' {
		return false
	}

	return Checksum(credential[:len(credential)-size], modulus) == int(last-'0')
}

// Checksum returns sum(codepoints(payload)) mod modulus.
func Checksum(payload string, modulus int) int {
	if modulus <= 0 {
		return 0
	}
	sum := 0
	for _, r := range payload {
		sum = (sum + int(r)) % modulus
	}
	return sum
}

// Issue appends the check digit for payload. It is only meaningful when the
// checksum fits in a single digit, i.e. modulus <= 10.
func Issue(payload string, modulus int) (string, bool) {
	if modulus <= 0 || modulus > 10 {
		return "", false
	}
	return payload + string(rune('0'+Checksum(payload, modulus))), true
}
