package hypermedia

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// DigestSize is the size in bytes of a Keccak-512 digest.
const DigestSize = 64

// DigestHexLen is the length of a digest rendered as uppercase hex.
const DigestHexLen = DigestSize * 2

// HashFunc computes a digest over a byte slice. The format registry exposes
// the function used by each format revision; every revision currently uses
// Keccak512.
type HashFunc func(data []byte) []byte

// Keccak512 computes the legacy Keccak-512 digest (original Keccak padding,
// not the NIST SHA3-512 variant) of the given bytes.
func Keccak512(data []byte) []byte {
	h := sha3.NewLegacyKeccak512()
	h.Write(data)
	return h.Sum(nil)
}

// DigestHex renders a digest as uppercase hex, the form used on the wire and
// in topic strings.
func DigestHex(digest []byte) string {
	return strings.ToUpper(hex.EncodeToString(digest))
}

// IsDigestHex reports whether s is a well-formed rendered digest: exactly
// 128 uppercase hex characters.
func IsDigestHex(s string) bool {
	if len(s) != DigestHexLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
