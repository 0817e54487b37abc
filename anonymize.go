package sysuuid

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm selects the digest used to anonymize the UUID.
type HashAlgorithm string

const (
	// HashSHA256 is the default anonymization digest.
	HashSHA256 HashAlgorithm = "sha256"

	// HashMD5 reproduces the historical MD5(UUID) fingerprint. Not suitable
	// where collision resistance matters.
	HashMD5 HashAlgorithm = "md5"

	// HashBLAKE2b uses BLAKE2b-256.
	HashBLAKE2b HashAlgorithm = "blake2b"
)

// ParseHashAlgorithm returns the algorithm with the given name.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	switch alg := HashAlgorithm(strings.ToLower(strings.TrimSpace(name))); alg {
	case HashSHA256, HashMD5, HashBLAKE2b:
		return alg, nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm %q; valid values are md5, sha256, blake2b", name)
	}
}

// sum returns the lowercase hex digest of data.
func (a HashAlgorithm) sum(data []byte) (string, error) {
	switch a {
	case HashSHA256, "":
		h := sha256.Sum256(data)
		return hex.EncodeToString(h[:]), nil
	case HashMD5:
		h := md5.Sum(data)
		return hex.EncodeToString(h[:]), nil
	case HashBLAKE2b:
		h := blake2b.Sum256(data)
		return hex.EncodeToString(h[:]), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm %q", string(a))
	}
}

// FormatMode defines the length of an anonymized UUID.
type FormatMode int

const (
	// Format64 outputs 64 hex characters (2^6), the default
	Format64 FormatMode = iota
	// Format32 outputs 32 hex characters (2^5), truncated digest
	Format32
	// Format128 outputs 128 hex characters (2^7), chained digests
	Format128
	// Format256 outputs 256 hex characters (2^8), chained digests
	Format256
	// FormatDigest outputs the algorithm's natural digest length
	// (32 for MD5, 64 for SHA-256 and BLAKE2b-256)
	FormatDigest
)

// length returns the number of hex characters the mode produces, or 0 for
// the natural digest length.
func (m FormatMode) length() int {
	switch m {
	case Format32:
		return 32
	case Format128:
		return 128
	case Format256:
		return 256
	case FormatDigest:
		return 0
	default:
		return 64
	}
}

// Anonymize hashes a UUID string with an optional salt. With no salt,
// [HashMD5] and [FormatDigest] the result is MD5 of the UUID string itself.
//
// Modes longer than the digest append further digests, each computed over
// the hex form of the previous one; shorter modes truncate.
func Anonymize(id, salt string, alg HashAlgorithm, mode FormatMode) (string, error) {
	input := id
	if salt != "" {
		input = salt + "|" + id
	}

	digest, err := alg.sum([]byte(input))
	if err != nil {
		return "", err
	}

	want := mode.length()
	if want == 0 {
		return digest, nil
	}

	var sb strings.Builder
	sb.WriteString(digest)

	prev := digest
	for sb.Len() < want {
		next, err := alg.sum([]byte(prev))
		if err != nil {
			return "", err
		}
		sb.WriteString(next)
		prev = next
	}

	return sb.String()[:want], nil
}
