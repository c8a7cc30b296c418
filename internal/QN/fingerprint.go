package QN

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the normalized form of sql, so that queries
// differing only in literal values share one fingerprint.
func Fingerprint(sql string) (uint64, error) {
	norm, err := Normalize(sql)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64String(norm), nil
}

// FingerprintString formats a fingerprint as fixed-width hex.
func FingerprintString(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}
