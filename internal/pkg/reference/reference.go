// Package reference produces the human-readable identifiers printed on
// applications and disbursement receipts.
package reference

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DisbursementSuffixLength is the number of random characters closing a
// disbursement reference.
const DisbursementSuffixLength = 6

// ApplicationNumber formats the number of the sequence-th application of year,
// e.g. BOB202500017.
func ApplicationNumber(prefix string, year int, sequence int64) string {
	return fmt.Sprintf("%s%05d", ApplicationNumberPrefix(prefix, year), sequence)
}

// ApplicationNumberPrefix is the part of every application number of year
// that precedes the sequence, e.g. BOB2025.
func ApplicationNumberPrefix(prefix string, year int) string {
	return fmt.Sprintf("%s%d", prefix, year)
}

// DisbursementReference returns prefix-YYYYMMDD-XXXXXX where the suffix is six
// uppercase hexadecimal characters of a random UUID. Uniqueness is best effort;
// the storage layer enforces it.
func DisbursementReference(prefix string, day time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s-%s-%s", prefix, day.Format("20060102"), strings.ToUpper(id[:DisbursementSuffixLength]))
}

// Normalize canonicalises a reference typed by a person: surrounding blanks are
// dropped and letters upper-cased.
func Normalize(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}
