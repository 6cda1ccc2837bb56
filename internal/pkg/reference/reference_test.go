package reference

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplicationNumber(t *testing.T) {
	tests := []struct {
		prefix   string
		year     int
		sequence int64
		want     string
	}{
		{"BOB", 2025, 1, "BOB202500001"},
		{"BOB", 2025, 42, "BOB202500042"},
		{"BOB", 2026, 99999, "BOB202699999"},
		{"BOB", 2026, 100000, "BOB2026100000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ApplicationNumber(tt.prefix, tt.year, tt.sequence))
	}
}

func TestDisbursementReference(t *testing.T) {
	day := time.Date(2025, time.March, 14, 15, 4, 5, 0, time.UTC)
	pattern := regexp.MustCompile(`^BOB-DISB-20250314-[0-9A-Z]{6}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		ref := DisbursementReference("BOB-DISB", day)
		assert.Regexp(t, pattern, ref)
		seen[ref] = struct{}{}
	}
	assert.Greater(t, len(seen), 1, "suffix should be random")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "BOB202500001", Normalize("  bob202500001\n"))
	assert.Equal(t, "", Normalize("   "))
}
