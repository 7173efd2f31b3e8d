package notional

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetFromGPSAndUtcAt(t *testing.T) {
	nt := New()
	// System clock reads 1_000_000us at a moment GPS says is
	// 2025-01-01 00:00:05 UTC == 5_000_000us past the unix epoch second
	// boundary we pick for the test (we only care about offsets here).
	delta := nt.SetFromGPS(5_000_000, 1_000_000)
	assert.Equal(t, int64(-4_000_000), delta) // previous(0) - new(4_000_000)
	assert.Equal(t, int64(4_000_000), nt.OffsetUs())
	assert.Equal(t, int64(6_000_000), nt.UtcAt(2_000_000))
}

func TestSetFromGPSReturnsDriftDirection(t *testing.T) {
	nt := New()
	nt.SetFromGPS(10_000_000, 10_000_000) // offset 0
	// Second sync shows the system clock has drifted 500ms fast: GPS time
	// is behind where the system clock would place it.
	delta := nt.SetFromGPS(20_000_000, 20_500_000)
	assert.Equal(t, int64(500_000), delta)
}

func TestDateTimeAtRoundTrip(t *testing.T) {
	nt := New()
	nt.SetFromGPS(0, 0)
	s := nt.DateTimeAt(0)
	p, err := Parse(s)
	assert.NoError(t, err)
	assert.Equal(t, 1970, p.Year)
	assert.Equal(t, 1, p.Month)
	assert.Equal(t, 1, p.Day)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not-a-time")
	assert.Error(t, err)
}
