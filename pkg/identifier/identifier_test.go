package identifier

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSequence(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0000"},
		{7, "0007"},
		{42, "0042"},
		{1234, "1234"},
		{12345, "2345"},
		{123456, "3456"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSequence(tt.in), "sequence %d", tt.in)
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	date := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	kinds := []Kind{KindAppointment, KindRecord, KindPrescription, KindSupplierOrder}
	seqs := []int{0, 1, 7, 999, 1000, 98765, 123456}

	for _, k := range kinds {
		for _, seq := range seqs {
			id, err := Mint(k, date, seq)
			require.NoError(t, err)

			parsed, err := Parse(id)
			require.NoError(t, err, id)
			assert.Equal(t, k, parsed.Kind)
			assert.True(t, date.Equal(parsed.Date))
			assert.Len(t, parsed.Sequence, 4)
		}
	}
}

func TestMintAppointmentShape(t *testing.T) {
	id, err := Mint(KindAppointment, time.Date(2025, 1, 5, 9, 0, 0, 0, time.Local), 123456)
	require.NoError(t, err)
	assert.Equal(t, "R-20250105-3456", id)
	assert.Regexp(t, regexp.MustCompile(`^R-20250105-\d{4}$`), id)
}

func TestMintFromDateString(t *testing.T) {
	id, err := MintFromDateString(KindAppointment, "2025-01-05 09:00:00", 7)
	require.NoError(t, err)
	assert.Equal(t, "R-20250105-0007", id)
}

func TestMintUnknownKind(t *testing.T) {
	_, err := Mint(Kind("XX"), time.Now(), 1)
	assert.Error(t, err)
}

func TestParseMalformed(t *testing.T) {
	for _, id := range []string{
		"",
		"R-2025010-0001",
		"XX-20250105-0001",
		"R-20251345-0001",
		"R-20250105-01",
		"R_20250105_0001",
		"r-20250105-0001",
	} {
		_, err := Parse(id)
		require.Error(t, err, id)

		var me *MalformedError
		assert.True(t, errors.As(err, &me), id)
		assert.True(t, errors.Is(err, ErrMalformedIdentifier), id)
	}
}

func TestCounterIsMonotonic(t *testing.T) {
	c := NewCounter(10)
	assert.Equal(t, 11, c.Next())
	assert.Equal(t, 12, c.Next())
}

func TestRandomStaysInRange(t *testing.T) {
	r := NewRandom(1)
	for i := 0; i < 1000; i++ {
		n := r.Next()
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 10000)
	}
}
