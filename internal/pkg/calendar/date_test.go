package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.March, 1)
	assert.Equal(t, NewDate(2024, time.February, 29), d.AddDays(-1))
	assert.Equal(t, NewDate(2025, time.January, 1), NewDate(2024, time.December, 31).AddDays(1))

	assert.True(t, d.AddDays(-1).Before(d))
	assert.True(t, d.After(d.AddDays(-1)))
	assert.False(t, d.Before(d))
	assert.True(t, d.Equal(NewDate(2024, time.March, 1)))
	assert.Equal(t, "2024-03-01", d.String())
	assert.Equal(t, "", Date{}.String())
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	instant := time.Date(2024, time.February, 28, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, NewDate(2024, time.February, 28), DateOf(instant))
	assert.Equal(t, NewDate(2024, time.February, 29), DateOf(instant.In(loc)))
}

func TestFormatKey(t *testing.T) {
	assert.Equal(t, "02.29.24", FormatKey(NewDate(2024, time.February, 29)))
	assert.Equal(t, "01.05.00", NewDate(2000, time.January, 5).Key())
	assert.Equal(t, "12.31.99", NewDate(1999, time.December, 31).Key())
}

func TestParseKey(t *testing.T) {
	ref := NewDate(2024, time.June, 1)

	tests := []struct {
		key  string
		want Date
	}{
		{"02.29.24", NewDate(2024, time.February, 29)},
		{"01.01.00", NewDate(2000, time.January, 1)},
		{"12.31.99", NewDate(1999, time.December, 31)},
		{"07.04.74", NewDate(2074, time.July, 4)},
		{"07.04.75", NewDate(1975, time.July, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ParseKey(tt.key, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.key, got.Key())
		})
	}
}

func TestParseKey_Invalid(t *testing.T) {
	ref := NewDate(2024, time.June, 1)
	for _, key := range []string{"", "2024-02-29", "13.01.24", "02.30.24", "02.29.23", "00.10.24", "ab.cd.ef", "2.29.24"} {
		_, err := ParseKey(key, ref)
		assert.True(t, errors.Is(err, ErrInvalidKey), "key %q", key)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.February, 29), d)

	_, err = ParseDate("02.29.24")
	assert.Error(t, err)
}
