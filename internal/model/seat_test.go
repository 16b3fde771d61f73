package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeatLabel(t *testing.T) {
	cases := []struct {
		in     string
		row    string
		number uint32
	}{
		{"A5", "A", 5},
		{"a5", "A", 5},
		{" P3 ", "P", 3},
		{"E19", "E", 19},
		{"AA12", "AA", 12},
	}
	for _, tc := range cases {
		row, n, err := ParseSeatLabel(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.row, row, tc.in)
		assert.Equal(t, tc.number, n, tc.in)
	}
}

func TestParseSeatLabelInvalid(t *testing.T) {
	for _, in := range []string{"", "A", "5", "5A", "A0", "A-1", "A1.5", "A 5"} {
		_, _, err := ParseSeatLabel(in)
		assert.ErrorIs(t, err, ErrBadSeatLabel, in)
	}
}

func TestSeatLabelRoundTrip(t *testing.T) {
	s := Seat{RowLabel: "P", SeatNumber: 3}
	assert.Equal(t, "P3", s.Label())

	row, n, err := ParseSeatLabel(s.Label())
	require.NoError(t, err)
	assert.Equal(t, s.RowLabel, row)
	assert.Equal(t, s.SeatNumber, n)
}
