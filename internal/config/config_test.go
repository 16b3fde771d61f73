package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeatLayoutDefault(t *testing.T) {
	rows, err := ParseSeatLayout(DefaultSeatLayout)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	total := 0
	for _, r := range rows {
		total += r.Count
	}
	assert.Equal(t, 104, total)

	// Sorted by label, so the VIP row comes last.
	last := rows[len(rows)-1]
	assert.Equal(t, "P", last.Label)
	assert.Equal(t, 9, last.Count)
	assert.Equal(t, "VIP", last.Type)
	assert.Equal(t, "STANDARD", rows[0].Type)
}

func TestParseSeatLayoutNormalisation(t *testing.T) {
	rows, err := ParseSeatLayout(" b:2 , a:1:vip ,")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, SeatRow{Label: "A", Count: 1, Type: "VIP"}, rows[0])
	assert.Equal(t, SeatRow{Label: "B", Count: 2, Type: "STANDARD"}, rows[1])
}

func TestParseSeatLayoutInvalid(t *testing.T) {
	for _, spec := range []string{
		"",
		"A",
		"A:0",
		"A:-1",
		"A:x",
		"A:1:GOLD",
		"A:1,A:2",
		"A:1:VIP:extra",
		":3",
	} {
		_, err := ParseSeatLayout(spec)
		assert.Error(t, err, spec)
	}
}
