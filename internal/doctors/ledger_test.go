package doctors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveThenReserveAgainFails(t *testing.T) {
	ledger := Ledger{}

	require.NoError(t, ledger.Reserve("5_3_2025", "10:00 AM"))
	assert.ErrorIs(t, ledger.Reserve("5_3_2025", "10:00 AM"), ErrSlotTaken)
	assert.Equal(t, []string{"10:00 AM"}, ledger["5_3_2025"])
}

func TestReserveCreatesDateEntry(t *testing.T) {
	ledger := Ledger{}

	require.NoError(t, ledger.Reserve("5_3_2025", "10:00 AM"))
	require.NoError(t, ledger.Reserve("5_3_2025", "11:00 AM"))
	require.NoError(t, ledger.Reserve("6_3_2025", "10:00 AM"))

	assert.ElementsMatch(t, []string{"10:00 AM", "11:00 AM"}, ledger["5_3_2025"])
	assert.Equal(t, []string{"10:00 AM"}, ledger["6_3_2025"])
}

func TestReleaseIsIdempotent(t *testing.T) {
	ledger := Ledger{}
	require.NoError(t, ledger.Reserve("5_3_2025", "10:00 AM"))
	require.NoError(t, ledger.Reserve("5_3_2025", "11:00 AM"))

	ledger.Release("5_3_2025", "10:00 AM")
	once := ledger.Clone()
	ledger.Release("5_3_2025", "10:00 AM")

	assert.Equal(t, once, ledger)
	assert.Equal(t, []string{"11:00 AM"}, ledger["5_3_2025"])
}

func TestReleaseUnknownDateIsNoop(t *testing.T) {
	ledger := Ledger{"5_3_2025": {"10:00 AM"}}

	ledger.Release("9_9_2025", "10:00 AM")
	ledger.Release("5_3_2025", "4:00 PM")

	assert.Equal(t, Ledger{"5_3_2025": {"10:00 AM"}}, ledger)
}

func TestReleaseLastLabelDropsDateKey(t *testing.T) {
	ledger := Ledger{}
	require.NoError(t, ledger.Reserve("5_3_2025", "10:00 AM"))

	ledger.Release("5_3_2025", "10:00 AM")

	_, present := ledger["5_3_2025"]
	assert.False(t, present)

	// the freed slot can be booked again
	require.NoError(t, ledger.Reserve("5_3_2025", "10:00 AM"))
}

func TestValidateDateKey(t *testing.T) {
	tests := []struct {
		key string
		ok  bool
	}{
		{"5_3_2025", true},
		{"15_12_2024", true},
		{"05_3_2025", false},
		{"5_03_2025", false},
		{"5_3", false},
		{"5_3_2025_1", false},
		{"a_3_2025", false},
		{"0_3_2025", false},
		{"-5_3_2025", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateDateKey(tt.key)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrBadDateKey)
			}
		})
	}
}

func TestReserveRejectsEmptyTimeLabel(t *testing.T) {
	ledger := Ledger{}
	assert.ErrorIs(t, ledger.Reserve("5_3_2025", "  "), ErrBadTimeLabel)
}
