package reminder

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTimeOfDay_AcceptsEveryMinute(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			s := fmt.Sprintf("%02d:%02d", h, m)
			assert.True(t, ValidTimeOfDay(s), "expected %q to be valid", s)
		}
	}
}

func TestValidTimeOfDay_Rejects(t *testing.T) {
	tests := []string{
		"",
		"24:00",
		"9:5",
		"9:05",
		"09:5",
		"noon",
		"12:60",
		"99:99",
		" 07:30",
		"07:30 ",
		"07:300",
		"07-30",
		"0730",
		"ab:cd",
		"-1:30",
		"07:3a",
		"１２:００",
	}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			assert.False(t, ValidTimeOfDay(s))
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("07:30")
	require.NoError(t, err)
	assert.Equal(t, "07:30", got)

	_, err = ParseTimeOfDay("7:30")
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestFormatTimeOfDay(t *testing.T) {
	at := time.Date(2026, 3, 1, 7, 30, 59, 999, time.Local)
	assert.Equal(t, "07:30", FormatTimeOfDay(at))

	midnight := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "00:00", FormatTimeOfDay(midnight))
}
