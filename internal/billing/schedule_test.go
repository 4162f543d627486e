package billing

import (
	"testing"
	"time"

	"billbook/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name   string
		anchor string
		freq   model.RecurrenceFrequency
		want   string
	}{
		{"weekly", "2024-06-01", model.FreqWeekly, "2024-06-08"},
		{"weekly across month end", "2024-06-28", model.FreqWeekly, "2024-07-05"},
		{"fortnightly", "2024-06-01", model.FreqFortnightly, "2024-06-15"},
		{"monthly", "2024-06-01", model.FreqMonthly, "2024-07-01"},
		{"monthly clamps to leap February", "2024-01-31", model.FreqMonthly, "2024-02-29"},
		{"monthly clamps to short February", "2023-01-31", model.FreqMonthly, "2023-02-28"},
		{"monthly clamps 31 to 30", "2024-05-31", model.FreqMonthly, "2024-06-30"},
		{"monthly keeps mid-month day", "2024-01-15", model.FreqMonthly, "2024-02-15"},
		{"monthly across year end", "2024-12-31", model.FreqMonthly, "2025-01-31"},
		{"bimonthly", "2024-06-15", model.FreqBimonthly, "2024-08-15"},
		{"bimonthly clamp", "2024-07-31", model.FreqBimonthly, "2024-09-30"},
		{"quarterly", "2024-01-15", model.FreqQuarterly, "2024-04-15"},
		{"quarterly clamp from November", "2024-11-30", model.FreqQuarterly, "2025-02-28"},
		{"annually", "2024-06-01", model.FreqAnnually, "2025-06-01"},
		{"annually Feb 29 to non-leap", "2024-02-29", model.FreqAnnually, "2025-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(day(tt.anchor), tt.freq)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestNextOccurrenceNone(t *testing.T) {
	got, err := NextOccurrence(day("2024-06-01"), model.FreqNone)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNextOccurrenceUnknownFrequency(t *testing.T) {
	_, err := NextOccurrence(day("2024-06-01"), model.RecurrenceFrequency("daily"))
	assert.ErrorIs(t, err, ErrUnknownFrequency)
}
