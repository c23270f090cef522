package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/rentease/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time { return &t }

func TestOverlapsBounded(t *testing.T) {
	tests := []struct {
		name                   string
		aStart, aEnd           time.Time
		bStart, bEnd           time.Time
		want                   bool
	}{
		{"identical", day(2025, 1, 1), day(2025, 6, 30), day(2025, 1, 1), day(2025, 6, 30), true},
		{"partial overlap", day(2025, 1, 1), day(2025, 6, 30), day(2025, 6, 1), day(2025, 12, 31), true},
		{"shared single day", day(2025, 1, 1), day(2025, 6, 30), day(2025, 6, 30), day(2025, 12, 31), true},
		{"back to back, no shared day", day(2025, 1, 1), day(2025, 6, 30), day(2025, 7, 1), day(2025, 12, 31), false},
		{"disjoint", day(2025, 1, 1), day(2025, 2, 28), day(2025, 6, 1), day(2025, 6, 30), false},
		{"contained", day(2025, 1, 1), day(2025, 12, 31), day(2025, 3, 1), day(2025, 3, 31), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, &tt.aEnd, tt.bStart, &tt.bEnd)
			assert.Equal(t, tt.want, got)
			// Bounded intervals compare symmetrically
			assert.Equal(t, got, Overlaps(tt.bStart, &tt.bEnd, tt.aStart, &tt.aEnd))
		})
	}
}

func TestOverlapsOpenEnded(t *testing.T) {
	// An ongoing lease conflicts with anything starting on or after its start
	assert.True(t, Overlaps(day(2025, 3, 1), nil, day(2025, 6, 1), datePtr(day(2025, 12, 31))))
	assert.True(t, Overlaps(day(2025, 3, 1), nil, day(2025, 3, 1), nil))
	assert.False(t, Overlaps(day(2025, 3, 1), nil, day(2025, 1, 1), datePtr(day(2025, 2, 1))))

	// A new ongoing lease conflicts if it starts before the existing one ends
	assert.True(t, Overlaps(day(2025, 1, 1), datePtr(day(2025, 6, 30)), day(2025, 6, 30), nil))
	assert.False(t, Overlaps(day(2025, 1, 1), datePtr(day(2025, 6, 30)), day(2025, 7, 1), nil))
}

func TestDatesMonthlyDueDay31ClampsToMonthEnd(t *testing.T) {
	dates := Dates(day(2025, 1, 1), day(2025, 12, 31), domain.FrequencyMonthly, 31)
	require.Len(t, dates, 12)

	want := []time.Time{
		day(2025, 1, 31), day(2025, 2, 28), day(2025, 3, 31), day(2025, 4, 30),
		day(2025, 5, 31), day(2025, 6, 30), day(2025, 7, 31), day(2025, 8, 31),
		day(2025, 9, 30), day(2025, 10, 31), day(2025, 11, 30), day(2025, 12, 31),
	}
	assert.Equal(t, want, dates)
}

func TestDatesLeapYearFebruary(t *testing.T) {
	dates := Dates(day(2024, 1, 1), day(2024, 3, 31), domain.FrequencyMonthly, 30)
	assert.Equal(t, []time.Time{day(2024, 1, 30), day(2024, 2, 29), day(2024, 3, 30)}, dates)
}

func TestDatesFirstCandidateBeforeStartAdvances(t *testing.T) {
	// Jan 1 precedes the start, Feb 1 exceeds the end: nothing to emit
	dates := Dates(day(2025, 1, 15), day(2025, 1, 20), domain.FrequencyMonthly, 1)
	assert.Empty(t, dates)

	// Same shape but a longer lease picks up from the next period
	dates = Dates(day(2025, 1, 15), day(2025, 4, 30), domain.FrequencyMonthly, 1)
	assert.Equal(t, []time.Time{day(2025, 2, 1), day(2025, 3, 1), day(2025, 4, 1)}, dates)
}

func TestDatesQuarterlyAndYearly(t *testing.T) {
	dates := Dates(day(2025, 1, 1), day(2025, 12, 31), domain.FrequencyQuarterly, 15)
	assert.Equal(t, []time.Time{day(2025, 1, 15), day(2025, 4, 15), day(2025, 7, 15), day(2025, 10, 15)}, dates)

	dates = Dates(day(2024, 2, 1), day(2027, 1, 31), domain.FrequencyYearly, 29)
	assert.Equal(t, []time.Time{day(2024, 2, 29), day(2025, 2, 28), day(2026, 2, 28)}, dates)
}

func TestDatesRejectsBadInput(t *testing.T) {
	assert.Nil(t, Dates(day(2025, 1, 1), day(2025, 12, 31), domain.FrequencyMonthly, 0))
	assert.Nil(t, Dates(day(2025, 1, 1), day(2025, 12, 31), domain.FrequencyMonthly, 32))
	assert.Nil(t, Dates(day(2025, 1, 1), day(2025, 12, 31), domain.Frequency("weekly"), 1))
	assert.Nil(t, Dates(day(2025, 12, 31), day(2025, 1, 1), domain.FrequencyMonthly, 1))
}

func TestAllocateAbsorbsRemainderInLastInstallment(t *testing.T) {
	amounts := Allocate(decimal.RequireFromString("1000.00"), 3)
	require.Len(t, amounts, 3)
	assert.Equal(t, "333.33", amounts[0].StringFixed(2))
	assert.Equal(t, "333.33", amounts[1].StringFixed(2))
	assert.Equal(t, "333.34", amounts[2].StringFixed(2))
}

func TestAllocateSumsToTotalExactly(t *testing.T) {
	totals := []string{"1000.00", "100.01", "0.05", "2499.99", "1234.56"}
	for _, s := range totals {
		total := decimal.RequireFromString(s)
		for n := 1; n <= 13; n++ {
			amounts := Allocate(total, n)
			require.Len(t, amounts, n)

			sum := decimal.Zero
			for _, a := range amounts {
				sum = sum.Add(a)
			}
			assert.True(t, sum.Equal(total), "total=%s n=%d sum=%s", s, n, sum)
		}
	}
}

func TestAllocateZeroInstallments(t *testing.T) {
	assert.Nil(t, Allocate(decimal.RequireFromString("100.00"), 0))
	assert.Nil(t, Allocate(decimal.RequireFromString("100.00"), -1))
}
