package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid saturday", "2025-06-07", false},
		{"missing zero padding", "2025-6-7", true},
		{"impossible day", "2025-02-30", true},
		{"trailing text", "2025-06-07T00:00", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidDate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	_, err := ParseMonth("2025-06")
	assert.NoError(t, err)

	_, err = ParseMonth("2025-13")
	assert.ErrorIs(t, err, model.ErrInvalidMonth)

	_, err = ParseMonth("2025-06-01")
	assert.ErrorIs(t, err, model.ErrInvalidMonth)
}

func TestMonthOf(t *testing.T) {
	assert.Equal(t, "2025-06", MonthOf("2025-06-07"))
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		date     string
		expected bool
	}{
		{"2025-06-07", true},  // Saturday
		{"2025-06-08", true},  // Sunday
		{"2025-06-09", false}, // Monday
		{"2025-06-11", false}, // Wednesday
		{"2025-06-13", false}, // Friday
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			day, err := ParseDate(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, IsWeekend(day))
		})
	}
}

func TestWeekendDates(t *testing.T) {
	dates, err := WeekendDates("2025-06")
	require.NoError(t, err)

	// June 2025 starts on a Sunday and ends on a Monday
	expected := []string{
		"2025-06-01",
		"2025-06-07", "2025-06-08",
		"2025-06-14", "2025-06-15",
		"2025-06-21", "2025-06-22",
		"2025-06-28", "2025-06-29",
	}
	assert.Equal(t, expected, dates)
}

func TestWeekendDates_StaysInsideMonth(t *testing.T) {
	// March 2025 ends on a Monday, the 31st; the 29th and 30th are the last weekend
	dates, err := WeekendDates("2025-03")
	require.NoError(t, err)
	require.NotEmpty(t, dates)
	assert.Equal(t, "2025-03-01", dates[0])
	assert.Equal(t, "2025-03-30", dates[len(dates)-1])
	for _, d := range dates {
		assert.Equal(t, "2025-03", MonthOf(d))
	}
}

func TestWeekendDates_InvalidMonth(t *testing.T) {
	_, err := WeekendDates("June")
	assert.ErrorIs(t, err, model.ErrInvalidMonth)
}

func TestCalendar_Today(t *testing.T) {
	cal, err := New(time.FixedZone("IST", 5*60*60+30*60), nil)
	require.NoError(t, err)

	// 20:00 UTC on the 6th is already the 7th in India
	now := time.Date(2025, 6, 6, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-07", cal.Today(now))
}

func TestCalendar_IsBlackedOut(t *testing.T) {
	cal, err := New(time.UTC, []string{"FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25,26"})
	require.NoError(t, err)

	christmas, _ := ParseDate("2027-12-25")
	boxingDay, _ := ParseDate("2027-12-26")
	other, _ := ParseDate("2027-12-18")

	assert.True(t, cal.IsBlackedOut(christmas))
	assert.True(t, cal.IsBlackedOut(boxingDay))
	assert.False(t, cal.IsBlackedOut(other))
}

func TestNew_InvalidBlackout(t *testing.T) {
	_, err := New(time.UTC, []string{"NOT_A_RULE"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid blackout rule 0")
}
