package clock

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTo24Hour(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  Time
		expectErr bool
	}{
		{name: "Midnight", input: "12:00 am", expected: Time{0, 0}},
		{name: "Noon", input: "12:00 pm", expected: Time{12, 0}},
		{name: "Afternoon", input: "1:05 pm", expected: Time{13, 5}},
		{name: "Morning", input: "8:00 am", expected: Time{8, 0}},
		{name: "Upper case", input: "2:30 PM", expected: Time{14, 30}},
		{name: "No space before meridiem", input: "9:15am", expected: Time{9, 15}},
		{name: "Last minute of day", input: "11:59 pm", expected: Time{23, 59}},
		{name: "Hour zero", input: "0:30 am", expectErr: true},
		{name: "Hour thirteen", input: "13:00 pm", expectErr: true},
		{name: "Minute out of range", input: "8:60 am", expectErr: true},
		{name: "Missing meridiem", input: "8:00", expectErr: true},
		{name: "Single digit minute", input: "8:0 am", expectErr: true},
		{name: "Garbage", input: "Abierto 24 horas", expectErr: true},
		{name: "Empty", input: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := To24Hour(tc.input)
			if tc.expectErr {
				var formatErr *FormatError
				require.Error(t, err)
				assert.True(t, errors.As(err, &formatErr))
				assert.Equal(t, tc.input, formatErr.Input)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestSubtractMinutes(t *testing.T) {
	testCases := []struct {
		name     string
		hour     int
		minute   int
		n        int
		expected Time
	}{
		{name: "Wraps to previous day", hour: 0, minute: 10, n: 30, expected: Time{23, 40}},
		{name: "Exactly midnight", hour: 1, minute: 0, n: 60, expected: Time{0, 0}},
		{name: "Last minute of day", hour: 0, minute: 0, n: 1, expected: Time{23, 59}},
		{name: "Same day", hour: 14, minute: 0, n: 45, expected: Time{13, 15}},
		{name: "Zero offset", hour: 9, minute: 30, n: 0, expected: Time{9, 30}},
		{name: "Whole day", hour: 9, minute: 30, n: 1440, expected: Time{9, 30}},
		{name: "Several days", hour: 8, minute: 0, n: 3*1440 + 90, expected: Time{6, 30}},
		{name: "Large offset across midnight", hour: 0, minute: 5, n: 5000, expected: Time{12, 45}},
		{name: "Negative offset moves forward", hour: 23, minute: 50, n: -20, expected: Time{0, 10}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SubtractMinutes(tc.hour, tc.minute, tc.n))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12:00 AM", Format(0, 0))
	assert.Equal(t, "1:05 PM", Format(13, 5))
	assert.Equal(t, "12:30 PM", Format(12, 30))
	assert.Equal(t, "9:00 AM", Format(9, 0))
	assert.Equal(t, "11:59 PM", Format(23, 59))
}

func TestFormatRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			got, err := To24Hour(strings.ToLower(Format(h, m)))
			require.NoError(t, err)
			require.Equal(t, Time{h, m}, got)
		}
	}
}

func TestFormatPreference(t *testing.T) {
	sentinel := Sentinel()
	assert.Equal(t, NotConfiguredLabel, FormatPreference(nil))
	assert.Equal(t, NotConfiguredLabel, FormatPreference(&sentinel))
	assert.Equal(t, "8:30 AM", FormatPreference(&Time{8, 30}))
}

func TestIsConfigured(t *testing.T) {
	assert.False(t, IsConfigured(nil))
	assert.False(t, IsConfigured(&Time{Unset, Unset}))
	assert.False(t, IsConfigured(&Time{8, Unset}))
	assert.False(t, IsConfigured(&Time{Unset, 0}))
	assert.True(t, IsConfigured(&Time{0, 0}))
}

func TestTimeValid(t *testing.T) {
	assert.True(t, Time{23, 59}.Valid())
	assert.False(t, Sentinel().Valid())
	assert.False(t, Time{24, 0}.Valid())
	assert.Equal(t, "08:05", Time{8, 5}.String())
}
