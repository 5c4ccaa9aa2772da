package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "ISO", input: "2023-02-01", want: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)},
		{name: "MDY two-digit year", input: "2/1/23", want: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)},
		{name: "MDY four-digit year", input: "2/1/2023", want: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)},
		{name: "MDY no leading zeros", input: "12/31/24", want: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		{name: "surrounding whitespace", input: " 2023-02-01 ", want: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)},
		{name: "empty", input: "", wantErr: true},
		{name: "free-form text", input: "Feb 1st 2023", wantErr: true},
		{name: "impossible date", input: "2023-02-30", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tc.want), "got %v, want %v", got, tc.want)
		})
	}
}

func TestFormatMDY(t *testing.T) {
	assert.Equal(t, "2/1/23", FormatMDY(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "12/31/09", FormatMDY(time.Date(2009, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestFormatISO(t *testing.T) {
	assert.Equal(t, "2023-02-01", FormatISO(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRoundTrip(t *testing.T) {
	// A date written in roster format must parse back to the same day.
	d := time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)
	back, err := Parse(FormatMDY(d))
	require.NoError(t, err)
	assert.True(t, back.Equal(d))
}
