package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeString_Minutes(t *testing.T) {
	tests := []struct {
		in      TimeString
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "24:00", want: 1440},
		{in: "24:01", wantErr: true},
		{in: "9:30", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "ab:cd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, err := tt.in.Minutes()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_RoundTrip(t *testing.T) {
	assert.Equal(t, TimeString("17:05"), FromMinutes(17*60+5))
	assert.Equal(t, TimeString("08:15"), NewTimeString(time.Date(2026, 1, 5, 8, 15, 59, 0, time.UTC)))

	next, err := TimeString("23:30").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("24:00"), next)

	_, err = TimeString("23:30").AddMinutes(31)
	assert.Error(t, err)

	assert.True(t, TimeString("09:00").IsBefore("09:01"))
	assert.True(t, TimeString("10:00").IsAfter("09:59"))
}
