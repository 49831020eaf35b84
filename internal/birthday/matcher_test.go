package birthday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesDay(t *testing.T) {
	ref := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dob     string
		want    bool
		wantErr bool
	}{
		{
			name: "same month and day, different year",
			dob:  "1990-03-15",
			want: true,
		},
		{
			name: "day off by one",
			dob:  "1990-03-16",
			want: false,
		},
		{
			name: "year ignored entirely",
			dob:  "2001-03-15",
			want: true,
		},
		{
			name: "month mismatch",
			dob:  "1990-04-15",
			want: false,
		},
		{
			name: "rfc3339 timestamp",
			dob:  "1988-03-15T00:00:00Z",
			want: true,
		},
		{
			name: "slash separated",
			dob:  "1975/03/15",
			want: true,
		},
		{
			name: "surrounding whitespace",
			dob:  " 1990-03-15 ",
			want: true,
		},
		{
			name:    "garbage input",
			dob:     "not-a-date",
			wantErr: true,
		},
		{
			name:    "empty input",
			dob:     "",
			wantErr: true,
		},
		{
			name:    "impossible month",
			dob:     "1990-13-01",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchesDay(ref, tt.dob)
			if tt.wantErr {
				require.Error(t, err)
				var malformed *MalformedDateError
				assert.ErrorAs(t, err, &malformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchesDayLeapling(t *testing.T) {
	dob := "2000-02-29"

	onLeapDay := time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC)
	got, err := MatchesDay(onLeapDay, dob)
	require.NoError(t, err)
	assert.True(t, got, "leapling matches on Feb 29")

	nonLeapFeb28 := time.Date(2023, 2, 28, 8, 0, 0, 0, time.UTC)
	got, err = MatchesDay(nonLeapFeb28, dob)
	require.NoError(t, err)
	assert.False(t, got, "no Feb 29 in 2023, so no match on Feb 28")
}

func TestMalformedDateErrorCarriesValue(t *testing.T) {
	_, err := ParseDOB("03-15-1990")
	var malformed *MalformedDateError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "03-15-1990", malformed.Value)
	assert.Contains(t, malformed.Error(), "03-15-1990")
}
