package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "plain date", in: "2025-03-14", want: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339 truncated to day", in: "2025-03-14T22:10:00Z", want: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339 with offset normalized to utc", in: "2025-03-15T01:00:00+09:00", want: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", in: "14/03/2025", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %s", got.Time)
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "hours and minutes", in: "09:30", want: "09:30:00"},
		{name: "with seconds", in: "23:59:58", want: "23:59:58"},
		{name: "out of range", in: "25:00", wantErr: true},
		{name: "not a time", in: "noon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTimeOfDay)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())

			y, m, d := got.Date()
			assert.Equal(t, 1970, y)
			assert.Equal(t, time.January, m)
			assert.Equal(t, 1, d)
		})
	}
}

func TestDate_JSON(t *testing.T) {
	var holder struct {
		Day  Date      `json:"day"`
		Time TimeOfDay `json:"time"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"day":"2024-12-31","time":"07:05"}`), &holder))

	out, err := json.Marshal(holder)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-12-31","time":"07:05:00"}`, string(out))
}

func TestOptional_PresenceAndNull(t *testing.T) {
	var patch TripPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Seoul","endDate":null}`), &patch))

	assert.True(t, patch.Name.Set)
	assert.True(t, patch.Name.Valid)
	assert.Equal(t, "Seoul", patch.Name.Value)

	assert.True(t, patch.EndDate.Set)
	assert.False(t, patch.EndDate.Valid)
	assert.Nil(t, patch.EndDate.Ptr())

	assert.False(t, patch.Budget.Set)
	assert.False(t, patch.Description.Set)
}

func TestOptional_InvalidValue(t *testing.T) {
	var patch ExpensePatch
	err := json.Unmarshal([]byte(`{"amount":"twelve"}`), &patch)
	require.Error(t, err)
}

func TestDate_ScanStoredForms(t *testing.T) {
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	for _, src := range []any{
		want,
		"2025-03-14",
		"2025-03-14 00:00:00+00:00",
		[]byte("2025-03-14"),
	} {
		var d Date
		require.NoError(t, d.Scan(src), "%#v", src)
		assert.True(t, want.Equal(d.Time), "%#v scanned to %s", src, d.Time)
	}

	var d Date
	assert.ErrorIs(t, d.Scan(42), ErrInvalidDate)

	v, err := NewDate(want).Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14", v)
}

func TestTimeOfDay_ScanStoredForms(t *testing.T) {
	for _, src := range []any{"18:45:00", "18:45:00.000000", []byte("18:45")} {
		var tod TimeOfDay
		require.NoError(t, tod.Scan(src), "%#v", src)
		assert.Equal(t, "18:45:00", tod.String())
	}

	var tod TimeOfDay
	assert.ErrorIs(t, tod.Scan(3.5), ErrInvalidTimeOfDay)
}
