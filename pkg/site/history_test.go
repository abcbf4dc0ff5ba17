package site

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInterval_Contains(t *testing.T) {
	tests := []struct {
		name string
		iv   Interval
		t    time.Time
		want bool
	}{
		{name: "since ever open end", iv: Interval{}, t: date(2000, 1, 1), want: true},
		{name: "at begin", iv: Interval{From: date(2010, 1, 1)}, t: date(2010, 1, 1), want: true},
		{name: "before begin", iv: Interval{From: date(2010, 1, 1)}, t: date(2009, 12, 31), want: false},
		{name: "at end", iv: Interval{From: date(2010, 1, 1), To: date(2011, 1, 1)}, t: date(2011, 1, 1), want: true},
		{name: "after end", iv: Interval{To: date(2011, 1, 1)}, t: date(2011, 1, 2), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.iv.Contains(tt.t))
		})
	}
}

func TestHistory_Add(t *testing.T) {
	assert := assert.New(t)

	h := NewHistory("wtzr",
		Receiver{Type: "B", Interval: Interval{From: date(2015, 1, 1)}},
		Receiver{Type: "A", Interval: Interval{From: date(2010, 1, 1), To: date(2014, 12, 31)}},
		Receiver{Type: "C", Interval: Interval{From: date(2015, 1, 1)}},
		Receiver{Type: "0"},
	)
	assert.Equal(4, h.Len())

	var types []string
	for _, recv := range h.Entries() {
		types = append(types, recv.Type)
	}
	assert.Equal([]string{"0", "A", "B", "C"}, types)
	assert.True(h.DateFrom().IsZero())
	assert.True(h.DateTo().IsZero(), "open end")
}

func TestHistory_Get(t *testing.T) {
	h := NewHistory("wtzr",
		Antenna{Type: "A", Interval: Interval{From: date(2010, 1, 1), To: date(2014, 12, 31)}},
		Antenna{Type: "B", Interval: Interval{From: date(2015, 1, 1), To: date(2018, 1, 1)}},
		Antenna{Type: "C", Interval: Interval{From: date(2016, 1, 1), To: date(2016, 6, 30)}},
	)

	tests := []struct {
		name    string
		date    time.Time
		want    string
		wantErr bool
	}{
		{name: "zero date gives latest", date: time.Time{}, want: "C"},
		{name: "first", date: date(2012, 1, 1), want: "A"},
		{name: "end inclusive", date: date(2014, 12, 31), want: "A"},
		{name: "overlap latest begin wins", date: date(2016, 3, 1), want: "C"},
		{name: "after overlap", date: date(2017, 1, 1), want: "B"},
		{name: "gap", date: date(2014, 12, 31).Add(time.Hour), wantErr: true},
		{name: "before", date: date(2000, 1, 1), wantErr: true},
		{name: "after", date: date(2020, 1, 1), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Get(tt.date)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoEntry)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Type)
		})
	}

	assert.Equal(t, date(2010, 1, 1), h.DateFrom())
	assert.Equal(t, date(2018, 1, 1), h.DateTo())
}

func TestHistory_empty(t *testing.T) {
	assert := assert.New(t)

	var h *History[Coord]
	assert.Equal(0, h.Len())
	assert.Nil(h.Entries())
	_, ok := h.Last()
	assert.False(ok)
	_, err := NewHistory[Coord]("wtzr").Get(date(2020, 1, 1))
	assert.ErrorIs(err, ErrNoEntry)

	n := 0
	for range h.All() {
		n++
	}
	assert.Zero(n)
}

func TestHistory_All(t *testing.T) {
	h := NewHistory("wtzr",
		Eccentricity{Up: 0.1, Interval: Interval{From: date(2010, 1, 1)}},
		Eccentricity{Up: 0.2, Interval: Interval{From: date(2011, 1, 1)}},
		Eccentricity{Up: 0.3, Interval: Interval{From: date(2012, 1, 1)}},
	)

	var froms []time.Time
	for iv, ecc := range h.All() {
		froms = append(froms, iv.From)
		if ecc.Up > 0.15 {
			break
		}
	}
	assert.Equal(t, []time.Time{date(2010, 1, 1), date(2011, 1, 1)}, froms)
}

func TestHistory_MarshalJSON(t *testing.T) {
	assert := assert.New(t)

	h := NewHistory("wtzr", Receiver{Station: "wtzr", Type: "LEICA GR50", Interval: Interval{From: date(2018, 5, 30)}})
	b, err := json.Marshal(h)
	require.NoError(t, err)

	var got struct {
		Station string
		From    time.Time
		Entries []map[string]any
	}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal("wtzr", got.Station)
	assert.Equal(date(2018, 5, 30), got.From)
	require.Len(t, got.Entries, 1)
	assert.Equal("LEICA GR50", got.Entries[0]["type"])
	assert.Equal("2018-05-30T00:00:00Z", got.Entries[0]["from"])

	b, err = json.Marshal(NewHistory[Receiver]("abmf"))
	require.NoError(t, err)
	assert.Contains(string(b), `"entries":[]`)
}
