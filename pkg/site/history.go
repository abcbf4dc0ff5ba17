package site

import (
	"encoding/json"
	"iter"
	"slices"
	"time"
)

// Interval is the validity period of a property. A zero From means since ever, a zero To means open end.
type Interval struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Period returns the interval itself. It makes all types embedding an Interval Dated.
func (iv Interval) Period() Interval {
	return iv
}

// Contains reports whether t is within the interval, both ends included.
func (iv Interval) Contains(t time.Time) bool {
	if !iv.From.IsZero() && t.Before(iv.From) {
		return false
	}
	if !iv.To.IsZero() && t.After(iv.To) {
		return false
	}
	return true
}

// IsOpen reports whether the interval has no end.
func (iv Interval) IsOpen() bool {
	return iv.To.IsZero()
}

// Dated is a value with a validity period.
type Dated interface {
	Period() Interval
}

// History is the time ordered list of a property of a station.
type History[T Dated] struct {
	Station string
	entries []T // sorted by From, zero From first
}

// NewHistory returns an empty history for the station.
func NewHistory[T Dated](station string, values ...T) *History[T] {
	h := &History[T]{Station: station}
	for _, v := range values {
		h.Add(v)
	}
	return h
}

// Add inserts v ordered by the begin of its period. Entries with equal begin keep their insertion order.
func (h *History[T]) Add(v T) {
	from := v.Period().From
	i := len(h.entries)
	for i > 0 && h.entries[i-1].Period().From.After(from) {
		i--
	}
	h.entries = slices.Insert(h.entries, i, v)
}

// Get returns the entry valid at date. If entries overlap, the one with the latest begin wins.
// A zero date returns the latest entry.
func (h *History[T]) Get(date time.Time) (T, error) {
	var zero T
	if h == nil || len(h.entries) == 0 {
		return zero, ErrNoEntry
	}
	if date.IsZero() {
		return h.entries[len(h.entries)-1], nil
	}

	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].Period().Contains(date) {
			return h.entries[i], nil
		}
	}
	return zero, ErrNoEntry
}

// Len returns the number of entries.
func (h *History[T]) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}

// Entries returns a copy of the entries in time order.
func (h *History[T]) Entries() []T {
	if h == nil {
		return nil
	}
	return slices.Clone(h.entries)
}

// All iterates over the entries in time order.
func (h *History[T]) All() iter.Seq2[Interval, T] {
	return func(yield func(Interval, T) bool) {
		if h == nil {
			return
		}
		for _, v := range h.entries {
			if !yield(v.Period(), v) {
				return
			}
		}
	}
}

// Last returns the latest entry.
func (h *History[T]) Last() (T, bool) {
	v, err := h.Get(time.Time{})
	return v, err == nil
}

// DateFrom returns the begin of the history, zero if it is valid since ever.
func (h *History[T]) DateFrom() time.Time {
	if h.Len() == 0 {
		return time.Time{}
	}
	return h.entries[0].Period().From
}

// DateTo returns the end of the history, zero if any entry is still valid.
func (h *History[T]) DateTo() time.Time {
	var to time.Time
	for _, v := range h.Entries() {
		iv := v.Period()
		if iv.IsOpen() {
			return time.Time{}
		}
		if iv.To.After(to) {
			to = iv.To
		}
	}
	return to
}

// MarshalJSON encodes the history as object with station and entries.
func (h *History[T]) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("null"), nil
	}
	entries := h.entries
	if entries == nil {
		entries = []T{}
	}
	return json.Marshal(struct {
		Station string    `json:"station"`
		From    time.Time `json:"from"`
		To      time.Time `json:"to"`
		Entries []T       `json:"entries"`
	}{h.Station, h.DateFrom(), h.DateTo(), entries})
}
