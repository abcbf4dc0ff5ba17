package site

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Info bundles the properties of a station valid at a date.
// Properties not provided by the source or not valid at the date are nil.
type Info struct {
	Station      string        `json:"station"`
	Antenna      *Antenna      `json:"antenna,omitempty"`
	Receiver     *Receiver     `json:"receiver,omitempty"`
	Eccentricity *Eccentricity `json:"eccentricity,omitempty"`
	Identifier   *Identifier   `json:"identifier,omitempty"`
	Coord        *Coord        `json:"coord,omitempty"`
}

// InfoHistory bundles the property histories of a station.
type InfoHistory struct {
	Station        string                 `json:"station"`
	Antennas       *History[Antenna]      `json:"antennas,omitempty"`
	Receivers      *History[Receiver]     `json:"receivers,omitempty"`
	Eccentricities *History[Eccentricity] `json:"eccentricities,omitempty"`
	Identifiers    *History[Identifier]   `json:"identifiers,omitempty"`
	Coords         *History[Coord]        `json:"coords,omitempty"`
}

// GetInfoHistory returns all property histories the source provides for each selected station.
func GetInfoHistory(q Query) (map[string]*InfoHistory, error) {
	src, err := newSource(q)
	if err != nil {
		return nil, err
	}

	res := make(map[string]*InfoHistory)
	for _, code := range q.selected(src) {
		if !src.has(code) {
			log.Warn().Str("component", "site").Str("station", code).Str("source", string(q.Source)).Msg("station not found")
			continue
		}

		h := &InfoHistory{Station: code}
		if q.Source.Supports(PropAntenna) {
			h.Antennas = src.antennas(code, q.SourcePath)
		}
		if q.Source.Supports(PropReceiver) {
			h.Receivers = src.receivers(code, q.SourcePath)
		}
		if q.Source.Supports(PropEccentricity) {
			h.Eccentricities = src.eccentricities(code, q.SourcePath)
		}
		if q.Source.Supports(PropIdentifier) {
			h.Identifiers = src.identifiers(code, q.SourcePath)
		}
		if q.Source.Supports(PropCoord) {
			h.Coords = src.coords(code, q.SourcePath)
		}
		res[code] = h
	}
	return res, nil
}

// GetInfo returns the properties valid at q.Date for each selected station.
func GetInfo(q Query) (map[string]*Info, error) {
	hists, err := GetInfoHistory(q)
	if err != nil {
		return nil, err
	}

	res := make(map[string]*Info, len(hists))
	for code, h := range hists {
		res[code] = h.At(q.Date)
	}
	return res, nil
}

// At returns the properties valid at date, the latest ones if date is zero.
func (h *InfoHistory) At(date time.Time) *Info {
	return &Info{
		Station:      h.Station,
		Antenna:      valid(h.Antennas, date),
		Receiver:     valid(h.Receivers, date),
		Eccentricity: valid(h.Eccentricities, date),
		Identifier:   valid(h.Identifiers, date),
		Coord:        valid(h.Coords, date),
	}
}

func valid[T Dated](h *History[T], date time.Time) *T {
	v, err := h.Get(date)
	if err != nil {
		return nil
	}
	return &v
}

// Merge fills the nil properties of info from other.
func (info *Info) Merge(other *Info) {
	if other == nil {
		return
	}
	if info.Antenna == nil {
		info.Antenna = other.Antenna
	}
	if info.Receiver == nil {
		info.Receiver = other.Receiver
	}
	if info.Eccentricity == nil {
		info.Eccentricity = other.Eccentricity
	}
	if info.Identifier == nil {
		info.Identifier = other.Identifier
	}
	if info.Coord == nil {
		info.Coord = other.Coord
	}
}

// Merge fills the nil or empty histories of h from other.
func (h *InfoHistory) Merge(other *InfoHistory) {
	if other == nil {
		return
	}
	if h.Antennas.Len() == 0 {
		h.Antennas = other.Antennas
	}
	if h.Receivers.Len() == 0 {
		h.Receivers = other.Receivers
	}
	if h.Eccentricities.Len() == 0 {
		h.Eccentricities = other.Eccentricities
	}
	if h.Identifiers.Len() == 0 {
		h.Identifiers = other.Identifiers
	}
	if h.Coords.Len() == 0 {
		h.Coords = other.Coords
	}
}

// Merge adds the stations of src to dst and fills the missing properties of stations in both.
// It is used to look up a station in several sources, the first source has priority.
func Merge(dst, src map[string]*Info) {
	for code, info := range src {
		if existing, ok := dst[code]; ok {
			existing.Merge(info)
			continue
		}
		dst[code] = info
	}
}
