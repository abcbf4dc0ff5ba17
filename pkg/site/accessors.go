package site

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// histories returns the histories of the selected stations for a property.
func histories[T Dated](q Query, prop Property, build func(source, string, string) *History[T]) (map[string]*History[T], error) {
	src, err := newSource(q)
	if err != nil {
		return nil, err
	}
	if !q.Source.Supports(prop) {
		return nil, fmt.Errorf("%w: %s from %s", ErrUnsupported, prop, q.Source)
	}

	res := make(map[string]*History[T])
	for _, code := range q.selected(src) {
		if !src.has(code) {
			log.Warn().Str("component", "site").Str("station", code).Str("source", string(q.Source)).Msg("station not found")
			continue
		}
		res[code] = build(src, code, q.SourcePath)
	}
	return res, nil
}

// current returns the entries valid at q.Date.
func current[T Dated](q Query, prop Property, build func(source, string, string) *History[T]) (map[string]T, error) {
	hists, err := histories(q, prop, build)
	if err != nil {
		return nil, err
	}

	res := make(map[string]T, len(hists))
	for code, h := range hists {
		v, err := h.Get(q.Date)
		if err != nil {
			log.Warn().Str("component", "site").Str("station", code).Str("property", string(prop)).
				Time("date", q.Date).Msg("no valid entry")
			continue
		}
		res[code] = v
	}
	return res, nil
}

// AntennaHistories returns the antenna history for each selected station.
func AntennaHistories(q Query) (map[string]*History[Antenna], error) {
	return histories(q, PropAntenna, source.antennas)
}

// Antennas returns the antenna valid at q.Date for each selected station.
func Antennas(q Query) (map[string]Antenna, error) {
	return current(q, PropAntenna, source.antennas)
}

// ReceiverHistories returns the receiver history for each selected station.
func ReceiverHistories(q Query) (map[string]*History[Receiver], error) {
	return histories(q, PropReceiver, source.receivers)
}

// Receivers returns the receiver valid at q.Date for each selected station.
func Receivers(q Query) (map[string]Receiver, error) {
	return current(q, PropReceiver, source.receivers)
}

// EccentricityHistories returns the eccentricity history for each selected station.
func EccentricityHistories(q Query) (map[string]*History[Eccentricity], error) {
	return histories(q, PropEccentricity, source.eccentricities)
}

// Eccentricities returns the eccentricity valid at q.Date for each selected station.
func Eccentricities(q Query) (map[string]Eccentricity, error) {
	return current(q, PropEccentricity, source.eccentricities)
}

// IdentifierHistories returns the identifiers for each selected station.
// The identifiers of a station do not change, the history has a single entry valid since ever.
func IdentifierHistories(q Query) (map[string]*History[Identifier], error) {
	return histories(q, PropIdentifier, source.identifiers)
}

// Identifiers returns the identifiers for each selected station.
func Identifiers(q Query) (map[string]Identifier, error) {
	return current(q, PropIdentifier, source.identifiers)
}

// CoordHistories returns the coordinate solutions for each selected station.
func CoordHistories(q Query) (map[string]*History[Coord], error) {
	return histories(q, PropCoord, source.coords)
}

// Coords returns the coordinate solution valid at q.Date for each selected station.
// Use Coord.At to propagate the position to the date.
func Coords(q Query) (map[string]Coord, error) {
	return current(q, PropCoord, source.coords)
}
