package site

import (
	"fmt"
	"slices"
	"strings"

	"github.com/de-bkg/siteinfo/pkg/gnss"
	"github.com/de-bkg/siteinfo/pkg/position"
	"github.com/de-bkg/siteinfo/pkg/sinex"
	"github.com/de-bkg/siteinfo/pkg/sitelog"
	"github.com/de-bkg/siteinfo/pkg/ssc"
)

// source builds the property histories of a station from parsed data.
// Methods are only called for properties the source supports and for known stations.
type source interface {
	codes() []string
	has(code string) bool
	antennas(code, path string) *History[Antenna]
	receivers(code, path string) *History[Receiver]
	eccentricities(code, path string) *History[Eccentricity]
	identifiers(code, path string) *History[Identifier]
	coords(code, path string) *History[Coord]
}

func newSource(q Query) (source, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	switch q.Source {
	case SourceSINEX:
		if data, ok := q.Data.(*sinex.Data); ok && data != nil {
			return snxSource{data}, nil
		}
	case SourceSSC:
		if data, ok := q.Data.(*ssc.Data); ok && data != nil {
			return sscSource{data}, nil
		}
	case SourceSitelog:
		switch data := q.Data.(type) {
		case sitelog.Data:
			return sitelogSource{data}, nil
		case *sitelog.Sitelog:
			if data != nil {
				return sitelogSource{sitelog.Data{data.Code(): data}}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %T for source %q", ErrDataType, q.Data, q.Source)
}

// SINEX

type snxSource struct {
	data *sinex.Data
}

func (src snxSource) codes() []string { return src.data.StationCodes() }

func (src snxSource) has(code string) bool {
	_, ok := src.data.Station(code)
	return ok
}

func (src snxSource) station(code string) *sinex.Station {
	sta, _ := src.data.Station(code)
	return sta
}

func (src snxSource) antennas(code, path string) *History[Antenna] {
	h := NewHistory[Antenna](code)
	for _, ant := range src.station(code).Antennas {
		radome := ant.Radome
		if radome == "" {
			radome = "NONE"
		}
		h.Add(Antenna{
			Station:    code,
			Type:       fmt.Sprintf("%-16s%4s", ant.Model(), radome),
			Radome:     radome,
			SerialNum:  ant.SerialNum,
			Interval:   Interval{From: ant.DateInstalled, To: ant.DateRemoved},
			SourcePath: path,
		})
	}
	return h
}

func (src snxSource) receivers(code, path string) *History[Receiver] {
	h := NewHistory[Receiver](code)
	for _, recv := range src.station(code).Receivers {
		h.Add(Receiver{
			Station:    code,
			Type:       recv.Type,
			SerialNum:  recv.SerialNum,
			Firmware:   recv.Firmware,
			Interval:   Interval{From: recv.DateInstalled, To: recv.DateRemoved},
			SourcePath: path,
		})
	}
	return h
}

func (src snxSource) eccentricities(code, path string) *History[Eccentricity] {
	h := NewHistory[Eccentricity](code)
	for _, ecc := range src.station(code).Eccentricities {
		e := Eccentricity{
			Station:    code,
			System:     ecc.RefSystem,
			Interval:   Interval{From: ecc.DateFrom, To: ecc.DateTo},
			SourcePath: path,
		}
		if ecc.RefSystem == "XYZ" {
			e.XYZ = position.TRS{X: ecc.Vector[0], Y: ecc.Vector[1], Z: ecc.Vector[2]}
		} else {
			e.Up, e.North, e.East = ecc.Vector[0], ecc.Vector[1], ecc.Vector[2]
		}
		h.Add(e)
	}
	return h
}

func (src snxSource) identifiers(code, path string) *History[Identifier] {
	h := NewHistory[Identifier](code)
	id := src.station(code).ID
	if id == nil {
		return h
	}

	lon := id.Lon
	if lon > 180 {
		lon -= 360
	}
	h.Add(Identifier{
		Station:     code,
		Name:        string(id.Code),
		PointCode:   id.PointCode,
		DOMES:       id.DOMESNumber,
		Description: id.Description,
		Technique:   id.ObsTech,
		Lat:         id.Lat,
		Lon:         lon,
		Height:      id.Height,
		SourcePath:  path,
	})
	return h
}

func (src snxSource) coords(code, path string) *History[Coord] {
	sta := src.station(code)
	h := NewHistory[Coord](code)
	for _, crd := range sta.Coordinates() {
		var iv Interval
		if epo, ok := sta.Epoch(crd.PointCode, crd.SolID); ok {
			iv = Interval{From: epo.Start, To: epo.End}
		}
		h.Add(Coord{
			Station:    code,
			Pos:        crd.Pos,
			Sigma:      crd.Sigma,
			Vel:        crd.Vel,
			RefEpoch:   crd.Epoch,
			Solution:   crd.SolID,
			Interval:   iv,
			SourcePath: path,
		})
	}
	return h
}

// SSC

type sscSource struct {
	data *ssc.Data
}

func (src sscSource) codes() []string { return src.data.StationCodes() }

func (src sscSource) has(code string) bool {
	_, ok := src.data.Station(code)
	return ok
}

func (src sscSource) antennas(string, string) *History[Antenna]            { return nil }
func (src sscSource) receivers(string, string) *History[Receiver]          { return nil }
func (src sscSource) eccentricities(string, string) *History[Eccentricity] { return nil }

func (src sscSource) identifiers(code, path string) *History[Identifier] {
	h := NewHistory[Identifier](code)
	sols, _ := src.data.Station(code)
	if len(sols) == 0 {
		return h
	}

	sol := sols[len(sols)-1]
	llh := sol.Pos.LLH(position.GRS80)
	lat, lon := llh.Degrees()
	h.Add(Identifier{
		Station:     code,
		Name:        sol.ID,
		DOMES:       sol.DOMES,
		Description: sol.Name,
		Technique:   sol.Technique,
		Lat:         lat,
		Lon:         lon,
		Height:      llh.Height,
		SourcePath:  path,
	})
	return h
}

func (src sscSource) coords(code, path string) *History[Coord] {
	h := NewHistory[Coord](code)
	sols, _ := src.data.Station(code)
	for _, sol := range sols {
		h.Add(Coord{
			Station:    code,
			Pos:        sol.Pos,
			Sigma:      sol.Sigma,
			Vel:        sol.Vel,
			RefEpoch:   src.data.Epoch,
			Solution:   sol.SolID,
			Interval:   Interval{From: sol.Start, To: sol.End},
			SourcePath: path,
		})
	}
	return h
}

// Sitelog

type sitelogSource struct {
	data sitelog.Data
}

func (src sitelogSource) codes() []string {
	codes := make([]string, 0, len(src.data))
	for code := range src.data {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

func (src sitelogSource) has(code string) bool {
	_, ok := src.data.Station(code)
	return ok
}

func (src sitelogSource) sitelog(code string) *sitelog.Sitelog {
	sl, _ := src.data.Station(code)
	return sl
}

func (src sitelogSource) antennas(code, path string) *History[Antenna] {
	h := NewHistory[Antenna](code)
	for _, ant := range src.sitelog(code).Antennas {
		radome := ant.Radome
		if radome == "" {
			radome = "NONE"
		}
		h.Add(Antenna{
			Station:    code,
			Type:       fmt.Sprintf("%-16s%4s", ant.Model(), radome),
			Radome:     radome,
			SerialNum:  ant.SerialNum,
			Interval:   Interval{From: ant.DateInstalled, To: ant.DateRemoved},
			SourcePath: path,
		})
	}
	return h
}

func (src sitelogSource) receivers(code, path string) *History[Receiver] {
	h := NewHistory[Receiver](code)
	for _, recv := range src.sitelog(code).Receivers {
		h.Add(Receiver{
			Station:    code,
			Type:       recv.Type,
			SerialNum:  recv.SerialNum,
			Firmware:   recv.Firmware,
			Interval:   Interval{From: recv.DateInstalled, To: recv.DateRemoved},
			SourcePath: path,
		})
	}
	return h
}

// In sitelogs the eccentricities are part of the antenna blocks.
func (src sitelogSource) eccentricities(code, path string) *History[Eccentricity] {
	h := NewHistory[Eccentricity](code)
	for _, ant := range src.sitelog(code).Antennas {
		h.Add(Eccentricity{
			Station:    code,
			System:     "UNE",
			Up:         ant.EccUp,
			North:      ant.EccNorth,
			East:       ant.EccEast,
			Interval:   Interval{From: ant.DateInstalled, To: ant.DateRemoved},
			SourcePath: path,
		})
	}
	return h
}

func (src sitelogSource) identifiers(code, path string) *History[Identifier] {
	sl := src.sitelog(code)
	ident := sl.Ident
	pos := sl.Location.ApproximatePosition

	name := ident.NineCharacterID
	if name == "" {
		name = strings.ToUpper(ident.FourCharacterID)
	}

	lat, lon, height := pos.Lat, pos.Lon, pos.Height
	if lat == 0 && lon == 0 && !pos.Cartesian.IsZero() {
		llh := pos.Cartesian.LLH(position.GRS80)
		lat, lon = llh.Degrees()
		height = llh.Height
	}

	return NewHistory(code, Identifier{
		Station:     code,
		Name:        name,
		DOMES:       ident.DOMESNumber,
		Description: ident.Name,
		Technique:   gnss.TechGNSS,
		Lat:         lat,
		Lon:         lon,
		Height:      height,
		SourcePath:  path,
	})
}

func (src sitelogSource) coords(code, path string) *History[Coord] {
	sl := src.sitelog(code)
	h := NewHistory[Coord](code)
	if pos := sl.Location.ApproximatePosition.Cartesian; !pos.IsZero() {
		h.Add(Coord{
			Station:     code,
			Pos:         pos,
			Approximate: true,
			Interval:    Interval{From: sl.Ident.DateInstalled},
			SourcePath:  path,
		})
	}
	return h
}
