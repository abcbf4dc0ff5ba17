package site

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/de-bkg/siteinfo/pkg/position"
)

const (
	staFlag       = "001"
	staUnknownNum = "999999"
	staTimeFormat = "2006 01 02 15 04 05"
)

// StationInfoRecord is a period with constant equipment at a station, a TYPE 002 line of a Bernese STA file.
type StationInfoRecord struct {
	Name         string // 4-char ID and DOMES number, e.g. "WTZR 14201M010"
	From         time.Time
	To           time.Time // zero means open end
	ReceiverType string
	ReceiverSN   string
	AntennaType  string // 20 chars incl. radome
	AntennaSN    string
	North        float64
	East         float64
	Up           float64
	Description  string
	Remark       string
}

// StationName returns the Bernese station name of the station, the upper-case four character ID
// followed by the DOMES number if known.
func (h *InfoHistory) StationName() string {
	name := strings.ToUpper(h.Station)
	if id, ok := h.Identifiers.Last(); ok && id.DOMES != "" {
		name += " " + id.DOMES
	}
	return name
}

// StationInfo returns the periods where receiver, antenna and eccentricity do not change.
// A period ends one second before the next change, or at the removal of the receiver or antenna.
// Periods without receiver or antenna are skipped.
func StationInfo(h *InfoHistory) []StationInfoRecord {
	var bounds []time.Time
	for iv := range h.Receivers.All() {
		bounds = append(bounds, iv.From)
	}
	for iv := range h.Antennas.All() {
		bounds = append(bounds, iv.From)
	}
	for iv := range h.Eccentricities.All() {
		bounds = append(bounds, iv.From)
	}
	slices.SortFunc(bounds, func(a, b time.Time) int { return a.Compare(b) })
	bounds = slices.CompactFunc(bounds, func(a, b time.Time) bool { return a.Equal(b) })

	name := h.StationName()
	var ref position.LLH
	var desc string
	if id, ok := h.Identifiers.Last(); ok {
		ref = position.LLHFromDegrees(id.Lat, id.Lon, id.Height)
		desc = id.Description
	}

	var recs []StationInfoRecord
	for i, from := range bounds {
		recv, err := entryAt(h.Receivers, from)
		if err != nil {
			continue
		}
		ant, err := entryAt(h.Antennas, from)
		if err != nil {
			continue
		}

		var to time.Time
		if i+1 < len(bounds) {
			to = bounds[i+1].Add(-timeShift)
		}
		to = earliestEnd(to, recv.To, ant.To)

		rec := StationInfoRecord{
			Name:         name,
			From:         from,
			To:           to,
			ReceiverType: recv.Type,
			ReceiverSN:   recv.SerialNum,
			AntennaType:  ant.Type,
			AntennaSN:    ant.SerialNum,
			Description:  desc,
		}
		if ecc, err := entryAt(h.Eccentricities, from); err == nil {
			enu := ecc.ENU(ref)
			rec.North, rec.East, rec.Up = enu.N, enu.E, enu.U
		}
		recs = append(recs, rec)
	}
	return recs
}

// entryAt is History.Get, but a zero t selects the entries valid since ever instead of the latest.
func entryAt[T Dated](h *History[T], t time.Time) (T, error) {
	if !t.IsZero() {
		return h.Get(t)
	}

	var res T
	err := ErrNoEntry
	for _, v := range h.Entries() {
		if v.Period().From.IsZero() {
			res, err = v, nil
		}
	}
	return res, err
}

// timeShift separates the end of a period from the begin of the next one.
const timeShift = time.Second

// earliestEnd returns the earliest of the given ends, zero ends are open.
func earliestEnd(ends ...time.Time) time.Time {
	var res time.Time
	for _, t := range ends {
		if t.IsZero() {
			continue
		}
		if res.IsZero() || t.Before(res) {
			res = t
		}
	}
	return res
}

// STAOptions configure the Bernese STA file.
type STAOptions struct {
	FormatVersion string    `validate:"oneof=1.01 1.03"`
	Remark        string    `validate:"max=24"` // e.g. the source file name
	CreationTime  time.Time // now if zero
}

// WriteBerneseSTA writes a Bernese station information file with the TYPE 001 renamings
// and the TYPE 002 station information of the given stations.
func WriteBerneseSTA(w io.Writer, hists []*InfoHistory, opts STAOptions) error {
	if opts.FormatVersion == "" {
		opts.FormatVersion = "1.01"
	}
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("sta options: %w", err)
	}
	if opts.CreationTime.IsZero() {
		opts.CreationTime = time.Now().UTC()
	}

	type renaming struct {
		Name    string
		From    time.Time
		To      time.Time
		OldName string
		Remark  string
	}
	data := struct {
		FormatVersion string
		Renamings     []renaming
		Records       []StationInfoRecord
	}{FormatVersion: opts.FormatVersion}

	for _, h := range hists {
		recs := StationInfo(h)
		if len(recs) == 0 {
			continue
		}
		for i := range recs {
			recs[i].Remark = opts.Remark
		}
		data.Renamings = append(data.Renamings, renaming{
			Name:    recs[0].Name,
			From:    recs[0].From,
			To:      recs[len(recs)-1].To,
			OldName: strings.ToUpper(h.Station) + "*",
			Remark:  opts.Remark,
		})
		data.Records = append(data.Records, recs...)
	}

	funcMap := template.FuncMap{
		"creationTime": func() string {
			return strings.ToUpper(opts.CreationTime.Format("02-Jan-06 15:04"))
		},
		"encodeTyp1": func(r renaming) string {
			line := fmt.Sprintf("%-20s  %3s  %-19s  %-19s  %-20s  %s",
				r.Name, staFlag, staTime(r.From), staTime(r.To), r.OldName, r.Remark)
			return strings.TrimRight(line, " ")
		},
		"encodeTyp2": func(r StationInfoRecord) string {
			line := fmt.Sprintf("%-20s  %3s  %-19s  %-19s  %-20s  %-20s  %6s  %-20s  %-20s  %6s  %8.4f  %8.4f  %8.4f  %-22s  %s",
				r.Name, staFlag, staTime(r.From), staTime(r.To),
				trunc(r.ReceiverType, 20), trunc(r.ReceiverSN, 20), staUnknownNum,
				trunc(r.AntennaType, 20), trunc(r.AntennaSN, 20), staUnknownNum,
				r.North, r.East, r.Up, trunc(r.Description, 22), r.Remark)
			return strings.TrimRight(line, " ")
		},
	}

	tmpl, err := template.New("sta").Funcs(funcMap).Parse(berneseSTATempl)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, data)
}

// staTime formats t, an open end is written blank.
func staTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(staTimeFormat)
}

func trunc(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
