// Package ssc reads SSC files, the station coordinate files of the ITRF and IGS reference frame solutions.
//
//	ITRF2014 STATION POSITIONS AT EPOCH 2010.0 AND VELOCITIES
//	DOMES NB. SITE NAME        TECH. ID.         X/Vx          Y/Vy          Z/Vz          Sigmas      SOLN  DATA_START  DATA_END
//	14201M010 Wettzell         GPS   WTZR  4075580.3850  931853.9740 4801568.2450 0.0010 0.0010 0.0010  1 00:000:00000 00:000:00000
//	14201M010                             -0.0157        0.0172       0.0104      0.0001 0.0001 0.0001
package ssc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/de-bkg/siteinfo/internal/fileutil"
	"github.com/de-bkg/siteinfo/pkg/gnss"
	"github.com/de-bkg/siteinfo/pkg/position"
	"github.com/de-bkg/siteinfo/pkg/sinex"
	"github.com/rs/zerolog/log"
)

// ErrNoData is returned if the input does not contain any station solution.
var ErrNoData = errors.New("SSC: no station solutions found")

var (
	domesRe = regexp.MustCompile(`^\d{5}[MS]\d{3}$`)
	epochRe = regexp.MustCompile(`EPOCH\s+(\d{4}(\.\d+)?)`)
)

// Solution is the position and velocity of a station for one solution number.
type Solution struct {
	DOMES     string
	Name      string // Site name or description, may contain spaces.
	Technique gnss.ObservationTechnique
	ID        string // Station ID as given in the file, e.g. WTZR.

	Pos      position.TRS // in m, valid at the reference epoch
	Sigma    position.TRS
	Vel      position.TRS // in m/y
	VelSigma position.TRS
	HasVel   bool

	SolID string    // Solution number, empty if not given.
	Start time.Time // Zero means since ever.
	End   time.Time // Zero means open end.
}

// Data is the content of an SSC file.
type Data struct {
	Frame string    // Reference frame, e.g. ITRF2014.
	Epoch time.Time // Reference epoch of the positions.

	// Solutions keyed by lower-case station ID, in file order.
	Stations map[string][]Solution
}

// Station returns the solutions of a station, case-insensitive.
func (d *Data) Station(id string) ([]Solution, bool) {
	sols, ok := d.Stations[strings.ToLower(strings.TrimSpace(id))]
	return sols, ok
}

// StationCodes returns the sorted lower-case station IDs.
func (d *Data) StationCodes() []string {
	codes := make([]string, 0, len(d.Stations))
	for code := range d.Stations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Parse reads the SSC input stream.
func Parse(r io.Reader) (*Data, error) {
	data := &Data{Stations: make(map[string][]Solution)}
	scan := bufio.NewScanner(r)

	var (
		last    *Solution // last position line, for the following velocity line
		lineNum int
		nsol    int
	)
	for scan.Scan() {
		lineNum++
		line := scan.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if !domesRe.MatchString(fields[0]) {
			last = nil
			if nsol == 0 {
				data.parseHeaderLine(line)
			}
			continue
		}

		if last != nil && fields[0] == last.DOMES && isVelocityLine(fields) {
			if err := last.parseVelocity(fields[1:]); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			last = nil
			continue
		}

		sol, err := parsePosition(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		key := strings.ToLower(sol.ID)
		data.Stations[key] = append(data.Stations[key], sol)
		sols := data.Stations[key]
		last = &sols[len(sols)-1]
		nsol++
	}
	if err := scan.Err(); err != nil {
		return nil, err
	}

	if nsol == 0 {
		return nil, ErrNoData
	}
	if data.Epoch.IsZero() {
		log.Warn().Str("component", "ssc").Msg("no reference epoch found in header")
	}

	return data, nil
}

// ParseFile parses the SSC file at path, which may be compressed.
func ParseFile(path string) (*Data, error) {
	r, err := fileutil.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

func (d *Data) parseHeaderLine(line string) {
	if d.Frame == "" {
		if fields := strings.Fields(line); len(fields) > 0 && strings.Contains(line, "STATION POSITIONS") {
			d.Frame = fields[0]
		}
	}

	if m := epochRe.FindStringSubmatch(line); m != nil && d.Epoch.IsZero() {
		y, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return
		}
		d.Epoch = position.DecimalYearToTime(y)
	}
}

// A velocity line has the DOMES number followed by six numbers.
func isVelocityLine(fields []string) bool {
	if len(fields) != 7 {
		return false
	}
	for _, f := range fields[1:] {
		if _, err := strconv.ParseFloat(f, 64); err != nil {
			return false
		}
	}
	return true
}

// parsePosition parses a position line from the right, as the site name may contain spaces:
//
//	DOMES NAME... TECH ID X Y Z SX SY SZ [SOLN START END]
func parsePosition(fields []string) (Solution, error) {
	sol := Solution{DOMES: fields[0]}
	rest := fields[1:]

	if n := len(rest); n >= 3 && strings.Contains(rest[n-1], ":") {
		sol.SolID = rest[n-3]
		var err error
		if sol.Start, err = sinex.ParseTime(rest[n-2]); err != nil {
			return sol, fmt.Errorf("parse DATA_START: %v", err)
		}
		if sol.End, err = sinex.ParseTime(rest[n-1]); err != nil {
			return sol, fmt.Errorf("parse DATA_END: %v", err)
		}
		rest = rest[:n-3]
	}

	if len(rest) < 8 {
		return sol, fmt.Errorf("too few fields in position line: %q", strings.Join(fields, " "))
	}

	n := len(rest)
	vals, err := parseFloats(rest[n-6:])
	if err != nil {
		return sol, fmt.Errorf("parse X/Y/Z: %v", err)
	}
	sol.Pos = position.TRS{X: vals[0], Y: vals[1], Z: vals[2]}
	sol.Sigma = position.TRS{X: vals[3], Y: vals[4], Z: vals[5]}

	sol.ID = rest[n-7]
	if sol.Technique, err = gnss.ParseTechnique(rest[n-8]); err != nil {
		return sol, fmt.Errorf("parse TECH: %v", err)
	}
	sol.Name = strings.Join(rest[:n-8], " ")

	return sol, nil
}

func (sol *Solution) parseVelocity(fields []string) error {
	vals, err := parseFloats(fields)
	if err != nil {
		return fmt.Errorf("parse Vx/Vy/Vz: %v", err)
	}
	sol.Vel = position.TRS{X: vals[0], Y: vals[1], Z: vals[2]}
	sol.VelSigma = position.TRS{X: vals[3], Y: vals[4], Z: vals[5]}
	sol.HasVel = true
	return nil
}

func parseFloats(fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
