// Package terrapos reads position output files of the Terrapos PPP software.
//
//	# Week       ToW (s)      Lat (deg)       Lon (deg)   Hght (m)    Roll(d)   Pitch(d)    Head(d)  sN (m)  sE (m)  sH (m)  sR (m)  sP (m) sHd (m)  #S    PDOP    rN (m)    rE (m)    rH (m)
//	 1972  518430.000000   70.083249333    29.735357183    56.7994                                    5.300   5.895  10.821                           6     3.5   151.851   373.061   321.308
package terrapos

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/de-bkg/siteinfo/internal/fileutil"
	"github.com/de-bkg/siteinfo/pkg/gnss"
	"github.com/de-bkg/siteinfo/pkg/position"
)

// column widths of the fixed format
var widths = [...]int{5, 15, 15, 16, 11, 11, 11, 11, 8, 8, 8, 8, 8, 8, 4, 8, 10, 10, 10}

var names = [...]string{"gpsweek", "gpssec", "lat", "lon", "height", "roll", "pitch", "head",
	"sigma_north", "sigma_east", "sigma_height", "sigma_roll", "sigma_pitch", "sigma_head",
	"num_sat", "pdop", "reliability_north", "reliability_east", "reliability_height"}

// Record is a single epoch. Values missing in the file are NaN.
type Record struct {
	Week   int
	Sow    float64   // Seconds of GPS week.
	Time   time.Time // GPS time.
	Lat    float64   // in deg
	Lon    float64   // in deg
	Height float64   // Ellipsoidal height in m.

	Roll, Pitch, Head                  float64 // in deg
	SigmaNorth, SigmaEast, SigmaHeight float64 // in m
	SigmaRoll, SigmaPitch, SigmaHead   float64

	NumSat int // -1 if not given
	PDOP   float64

	ReliabilityNorth, ReliabilityEast, ReliabilityHeight float64 // external reliability in m
}

// Position returns the cartesian position, assuming WGS84 coordinates.
func (rec Record) Position() position.TRS {
	return position.LLHFromDegrees(rec.Lat, rec.Lon, rec.Height).TRS(position.WGS84)
}

// Decoder reads Terrapos position records.
type Decoder struct {
	scan    *bufio.Scanner
	rec     Record
	err     error
	lineNum int
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{scan: bufio.NewScanner(r)}
}

// Next reads the next record. It returns false at the end of input or on error, see Err.
func (dec *Decoder) Next() bool {
	if dec.err != nil {
		return false
	}

	for dec.scan.Scan() {
		dec.lineNum++
		line := dec.scan.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") || strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := parseLine(line)
		if err != nil {
			dec.err = fmt.Errorf("line %d: %w", dec.lineNum, err)
			return false
		}
		dec.rec = rec
		return true
	}
	dec.err = dec.scan.Err()
	return false
}

// Record returns the current record.
func (dec *Decoder) Record() Record {
	return dec.rec
}

// Err returns the first error that occurred.
func (dec *Decoder) Err() error {
	return dec.err
}

// Records iterates over all records. A decoding error is yielded as last element.
func (dec *Decoder) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for dec.Next() {
			if !yield(dec.Record(), nil) {
				return
			}
		}
		if err := dec.Err(); err != nil {
			yield(Record{}, err)
		}
	}
}

// Data is the content of a position file.
type Data struct {
	Station string
	Records []Record
}

// Parse reads all records from r. The station name is optional.
func Parse(r io.Reader, station string) (*Data, error) {
	data := &Data{Station: station}
	for rec, err := range NewDecoder(r).Records() {
		if err != nil {
			return nil, err
		}
		data.Records = append(data.Records, rec)
	}
	return data, nil
}

// ParseFile parses the position file at path, which may be compressed.
func ParseFile(path, station string) (*Data, error) {
	r, err := fileutil.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := Parse(r, station)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

func parseLine(line string) (Record, error) {
	var vals [len(widths)]float64
	pos := 0
	for i, w := range widths {
		end := min(pos+w, len(line))
		field := ""
		if pos < len(line) {
			field = strings.TrimSpace(line[pos:end])
		}
		pos += w

		if field == "" {
			vals[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Record{}, fmt.Errorf("parse %s: %v", names[i], err)
		}
		vals[i] = v
	}

	if math.IsNaN(vals[0]) || math.IsNaN(vals[1]) {
		return Record{}, fmt.Errorf("missing GPS week or seconds")
	}

	rec := Record{
		Week:              int(vals[0]),
		Sow:               vals[1],
		Lat:               vals[2],
		Lon:               vals[3],
		Height:            vals[4],
		Roll:              vals[5],
		Pitch:             vals[6],
		Head:              vals[7],
		SigmaNorth:        vals[8],
		SigmaEast:         vals[9],
		SigmaHeight:       vals[10],
		SigmaRoll:         vals[11],
		SigmaPitch:        vals[12],
		SigmaHead:         vals[13],
		NumSat:            -1,
		PDOP:              vals[15],
		ReliabilityNorth:  vals[16],
		ReliabilityEast:   vals[17],
		ReliabilityHeight: vals[18],
	}
	if !math.IsNaN(vals[14]) {
		rec.NumSat = int(vals[14])
	}
	rec.Time = gnss.TimeFromWeekSeconds(rec.Week, rec.Sow)
	return rec, nil
}
