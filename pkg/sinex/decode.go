package sinex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/de-bkg/siteinfo/pkg/gnss"
	"github.com/rs/zerolog/log"
)

// errors
var (
	// ErrNoHeader is returned when the input does not begin with a SINEX header line.
	ErrNoHeader = errors.New("SINEX: no header")

	// ErrNoBlocks is returned when the input does not contain any block.
	ErrNoBlocks = errors.New("SINEX: no blocks found")
)

// Decoder reads and decodes the SINEX input stream.
type Decoder struct {
	Header *Header

	fileRef   *FileReference
	scan      *bufio.Scanner
	currBlock string // The name of the current block.
	pending   bool   // The current block begin was read but not yet reported by NextBlock.
	lineNum   int
}

// NewDecoder returns a new decoder that reads from r.
// The header line and FILE/REFERENCE block will be read implicitely.
//
// It is the caller's responsibility to call Close on the underlying reader when done!
func NewDecoder(r io.Reader) (*Decoder, error) {
	dec := &Decoder{scan: bufio.NewScanner(r)}
	dec.scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	dec.fileRef = &FileReference{}

	if err := dec.decodeHeader(); err != nil {
		return nil, err
	}

	return dec, nil
}

// GetFileReference returns the FILE/REFERENCE data.
func (dec *Decoder) GetFileReference() FileReference {
	return *dec.fileRef
}

// Err returns the first non-EOF error that was encountered by reading the input.
func (dec *Decoder) Err() error {
	return dec.scan.Err()
}

// NextBlock reports whether there is another block available and moves the reader to the begin of the this block.
// Use CurrentBlock() to get the name of the current block.
func (dec *Decoder) NextBlock() bool {
	if dec.pending {
		dec.pending = false
		return true
	}

	for dec.readLine() {
		if dec.isBlockBegin() {
			return true
		}
	}

	return false
}

// NextBlockLine reports whether there is another data line in the current block and reads that line into the buffer.
// It returns false when reaching the end of the block.
func (dec *Decoder) NextBlockLine() bool {
	for dec.readLine() {
		if dec.isCommentLine() || strings.TrimSpace(dec.Line()) == "" {
			continue
		}

		if dec.isDataLine() {
			return true
		}

		if dec.isBlockBegin() {
			// missing end line
			dec.pending = true
		}
		return false
	}

	return false
}

// Blocks iterates over the remaining blocks and yields their names.
// A read error is yielded as last element.
func (dec *Decoder) Blocks() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for dec.NextBlock() {
			if !yield(dec.CurrentBlock(), nil) {
				return
			}
		}
		if err := dec.Err(); err != nil {
			yield("", err)
		}
	}
}

// BlockLines iterates over the data lines of the current block.
// Use Decode to unmarshal the current line.
func (dec *Decoder) BlockLines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for dec.NextBlockLine() {
			if !yield(dec.Line(), nil) {
				return
			}
		}
		if err := dec.Err(); err != nil {
			yield("", err)
		}
	}
}

// CurrentBlock returns the name of the current block.
func (dec *Decoder) CurrentBlock() string {
	return dec.currBlock
}

// LineNumber returns the number of the current line, beginning with 1.
func (dec *Decoder) LineNumber() int {
	return dec.lineNum
}

// Reports wheter the current line is a comment.
func (dec *Decoder) isCommentLine() bool {
	return strings.HasPrefix(dec.Line(), "*")
}

// Reports wheter the current line is the begin of a block.
func (dec *Decoder) isBlockBegin() bool {
	return strings.HasPrefix(dec.Line(), "+")
}

// Reports wheter the current line is a data line, that means no comment, block begin etc.
func (dec *Decoder) isDataLine() bool {
	line := dec.Line()
	if len(line) < 1 {
		return false
	}
	return !strings.ContainsAny(line[:1], "-+*%")
}

// decodeHeader decodes the first the header line as well as some mandatory first blocks like FILE/REFERENCE.
func (dec *Decoder) decodeHeader() error {
	err := dec.readHeaderLine()
	if err != nil {
		return err
	}

	if ok := dec.NextBlock(); !ok {
		if err := dec.Err(); err != nil {
			return err
		}
		return ErrNoBlocks
	}

	// FILE/REFERENCE should be always the first block.
	name := dec.CurrentBlock()
	if name != BlockFileReference {
		log.Warn().Str("component", "sinex").Str("block", name).Msgf("%s is not the first block", BlockFileReference)
		dec.pending = true
		return nil
	}

	for dec.NextBlockLine() {
		line := dec.Line()
		key := strings.TrimSpace(column(line, 1, 19))
		val := strings.TrimSpace(column(line, 20, -1))

		switch key {
		case "DESCRIPTION":
			dec.fileRef.Description = appendValue(dec.fileRef.Description, val)
		case "OUTPUT":
			dec.fileRef.Output = appendValue(dec.fileRef.Output, val)
		case "CONTACT":
			dec.fileRef.Contact = appendValue(dec.fileRef.Contact, val)
		case "SOFTWARE":
			dec.fileRef.Software = appendValue(dec.fileRef.Software, val)
		case "HARDWARE":
			dec.fileRef.Hardware = appendValue(dec.fileRef.Hardware, val)
		case "INPUT":
			dec.fileRef.Input = appendValue(dec.fileRef.Input, val)
		default:
			log.Warn().Str("component", "sinex").Int("line", dec.lineNum).Msgf("invalid %s field: %q", BlockFileReference, key)
		}
	}

	return dec.Err()
}

// read the SINEX header which is only one line.
func (dec *Decoder) readHeaderLine() error {
	if !dec.readLine() {
		if err := dec.Err(); err != nil {
			return err
		}
		return ErrNoHeader
	}

	line := dec.Line()
	if !strings.HasPrefix(line, "%=") {
		return ErrNoHeader
	}

	hdr := &Header{}
	if err := hdr.UnmarshalSINEX(line); err != nil {
		return err
	}
	dec.Header = hdr
	return nil
}

// readLine reads the next line into buffer. It returns false if an error occurs or EOF was reached.
// It also sets the currBlock in the decoder if a begin or end-block was reached.
func (dec *Decoder) readLine() bool {
	if ok := dec.scan.Scan(); !ok {
		return false
	}

	line := dec.Line()
	if strings.HasPrefix(line, "+") {
		dec.currBlock = strings.TrimSpace(line[1:])
	} else if strings.HasPrefix(line, "-") {
		dec.currBlock = ""
	}

	dec.lineNum++
	return true
}

// Line returns the current Line in buffer.
func (dec *Decoder) Line() string {
	return dec.scan.Text()
}

// Unmarshaler is implemented by all SINEX records.
type Unmarshaler interface {
	UnmarshalSINEX(string) error
}

// Decode the current line into out.
func (dec *Decoder) Decode(out Unmarshaler) error {
	return out.UnmarshalSINEX(dec.Line())
}

// Unmarshal in to out.
func Unmarshal(in string, out Unmarshaler) error {
	return out.UnmarshalSINEX(in)
}

// UnmarshalSINEX unmarshalls the header line.
//
//	%=SNX 2.02 IGN 20:225:43202 IGN 20:208:75600 20:210:43200 C  1577 2 S E
func (hdr *Header) UnmarshalSINEX(in string) error {
	fields := strings.Fields(in)
	if len(fields) < 10 {
		return fmt.Errorf("parse header line: too few fields: %q", in)
	}
	if fields[0] != "%=SNX" {
		return fmt.Errorf("parse header line: invalid document type: %q", fields[0])
	}

	var err error
	hdr.Version = fields[1]
	hdr.Agency = fields[2]
	if hdr.CreationTime, err = ParseTime(fields[3]); err != nil {
		return err
	}
	hdr.AgencyDataProvider = fields[4]
	if hdr.StartTime, err = ParseTime(fields[5]); err != nil {
		return err
	}
	if hdr.EndTime, err = ParseTime(fields[6]); err != nil {
		return err
	}
	if hdr.ObsTech, err = gnss.TechniqueFromCode(fields[7]); err != nil {
		return err
	}
	if hdr.NumEstimates, err = strconv.Atoi(fields[8]); err != nil {
		return fmt.Errorf("parse number of estimates: %v", err)
	}
	if hdr.ConstraintCode, err = strconv.Atoi(fields[9]); err != nil {
		return fmt.Errorf("parse constraint code: %v", err)
	}
	hdr.SolutionTypes = fields[10:]
	return nil
}

// UnmarshalSINEX unmarshalls a SITE/ID record.
func (s *Site) UnmarshalSINEX(in string) error {
	// *CODE PT __DOMES__ T _STATION DESCRIPTION__ _LONGITUDE_ _LATITUDE__ HEIGHT_
	//  ABMF  A 97103M001 P Les Abymes - Raizet ai 298 28 20.9  16 15 44.3   -25.6
	if len(in) < 20 {
		return fmt.Errorf("SITE/ID record too short: %q", in)
	}
	s.Code = SiteCode(cleanField(column(in, 1, 5)))
	s.PointCode = cleanField(column(in, 6, 8))
	s.DOMESNumber = cleanField(column(in, 9, 18))

	var err error
	if s.ObsTech, err = gnss.TechniqueFromCode(column(in, 19, 20)); err != nil {
		return err
	}

	s.Description = strings.TrimSpace(column(in, 21, 43))
	if s.Lon, err = parseDMS(column(in, 44, 55)); err != nil {
		return fmt.Errorf("parse LONGITUDE: %v", err)
	}
	if s.Lat, err = parseDMS(column(in, 56, 67)); err != nil {
		return fmt.Errorf("parse LATITUDE: %v", err)
	}
	if hgt := strings.TrimSpace(column(in, 68, -1)); hgt != "" {
		if s.Height, err = strconv.ParseFloat(hgt, 64); err != nil {
			return fmt.Errorf("parse HEIGHT: %v", err)
		}
	}

	return nil
}

// unmarshal the common SITE/PT/SOLN/T/START/END prefix of equipment records.
func unmarshalSiteSpan(in string) (code SiteCode, pt, soln string, tech gnss.ObservationTechnique, from, to time.Time, err error) {
	if len(in) < 41 {
		err = fmt.Errorf("record too short: %q", in)
		return
	}
	code = SiteCode(cleanField(in[1:5]))
	pt = cleanField(in[6:8])
	soln = cleanField(in[9:13])
	if tech, err = gnss.TechniqueFromCode(in[14:15]); err != nil {
		return
	}
	if from, err = ParseTime(in[16:28]); err != nil {
		err = fmt.Errorf("parse DATA_START %q: %v", in, err)
		return
	}
	if to, err = ParseTime(in[29:41]); err != nil {
		err = fmt.Errorf("parse DATA_END %q: %v", in, err)
		return
	}
	return
}

// UnmarshalSINEX unmarshalls a SITE/ANTENNA record.
func (ant *Antenna) UnmarshalSINEX(in string) error {
	// *SITE PT SOLN T _DATA START_ __DATA_END__ ____ANTENNA_TYPE____ _S/N_
	//  ABMF  A ---- P 12:024:43200 00:000:00000 TRM57971.00     NONE 14411
	var err error
	ant.SiteCode, ant.PointCode, ant.SolID, ant.ObsTech, ant.DateInstalled, ant.DateRemoved, err = unmarshalSiteSpan(in)
	if err != nil {
		return err
	}

	ant.Type = trimField(column(in, 42, 62))
	if radome := cleanField(column(in, 58, 62)); len(radome) == 4 {
		ant.Radome = radome
	}
	ant.SerialNum = cleanField(column(in, 63, -1))
	return nil
}

// UnmarshalSINEX unmarshalls a SITE/RECEIVER record.
func (recv *Receiver) UnmarshalSINEX(in string) error {
	// *SITE PT SOLN T _DATA START_ __DATA_END__ ___RECEIVER_TYPE____ _S/N_ _FIRMWARE__
	//  ABMF  A ---- P 20:038:36000 00:000:00000 SEPT POLARX5         45014 5.3.2
	var err error
	recv.SiteCode, recv.PointCode, recv.SolID, recv.ObsTech, recv.DateInstalled, recv.DateRemoved, err = unmarshalSiteSpan(in)
	if err != nil {
		return err
	}

	recv.Type = trimField(column(in, 42, 62))
	recv.SerialNum = cleanField(column(in, 63, 68))
	recv.Firmware = trimField(column(in, 69, -1))
	return nil
}

// UnmarshalSINEX unmarshalls a SITE/ECCENTRICITY record.
func (ecc *Eccentricity) UnmarshalSINEX(in string) error {
	// *                                             UP______ NORTH___ EAST____
	// *SITE PT SOLN T _DATA START_ __DATA_END__ AXE ARP->BENCHMARK(M)_________
	//  ABMF  A    1 P 09:001:00000 00:000:00000 UNE   0.0000   0.0000   0.0000
	var err error
	ecc.SiteCode, ecc.PointCode, ecc.SolID, ecc.ObsTech, ecc.DateFrom, ecc.DateTo, err = unmarshalSiteSpan(in)
	if err != nil {
		return err
	}

	ecc.RefSystem = strings.TrimSpace(column(in, 42, 45))
	if ecc.RefSystem != "UNE" && ecc.RefSystem != "XYZ" {
		return fmt.Errorf("parse AXE: unknown reference system %q", ecc.RefSystem)
	}

	// Be tolerant with the column width.
	vals := strings.Fields(column(in, 45, -1))
	if len(vals) != 3 {
		return fmt.Errorf("parse ARP->BENCHMARK: want 3 values, got %d: %q", len(vals), in)
	}
	for i, v := range vals {
		if ecc.Vector[i], err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("parse ARP->BENCHMARK: %v", err)
		}
	}
	return nil
}

// UnmarshalSINEX unmarshalls a SOLUTION/EPOCHS record.
func (epo *SolutionEpoch) UnmarshalSINEX(in string) error {
	// *CODE PT SOLN T _DATA_START_ __DATA_END__ _MEAN_EPOCH_
	//  ABMF  A    3 P 20:208:75600 20:210:43170 20:209:59385
	var err error
	epo.SiteCode, epo.PointCode, epo.SolID, epo.ObsTech, epo.Start, epo.End, err = unmarshalSiteSpan(in)
	if err != nil {
		return err
	}

	if mean := strings.TrimSpace(column(in, 42, 54)); mean != "" {
		if epo.Mean, err = ParseTime(mean); err != nil {
			return fmt.Errorf("parse MEAN_EPOCH %q: %v", in, err)
		}
	}
	return nil
}

// UnmarshalSINEX unmarshalls a SOLUTION/ESTIMATE record.
func (est *Estimate) UnmarshalSINEX(in string) error {
	// *INDEX TYPE__ CODE PT SOLN _REF_EPOCH__ UNIT S __ESTIMATED VALUE____ _STD_DEV___
	//      1 STAX   ABMF  A    3 20:209:43200 m    2  2.91978579389317e+06 8.34951e-04
	if len(in) < 48 {
		return fmt.Errorf("SOLUTION/ESTIMATE record too short: %q", in)
	}

	var err error
	if est.Idx, err = strconv.Atoi(strings.TrimSpace(in[1:6])); err != nil {
		return fmt.Errorf("parse INDEX: %v", err)
	}

	est.ParType = ParameterType(strings.TrimSpace(in[7:13]))
	est.SiteCode = SiteCode(cleanField(in[14:18]))
	est.PointCode = cleanField(in[19:21])
	est.SolID = cleanField(in[22:26])

	if ti, err := ParseTime(in[27:39]); err == nil {
		est.Epoch = ti
	} else {
		return fmt.Errorf("parse TIME %q: %v", in, err)
	}

	est.Unit = strings.TrimSpace(in[40:44])
	est.ConstraintCode = in[45:46]

	if est.Value, err = strconv.ParseFloat(strings.TrimSpace(column(in, 47, 68)), 64); err != nil {
		return fmt.Errorf("parse ESTIMATED_VALUE: %v", err)
	}

	stddev := strings.TrimSpace(column(in, 69, 80))
	if stddev == "" {
		return nil
	}
	if est.Stddev, err = strconv.ParseFloat(stddev, 64); err != nil {
		return fmt.Errorf("parse STD_DEV: %v", err)
	}

	return nil
}

// ParseTime parses a SINEX time string.
//
//	Time | YY:DDD:SSSSS. "UTC"         | I2.2,    |
//	YY = last 2 digits of the year,    | 1H:,I3.3,|
//	if YY <= 50 implies 21-st century, | 1H:,I5.5 |
//	if YY > 50 implies 20-th century,
//	DDD = 3-digit day in year
//	SSSSS = 5-digit seconds in day
//
// SINEX 2.10 allows 4-digit years as well. The zero time is returned for 00:000:00000.
func ParseTime(str string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(str), ":")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid time: %q", str)
	}

	yy, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse year: %q: %v", str, err)
	}
	doy, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day of year: %q: %v", str, err)
	}
	secs, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time: %q: %v", str, err)
	}

	if yy == 0 && doy == 0 && secs == 0 { // __DATA_END__ means open end
		return time.Time{}, nil // zero time
	}

	year := yy
	if len(parts[0]) <= 2 {
		if yy <= 50 {
			year += 2000
		} else {
			year += 1900
		}
	}
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	if daysInYear := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC).YearDay(); doy < 1 || doy > daysInYear {
		return time.Time{}, fmt.Errorf("parse day of year: %q: out of range", str)
	}

	return t.AddDate(0, 0, doy-1).Add(time.Duration(secs) * time.Second), nil
}

// FormatTime formats t as SINEX time string YY:DDD:SSSSS. The zero time gives 00:000:00000.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "00:000:00000"
	}
	t = t.UTC()
	secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return fmt.Sprintf("%02d:%03d:%05d", t.Year()%100, t.YearDay(), secs)
}

// parseDMS parses an angle given as "DDD MM SS.S" and returns degrees.
func parseDMS(str string) (float64, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return 0, nil
	}

	neg := strings.HasPrefix(str, "-")
	fields := strings.Fields(strings.TrimPrefix(str, "-"))
	if len(fields) != 3 {
		return 0, fmt.Errorf("invalid angle: %q", str)
	}

	var vals [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid angle: %q: %v", str, err)
		}
		vals[i] = math.Abs(v)
	}

	deg := vals[0] + vals[1]/60 + vals[2]/3600
	if neg {
		deg = -deg
	}
	return deg, nil
}

// column returns in[from:to] or less if the line is too short. A negative to means up to the end.
func column(in string, from, to int) string {
	if from >= len(in) {
		return ""
	}
	if to < 0 || to > len(in) {
		to = len(in)
	}
	return in[from:to]
}

// Clean field values. Return an empty string instead of "----" for unknown values.
func cleanField(in string) string {
	s := strings.TrimSpace(in)
	return strings.Trim(s, "-")
}

// trimField is cleanField for values that could contain hyphens like antenna types.
func trimField(in string) string {
	s := strings.TrimSpace(in)
	if strings.Trim(s, "-") == "" {
		return ""
	}
	return s
}

func appendValue(curr, val string) string {
	if curr == "" {
		return val
	}
	return curr + " " + val
}
