package sitelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/de-bkg/siteinfo/pkg/gnss"
	"github.com/rs/zerolog/log"
)

// ErrNoIdentification is returned if the sitelog does not contain a station ID.
var ErrNoIdentification = errors.New("sitelog: no four character ID found")

var (
	// main block. e.g. '1.   Site Identification of the GNSS Monument'
	blockPattern = regexp.MustCompile(`^(\d+)\.\s+([\w\s]+)`)

	// template sub block. e.g. '4.x  Antenna Type : (A20, from rcvr_ant.tab; see instructions)'
	dummyBlockPattern = regexp.MustCompile(`^(\d+\.[xX])\s+(.*)`)
)

// The key/value separator must appear before this column.
const keyColumn = 32

type decoder struct {
	sl        *Sitelog
	lineNum   int
	block     int    // 3
	subBlock  string // 3.1
	key, val  string
	recv      *Receiver
	ant       *Antenna
	subBlocks map[string]bool
}

// Decode reads and parses the sitelog input stream.
func Decode(r io.Reader) (*Sitelog, error) {
	dec := &decoder{sl: &Sitelog{}, block: -1, subBlocks: make(map[string]bool)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		dec.lineNum++
		if err := dec.decodeLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	dec.flush()

	if dec.sl.Ident.FourCharacterID == "" {
		return nil, ErrNoIdentification
	}
	return dec.sl, nil
}

func (dec *decoder) decodeLine(line string) error {
	if strings.TrimSpace(line) == "" {
		dec.flush()
		dec.key, dec.val = "", ""
		return nil
	}

	if res := blockPattern.FindStringSubmatch(line); res != nil {
		dec.flush()
		dec.block, _ = strconv.Atoi(res[1])
		dec.key, dec.val = "", ""
		return nil
	}

	if dummyBlockPattern.MatchString(line) {
		dec.flush()
		dec.block = -1
		return nil
	}

	if dec.block < 0 || dec.block > 4 {
		return nil
	}

	idx := strings.Index(line, ":")
	switch {
	case idx > 0 && idx < keyColumn:
		if k := strings.TrimSpace(line[:idx]); k != "" { // keep last key in case of multiple lines
			dec.key = k
		}
		dec.val = strings.TrimSpace(line[idx+1:])
	case dec.key == "Additional Information":
		dec.val = strings.TrimSpace(line)
	default:
		// e.g. 'Approximate Position (ITRF)'
		return nil
	}

	var err error
	switch dec.block {
	case 0:
		err = dec.decodeForm()
	case 1:
		err = dec.decodeIdentification()
	case 2:
		err = dec.decodeLocation()
	case 3:
		err = dec.decodeReceiver()
	case 4:
		err = dec.decodeAntenna()
	}
	if err != nil {
		return fmt.Errorf("line %d: block %d: could not parse %q: %q: %w", dec.lineNum, dec.block, dec.key, dec.val, err)
	}
	return nil
}

// flush stores the current receiver or antenna.
func (dec *decoder) flush() {
	if dec.recv != nil && dec.recv.Type != "" {
		dec.sl.Receivers = append(dec.sl.Receivers, dec.recv)
	}
	if dec.ant != nil && dec.ant.Type != "" {
		dec.sl.Antennas = append(dec.sl.Antennas, dec.ant)
	}
	dec.recv, dec.ant = nil, nil
}

func (dec *decoder) warnf(format string, args ...any) {
	err := fmt.Errorf("line %d: block %d: "+format, append([]any{dec.lineNum, dec.block}, args...)...)
	dec.sl.Warnings = append(dec.sl.Warnings, err)
	log.Warn().Str("component", "sitelog").Str("station", dec.sl.Ident.FourCharacterID).Msg(err.Error())
}

func (dec *decoder) unknownKey() {
	dec.warnf("unknown key %q", dec.key)
}

func (dec *decoder) decodeForm() (err error) {
	form := &dec.sl.FormInfo
	switch dec.key {
	case "Prepared by", "Prepared by (full name)":
		form.PreparedBy = dec.val
	case "Date Prepared":
		form.DatePrepared, err = parseDate(dec.val)
	case "Report Type":
		form.ReportType = dec.val
	case "If Update", "Previous Site Log", "Modified/Added Sections":
	default:
		dec.unknownKey()
	}
	return
}

func (dec *decoder) decodeIdentification() (err error) {
	ident := &dec.sl.Ident
	val := dec.val
	if val == "" {
		return nil
	}

	switch dec.key {
	case "Site Name":
		ident.Name = val
	case "Four Character ID":
		ident.FourCharacterID = strings.ToUpper(val)
	case "Nine Character ID":
		ident.NineCharacterID = strings.ToUpper(val)
		if ident.FourCharacterID == "" && len(val) >= 4 {
			ident.FourCharacterID = strings.ToUpper(val[:4])
		}
	case "Monument Inscription":
		ident.MonumentInscription = val
	case "IERS DOMES Number":
		if len(val) != 9 {
			dec.warnf("%q should have format A9: %q", dec.key, val)
		}
		ident.DOMESNumber = val
	case "CDP Number":
		ident.CDPNumber = val
	case "Monument Description":
		ident.MonumentDescription = val
	case "Height of the Monument":
		if ident.HeightOfMonument, err = parseFloat(val); err != nil {
			dec.warnf("%q: %v", dec.key, err)
		}
	case "Monument Foundation":
		ident.MonumentFoundation = val
	case "Foundation Depth":
		if ident.FoundationDepth, err = parseFloat(val); err != nil {
			dec.warnf("%q: %v", dec.key, err)
		}
	case "Marker Description":
		ident.MarkerDescription = val
	case "Date Installed":
		ident.DateInstalled, err = parseDate(val) // CCYY-MM-DDThh:mmZ
		return err
	case "Geologic Characteristic":
		ident.GeologicCharacteristic = val
	case "Bedrock Type":
		ident.BedrockType = val
	case "Bedrock Condition":
		ident.BedrockCondition = val
	case "Fracture Spacing":
		ident.FractureSpacing = val
	case "Fault zones nearby":
		ident.FaultZonesNearby = val
	case "Distance/activity":
		ident.DistanceActivity = addMultipleLine(ident.DistanceActivity, val)
	case "Additional Information":
		ident.Notes = addMultipleLine(ident.Notes, val)
	default:
		dec.unknownKey()
	}
	return nil
}

//	Approximate Position (ITRF)
//	  X coordinate (m)       : 4027881.628
//	  Y coordinate (m)       : 306998.537
//	  Z coordinate (m)       : 4919498.984
//	  Latitude (N is +)      : +504753.03
//	  Longitude (E is +)     : +0042130.83
//	  Elevation (m,ellips.)  : 158.3
func (dec *decoder) decodeLocation() (err error) {
	loc := &dec.sl.Location
	pos := &loc.ApproximatePosition
	val := dec.val
	if val == "" {
		return nil
	}

	switch dec.key {
	case "City or Town":
		loc.City = val
	case "State or Province":
		loc.State = val
	case "Country", "Country or Region":
		loc.Country = val
	case "Tectonic Plate":
		loc.TectonicPlate = val
	case "X coordinate (m)":
		pos.Cartesian.X, err = parseFloat(val)
	case "Y coordinate (m)":
		pos.Cartesian.Y, err = parseFloat(val)
	case "Z coordinate (m)":
		pos.Cartesian.Z, err = parseFloat(val)
	case "Latitude (N is +)":
		if pos.Lat, err = parseDMS(val); err != nil {
			dec.warnf("%q: %v", dec.key, err)
			err = nil
		}
	case "Longitude (E is +)":
		if pos.Lon, err = parseDMS(val); err != nil {
			dec.warnf("%q: %v", dec.key, err)
			err = nil
		}
	case "Elevation (m,ellips.)":
		pos.Height, err = parseFloat(val)
	case "Additional Information":
		loc.Notes = addMultipleLine(loc.Notes, val)
	default:
		dec.unknownKey()
	}
	return
}

// beginSubBlock reports whether the current key starts a new sub block like '3.1  Receiver Type'.
func (dec *decoder) beginSubBlock() (bool, error) {
	prefix := strconv.Itoa(dec.block) + "."
	if !strings.HasPrefix(dec.key, prefix) {
		return false, nil
	}

	dec.flush()
	dec.subBlock = strings.Fields(dec.key)[0]
	if dec.subBlocks[dec.subBlock] {
		return true, fmt.Errorf("block %s exists twice", dec.subBlock)
	}
	dec.subBlocks[dec.subBlock] = true
	return true, nil
}

func (dec *decoder) decodeReceiver() (err error) {
	if ok, err := dec.beginSubBlock(); ok {
		dec.recv = &Receiver{Type: dec.val}
		return err
	}

	recv := dec.recv
	val := dec.val
	if recv == nil {
		dec.warnf("%q outside of a receiver sub block", dec.key)
		return nil
	}
	if val == "" {
		return nil
	}

	switch dec.key {
	case "Satellite System":
		recv.SatSystems, err = gnss.ParseSystems(val)
	case "Serial Number":
		recv.SerialNum = val
	case "Firmware Version":
		recv.Firmware = val
	case "Elevation Cutoff Setting":
		if recv.ElevationCutoff, err = parseFloat(val); err != nil {
			dec.warnf("%q: %v", dec.key, err)
			err = nil
		}
	case "Date Installed":
		recv.DateInstalled, err = parseDate(val)
	case "Date Removed":
		recv.DateRemoved, err = parseDate(val)
	case "Temperature Stabiliz.":
		recv.TemperatureStabiliz = val
	case "Additional Information":
		recv.Notes = addMultipleLine(recv.Notes, val)
	default:
		dec.unknownKey()
	}
	return
}

func (dec *decoder) decodeAntenna() (err error) {
	if ok, err := dec.beginSubBlock(); ok {
		dec.ant = &Antenna{Type: dec.val}
		if len(dec.val) != 20 {
			dec.warnf("Antenna Type in %s is not 20 chars long: %q", dec.subBlock, dec.val)
		}
		return err
	}

	ant := dec.ant
	val := dec.val
	if ant == nil {
		dec.warnf("%q outside of an antenna sub block", dec.key)
		return nil
	}
	if val == "" {
		return nil
	}

	switch dec.key {
	case "Serial Number":
		ant.SerialNum = val
	case "Antenna Reference Point":
		ant.ReferencePoint = val
	case "Marker->ARP Up Ecc. (m)":
		ant.EccUp, err = parseFloat(val)
	case "Marker->ARP North Ecc(m)":
		ant.EccNorth, err = parseFloat(val)
	case "Marker->ARP East Ecc(m)":
		ant.EccEast, err = parseFloat(val)
	case "Alignment from True N":
		if ant.AlignmentFromTrueNorth, err = parseFloat(val); err != nil {
			dec.warnf("%q: %v", dec.key, err)
			err = nil
		}
	case "Antenna Radome Type":
		if len(val) != 4 {
			dec.warnf("Antenna Radome Type must be 4 char long: %q", val)
		}
		ant.Radome = val
	case "Radome Serial Number":
		ant.RadomeSerialNum = val
	case "Antenna Cable Type":
		ant.CableType = val
	case "Antenna Cable Length":
		if l, err := parseFloat(val); err == nil {
			ant.CableLength = float32(l)
		} else {
			dec.warnf("%q: %v", dec.key, err)
		}
	case "Date Installed":
		ant.DateInstalled, err = parseDate(val)
	case "Date Removed":
		ant.DateRemoved, err = parseDate(val)
	case "Additional Information":
		ant.Notes = addMultipleLine(ant.Notes, val)
	default:
		dec.unknownKey()
	}
	return
}

func parseFloat(s string) (float64, error) {
	if strings.ToLower(s) == "unknown" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")

	// strip units like '(m)', 'deg' or 'm'
	s = strings.Trim(s, " %()acCdDeEgGhKlmMNOPrstUWw")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseDate parses the various date formats found in sitelogs. Placeholders like 'CCYY-MM-DD' give the zero time.
func parseDate(s string) (t time.Time, err error) {
	if strings.Contains(s, "CCYY") || strings.Contains(s, "YYYY") {
		return t, nil
	}

	s = strings.TrimSuffix(strings.TrimSuffix(s, "Thh:mmZ"), "Thh:mm")
	s = strings.Trim(s, " ()NONE")
	if s == "" {
		return t, nil
	}

	if strings.Contains(s, "DD") {
		s = strings.ReplaceAll(s, "DD", "01")
	}

	// CCYY-MM-DDThh:mmZ, the Z and the T are often missing
	s = strings.Replace(strings.TrimSuffix(s, "Z"), "T", " ", 1)

	switch len(s) {
	case 4: // 2002
		t, err = time.Parse("2006", s)
	case 8, 9, 10:
		t, err = time.Parse("2006-1-2", s)
	default:
		if strings.Count(s, ":") == 2 {
			t, err = time.Parse("2006-1-2 15:04:05", s)
		} else {
			t, err = time.Parse("2006-1-2 15:04", s) // 2003-02-01 12:00
		}
	}
	return
}

// parseDMS parses the sitelog angle format [+-]DDMMSS.SS or [+-]DDDMMSS.SS and returns degrees.
func parseDMS(s string) (float64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimLeft(s, "+-")

	intPart, frac, _ := strings.Cut(s, ".")
	if len(intPart) < 5 {
		return 0, fmt.Errorf("invalid angle: %q", s)
	}

	n := len(intPart)
	deg, err := strconv.Atoi(intPart[:n-4])
	if err != nil {
		return 0, fmt.Errorf("invalid angle: %q: %v", s, err)
	}
	mins, err := strconv.Atoi(intPart[n-4 : n-2])
	if err != nil {
		return 0, fmt.Errorf("invalid angle: %q: %v", s, err)
	}
	secStr := intPart[n-2:]
	if frac != "" {
		secStr += "." + frac
	}
	sec, err := strconv.ParseFloat(secStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid angle: %q: %v", s, err)
	}

	v := float64(deg) + float64(mins)/60 + sec/3600
	if neg {
		v = -v
	}
	return v, nil
}

// Notes often have multiple lines.
func addMultipleLine(note, newNote string) string {
	if strings.Contains(newNote, "multiple lines") {
		return note
	}
	if note != "" {
		return note + " " + newNote
	}
	return newNote
}
