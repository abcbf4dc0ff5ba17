// Package gnss contains common constants and type definitions.
package gnss

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// System is a satellite system.
type System int

// Available satellite systems.
const (
	SysGPS System = iota + 1
	SysGLO
	SysGAL
	SysQZSS
	SysBDS
	SysIRNSS
	SysSBAS
	SysMIXED
)

var (
	sysNames = [...]string{"", "GPS", "GLO", "GAL", "QZSS", "BDS", "IRNSS", "SBAS", "MIXED"}
	sysAbbrs = [...]string{"", "G", "R", "E", "J", "C", "I", "S", "M"}

	// Sitelogs use all kind of spellings.
	sysAliases = map[string]System{
		"GLONASS": SysGLO,
		"GALILEO": SysGAL,
		"BEIDOU":  SysBDS,
		"NAVIC":   SysIRNSS,
	}
)

func (sys System) String() string {
	if sys < 0 || int(sys) >= len(sysNames) {
		return ""
	}
	return sysNames[sys]
}

// Abbr returns the systems' abbreviation used in RINEX.
func (sys System) Abbr() string {
	if sys < 0 || int(sys) >= len(sysAbbrs) {
		return ""
	}
	return sysAbbrs[sys]
}

// MarshalJSON encodes the system by its RINEX abbreviation.
func (sys System) MarshalJSON() ([]byte, error) {
	return json.Marshal(sys.Abbr())
}

// UnmarshalJSON accepts the abbreviation or the name of a system.
func (sys *System) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseSystem(s)
	if err != nil {
		return err
	}
	*sys = parsed
	return nil
}

// ParseSystem returns the system given by its name or RINEX abbreviation.
func ParseSystem(s string) (System, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i := 1; i < len(sysNames); i++ {
		if s == sysNames[i] || s == sysAbbrs[i] {
			return System(i), nil
		}
	}
	if sys, ok := sysAliases[s]; ok {
		return sys, nil
	}
	return 0, fmt.Errorf("unknown satellite system: %q", s)
}

// Systems specifies a list of satellite systems.
type Systems []System

// String returns the contained systems in sitelog manner GPS+GLO+...
func (syss Systems) String() string {
	str := make([]string, 0, len(syss))
	for _, sys := range syss {
		str = append(str, sys.String())
	}
	return strings.Join(str, "+")
}

// ParseSystems parses a sitelog like system list, e.g. "GPS+GLO" or "GPS/GLONASS".
func ParseSystems(s string) (Systems, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "/", "+")
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, "+")
	syss := make(Systems, 0, len(parts))
	for _, p := range parts {
		sys, err := ParseSystem(p)
		if err != nil {
			return nil, err
		}
		syss = append(syss, sys)
	}
	return syss, nil
}

// GPSEpoch is the origin of the GPS time scale.
var GPSEpoch = time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC)

// TimeFromWeekSeconds returns the time for the given GPS week and seconds of week.
// Leap seconds are not applied, the result is in the GPS time scale.
func TimeFromWeekSeconds(week int, sow float64) time.Time {
	d := time.Duration(week)*7*24*time.Hour + time.Duration(sow*float64(time.Second))
	return GPSEpoch.Add(d)
}

// WeekSeconds returns the GPS week and seconds of week of t.
func WeekSeconds(t time.Time) (week int, sow float64) {
	d := t.Sub(GPSEpoch)
	const weekDur = 7 * 24 * time.Hour
	week = int(d / weekDur)
	sow = (d - time.Duration(week)*weekDur).Seconds()
	return
}
