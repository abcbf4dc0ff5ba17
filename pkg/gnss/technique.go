package gnss

import (
	"fmt"
	"strings"
)

// ObservationTechnique is the space geodetic technique that produced a solution,
// e.g. SLR, GPS, VLBI. It should be consistent with the IERS convention.
type ObservationTechnique int

// Observation techniques.
const (
	TechCombined ObservationTechnique = iota + 1
	TechDORIS
	TechSLR
	TechLLR
	TechGNSS
	TechVLBI
)

var (
	techNames = [...]string{"", "Combined", "DORIS", "SLR", "LLR", "GNSS", "VLBI"}
	techCodes = [...]string{"", "C", "D", "L", "M", "P", "R"}
)

func (tech ObservationTechnique) String() string {
	if tech < 0 || int(tech) >= len(techNames) {
		return ""
	}
	return techNames[tech]
}

// Code returns the single character SINEX code.
func (tech ObservationTechnique) Code() string {
	if tech < 0 || int(tech) >= len(techCodes) {
		return ""
	}
	return techCodes[tech]
}

// MarshalText implements encoding.TextMarshaler.
func (tech ObservationTechnique) MarshalText() ([]byte, error) {
	return []byte(tech.String()), nil
}

// TechniqueFromCode returns the technique for a SINEX observation code.
func TechniqueFromCode(code string) (ObservationTechnique, error) {
	for i := 1; i < len(techCodes); i++ {
		if code == techCodes[i] {
			return ObservationTechnique(i), nil
		}
	}
	return 0, fmt.Errorf("unknown observation code: %q", code)
}

// ParseTechnique returns the technique for its name as used in SSC files.
func ParseTechnique(name string) (ObservationTechnique, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "GPS", "GNSS":
		return TechGNSS, nil
	case "SLR":
		return TechSLR, nil
	case "LLR":
		return TechLLR, nil
	case "VLBI":
		return TechVLBI, nil
	case "DORIS":
		return TechDORIS, nil
	case "COMBINED":
		return TechCombined, nil
	}
	return 0, fmt.Errorf("unknown observation technique: %q", name)
}
