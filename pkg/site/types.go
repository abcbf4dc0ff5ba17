package site

import (
	"strings"
	"time"

	"github.com/de-bkg/siteinfo/pkg/gnss"
	"github.com/de-bkg/siteinfo/pkg/position"
)

// Antenna is a GNSS antenna installed at a station.
type Antenna struct {
	Station   string `json:"station"`
	Type      string `json:"type"` // 20 chars, including the radome
	Radome    string `json:"radome"`
	SerialNum string `json:"serialNumber"`
	Interval
	SourcePath string `json:"sourcePath,omitempty"`
}

// Model returns the antenna type without radome.
func (ant Antenna) Model() string {
	if len(ant.Type) > 16 {
		return strings.TrimSpace(ant.Type[:16])
	}
	return strings.TrimSpace(ant.Type)
}

// Receiver is a GNSS receiver installed at a station.
type Receiver struct {
	Station   string `json:"station"`
	Type      string `json:"type"`
	SerialNum string `json:"serialNumber"`
	Firmware  string `json:"firmware"`
	Interval
	SourcePath string `json:"sourcePath,omitempty"`
}

// Eccentricity is the vector from the marker to the antenna reference point.
type Eccentricity struct {
	Station string       `json:"station"`
	System  string       `json:"system"` // UNE or XYZ
	Up      float64      `json:"up"`     // in m, if System is UNE
	North   float64      `json:"north"`
	East    float64      `json:"east"`
	XYZ     position.TRS `json:"xyz"` // if System is XYZ
	Interval
	SourcePath string `json:"sourcePath,omitempty"`
}

// ENU returns the eccentricity in the local system at ref.
func (ecc Eccentricity) ENU(ref position.LLH) position.ENU {
	if ecc.System == "XYZ" {
		return ecc.XYZ.ENU(ref)
	}
	return position.ENU{E: ecc.East, N: ecc.North, U: ecc.Up}
}

// Vector returns the eccentricity as cartesian vector, using the station position ref for rotation.
func (ecc Eccentricity) Vector(ref position.LLH) position.TRS {
	if ecc.System == "XYZ" {
		return ecc.XYZ
	}
	return ecc.ENU(ref).TRS(ref)
}

// Identifier holds the naming and approximate location of a station.
type Identifier struct {
	Station     string                    `json:"station"`
	Name        string                    `json:"name"` // e.g. WTZR00DEU or WTZR
	PointCode   string                    `json:"pointCode,omitempty"`
	DOMES       string                    `json:"domes"`
	Description string                    `json:"description"`
	Technique   gnss.ObservationTechnique `json:"technique"`
	Lat         float64                   `json:"lat"` // in degrees
	Lon         float64                   `json:"lon"` // in degrees
	Height      float64                   `json:"height"`
	Interval
	SourcePath string `json:"sourcePath,omitempty"`
}

// Coord is the position of a station, optionally with velocity.
type Coord struct {
	Station  string       `json:"station"`
	Pos      position.TRS `json:"pos"`
	Sigma    position.TRS `json:"sigma"`
	Vel      position.TRS `json:"vel"`
	RefEpoch time.Time    `json:"refEpoch"` // Epoch of Pos, zero if unknown.
	Solution string       `json:"solution,omitempty"`

	// Approximate positions, e.g. from sitelogs.
	Approximate bool `json:"approximate,omitempty"`
	Interval
	SourcePath string `json:"sourcePath,omitempty"`
}

// At returns the position at date, propagated with the velocity.
func (crd Coord) At(date time.Time) position.TRS {
	return position.Propagate(crd.Pos, crd.Vel, crd.RefEpoch, date)
}

// LLH returns the geodetic position on the GRS80 ellipsoid.
func (crd Coord) LLH() position.LLH {
	return crd.Pos.LLH(position.GRS80)
}
