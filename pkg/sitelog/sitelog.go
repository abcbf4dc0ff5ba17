// Package sitelog reads IGS site logs, see https://files.igs.org/pub/station/general/sitelog_instr.txt.
// Only the blocks relevant for processing are decoded: form, identification, location, receivers and antennas.
package sitelog

import (
	"regexp"
	"strings"
	"time"

	"github.com/de-bkg/siteinfo/pkg/gnss"
	"github.com/de-bkg/siteinfo/pkg/position"
)

// Sitelog holds the decoded content of an IGS site log.
type Sitelog struct {
	FormInfo FormInformation `json:"formInformation"`
	Ident    Identification  `json:"siteIdentification"`
	Location Location        `json:"siteLocation"`

	Receivers []*Receiver `json:"gnssReceivers" validate:"required,min=1,dive,required"`
	Antennas  []*Antenna  `json:"gnssAntennas" validate:"required,min=1,dive,required"`

	// Warnings collected while decoding and cleaning.
	Warnings []error `json:"-"`
}

// Code returns the lower-case four character ID.
func (sl *Sitelog) Code() string {
	return strings.ToLower(sl.Ident.FourCharacterID)
}

// FormInformation stores sitelog metdadata.
type FormInformation struct {
	PreparedBy   string    `json:"preparedBy"`
	DatePrepared time.Time `json:"datePrepared" validate:"required"`
	ReportType   string    `json:"reportType"` // NEW/UPDATE
}

// Identification holds common fields about this site.
type Identification struct {
	Name                   string    `json:"siteName" validate:"required"` // City or nearest town
	FourCharacterID        string    `json:"fourCharacterId" validate:"required,len=4"`
	NineCharacterID        string    `json:"nineCharacterId" validate:"omitempty,len=9"`
	MonumentInscription    string    `json:"monumentInscription"`
	DOMESNumber            string    `json:"iersDOMESNumber"` // IERS Domes number, A9
	CDPNumber              string    `json:"cdpNumber"`
	MonumentDescription    string    `json:"monumentDescription"` // PILLAR/BRASS PLATE/STEEL MAST/etc
	HeightOfMonument       float64   `json:"heightOfMonument"`    // in m
	MonumentFoundation     string    `json:"monumentFoundation"`  // STEEL RODS, CONCRETE BLOCK, ROOF, etc
	FoundationDepth        float64   `json:"foundationDepth"`     // in m
	MarkerDescription      string    `json:"markerDescription"`   // CHISELLED CROSS/DIVOT/BRASS NAIL/etc
	DateInstalled          time.Time `json:"dateInstalled"`
	GeologicCharacteristic string    `json:"geologicCharacteristic"` // BEDROCK/CLAY/CONGLOMERATE/GRAVEL/SAND/etc
	BedrockType            string    `json:"bedrockType"`            // IGNEOUS/METAMORPHIC/SEDIMENTARY
	BedrockCondition       string    `json:"bedrockCondition"`       // FRESH/JOINTED/WEATHERED
	FractureSpacing        string    `json:"fractureSpacing"`
	FaultZonesNearby       string    `json:"faultZonesNearby"`
	DistanceActivity       string    `json:"distanceActivity"`
	Notes                  string    `json:"notes"`
}

// Location holds information about the location.
type Location struct {
	City                string              `json:"city"`
	State               string              `json:"state"`
	Country             string              `json:"country"`
	TectonicPlate       string              `json:"tectonicPlate"`
	ApproximatePosition ApproximatePosition `json:"approximatePosition"` // ITRF
	Notes               string              `json:"notes"`
}

// ApproximatePosition of the site, given cartesian and geodetic.
type ApproximatePosition struct {
	Cartesian position.TRS `json:"cartesianPosition"`
	Lat       float64      `json:"lat"` // in degrees, N is +
	Lon       float64      `json:"lon"` // in degrees, E is +
	Height    float64      `json:"height"`
}

// Receiver is a GNSS receiver.
type Receiver struct {
	Type                string       `json:"type" validate:"required"`
	SatSystems          gnss.Systems `json:"satelliteSystem" validate:"required"`
	SerialNum           string       `json:"serialNumber" validate:"required"`
	Firmware            string       `json:"firmwareVersion"`
	ElevationCutoff     float64      `json:"elevationCutoffSetting"`   // degree
	TemperatureStabiliz string       `json:"temperatureStabilization"` // none or tolerance in degrees C
	DateInstalled       time.Time    `json:"dateInstalled" validate:"required"`
	DateRemoved         time.Time    `json:"dateRemoved"`
	Notes               string       `json:"notes"` // Additional Information
}

// Antenna is a GNSS antenna.
type Antenna struct {
	Type                   string    `json:"type" validate:"required"`
	Radome                 string    `json:"antennaRadomeType" validate:"omitempty,len=4"`
	RadomeSerialNum        string    `json:"radomeSerialNumber"`
	SerialNum              string    `json:"serialNumber" validate:"required"`
	ReferencePoint         string    `json:"antennaReferencePoint"`
	EccUp                  float64   `json:"markerArpUpEcc"`
	EccNorth               float64   `json:"markerArpNorthEcc"`
	EccEast                float64   `json:"markerArpEastEcc"`
	AlignmentFromTrueNorth float64   `json:"alignmentFromTrueNorth"` // in deg; + is clockwise/east
	CableType              string    `json:"antennaCableType"`       // vendor & type number
	CableLength            float32   `json:"antennaCableLength"`     // in meter
	DateInstalled          time.Time `json:"dateInstalled" validate:"required"`
	DateRemoved            time.Time `json:"dateRemoved"`
	Notes                  string    `json:"notes"` // Additional Information
}

// Model returns the antenna type without radome.
func (ant *Antenna) Model() string {
	if len(ant.Type) > 16 {
		return strings.TrimSpace(ant.Type[:16])
	}
	return strings.TrimSpace(ant.Type)
}

// Data are sitelogs keyed by the lower-case four character ID.
type Data map[string]*Sitelog

// Station returns the sitelog of a station, case-insensitive.
func (d Data) Station(code string) (*Sitelog, bool) {
	sl, ok := d[strings.ToLower(strings.TrimSpace(code))]
	return sl, ok
}

// stationNameRegex is the compiled regex for a 9char station name.
var stationNameRegex = regexp.MustCompile(`(?i)([A-Z0-9]{4})(\d)(\d)([A-Z]{3})`)

// NineCharIDFromFilename returns the upper-case nine character ID from sitelog file names like
// wtzr00deu_20200610.log, or an empty string.
func NineCharIDFromFilename(filename string) string {
	if len(filename) < 9 {
		return ""
	}

	res := stationNameRegex.FindStringSubmatch(filename)
	if res == nil {
		return ""
	}
	return strings.ToUpper(res[0])
}
