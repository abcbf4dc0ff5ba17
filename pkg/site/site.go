// Package site provides the antenna, receiver, eccentricity, identifier and coordinate information
// of GNSS stations, read from SINEX, SSC or sitelog files, either valid at a given date or as history.
package site

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Source is the format of the site information.
type Source string

// Available sources.
const (
	SourceSINEX   Source = "snx"
	SourceSSC     Source = "ssc"
	SourceSitelog Source = "sitelog"
)

// Property is a site property.
type Property string

// Available properties.
const (
	PropAntenna      Property = "antenna"
	PropReceiver     Property = "receiver"
	PropEccentricity Property = "eccentricity"
	PropIdentifier   Property = "identifier"
	PropCoord        Property = "coord"
)

// Properties lists all properties.
var Properties = []Property{PropAntenna, PropReceiver, PropEccentricity, PropIdentifier, PropCoord}

var supported = map[Source][]Property{
	SourceSINEX:   Properties,
	SourceSSC:     {PropIdentifier, PropCoord},
	SourceSitelog: Properties,
}

// errors
var (
	// ErrDataType is returned if the data does not fit the source.
	ErrDataType = errors.New("site: data type does not match source")

	// ErrUnsupported is returned if a property is not provided by the source.
	ErrUnsupported = errors.New("site: property not supported by source")

	// ErrNoEntry is returned if a history has no entry valid at the requested date.
	ErrNoEntry = errors.New("site: no entry valid at date")
)

// use a single instance of Validate, it caches struct info
var validate = validator.New()

// ParseSource returns the source for names like "snx", "SINEX" or "sitelog".
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "snx", "sinex":
		return SourceSINEX, nil
	case "ssc":
		return SourceSSC, nil
	case "sitelog", "log":
		return SourceSitelog, nil
	}
	return "", fmt.Errorf("unknown source: %q", s)
}

// Supports reports whether the source provides the property.
func (src Source) Supports(prop Property) bool {
	return slices.Contains(supported[src], prop)
}

// Query selects the site information.
type Query struct {
	// Source format of Data.
	Source Source `validate:"required,oneof=snx ssc sitelog"`

	// Parsed data: *sinex.Data for snx, *ssc.Data for ssc, sitelog.Data or *sitelog.Sitelog for sitelog.
	// Not validated by tag, a *sitelog.Sitelog would be validated as a whole.
	Data any `validate:"-"`

	// Stations to select, case-insensitive four character IDs. All stations of Data if empty.
	Stations []string `validate:"dive,min=4,max=9"`

	// Date at which the properties must be valid. The latest information if zero.
	Date time.Time

	// SourcePath is passed through to the results.
	SourcePath string
}

// Validate checks the query.
func (q Query) Validate() error {
	if q.Data == nil {
		return errors.New("site: query without data")
	}
	return validate.Struct(q)
}

// StationKey returns the lower-case four character ID used as map key.
// Nine character IDs like WTZR00DEU are shortened.
func StationKey(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if len(id) == 9 {
		return id[:4]
	}
	return id
}

// selected returns the requested station keys, or all keys of the source.
func (q Query) selected(src source) []string {
	if len(q.Stations) == 0 {
		return src.codes()
	}

	keys := make([]string, 0, len(q.Stations))
	for _, sta := range q.Stations {
		key := StationKey(sta)
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	return keys
}
