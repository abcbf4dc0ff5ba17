package sitelog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/de-bkg/siteinfo/internal/fileutil"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var (
	// timeShift used if chronological items e.g. receivers have identical start/end time.
	timeShift = time.Second

	// use a single instance of Validate, it caches struct info
	validate = validator.New()
)

// installation is an item with an installation period, e.g. a receiver.
type installation interface {
	period() (installed, removed *time.Time)
}

func (recv *Receiver) period() (*time.Time, *time.Time) { return &recv.DateInstalled, &recv.DateRemoved }
func (ant *Antenna) period() (*time.Time, *time.Time)   { return &ant.DateInstalled, &ant.DateRemoved }

// Clean checks and corrects the receiver and antenna lists, as input is often lousy.
// Missing dates are set from the neighbours if possible, identical removal and installation dates are made unique.
// Antenna types are normalized to the 20-char format including the radome.
func (sl *Sitelog) Clean() error {
	if err := cleanDates(sl, "receiver", sl.Receivers); err != nil {
		return err
	}
	if err := cleanDates(sl, "antenna", sl.Antennas); err != nil {
		return err
	}

	for i, ant := range sl.Antennas {
		model := ant.Model()
		radome := ""
		if len(ant.Type) > 16 {
			radome = strings.TrimSpace(ant.Type[16:])
		}

		switch {
		case ant.Radome == "" && radome == "":
			ant.Radome = "NONE"
		case ant.Radome == "":
			ant.Radome = radome
		case radome != "" && radome != ant.Radome:
			sl.warnf("block 4.%d: Antenna Radome Type %q differs from Antenna Type: %q", i+1, ant.Radome, ant.Type)
		}
		ant.Type = fmt.Sprintf("%-16s%4s", model, ant.Radome)
	}

	return nil
}

func cleanDates[T installation](sl *Sitelog, item string, list []T) error {
	for i, curr := range list {
		n := i + 1 // item number
		currInstalled, currRemoved := curr.period()

		// check date installed
		if currInstalled.IsZero() {
			sl.warnf("%s %d with empty %q", item, n, "Date Installed")
			if i == 0 {
				return fmt.Errorf("%s %d with empty %q", item, n, "Date Installed")
			}

			_, prevRemoved := list[i-1].period()
			if prevRemoved.IsZero() {
				return fmt.Errorf("empty %q from %s %d could not be corrected", "Date Installed", item, n)
			}
			*currInstalled = prevRemoved.Add(timeShift)
		}

		// check date removed
		if currRemoved.IsZero() && i+1 < len(list) {
			sl.warnf("%s %d with empty %q", item, n, "Date Removed")
			nextInstalled, _ := list[i+1].period()
			if nextInstalled.IsZero() {
				return fmt.Errorf("empty %q from %s %d could not be corrected", "Date Removed", item, n)
			}
			*currRemoved = nextInstalled.Add(-timeShift)
		}

		if i > 0 {
			_, prevRemoved := list[i-1].period()
			if prevRemoved.After(*currInstalled) {
				return fmt.Errorf("%s %d and %d are not chronological", item, n-1, n)
			} else if prevRemoved.Equal(*currInstalled) {
				// dates must be unique, so we introduce a small shift
				*prevRemoved = prevRemoved.Add(-timeShift)
			}
		}
	}
	return nil
}

// Validate validates the sitelog with the struct tags.
func (sl *Sitelog) Validate() error {
	return validate.Struct(sl)
}

func (sl *Sitelog) warnf(format string, args ...any) {
	err := fmt.Errorf(format, args...)
	sl.Warnings = append(sl.Warnings, err)
	log.Warn().Str("component", "sitelog").Str("station", sl.Ident.FourCharacterID).Msg(err.Error())
}

// ParseFile decodes and cleans the sitelog file at path, which may be compressed.
// The nine character ID is taken from the file name if the sitelog does not provide it.
func ParseFile(path string) (*Sitelog, error) {
	r, err := fileutil.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sl, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if sl.Ident.NineCharacterID == "" {
		if nineCharID := NineCharIDFromFilename(filepath.Base(path)); nineCharID != "" {
			if nineCharID[:4] == strings.ToUpper(sl.Ident.FourCharacterID) {
				sl.Ident.NineCharacterID = nineCharID
			}
		}
	}

	if err := sl.Clean(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := sl.Validate(); err != nil {
		sl.warnf("validation: %v", err)
	}
	return sl, nil
}

// ParseFiles parses the given sitelogs. A station found in several files is taken from the last one.
func ParseFiles(paths ...string) (Data, error) {
	data := make(Data, len(paths))
	for _, path := range paths {
		sl, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		data[sl.Code()] = sl
	}
	return data, nil
}
