package sinex

import (
	"fmt"
	"io"
	"iter"
	"sort"
	"strings"

	"github.com/de-bkg/siteinfo/internal/fileutil"
)

// Station collects all records of one site found in a SINEX file.
type Station struct {
	Code           SiteCode
	ID             *Site // nil if the site is not listed in SITE/ID
	Receivers      []Receiver
	Antennas       []Antenna
	Eccentricities []Eccentricity
	Epochs         []SolutionEpoch
	Estimates      []Estimate
}

// Coordinates returns the estimated coordinates of the station, one per solution.
func (sta *Station) Coordinates() []StationCoordinate {
	var crds []StationCoordinate
	for crd := range AllStationCoordinates(sta.Estimates) {
		crds = append(crds, crd)
	}
	return crds
}

// Epoch returns the data span for the given point code and solution, if available.
func (sta *Station) Epoch(pointCode, solID string) (SolutionEpoch, bool) {
	for _, epo := range sta.Epochs {
		if epo.PointCode == pointCode && epo.SolID == solID {
			return epo, true
		}
	}
	return SolutionEpoch{}, false
}

// Data is the content of a parsed SINEX file, with the site related records grouped by station.
type Data struct {
	Header        Header
	FileReference FileReference

	// Stations keyed by the lower-case site code.
	Stations map[string]*Station

	// Estimates with no site code, e.g. earth orientation parameters.
	OtherEstimates []Estimate
}

// Station returns the station with the given site code, case-insensitive.
func (d *Data) Station(code string) (*Station, bool) {
	sta, ok := d.Stations[strings.ToLower(strings.TrimSpace(code))]
	return sta, ok
}

// StationCodes returns the sorted lower-case site codes.
func (d *Data) StationCodes() []string {
	codes := make([]string, 0, len(d.Stations))
	for code := range d.Stations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// NumRecords returns the number of decoded site records.
func (d *Data) NumRecords() int {
	n := len(d.OtherEstimates)
	for _, sta := range d.Stations {
		if sta.ID != nil {
			n++
		}
		n += len(sta.Receivers) + len(sta.Antennas) + len(sta.Eccentricities) + len(sta.Epochs) + len(sta.Estimates)
	}
	return n
}

func (d *Data) station(code SiteCode) *Station {
	key := strings.ToLower(string(code))
	sta, ok := d.Stations[key]
	if !ok {
		sta = &Station{Code: code}
		d.Stations[key] = sta
	}
	return sta
}

// Parse reads the SINEX input stream and returns the site related information
// grouped by station. Blocks that are not related to sites are skipped.
func Parse(r io.Reader) (*Data, error) {
	dec, err := NewDecoder(r)
	if err != nil {
		return nil, err
	}

	data := &Data{
		Header:        *dec.Header,
		FileReference: dec.GetFileReference(),
		Stations:      make(map[string]*Station),
	}

	for name, err := range dec.Blocks() {
		if err != nil {
			return nil, err
		}

		switch name {
		case BlockSiteID:
			err = decodeBlock(dec, func(s *Site) {
				// one entry per site, point code A if listed
				sta := data.station(s.Code)
				if sta.ID == nil || (sta.ID.PointCode != "A" && s.PointCode == "A") {
					sta.ID = s
				}
			})
		case BlockSiteReceiver:
			err = decodeBlock(dec, func(recv *Receiver) {
				sta := data.station(recv.SiteCode)
				sta.Receivers = append(sta.Receivers, *recv)
			})
		case BlockSiteAntenna:
			err = decodeBlock(dec, func(ant *Antenna) {
				sta := data.station(ant.SiteCode)
				sta.Antennas = append(sta.Antennas, *ant)
			})
		case BlockSiteEcc:
			err = decodeBlock(dec, func(ecc *Eccentricity) {
				sta := data.station(ecc.SiteCode)
				sta.Eccentricities = append(sta.Eccentricities, *ecc)
			})
		case BlockSolEpochs:
			err = decodeBlock(dec, func(epo *SolutionEpoch) {
				sta := data.station(epo.SiteCode)
				sta.Epochs = append(sta.Epochs, *epo)
			})
		case BlockSolEstimate:
			err = decodeBlock(dec, func(est *Estimate) {
				if est.SiteCode == "" {
					data.OtherEstimates = append(data.OtherEstimates, *est)
					return
				}
				sta := data.station(est.SiteCode)
				sta.Estimates = append(sta.Estimates, *est)
			})
		}
		if err != nil {
			return nil, err
		}
	}

	return data, nil
}

// ParseFile parses the SINEX file at path, which may be compressed.
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

// decodeBlock unmarshals all data lines of the current block into records of type T.
func decodeBlock[T any, PT interface {
	*T
	Unmarshaler
}](dec *Decoder, add func(*T)) error {
	block := dec.CurrentBlock()
	for line, err := range dec.BlockLines() {
		if err != nil {
			return err
		}

		rec := new(T)
		if err := PT(rec).UnmarshalSINEX(line); err != nil {
			return fmt.Errorf("line %d: %s: %w", dec.LineNumber(), block, err)
		}
		add(rec)
	}
	return nil
}

// AllStationCoordinates groups the STAX/STAY/STAZ and VELX/VELY/VELZ estimates by site,
// point code and solution. The coordinates are yielded in the order of their first estimate.
// Solutions without complete positions are skipped.
func AllStationCoordinates(estimates []Estimate) iter.Seq[StationCoordinate] {
	type key struct {
		code SiteCode
		pt   string
		soln string
	}

	return func(yield func(StationCoordinate) bool) {
		var order []key
		crds := make(map[key]*StationCoordinate)
		found := make(map[key]int) // bit mask of the found components

		for _, est := range estimates {
			if est.SiteCode == "" {
				continue
			}

			k := key{est.SiteCode, est.PointCode, est.SolID}
			crd, ok := crds[k]
			if !ok {
				crd = &StationCoordinate{SiteCode: est.SiteCode, PointCode: est.PointCode, SolID: est.SolID}
				crds[k] = crd
				order = append(order, k)
			}

			switch est.ParType {
			case ParameterTypeSTAX:
				crd.Pos.X, crd.Sigma.X = est.Value, est.Stddev
				crd.Epoch = est.Epoch
				found[k] |= 1
			case ParameterTypeSTAY:
				crd.Pos.Y, crd.Sigma.Y = est.Value, est.Stddev
				found[k] |= 2
			case ParameterTypeSTAZ:
				crd.Pos.Z, crd.Sigma.Z = est.Value, est.Stddev
				found[k] |= 4
			case ParameterTypeVELX:
				crd.Vel.X, crd.VelSigma.X = est.Value, est.Stddev
				crd.HasVel = true
			case ParameterTypeVELY:
				crd.Vel.Y, crd.VelSigma.Y = est.Value, est.Stddev
				crd.HasVel = true
			case ParameterTypeVELZ:
				crd.Vel.Z, crd.VelSigma.Z = est.Value, est.Stddev
				crd.HasVel = true
			}
		}

		for _, k := range order {
			if found[k] != 7 {
				continue
			}
			if !yield(*crds[k]) {
				return
			}
		}
	}
}
