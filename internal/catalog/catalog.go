// Package catalog loads many site information files and answers station lookups across them.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/de-bkg/siteinfo/internal/fileutil"
	"github.com/de-bkg/siteinfo/internal/metrics"
	"github.com/de-bkg/siteinfo/pkg/site"
	"github.com/de-bkg/siteinfo/pkg/sinex"
	"github.com/de-bkg/siteinfo/pkg/sitelog"
	"github.com/de-bkg/siteinfo/pkg/ssc"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnknownFormat is returned for files whose format can not be derived from the name.
	ErrUnknownFormat = errors.New("catalog: unknown file format")

	// ErrStationNotFound is returned if no dataset contains the station.
	ErrStationNotFound = errors.New("catalog: station not found")
)

// Dataset is a loaded file.
type Dataset struct {
	Path     string      `json:"path"`
	Source   site.Source `json:"source"`
	Data     any         `json:"-"`
	Records  int         `json:"records"`
	Stations []string    `json:"stations"` // sorted lower-case keys
	LoadedAt time.Time   `json:"loadedAt"`
}

func (ds *Dataset) query(station string, date time.Time) site.Query {
	return site.Query{Source: ds.Source, Data: ds.Data, Stations: []string{station}, Date: date, SourcePath: ds.Path}
}

func (ds *Dataset) has(station string) bool {
	_, ok := slices.BinarySearch(ds.Stations, station)
	return ok
}

// DetectSource returns the source format by the file extension, compression extensions are ignored.
func DetectSource(path string) (site.Source, error) {
	name := strings.ToLower(filepath.Base(fileutil.TrimCompressionExt(path)))
	switch filepath.Ext(name) {
	case ".snx", ".sinex":
		return site.SourceSINEX, nil
	case ".ssc":
		return site.SourceSSC, nil
	case ".log":
		return site.SourceSitelog, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// ReadFile parses the file at path according to its source format.
func ReadFile(path string) (*Dataset, error) {
	src, err := DetectSource(path)
	if err != nil {
		return nil, err
	}
	return ReadFileAs(path, src)
}

// ReadFileAs parses the file at path as src, regardless of its name.
func ReadFileAs(path string, src site.Source) (*Dataset, error) {
	ds := &Dataset{Path: path, Source: src, LoadedAt: time.Now().UTC()}
	switch src {
	case site.SourceSINEX:
		data, err := sinex.ParseFile(path)
		if err != nil {
			return nil, err
		}
		ds.Data, ds.Records, ds.Stations = data, data.NumRecords(), data.StationCodes()
	case site.SourceSSC:
		data, err := ssc.ParseFile(path)
		if err != nil {
			return nil, err
		}
		ds.Data, ds.Stations = data, data.StationCodes()
		for _, sols := range data.Stations {
			ds.Records += len(sols)
		}
	case site.SourceSitelog:
		sl, err := sitelog.ParseFile(path)
		if err != nil {
			return nil, err
		}
		ds.Data = sitelog.Data{sl.Code(): sl}
		ds.Records = len(sl.Receivers) + len(sl.Antennas)
		ds.Stations = []string{sl.Code()}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, src)
	}
	return ds, nil
}

// Catalog holds the datasets in load order. It is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	datasets []*Dataset
	metrics  *metrics.Collector
}

// New returns an empty catalog. The collector may be nil.
func New(m *metrics.Collector) *Catalog {
	return &Catalog{metrics: m}
}

// Load reads the files concurrently, at most concurrency at a time, and appends them in the given order.
// Files that can not be read are skipped, their errors are returned joined.
func (c *Catalog) Load(ctx context.Context, paths []string, concurrency int) error {
	loaded := make([]*Dataset, len(paths))
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			ds, err := ReadFile(path)
			if err != nil {
				src, _ := DetectSource(path)
				if src == "" {
					src = "unknown"
				}
				c.metrics.ObserveFile(string(src), 0, err)
				log.Error().Str("component", "catalog").Str("file", path).Err(err).Msg("load file")
				errs[i] = err // includes the path
				return nil
			}
			c.metrics.ObserveFile(string(ds.Source), ds.Records, nil)

			log.Debug().Str("component", "catalog").Str("file", path).Int("stations", len(ds.Stations)).Msg("file loaded")
			loaded[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	for _, ds := range loaded {
		if ds != nil {
			c.datasets = append(c.datasets, ds)
		}
	}
	c.mu.Unlock()
	c.metrics.SetStations(len(c.Stations()))

	return errors.Join(errs...)
}

// Add appends a dataset.
func (c *Catalog) Add(ds *Dataset) {
	c.mu.Lock()
	c.datasets = append(c.datasets, ds)
	c.mu.Unlock()
	c.metrics.SetStations(len(c.Stations()))
}

// Datasets returns the loaded datasets in load order.
func (c *Catalog) Datasets() []Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make([]Dataset, 0, len(c.datasets))
	for _, ds := range c.datasets {
		res = append(res, *ds)
	}
	return res
}

// Stations returns the sorted keys of all stations in the catalog.
func (c *Catalog) Stations() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var res []string
	for _, ds := range c.datasets {
		res = append(res, ds.Stations...)
	}
	slices.Sort(res)
	return slices.Compact(res)
}

// Info returns the properties of the station valid at date, merged over all datasets.
// Earlier loaded datasets have priority.
func (c *Catalog) Info(station string, date time.Time) (*site.Info, error) {
	key := site.StationKey(station)
	var res *site.Info
	for _, ds := range c.containing(key) {
		infos, err := site.GetInfo(ds.query(key, date))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ds.Path, err)
		}
		if res == nil {
			res = infos[key]
			continue
		}
		res.Merge(infos[key])
	}
	if res == nil {
		return nil, fmt.Errorf("%w: %s", ErrStationNotFound, station)
	}
	return res, nil
}

// History returns the property histories of the station, merged over all datasets.
func (c *Catalog) History(station string) (*site.InfoHistory, error) {
	key := site.StationKey(station)
	var res *site.InfoHistory
	for _, ds := range c.containing(key) {
		hists, err := site.GetInfoHistory(ds.query(key, time.Time{}))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ds.Path, err)
		}
		if res == nil {
			res = hists[key]
			continue
		}
		res.Merge(hists[key])
	}
	if res == nil {
		return nil, fmt.Errorf("%w: %s", ErrStationNotFound, station)
	}
	return res, nil
}

func (c *Catalog) containing(key string) []*Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var res []*Dataset
	for _, ds := range c.datasets {
		if ds.has(key) {
			res = append(res, ds)
		}
	}
	return res
}
