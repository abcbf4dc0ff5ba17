package main

import (
	"errors"
	"slices"

	"github.com/de-bkg/siteinfo/internal/catalog"
	"github.com/de-bkg/siteinfo/pkg/site"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// loadCatalog reads the files given as arguments. Files that can not be read are logged and skipped,
// an error is only returned if none could be read.
func loadCatalog(c *cli.Context) (*catalog.Catalog, error) {
	if c.NArg() == 0 {
		return nil, errors.New("no input files given")
	}
	paths := c.Args().Slice()
	cat := catalog.New(nil)

	var err error
	if c.String("source") == "" {
		err = cat.Load(c.Context, paths, c.Int("concurrency"))
	} else {
		err = addAs(cat, paths, c.String("source"))
	}
	if err != nil && len(cat.Datasets()) == 0 {
		return nil, err
	}
	return cat, nil
}

// addAs reads the files in the given format, regardless of their names.
func addAs(cat *catalog.Catalog, paths []string, format string) error {
	src, err := site.ParseSource(format)
	if err != nil {
		return err
	}

	var errs []error
	for _, path := range paths {
		ds, err := catalog.ReadFileAs(path, src)
		if err != nil {
			log.Error().Str("component", "catalog").Str("file", path).Err(err).Msg("load file")
			errs = append(errs, err)
			continue
		}
		cat.Add(ds)
	}
	return errors.Join(errs...)
}

// stations returns the station keys selected by the --station flag, or all stations of the catalog.
func stations(c *cli.Context, cat *catalog.Catalog) []string {
	selected := c.StringSlice("station")
	if len(selected) == 0 {
		return cat.Stations()
	}

	keys := make([]string, 0, len(selected))
	for _, id := range selected {
		keys = append(keys, site.StationKey(id))
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}
