package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/de-bkg/siteinfo/internal/fileutil"
	"github.com/de-bkg/siteinfo/pkg/sinex"
	"github.com/de-bkg/siteinfo/pkg/terrapos"
	"github.com/urfave/cli/v2"
)

func blocksCommand() *cli.Command {
	return &cli.Command{
		Name:      "blocks",
		Usage:     "list the blocks of a SINEX file with their number of data lines",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("blocks needs one SINEX file")
			}

			r, err := fileutil.Open(c.Args().First())
			if err != nil {
				return err
			}
			defer r.Close()

			dec, err := sinex.NewDecoder(r)
			if err != nil {
				return err
			}

			w := c.App.Writer
			hdr := dec.Header
			stationColor.Fprintf(w, "SINEX %s %s\n", hdr.Version, hdr.Agency)
			fmt.Fprintf(w, "  data %s - %s, %d estimates, solution types %v\n",
				formatDate(hdr.StartTime), formatDate(hdr.EndTime), hdr.NumEstimates, hdr.SolutionTypes)
			if ref := dec.GetFileReference(); ref.Description != "" {
				fmt.Fprintf(w, "  %s, %s\n", ref.Description, ref.Software)
			}

			for name, err := range dec.Blocks() {
				if err != nil {
					return err
				}
				n := 0
				for _, err := range dec.BlockLines() {
					if err != nil {
						return err
					}
					n++
				}
				labelColor.Fprintf(w, "  %-32s", name)
				fmt.Fprintf(w, "%6d\n", n)
			}
			return nil
		},
	}
}

func terraposCommand() *cli.Command {
	return &cli.Command{
		Name:      "terrapos",
		Usage:     "print the positions of a Terrapos PPP output file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "station",
				Usage: "station name of the positions",
			},
			&cli.BoolFlag{
				Name:  "xyz",
				Usage: "print cartesian WGS84 coordinates",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("terrapos needs one position file")
			}

			data, err := terrapos.ParseFile(c.Args().First(), c.String("station"))
			if err != nil {
				return err
			}

			w := c.App.Writer
			if data.Station != "" {
				stationColor.Fprintf(w, "%s\n", data.Station)
			}
			for _, rec := range data.Records {
				epoch := rec.Time.Format(time.DateTime)
				if c.Bool("xyz") {
					pos := rec.Position()
					fmt.Fprintf(w, "%s  %14.4f  %14.4f  %14.4f  %3s\n", epoch, pos.X, pos.Y, pos.Z, numSat(rec))
					continue
				}
				fmt.Fprintf(w, "%s  %13.9f  %14.9f  %10.4f  %3s\n", epoch, rec.Lat, rec.Lon, rec.Height, numSat(rec))
			}
			return nil
		},
	}
}

func numSat(rec terrapos.Record) string {
	if rec.NumSat < 0 {
		return "-"
	}
	return strconv.Itoa(rec.NumSat)
}
