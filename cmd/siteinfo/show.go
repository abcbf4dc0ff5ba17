package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/de-bkg/siteinfo/internal/server"
	"github.com/de-bkg/siteinfo/pkg/position"
	"github.com/de-bkg/siteinfo/pkg/site"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	stationColor = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.FgGreen)
)

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "print the station information valid at a date",
		ArgsUsage: "FILE...",
		Flags: append(fileFlags(),
			&cli.StringFlag{
				Name:  "date",
				Usage: "`DATE` as YYYY-MM-DD or RFC3339, default is the latest information",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print JSON instead of text",
			},
		),
		Action: func(c *cli.Context) error {
			date, err := server.ParseDate(c.String("date"))
			if err != nil {
				return err
			}
			cat, err := loadCatalog(c)
			if err != nil {
				return err
			}

			infos := make([]*site.Info, 0)
			for _, key := range stations(c, cat) {
				info, err := cat.Info(key, date)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}

			if c.Bool("json") {
				return writeJSON(c.App.Writer, infos)
			}
			for _, info := range infos {
				printInfo(c.App.Writer, info)
			}
			return nil
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "print the equipment and coordinate history of the stations",
		ArgsUsage: "FILE...",
		Flags: append(fileFlags(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print JSON instead of text",
			},
		),
		Action: func(c *cli.Context) error {
			cat, err := loadCatalog(c)
			if err != nil {
				return err
			}

			hists := make([]*site.InfoHistory, 0)
			for _, key := range stations(c, cat) {
				h, err := cat.History(key)
				if err != nil {
					return err
				}
				hists = append(hists, h)
			}

			if c.Bool("json") {
				return writeJSON(c.App.Writer, hists)
			}
			for _, h := range hists {
				printHistory(c.App.Writer, h)
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printInfo(w io.Writer, info *site.Info) {
	printStation(w, info.Station, info.Identifier)
	if info.Receiver != nil {
		printLine(w, "Receiver", info.Receiver.Interval, formatReceiver(*info.Receiver))
	}
	if info.Antenna != nil {
		printLine(w, "Antenna", info.Antenna.Interval, formatAntenna(*info.Antenna))
	}
	if info.Eccentricity != nil {
		printLine(w, "Eccentricity", info.Eccentricity.Interval, formatEccentricity(*info.Eccentricity))
	}
	if info.Coord != nil {
		printLine(w, "Coordinate", info.Coord.Interval, formatCoord(*info.Coord))
	}
	fmt.Fprintln(w)
}

func printHistory(w io.Writer, h *site.InfoHistory) {
	ident, _ := h.Identifiers.Last()
	printStation(w, h.Station, &ident)
	for iv, recv := range h.Receivers.All() {
		printLine(w, "Receiver", iv, formatReceiver(recv))
	}
	for iv, ant := range h.Antennas.All() {
		printLine(w, "Antenna", iv, formatAntenna(ant))
	}
	for iv, ecc := range h.Eccentricities.All() {
		printLine(w, "Eccentricity", iv, formatEccentricity(ecc))
	}
	for iv, crd := range h.Coords.All() {
		printLine(w, "Coordinate", iv, formatCoord(crd))
	}
	fmt.Fprintln(w)
}

func printStation(w io.Writer, station string, ident *site.Identifier) {
	if ident == nil || ident.Name == "" {
		stationColor.Fprintf(w, "%s\n", station)
		return
	}
	stationColor.Fprintf(w, "%s %s", ident.Name, ident.DOMES)
	fmt.Fprintf(w, "  %s (%.4f, %.4f, %.1f m)\n", ident.Description, ident.Lat, ident.Lon, ident.Height)
}

func printLine(w io.Writer, label string, iv site.Interval, value string) {
	labelColor.Fprintf(w, "  %-13s", label)
	fmt.Fprintf(w, "%-19s  %-19s  %s\n", formatDate(iv.From), formatDate(iv.To), value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.DateTime)
}

func formatReceiver(recv site.Receiver) string {
	return fmt.Sprintf("%-20s  %-20s  %s", recv.Type, recv.SerialNum, recv.Firmware)
}

func formatAntenna(ant site.Antenna) string {
	return fmt.Sprintf("%-20s  %s", ant.Type, ant.SerialNum)
}

func formatEccentricity(ecc site.Eccentricity) string {
	if ecc.System == "XYZ" {
		return fmt.Sprintf("XYZ  %8.4f  %8.4f  %8.4f", ecc.XYZ.X, ecc.XYZ.Y, ecc.XYZ.Z)
	}
	return fmt.Sprintf("UNE  %8.4f  %8.4f  %8.4f", ecc.Up, ecc.North, ecc.East)
}

func formatCoord(crd site.Coord) string {
	s := fmt.Sprintf("%14.4f  %14.4f  %14.4f", crd.Pos.X, crd.Pos.Y, crd.Pos.Z)
	if crd.Approximate {
		return s + "  approx."
	}
	if !crd.RefEpoch.IsZero() {
		s += "  epoch " + crd.RefEpoch.Format(time.DateOnly)
	}
	if crd.Vel != (position.TRS{}) {
		s += fmt.Sprintf("  vel %7.4f %7.4f %7.4f m/y", crd.Vel.X, crd.Vel.Y, crd.Vel.Z)
	}
	return s
}
