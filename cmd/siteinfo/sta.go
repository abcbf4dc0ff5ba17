package main

import (
	"bufio"
	"os"

	"github.com/de-bkg/siteinfo/pkg/site"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func staCommand() *cli.Command {
	return &cli.Command{
		Name:      "sta",
		Usage:     "create a Bernese STA-File",
		ArgsUsage: "FILE...",
		Flags: append(fileFlags(),
			&cli.StringFlag{
				Name:  "fmtvers",
				Value: "1.03",
				Usage: "the STA-File format version. Supported versions: 1.01, 1.03",
			},
			&cli.StringFlag{
				Name:  "remark",
				Value: "SITELOG",
				Usage: "remark written to each TYPE 002 line",
			},
			&cli.PathFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write to `FILE` instead of stdout",
			},
		),
		Action: func(c *cli.Context) error {
			cat, err := loadCatalog(c)
			if err != nil {
				return err
			}

			var hists []*site.InfoHistory
			for _, key := range stations(c, cat) {
				h, err := cat.History(key)
				if err != nil {
					log.Warn().Str("station", key).Err(err).Msg("skip station")
					continue
				}
				hists = append(hists, h)
			}

			w := c.App.Writer
			if path := c.Path("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			bw := bufio.NewWriter(w)
			opts := site.STAOptions{FormatVersion: c.String("fmtvers"), Remark: c.String("remark")}
			if err := site.WriteBerneseSTA(bw, hists, opts); err != nil {
				return err
			}
			return bw.Flush()
		},
	}
}
