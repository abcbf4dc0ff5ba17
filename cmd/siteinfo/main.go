// siteinfo reads GNSS station information from SINEX, SSC and IGS sitelog files.
// It prints the information valid at a date, the full history of a station or a
// Bernese Station Information (STA) file, serves it by HTTP or imports it into PostgreSQL.
package main

import (
	"os"

	"github.com/de-bkg/siteinfo/internal/config"
	"github.com/de-bkg/siteinfo/internal/logger"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

const (
	version = "0.1.0"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "siteinfo: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "siteinfo",
		Usage:   "GNSS station information from SINEX, SSC and IGS sitelog files",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "log level: debug, info, warn or error",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "console",
				Usage:   "log format: console or json",
				EnvVars: []string{"LOG_FORMAT"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.New(config.LoggerConfig{Level: c.String("log-level"), Format: c.String("log-format")})
			return nil
		},
		Commands: []*cli.Command{
			showCommand(),
			historyCommand(),
			staCommand(),
			blocksCommand(),
			terraposCommand(),
			serveCommand(),
			importCommand(),
		},
		CustomAppHelpTemplate: cli.AppHelpTemplate + `EXAMPLES:
   $ siteinfo show --station wtzr --date 2020-01-01 igs20P21161.snx
   $ siteinfo history --json ~/sitelogs/wtzr00deu_20200610.log
   $ siteinfo sta --fmtvers 1.03 ~/sitelogs/*.log >out.STA 2>out.sta.err
   $ siteinfo serve --env /etc/siteinfo.env

Source: https://github.com/de-bkg/siteinfo
BKG Frankfurt, 2024
`,
	}
}

// fileFlags are shared by all commands reading site information files.
func fileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "source",
			Usage: "read all files as `FORMAT` sinex, ssc or sitelog, default is derived from the file names",
		},
		&cli.StringSliceFlag{
			Name:    "station",
			Aliases: []string{"s"},
			Usage:   "restrict the output to the station, 4 or 9 char ID, may be repeated",
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Value: 4,
			Usage: "number of files read in parallel",
		},
	}
}
