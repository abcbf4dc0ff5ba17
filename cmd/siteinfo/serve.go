package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/de-bkg/siteinfo/internal/catalog"
	"github.com/de-bkg/siteinfo/internal/config"
	"github.com/de-bkg/siteinfo/internal/logger"
	"github.com/de-bkg/siteinfo/internal/metrics"
	"github.com/de-bkg/siteinfo/internal/server"
	"github.com/de-bkg/siteinfo/internal/store"
	"github.com/urfave/cli/v2"
)

func envFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "env",
		Usage: "load environment variables from `FILE`, default is .env",
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the files given by SITEINFO_FILES or as arguments by HTTP",
		Description: `The service is configured by environment variables:
   SITEINFO_HTTP_ADDR, SITEINFO_FILES, SITEINFO_LOAD_CONCURRENCY, SITEINFO_READ_TIMEOUT, LOG_LEVEL, LOG_FORMAT`,
		ArgsUsage: "[FILE...]",
		Flags:     []cli.Flag{envFlag()},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			m, err := metrics.NewCollector(nil)
			if err != nil {
				return err
			}
			cat, err := loadConfigured(ctx, cfg, m)
			if err != nil {
				return err
			}
			return server.New(cfg.Service, cat, m).Run(ctx)
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "import the equipment and coordinate histories into PostgreSQL",
		Description: `The database is configured by environment variables:
   POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, POSTGRES_DB, POSTGRES_SSL_MODE`,
		ArgsUsage: "[FILE...]",
		Flags:     []cli.Flag{envFlag()},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log := logger.Get("import")

			cat, err := loadConfigured(c.Context, cfg, nil)
			if err != nil {
				return err
			}

			db, err := store.Open(cfg.Postgres.Dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			var errs []error
			for _, key := range cat.Stations() {
				h, err := cat.History(key)
				if err == nil {
					err = db.SaveHistory(c.Context, h)
				}
				if err != nil {
					log.Error().Str("station", key).Err(err).Msg("import station")
					errs = append(errs, err)
					continue
				}
				log.Info().Str("station", key).Msg("imported")
			}
			return errors.Join(errs...)
		},
	}
}

// loadConfig reads the configuration from the environment. Files given as arguments replace SITEINFO_FILES.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.StringSlice("env")...)
	if err != nil {
		return nil, err
	}
	if c.NArg() > 0 {
		cfg.Service.Files = c.Args().Slice()
	}
	logger.New(cfg.Logger)
	return cfg, nil
}

// loadConfigured loads the configured files into a new catalog. Files that can not be read are logged and skipped.
func loadConfigured(ctx context.Context, cfg *config.Config, m *metrics.Collector) (*catalog.Catalog, error) {
	files, err := config.ExpandFiles(cfg.Service.Files)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no files configured, set SITEINFO_FILES or give them as arguments")
	}

	cat := catalog.New(m)
	if err := cat.Load(ctx, files, cfg.Service.LoadConcurrency); err != nil && len(cat.Datasets()) == 0 {
		return nil, err
	}
	log := logger.Get("catalog")
	log.Info().Int("datasets", len(cat.Datasets())).Int("stations", len(cat.Stations())).Msg("catalog loaded")
	return cat, nil
}
