package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/de-bkg/siteinfo/internal/metrics"
	"github.com/de-bkg/siteinfo/pkg/site"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	snxFile     = "../../pkg/sinex/testdata/example.snx"
	sscFile     = "../../pkg/ssc/testdata/example.ssc"
	sitelogFile = "../../pkg/sitelog/testdata/wtzr00deu_20200610.log"
)

func TestDetectSource(t *testing.T) {
	tests := []struct {
		path    string
		want    site.Source
		wantErr bool
	}{
		{path: "igs20P21161.snx", want: site.SourceSINEX},
		{path: "/data/IGS0OPSSNX_20202190000_01D_01D_SOL.SNX.gz", want: site.SourceSINEX},
		{path: "ITRF2014_GNSS.SSC.txt", wantErr: true},
		{path: "ITRF2020_GNSS.ssc", want: site.SourceSSC},
		{path: "logs/wtzr00deu_20200610.log", want: site.SourceSitelog},
		{path: "wtzr00deu_20200610.log.bz2", want: site.SourceSitelog},
		{path: "brdc0010.20n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectSource(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFile(t *testing.T) {
	assert := assert.New(t)

	ds, err := ReadFile(snxFile)
	require.NoError(t, err)
	assert.Equal(site.SourceSINEX, ds.Source)
	assert.Equal([]string{"abmf", "wtzr"}, ds.Stations)
	assert.Equal(26, ds.Records)

	ds, err = ReadFile(sscFile)
	require.NoError(t, err)
	assert.Equal(site.SourceSSC, ds.Source)
	assert.Equal([]string{"7224", "abmf", "wtzr"}, ds.Stations)
	assert.Equal(4, ds.Records)

	ds, err = ReadFile(sitelogFile)
	require.NoError(t, err)
	assert.Equal(site.SourceSitelog, ds.Source)
	assert.Equal([]string{"wtzr"}, ds.Stations)
	assert.Equal(4, ds.Records)
}

func TestReadFileAs(t *testing.T) {
	dir := t.TempDir()
	renamed := filepath.Join(dir, "solution.txt")
	b, err := os.ReadFile(snxFile)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(renamed, b, 0o644))

	_, err = ReadFile(renamed)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	ds, err := ReadFileAs(renamed, site.SourceSINEX)
	require.NoError(t, err)
	assert.Equal(t, []string{"abmf", "wtzr"}, ds.Stations)

	_, err = ReadFileAs(renamed, site.Source("rinex"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestCatalog_Load(t *testing.T) {
	assert := assert.New(t)

	reg := prometheus.NewRegistry()
	m, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	broken := filepath.Join(t.TempDir(), "broken.snx")
	require.NoError(t, os.WriteFile(broken, []byte("no sinex\n"), 0o644))

	cat := New(m)
	err = cat.Load(context.Background(), []string{sscFile, snxFile, broken, sitelogFile, "unknown.txt"}, 2)
	require.Error(t, err)
	assert.ErrorIs(err, ErrUnknownFormat)
	assert.Contains(err.Error(), "broken.snx")

	ds := cat.Datasets()
	require.Len(t, ds, 3)
	assert.Equal(sscFile, ds[0].Path, "load order kept")
	assert.Equal(snxFile, ds[1].Path)
	assert.Equal(sitelogFile, ds[2].Path)
	assert.Equal([]string{"7224", "abmf", "wtzr"}, cat.Stations())

	assert.Equal(1.0, testutil.ToFloat64(m.Files.WithLabelValues("snx", "ok")))
	assert.Equal(1.0, testutil.ToFloat64(m.Files.WithLabelValues("snx", "error")))
	assert.Equal(1.0, testutil.ToFloat64(m.Files.WithLabelValues("unknown", "error")))
	assert.Equal(26.0, testutil.ToFloat64(m.Records.WithLabelValues("snx")))
	assert.Equal(3.0, testutil.ToFloat64(m.Stations))
}

func TestCatalog_Load_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cat := New(nil)
	err := cat.Load(ctx, []string{snxFile}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, cat.Datasets())
}

func loadAll(t *testing.T) *Catalog {
	t.Helper()
	cat := New(nil)
	require.NoError(t, cat.Load(context.Background(), []string{sscFile, snxFile, sitelogFile}, 0))
	return cat
}

func TestCatalog_Info(t *testing.T) {
	assert := assert.New(t)
	cat := loadAll(t)

	info, err := cat.Info("WTZR00DEU", time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal("wtzr", info.Station)

	// coordinates and identifier from the SSC file loaded first
	require.NotNil(t, info.Coord)
	assert.Equal(sscFile, info.Coord.SourcePath)
	assert.Equal("Bad Koetzting", info.Identifier.Description)

	// equipment from the SINEX file
	require.NotNil(t, info.Antenna)
	assert.Equal(snxFile, info.Antenna.SourcePath)
	assert.Equal("09250", info.Antenna.SerialNum)
	assert.Equal("LEICA GR25", info.Receiver.Type)

	info, err = cat.Info("7224", time.Time{})
	require.NoError(t, err)
	assert.Nil(info.Antenna)
	assert.NotNil(info.Coord)

	_, err = cat.Info("brux", time.Time{})
	assert.ErrorIs(err, ErrStationNotFound)
}

func TestCatalog_History(t *testing.T) {
	assert := assert.New(t)
	cat := loadAll(t)

	h, err := cat.History("wtzr")
	require.NoError(t, err)
	assert.Equal(2, h.Coords.Len())
	assert.Equal(2, h.Receivers.Len())
	last, ok := h.Receivers.Last()
	require.True(t, ok)
	assert.Equal(snxFile, last.SourcePath)

	_, err = cat.History("brux")
	assert.ErrorIs(err, ErrStationNotFound)
}
