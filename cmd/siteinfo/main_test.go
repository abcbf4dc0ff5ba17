package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	snxFile      = "../../pkg/sinex/testdata/example.snx"
	sscFile      = "../../pkg/ssc/testdata/example.ssc"
	sitelogFile  = "../../pkg/sitelog/testdata/wtzr00deu_20200610.log"
	terraposFile = "../../pkg/terrapos/testdata/position.txt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	err := app.Run(append([]string{"siteinfo", "--log-level", "error"}, args...))
	return buf.String(), err
}

func TestShow(t *testing.T) {
	assert := assert.New(t)

	out, err := run(t, "show", "--station", "wtzr", "--date", "2014-01-01", sitelogFile)
	require.NoError(t, err)
	assert.Contains(out, "WTZR00DEU 14201M010")
	assert.Contains(out, "LEICA GR25")
	assert.Contains(out, "LEIAR25.R3      LEIT")
	assert.Contains(out, "UNE    0.0710    0.0000    0.0000")
	assert.Contains(out, "approx.")
}

func TestShow_json(t *testing.T) {
	out, err := run(t, "show", "--json", "--station", "WTZR00DEU", sitelogFile, sscFile)
	require.NoError(t, err)
	assert.Contains(t, out, `"station": "wtzr"`)
	assert.Contains(t, out, `"receiver": {`)
}

func TestShow_errors(t *testing.T) {
	_, err := run(t, "show")
	assert.Error(t, err)

	_, err = run(t, "show", "--date", "10.06.2020", sitelogFile)
	assert.Error(t, err)

	_, err = run(t, "show", "--station", "zimm", sitelogFile)
	assert.Error(t, err)

	_, err = run(t, "show", "--source", "rinex", sitelogFile)
	assert.Error(t, err)
}

func TestShow_source(t *testing.T) {
	renamed := filepath.Join(t.TempDir(), "wtzr.txt")
	b, err := os.ReadFile(sitelogFile)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(renamed, b, 0o644))

	// no nine character ID in the file name
	out, err := run(t, "show", "--source", "sitelog", renamed)
	require.NoError(t, err)
	assert.Contains(t, out, "WTZR 14201M010")
	assert.NotContains(t, out, "WTZR00DEU")
}

func TestHistory(t *testing.T) {
	assert := assert.New(t)

	out, err := run(t, "history", snxFile)
	require.NoError(t, err)
	assert.Contains(out, "ABMF")
	assert.Contains(out, "WTZR")
	assert.Contains(out, "2015-07-19 11:59:59")
}

func TestSTA(t *testing.T) {
	assert := assert.New(t)

	out, err := run(t, "sta", "--remark", "SITELOG", sitelogFile)
	require.NoError(t, err)
	assert.Contains(out, "FORMAT VERSION: 1.03")
	assert.Contains(out, "TYPE 001: RENAMING OF STATIONS")
	assert.Contains(out, "WTZR 14201M010        001  2010 04 10 00 00 00  2015 07 19 11 59 59  LEICA GR25")

	path := filepath.Join(t.TempDir(), "out.STA")
	out, err = run(t, "sta", "--output", path, "--fmtvers", "1.01", sitelogFile)
	require.NoError(t, err)
	assert.Empty(out)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(string(b), "FORMAT VERSION: 1.01")

	_, err = run(t, "sta", "--fmtvers", "2.00", sitelogFile)
	assert.Error(err)
}

func TestBlocks(t *testing.T) {
	out, err := run(t, "blocks", snxFile)
	require.NoError(t, err)
	assert.Contains(t, out, "SITE/ANTENNA")
	assert.Contains(t, out, "SOLUTION/ESTIMATE")

	_, err = run(t, "blocks")
	assert.Error(t, err)
}

func TestTerrapos(t *testing.T) {
	assert := assert.New(t)

	out, err := run(t, "terrapos", "--station", "vard", terraposFile)
	require.NoError(t, err)
	assert.Contains(out, "vard")
	assert.Contains(out, "2017-10-28 00:00:30")
	assert.Contains(out, "70.083249333")

	out, err = run(t, "terrapos", "--xyz", terraposFile)
	require.NoError(t, err)
	assert.NotContains(out, "70.083249333")
}
