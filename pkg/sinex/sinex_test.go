package sinex

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/de-bkg/siteinfo/pkg/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	assert := assert.New(t)
	r, err := os.Open("testdata/example.snx")
	require.NoError(t, err)
	defer r.Close()

	data, err := Parse(r)
	require.NoError(t, err)

	assert.Equal("IGN", data.Header.Agency)
	assert.Equal("CATREF", data.FileReference.Software)
	assert.Equal([]string{"abmf", "wtzr"}, data.StationCodes())
	assert.Equal(26, data.NumRecords())

	sta, ok := data.Station("WTZR")
	require.True(t, ok)
	assert.Equal(SiteCode("WTZR"), sta.Code)
	require.NotNil(t, sta.ID)
	assert.Equal("14201M010", sta.ID.DOMESNumber)
	assert.Equal("Bad Koetzting, DE", sta.ID.Description)
	assert.Len(sta.Receivers, 2)
	assert.Len(sta.Antennas, 2)
	assert.Len(sta.Eccentricities, 1)
	assert.Len(sta.Epochs, 2)
	assert.Len(sta.Estimates, 9)

	assert.Equal("LEICA GR50", sta.Receivers[1].Type)
	assert.Equal(time.Date(2015, 7, 19, 11, 59, 59, 0, time.UTC), sta.Antennas[0].DateRemoved)

	epo, ok := sta.Epoch("A", "2")
	assert.True(ok)
	assert.True(epo.End.IsZero())
	_, ok = sta.Epoch("A", "3")
	assert.False(ok)

	_, ok = data.Station("xxxx")
	assert.False(ok)

	if assert.Len(data.OtherEstimates, 1) {
		assert.Equal(ParameterType("XPO"), data.OtherEstimates[0].ParType)
	}
}

func TestParse_invalidRecord(t *testing.T) {
	in := `%=SNX 2.02 IGN 20:225:43202 IGN 20:208:75600 20:210:43200 C  1577 2 S E
+SITE/ANTENNA
 ABMF  A ---- P 12:024:43200 00:000:00000 TRM57971.00     NONE 14411
 ABMF  A ---- P 12:024:43200 99:999:00000 TRM57971.00     NONE 14411
-SITE/ANTENNA
%ENDSNX`

	_, err := Parse(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
	assert.Contains(t, err.Error(), BlockSiteAntenna)
}

func TestParse_sitePointCodes(t *testing.T) {
	in := `%=SNX 2.02 IGN 20:225:43202 IGN 20:208:75600 20:210:43200 C  1577 2 S E
+SITE/ID
*CODE PT __DOMES__ T _STATION DESCRIPTION__ _LONGITUDE_ _LATITUDE__ HEIGHT_
 WTZR  A 14201M010 P Bad Koetzting, DE       12 52 44.1  49  8 39.1   666.0
 WTZR  B 14201M010 P Bad Koetzting, DE       12 52 44.1  49  8 39.1   666.0
 ZIMM  B 14001M004 P Zimmerwald, CH           7 27 54.4  46 52 37.5   956.3
 ZIMM  A 14001M004 P Zimmerwald, CH           7 27 54.4  46 52 37.5   956.3
 ONSA  C 10402M004 P Onsala, SE              11 55 31.8  57 23 43.1    45.5
 ONSA  D 10402M004 P Onsala, SE              11 55 31.8  57 23 43.1    45.5
-SITE/ID
%ENDSNX`

	data, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	for code, want := range map[string]string{"wtzr": "A", "zimm": "A", "onsa": "C"} {
		sta, ok := data.Station(code)
		require.True(t, ok, code)
		require.NotNil(t, sta.ID, code)
		assert.Equal(t, want, sta.ID.PointCode, code)
	}
}

func TestParseFile_compressed(t *testing.T) {
	assert := assert.New(t)
	in, err := os.ReadFile("testdata/example.snx")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "example.snx.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = io.Copy(zw, strings.NewReader(string(in)))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	data, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(data.Stations, 2)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.snx"))
	assert.Error(err)
}

func TestAllStationCoordinates(t *testing.T) {
	assert := assert.New(t)
	data, err := ParseFile("testdata/example.snx")
	require.NoError(t, err)

	var estimates []Estimate
	for _, code := range data.StationCodes() {
		sta, _ := data.Station(code)
		estimates = append(estimates, sta.Estimates...)
	}
	estimates = append(estimates, data.OtherEstimates...)

	var crds []StationCoordinate
	for crd := range AllStationCoordinates(estimates) {
		if crd.SiteCode == "" {
			t.Fatalf("record w/o sitecode: %+v", crd)
		}
		crds = append(crds, crd)
	}
	require.Len(t, crds, 3, "number of station solutions with estimated coordinates")

	abmf := crds[0]
	assert.Equal(SiteCode("ABMF"), abmf.SiteCode)
	assert.Equal("3", abmf.SolID)
	assert.Equal(time.Date(2020, 7, 27, 12, 0, 0, 0, time.UTC), abmf.Epoch)
	assert.Equal(position.TRS{X: 2.91978579389317e+06, Y: -5.38374496284117e+06, Z: 1.77460486043371e+06}, abmf.Pos)
	assert.Equal(8.34951e-04, abmf.Sigma.X)
	assert.False(abmf.HasVel)

	wtzr := crds[1]
	assert.Equal(SiteCode("WTZR"), wtzr.SiteCode)
	assert.Equal("1", wtzr.SolID)
	assert.True(wtzr.HasVel)
	assert.Equal(position.TRS{X: -0.0156, Y: 0.0171, Z: 0.0101}, wtzr.Vel)

	assert.Equal("2", crds[2].SolID)
	assert.False(crds[2].HasVel)

	sta, _ := data.Station("wtzr")
	assert.Len(sta.Coordinates(), 2)
}

func TestAllStationCoordinates_incomplete(t *testing.T) {
	estimates := []Estimate{
		{ParType: ParameterTypeSTAX, SiteCode: "WTZR", PointCode: "A", SolID: "1", Value: 1},
		{ParType: ParameterTypeSTAY, SiteCode: "WTZR", PointCode: "A", SolID: "1", Value: 2},
		{ParType: ParameterTypeVELZ, SiteCode: "WTZR", PointCode: "A", SolID: "1", Value: 3},
	}
	n := 0
	for range AllStationCoordinates(estimates) {
		n++
	}
	assert.Equal(t, 0, n)
}

func ExampleParseFile() {
	data, err := ParseFile("testdata/example.snx")
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, code := range data.StationCodes() {
		sta, _ := data.Station(code)
		for _, ant := range sta.Antennas {
			fmt.Printf("%s %-16s %s %s\n", sta.Code, ant.Model(), ant.Radome, FormatTime(ant.DateInstalled))
		}
	}
	// Output:
	// ABMF TRM57971.00      NONE 12:024:43200
	// WTZR LEIAR25.R3       LEIT 10:100:00000
	// WTZR LEIAR25.R3       LEIT 15:200:43200
}
