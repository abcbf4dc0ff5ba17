package site

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationInfo(t *testing.T) {
	assert := assert.New(t)

	hists, err := GetInfoHistory(Query{Source: SourceSitelog, Data: readSitelogs(t)})
	require.NoError(t, err)

	recs := StationInfo(hists["wtzr"])
	require.Len(t, recs, 3)

	assert.Equal("WTZR 14201M010", recs[0].Name)
	assert.Equal(time.Date(2010, 4, 10, 0, 0, 0, 0, time.UTC), recs[0].From)
	assert.Equal(antChange.Add(-time.Second), recs[0].To)
	assert.Equal("LEICA GR25", recs[0].ReceiverType)
	assert.Equal("09250", recs[0].AntennaSN)
	assert.Equal(0.0710, recs[0].Up)
	assert.Equal("Wettzell", recs[0].Description)

	assert.Equal(antChange, recs[1].From)
	assert.Equal(recvChange.Add(-time.Second), recs[1].To)
	assert.Equal("LEICA GR25", recs[1].ReceiverType)
	assert.Equal("10180", recs[1].AntennaSN)

	assert.Equal(recvChange, recs[2].From)
	assert.True(recs[2].To.IsZero())
	assert.Equal("LEICA GR50", recs[2].ReceiverType)
}

func TestStationInfo_sinex(t *testing.T) {
	assert := assert.New(t)

	hists, err := GetInfoHistory(Query{Source: SourceSINEX, Data: readSINEX(t)})
	require.NoError(t, err)

	recs := StationInfo(hists["abmf"])
	require.Len(t, recs, 1, "no receiver before 2020")
	assert.Equal("ABMF 97103M001", recs[0].Name)
	assert.Equal("SEPT POLARX5", recs[0].ReceiverType)
	assert.Equal("TRM57971.00     NONE", recs[0].AntennaType)

	assert.Len(StationInfo(hists["wtzr"]), 3)
}

func TestStationInfo_sinceEver(t *testing.T) {
	h := &InfoHistory{
		Station:   "wtzr",
		Receivers: NewHistory("wtzr", Receiver{Type: "LEICA GR25", Interval: Interval{To: recvChange.Add(-time.Second)}}, Receiver{Type: "LEICA GR50", Interval: Interval{From: recvChange}}),
		Antennas:  NewHistory("wtzr", Antenna{Type: "LEIAR25.R3      LEIT"}),
	}

	recs := StationInfo(h)
	require.Len(t, recs, 2)
	assert.Equal(t, "WTZR", recs[0].Name)
	assert.True(t, recs[0].From.IsZero())
	assert.Equal(t, "LEICA GR25", recs[0].ReceiverType)
	assert.Equal(t, recvChange.Add(-time.Second), recs[0].To)
	assert.Equal(t, "LEICA GR50", recs[1].ReceiverType)
}

func TestWriteBerneseSTA(t *testing.T) {
	assert := assert.New(t)

	hists, err := GetInfoHistory(Query{Source: SourceSitelog, Data: readSitelogs(t)})
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	err = WriteBerneseSTA(buf, []*InfoHistory{hists["wtzr"]}, STAOptions{
		FormatVersion: "1.03",
		Remark:        "SITELOG",
		CreationTime:  time.Date(2020, 6, 10, 8, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(out, "STATION INFORMATION FILE FOR BERNESE GNSS SOFTWARE 5.2           10-JUN-20 08:30\n")
	assert.Contains(out, "FORMAT VERSION: 1.03\n")
	assert.Contains(out, "\nWTZR 14201M010        001  2010 04 10 00 00 00                       WTZR*                 SITELOG\n")
	assert.Contains(out, "\nWTZR 14201M010        001  2010 04 10 00 00 00  2015 07 19 11 59 59  LEICA GR25            1880123               999999  LEIAR25.R3      LEIT  09250                 999999    0.0000    0.0000    0.0710  Wettzell                SITELOG\n")
	assert.Contains(out, "\nWTZR 14201M010        001  2018 05 30 10 00 00                       LEICA GR50            1920045               999999  LEIAR25.R3      LEIT  10180                 999999    0.0000    0.0000    0.0710  Wettzell                SITELOG\n")
	assert.Equal(4, strings.Count(out, "WTZR 14201M010"), "one renaming and three periods")
	assert.Contains(out, "TYPE 005: HANDLING STATION TYPES")
}

func TestWriteBerneseSTA_options(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteBerneseSTA(buf, nil, STAOptions{FormatVersion: "2.00"})
	assert.Error(t, err)

	err = WriteBerneseSTA(buf, nil, STAOptions{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "FORMAT VERSION: 1.01")
}
