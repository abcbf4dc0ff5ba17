package site

import (
	"testing"
	"time"

	"github.com/de-bkg/siteinfo/pkg/position"
	"github.com/de-bkg/siteinfo/pkg/sinex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEccentricity_ENU(t *testing.T) {
	xyz := position.TRS{X: 0.1, Y: 0.2, Z: 0.3}
	tests := []struct {
		name string
		ecc  Eccentricity
		ref  position.LLH
		want position.ENU
	}{
		{"UNE", Eccentricity{System: "UNE", Up: 0.071, North: 0.002, East: -0.001}, position.LLHFromDegrees(49.14, 12.88, 666), position.ENU{E: -0.001, N: 0.002, U: 0.071}},
		{"XYZ at equator", Eccentricity{System: "XYZ", XYZ: xyz}, position.LLHFromDegrees(0, 0, 0), position.ENU{E: 0.2, N: 0.3, U: 0.1}},
		{"XYZ at pole", Eccentricity{System: "XYZ", XYZ: xyz}, position.LLHFromDegrees(90, 0, 0), position.ENU{E: 0.2, N: -0.1, U: 0.3}},
		{"XYZ at Wettzell", Eccentricity{System: "XYZ", XYZ: xyz}, position.LLHFromDegrees(49.14, 12.88, 666), position.ENU{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			enu := tt.ecc.ENU(tt.ref)
			if tt.want != (position.ENU{}) {
				assert.InDelta(tt.want.E, enu.E, 1e-12)
				assert.InDelta(tt.want.N, enu.N, 1e-12)
				assert.InDelta(tt.want.U, enu.U, 1e-12)
			}

			vec := tt.ecc.Vector(tt.ref)
			assert.InDelta(vec.Norm(), position.TRS{X: enu.E, Y: enu.N, Z: enu.U}.Norm(), 1e-12, "rotation keeps the length")
			if tt.ecc.System == "XYZ" {
				assert.Equal(xyz, vec)
			}
			back := enu.TRS(tt.ref)
			assert.InDelta(vec.X, back.X, 1e-12)
			assert.InDelta(vec.Y, back.Y, 1e-12)
			assert.InDelta(vec.Z, back.Z, 1e-12)
		})
	}
}

func TestStationInfo_xyzEccentricity(t *testing.T) {
	assert := assert.New(t)

	installed := time.Date(2010, 4, 10, 0, 0, 0, 0, time.UTC)
	data := &sinex.Data{Stations: map[string]*sinex.Station{
		"wtzr": {
			Code: "WTZR",
			ID:   &sinex.Site{Code: "WTZR", PointCode: "A", DOMESNumber: "14201M010", Description: "Wettzell"},
			Receivers: []sinex.Receiver{
				{SiteCode: "WTZR", PointCode: "A", DateInstalled: installed, Type: "LEICA GR25", SerialNum: "18801"},
			},
			Antennas: []sinex.Antenna{
				{SiteCode: "WTZR", PointCode: "A", DateInstalled: installed, Type: "LEIAR25.R3      LEIT", Radome: "LEIT", SerialNum: "09250"},
			},
			Eccentricities: []sinex.Eccentricity{
				{SiteCode: "WTZR", PointCode: "A", DateFrom: installed, RefSystem: "XYZ", Vector: [3]float64{0.1, 0.2, 0.3}},
			},
		},
	}}

	hists, err := GetInfoHistory(Query{Source: SourceSINEX, Data: data})
	require.NoError(t, err)
	h := hists["wtzr"]
	ecc, err := h.Eccentricities.Get(installed)
	require.NoError(t, err)
	assert.Equal("XYZ", ecc.System)
	assert.Equal(position.TRS{X: 0.1, Y: 0.2, Z: 0.3}, ecc.XYZ)

	// the site is at lat 0, lon 0: east is Y, north is Z, up is X
	recs := StationInfo(h)
	require.Len(t, recs, 1)
	assert.InDelta(0.3, recs[0].North, 1e-12)
	assert.InDelta(0.2, recs[0].East, 1e-12)
	assert.InDelta(0.1, recs[0].Up, 1e-12)
}
