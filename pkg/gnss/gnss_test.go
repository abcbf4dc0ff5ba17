package gnss

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystems_MarshalJSON(t *testing.T) {
	systems := Systems{SysGAL, SysBDS}
	sysJSON, err := json.Marshal(systems)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "[\"E\",\"C\"]", string(sysJSON), "marshall gnss")

	var back Systems
	err = json.Unmarshal(sysJSON, &back)
	assert.NoError(t, err)
	assert.Equal(t, systems, back)
}

func TestParseSystems(t *testing.T) {
	assert := assert.New(t)

	syss, err := ParseSystems("GPS+GLO+GAL")
	assert.NoError(err)
	assert.Equal(Systems{SysGPS, SysGLO, SysGAL}, syss)
	assert.Equal("GPS+GLO+GAL", syss.String())

	syss, err = ParseSystems("GPS/GLONASS")
	assert.NoError(err)
	assert.Equal(Systems{SysGPS, SysGLO}, syss)

	syss, err = ParseSystems("")
	assert.NoError(err)
	assert.Nil(syss)

	_, err = ParseSystems("GPS+XYZ")
	assert.Error(err)
}

func TestTimeFromWeekSeconds(t *testing.T) {
	assert := assert.New(t)
	ti := TimeFromWeekSeconds(1972, 518430)
	assert.Equal(time.Date(2017, 10, 28, 0, 0, 30, 0, time.UTC), ti)

	week, sow := WeekSeconds(ti)
	assert.Equal(1972, week)
	assert.Equal(518430.0, sow)
}

func TestTechniqueFromCode(t *testing.T) {
	tests := map[string]ObservationTechnique{
		"C": TechCombined,
		"D": TechDORIS,
		"L": TechSLR,
		"M": TechLLR,
		"P": TechGNSS,
		"R": TechVLBI,
	}
	for code, want := range tests {
		got, err := TechniqueFromCode(code)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, code, got.Code())
	}

	_, err := TechniqueFromCode("X")
	assert.Error(t, err)
}

func TestParseTechnique(t *testing.T) {
	tech, err := ParseTechnique("GPS")
	assert.NoError(t, err)
	assert.Equal(t, TechGNSS, tech)

	tech, err = ParseTechnique("vlbi")
	assert.NoError(t, err)
	assert.Equal(t, TechVLBI, tech)

	_, err = ParseTechnique("RADAR")
	assert.Error(t, err)
}
