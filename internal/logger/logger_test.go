package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/de-bkg/siteinfo/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	assert := assert.New(t)
	defer func(l zerolog.Logger) { log.Logger = l }(log.Logger)

	buf := &bytes.Buffer{}
	l := NewWithWriter(config.LoggerConfig{Level: "warn", Format: "json"}, buf)
	assert.Equal(zerolog.WarnLevel, l.GetLevel())

	siteLog := Get("site")
	siteLog.Info().Msg("hidden")
	assert.Zero(buf.Len())

	siteLog.Warn().Str("station", "wtzr").Msg("station not found")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal("site", rec["component"])
	assert.Equal("wtzr", rec["station"])
	assert.Equal("warn", rec["level"])
	assert.Contains(rec, "time")
}

func TestNewWithWriter_console(t *testing.T) {
	defer func(l zerolog.Logger) { log.Logger = l }(log.Logger)

	buf := &bytes.Buffer{}
	l := NewWithWriter(config.LoggerConfig{Level: "unknown", Format: "console"}, buf)
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())

	catLog := Get("catalog")
	catLog.Info().Msg("loaded")
	assert.Contains(t, buf.String(), "loaded")
	assert.Contains(t, buf.String(), "component=catalog")
}
