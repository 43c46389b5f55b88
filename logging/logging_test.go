package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	dir := filepath.Join(t.TempDir(), "logs")
	var extra bytes.Buffer
	require.NoError(t, Init(dir, "debug", &extra))

	log.Debug().Msg("hello from the test")
	assert.Contains(t, extra.String(), "hello from the test")

	data, err := os.ReadFile(filepath.Join(dir, LogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the test")
}

func TestInitUnknownLevel(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var extra bytes.Buffer
	require.NoError(t, Init(t.TempDir(), "shouty", &extra))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	log.Debug().Msg("dropped")
	assert.Empty(t, extra.String())
}

func TestLogDir(t *testing.T) {
	assert.Equal(t, "protonup-go", filepath.Base(LogDir()))
}
