package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	lvl, err = parseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	_, err = parseLevel("verbose")
	assert.Error(t, err)
}

func TestLogger_FormatsMessages(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := FromZap(zap.New(core))

	log.Debug("skipped %d", 1)
	log.Info("CreateBooking: service=%s", "abc")
	log.Warn("slot taken at %s", "10:00")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "CreateBooking: service=abc", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestNew_WritesToFile(t *testing.T) {
	file := t.TempDir() + "/service.log"

	log, err := New(file, "debug")
	require.NoError(t, err)
	log.Info("hello")
	log.Close()

	assert.FileExists(t, file)
}
