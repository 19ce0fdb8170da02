package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/pedis/internal/constants"
)

func TestDefault_MatchesSpecDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, constants.DefaultPort, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "stdout", cfg.LogFile)
}

func TestParse_RecognisesAllKeys(t *testing.T) {
	src := strings.NewReader("# a comment\n\nport 6380\nloglevel debug\nlogfile /var/log/pedis.log\ndir /var/lib/pedis\n")
	cfg, err := Parse(src)
	require.NoError(t, err)

	assert.Equal(t, 6380, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/var/log/pedis.log", cfg.LogFile)
	assert.Equal(t, "/var/lib/pedis", cfg.Dir)
}

func TestParse_RejectsUnrecognisedKey(t *testing.T) {
	_, err := Parse(strings.NewReader("bogus value\n"))
	assert.Error(t, err)
}

func TestParse_RejectsInvalidPort(t *testing.T) {
	_, err := Parse(strings.NewReader("port notanumber\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("port 99999\n"))
	assert.Error(t, err)
}

func TestParse_RejectsInvalidLogLevel(t *testing.T) {
	_, err := Parse(strings.NewReader("loglevel verbose\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pedis.conf")
	require.NoError(t, writeFile(path, "port 7000\n"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
