package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg := Default()
	cfg.Ledger.Path = "books/ledger.json"
	cfg.Generate.HorizonDays = 30
	cfg.Git.AutoCommit = false

	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "ledger.json", cfg.Ledger.Path)
	assert.True(t, cfg.Ledger.RequireDoubleEntry)
	assert.Equal(t, 90, cfg.Generate.HorizonDays)
	assert.True(t, cfg.Git.AutoCommit)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("ledger: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}
