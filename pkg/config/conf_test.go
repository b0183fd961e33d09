package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")

	s := Default()
	s.Name = "roundtrip"
	s.Generalized = true
	s.Covariates = 1
	s.Lambda = []float64{0.2, -0.4}
	s.Seed = 99

	require.NoError(t, Write(path, s))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestReadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")

	s, err := ReadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)

	// Second read comes from the created file.
	again, err := ReadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestRead_Invalid(t *testing.T) {
	_, err := Read("")
	assert.Error(t, err)

	_, err = Read(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	// Well-formed YAML, invalid scenario.
	path := filepath.Join(t.TempDir(), "bad.yaml")
	s := Default()
	s.Sigma = -1
	require.NoError(t, Write(path, s))
	_, err = Read(path)
	assert.Error(t, err)
}
