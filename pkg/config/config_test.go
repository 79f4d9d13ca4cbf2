package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestLoadAppliesDefaultsWithNoFiles(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 3600, cfg.Token.DurationSec)
}

func TestLoadLayersBaseThenEnvFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "app:\n  port: 9000\ncluster:\n  url: https://base.example\n")
	writeFile(t, dir, "production.yaml", "cluster:\n  url: https://prod.example\n")

	cfg, err := Load(dir, "production")
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.App.Port, "base.yaml value survives when the env file doesn't override it")
	assert.Equal(t, "https://prod.example", cfg.Cluster.URL, "production.yaml overrides base.yaml")
}

func TestLoadEnvVarOverridesFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "app:\n  port: 9000\n")

	t.Setenv("APP_APP_PORT", "9999")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.App.Port)
}

func TestDatabaseDSN(t *testing.T) {
	db := Database{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "vmctrl", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=vmctrl sslmode=disable", db.DSN())
}
