package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMissingConfig(t *testing.T) {
	assert.Equal(t, 1, run(filepath.Join(t.TempDir(), "absent.toml")))
}

func TestRunReturnsWhenDatabaseUnavailable(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "missing", "store.db")
	cfg := `service_name = "storefront-test"

[database]
driver = "sqlite"
dsn = "` + filepath.ToSlash(dsn) + `"

[auth]
jwt_secret = "0123456789abcdef0123456789abcdef"
`
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	assert.Equal(t, 1, run(path))
}
