package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/pkg/config"
)

const minimal = `
service_name = "storefront"

[database]
driver = "sqlite"
dsn = "file::memory:"

[auth]
jwt_secret = "0123456789abcdef0123456789abcdef"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration())
	assert.Equal(t, 300, cfg.Redis.ProductTTL)
	assert.Equal(t, "dev", cfg.Environment)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APP_HTTP_PORT", "9999")
	t.Setenv("APP_ORDER_ISOLATION", "SERIALIZABLE")

	cfg, err := config.Load(writeConfig(t, minimal))
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.HTTP.Port)
	assert.Equal(t, "SERIALIZABLE", cfg.Order.Isolation)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"short secret", `
service_name = "storefront"
[database]
driver = "sqlite"
dsn = "x"
[auth]
jwt_secret = "short"
`},
		{"weak bcrypt", minimal + "bcrypt_cost = 4\n"},
		{"unknown driver", `
service_name = "storefront"
[database]
driver = "oracle"
dsn = "x"
[auth]
jwt_secret = "0123456789abcdef0123456789abcdef"
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)

	t.Setenv("APP_DATABASE_DRIVER", "sqlite")
	t.Setenv("APP_DATABASE_DSN", "file::memory:")
	t.Setenv("APP_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := config.LoadWithDefaults(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "storefront", cfg.ServiceName)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
}
