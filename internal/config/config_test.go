package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  host: 127.0.0.1
  port: 9090
  read_timeout: 5
database:
  host: localhost
  port: 5432
  user: testuser
  password: testpass
  dbname: testdb
  sslmode: require
auth:
  jwt_public_key: "test-key"
  api_keys:
    - key-one
    - key-two
feed:
  base_url: "https://feed.example.com/api"
  api_key: "feed-key"
  api_secret: "feed-secret"
exchange_rate:
  app_id: "oxr-app-id"
  from_currency: USD
  to_currency: SEK
import:
  chunk_size: 250
  batch_size: 400
  batch_delay: "100ms"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5, cfg.Server.ReadTimeout)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "testuser", cfg.Database.User)
				assert.Equal(t, "testpass", cfg.Database.Password)
				assert.Equal(t, "testdb", cfg.Database.DBName)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "test-key", cfg.Auth.JWTPublicKey)
				assert.Equal(t, []string{"key-one", "key-two"}, cfg.Auth.APIKeys)
				assert.Equal(t, "https://feed.example.com/api", cfg.Feed.BaseURL)
				assert.Equal(t, "feed-key", cfg.Feed.APIKey)
				assert.Equal(t, "feed-secret", cfg.Feed.APISecret)
				assert.Equal(t, "oxr-app-id", cfg.ExchangeRate.AppID)
				assert.Equal(t, "USD", cfg.ExchangeRate.FromCurrency)
				assert.Equal(t, "SEK", cfg.ExchangeRate.ToCurrency)
				assert.Equal(t, 250, cfg.Import.ChunkSize)
				assert.Equal(t, 400, cfg.Import.BatchSize)
				assert.Equal(t, "100ms", cfg.Import.BatchDelay.String())
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
`,
			expectError: false,
			validate: func(t *testing.T, cfg *APIConfig) {
				// Check defaults
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, "https://api.idexonline.com/onsite/api", cfg.Feed.BaseURL)
				assert.Equal(t, "https://openexchangerates.org/api", cfg.ExchangeRate.BaseURL)
				assert.Equal(t, "USD", cfg.ExchangeRate.FromCurrency)
				assert.Equal(t, "SEK", cfg.ExchangeRate.ToCurrency)
				assert.Equal(t, "2h0m0s", cfg.ExchangeRate.CacheTTL.String())
				assert.Equal(t, 500, cfg.Import.ChunkSize)
				assert.Equal(t, 800, cfg.Import.BatchSize)
				assert.Equal(t, "50ms", cfg.Import.BatchDelay.String())
				assert.Equal(t, 2, cfg.Import.PoolSize)
			},
		},
		{
			name:        "missing config file",
			configFile:  "",
			expectError: false,
			validate:    nil,
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true,
			validate:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			var configFile string

			if tt.configFile != "" {
				configFile = filepath.Join(tmpDir, "config.yaml")
				err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
				require.NoError(t, err)
			} else {
				configFile = filepath.Join(tmpDir, "nonexistent.yaml")
			}

			cfg, err := LoadAPIConfig(configFile, tmpDir)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				if tt.validate != nil {
					require.NoError(t, err)
					require.NotNil(t, cfg)
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestLoadImporterConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		errContains string
		validate    func(*testing.T, *ImporterConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: false
database:
  host: db.internal
  user: importer
  password: secret
  dbname: diamonds
feed:
  api_key: "feed-key"
  api_secret: "feed-secret"
  http_timeout: "5m"
exchange_rate:
  app_id: "oxr-app-id"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *ImporterConfig) {
				assert.False(t, cfg.Debug)
				assert.Equal(t, "db.internal", cfg.Database.Host)
				assert.Equal(t, "diamonds", cfg.Database.DBName)
				assert.Equal(t, "5m0s", cfg.Feed.HTTPTimeout.String())
				assert.Equal(t, "oxr-app-id", cfg.ExchangeRate.AppID)
			},
		},
		{
			name: "missing database host",
			configFile: `
database:
  dbname: diamonds
`,
			expectError: true,
			errContains: "database.host",
		},
		{
			name: "missing database name",
			configFile: `
database:
  host: localhost
`,
			expectError: true,
			errContains: "database.dbname",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configFile := filepath.Join(tmpDir, "config.yaml")
			err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
			require.NoError(t, err)

			cfg, err := LoadImporterConfig(configFile, tmpDir)

			if tt.expectError {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validate != nil {
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "user",
		Password: "pass",
		DBName:   "diamonds",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Equal(t, "host=localhost port=5432 user=user password=pass dbname=diamonds sslmode=disable", dsn)
}
