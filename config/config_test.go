package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":8080"
grpc:
  addr: ":9090"
postgres:
  dsn: "postgres://localhost/vod"
auth:
  publicKeyPath: /keys/pub.pem
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "watch-together", cfg.Logging.Service)
	assert.Equal(t, "std", cfg.Logging.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "watch-together", cfg.Postgres.ApplicationName)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.VideoTTL)
	assert.Equal(t, 30*time.Second, cfg.Auth.ClockSkew)
	assert.Equal(t, 15*time.Second, cfg.WebSocket.PingEvery)
	assert.Equal(t, int64(64<<10), cfg.WebSocket.MaxMessageSize)
}

func TestLoad_Required(t *testing.T) {
	cases := map[string]string{
		"http.addr":          "grpc: {addr: ':9090'}\npostgres: {dsn: x}\nauth: {publicKeyPath: k}",
		"grpc.addr":          "http: {addr: ':8080'}\npostgres: {dsn: x}\nauth: {publicKeyPath: k}",
		"postgres.dsn":       "http: {addr: ':8080'}\ngrpc: {addr: ':9090'}\nauth: {publicKeyPath: k}",
		"auth.publicKeyPath": "http: {addr: ':8080'}\ngrpc: {addr: ':9090'}\npostgres: {dsn: x}",
	}
	for field, body := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), field)
		})
	}
}

func TestLoadConfig_FromEnvPath(t *testing.T) {
	path := writeConfig(t, `
http: {addr: ":1"}
grpc: {addr: ":2"}
postgres: {dsn: "postgres://localhost/vod"}
auth: {publicKeyPath: k, clockSkew: 5s}
websocket: {pingEvery: 2s}
cors: {allowedOrigins: ["https://vod.example.com"]}
`)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Auth.ClockSkew)
	assert.Equal(t, 2*time.Second, cfg.WebSocket.PingEvery)
	assert.Equal(t, []string{"https://vod.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}
