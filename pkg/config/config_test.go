package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 5*time.Second, cfg.Directory.Timeout)
	assert.Equal(t, 4, cfg.Directory.MaxConcurrency)
	assert.Equal(t, "Archivo Plano", cfg.Export.SheetName)
	assert.Equal(t, "DC07", cfg.Export.DocumentType)
	assert.Equal(t, "0000", cfg.Export.DocumentClass)
	assert.Equal(t, 1290, cfg.Export.DefaultNumedoc)
	assert.Equal(t, "101 ", cfg.Export.Company, "conserva el espacio final")
	assert.Empty(t, cfg.Directory.BaseURL)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("DIRECTORY_BASE_URL", "http://erp.local/api/")
	v.Set("DIRECTORY_TIMEOUT", "2s")
	v.Set("DIRECTORY_MAX_CONCURRENCY", "8")
	v.Set("DB_MAX_CONNS", "20")
	v.Set("DB_FORCE_IPV4", "true")
	v.Set("EXPORT_DEFAULT_NUMEDOC", 77)

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "http://erp.local/api", cfg.Directory.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Directory.Timeout)
	assert.Equal(t, 8, cfg.Directory.MaxConcurrency)
	assert.Equal(t, 20, cfg.DB.MaxConns)
	assert.True(t, cfg.DB.ForceIPv4)
	assert.Equal(t, 77, cfg.Export.DefaultNumedoc)
}

func TestGetDuration_Segundos(t *testing.T) {
	v := viper.New()
	v.Set("T", "3")
	assert.Equal(t, 3*time.Second, getDuration(v, "T", time.Second))

	v.Set("T", "nada")
	assert.Equal(t, time.Second, getDuration(v, "T", time.Second))
}

func TestFromViper_ConcurrenciaInvalida(t *testing.T) {
	v := viper.New()
	v.Set("DIRECTORY_MAX_CONCURRENCY", "0")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/1", DBName: "contratos", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2F1@db:5432/contratos?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
