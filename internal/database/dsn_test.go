package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "startin",
		Password: "secret",
		Name:     "startin",
		Host:     "db.example.com",
		Port:     5433,
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=db.example.com")
	require.Contains(t, dsn, "port=5433")
	require.Contains(t, dsn, "user=startin")
	require.Contains(t, dsn, "dbname=startin")
	require.Contains(t, dsn, "password=secret")
	require.Contains(t, dsn, "sslmode=disable")
}

func TestBuildPostgresDSNRequiresUserAndName(t *testing.T) {
	_, err := buildPostgresDSN(Config{Host: "localhost"})
	require.Error(t, err)
}

func TestBuildPostgresDSNPrefersOverride(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{DSN: "postgres://u:p@h/db"})
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@h/db", dsn)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "startin",
		Password: "secret",
		Name:     "startin",
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "startin:secret@tcp(127.0.0.1:3306)/startin?")
	require.Contains(t, dsn, "charset=utf8mb4")
	require.Contains(t, dsn, "parseTime=True")
}

func TestBuildMySQLDSNRequiresUserAndName(t *testing.T) {
	_, err := buildMySQLDSN(Config{})
	require.Error(t, err)
}
