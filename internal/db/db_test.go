package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_URL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "plain",
			cfg:  Config{Host: "h", Port: 1, User: "u", Password: "p", Database: "n", SSLMode: "disable"},
			want: "postgres://u:p@h:1/n?sslmode=disable",
		},
		{
			name: "escaped credentials",
			cfg:  Config{Host: "db", Port: 5432, User: "block user", Password: "p@ss/w:rd", Database: "blocks"},
			want: "postgres://block%20user:p%40ss%2Fw%3Ard@db:5432/blocks",
		},
		{
			name: "ipv6 host",
			cfg:  Config{Host: "::1", Port: 5432, User: "u", Password: "p", Database: "n", SSLMode: "require"},
			want: "postgres://u:p@[::1]:5432/n?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.URL())
		})
	}
}

func TestPoolConfig(t *testing.T) {
	cfg := &Config{
		Host: "db", Port: 5432, User: "u", Password: "p@ss", Database: "blocks", SSLMode: "disable",
		MaxConns: 8, MinConns: 2, MaxConnLifetime: time.Hour,
	}

	pc, err := poolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5432), pc.ConnConfig.Port)
	assert.Equal(t, "p@ss", pc.ConnConfig.Password)
	assert.Equal(t, "blocks", pc.ConnConfig.Database)
	assert.Equal(t, applicationName, pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)
}

func TestPoolConfig_KeepsDefaultsForZeroLimits(t *testing.T) {
	defaults, err := poolConfig(&Config{Host: "db", Port: 5432, User: "u", Database: "blocks"})
	require.NoError(t, err)

	assert.Positive(t, defaults.MaxConns)
	assert.Positive(t, defaults.MaxConnLifetime)
	assert.Positive(t, defaults.MaxConnIdleTime)
}
