package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

func TestLoadDefaults(t *testing.T) {
	testLogger, _ := logger.NewForTest()

	cfg, err := Load("", testLogger)
	require.NoError(t, err)

	assert.Equal(t, "scim", cfg.APIPrefix)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, int64(1024*1024*5), cfg.MaxBodyBytes)
	assert.Equal(t, 30, cfg.RequestTimeout)
	assert.True(t, cfg.DBAutoMigrateEnabled)
	assert.False(t, cfg.Production())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("API_PREFIX", "provision")
	t.Setenv("PORT", "9000")

	testLogger, _ := logger.NewForTest()

	cfg, err := Load("", testLogger)
	require.NoError(t, err)

	assert.Equal(t, "provision", cfg.APIPrefix)
	assert.Equal(t, "9000", cfg.ServerPort)
}

func TestValidateProductionFailsFast(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
	}{
		{
			name: "missing database url",
			cfg: Config{
				APIPrefix: "scim", ServerPort: "8080", Environment: "production",
				SCIMSharedSecret: "s", JWTSecret: "j",
			},
		},
		{
			name: "missing shared secret",
			cfg: Config{
				APIPrefix: "scim", ServerPort: "8080", Environment: "production",
				DatabaseURL: "postgres://u:p@h/db", JWTSecret: "j",
			},
		},
		{
			name: "missing jwt secret",
			cfg: Config{
				APIPrefix: "scim", ServerPort: "8080", Environment: "production",
				DatabaseURL: "postgres://u:p@h/db", SCIMSharedSecret: "s",
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			assert.Error(t, test.cfg.Validate())
		})
	}

	complete := Config{
		APIPrefix: "scim", ServerPort: "8080", Environment: "production",
		DatabaseURL: "postgres://u:p@h/db", SCIMSharedSecret: "s", JWTSecret: "j",
	}
	assert.NoError(t, complete.Validate())
}

func TestValidateRejectsBadPrefix(t *testing.T) {
	cfg := Config{APIPrefix: "bad prefix", ServerPort: "8080"}
	assert.Error(t, cfg.Validate())
}
