package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicenotes/internal/app/security"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, security.DefaultMaxUploadSize, cfg.Upload.MaxUploadSize)
	assert.Equal(t, security.HeuristicWarn, cfg.Upload.HeuristicPolicy)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
}

func TestLoadHeuristicPolicy(t *testing.T) {
	t.Setenv("VN_HEURISTIC_POLICY", "reject")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, security.HeuristicReject, cfg.Upload.HeuristicPolicy)

	t.Setenv("VN_HEURISTIC_POLICY", "lenient")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadMaxUploadSize(t *testing.T) {
	t.Setenv("VN_MAX_UPLOAD_SIZE", "1048576")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(1048576), cfg.Upload.MaxUploadSize)

	t.Setenv("VN_MAX_UPLOAD_SIZE", "-1")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	t.Setenv("VN_DB_DRIVER", "postgres")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("VN_POSTGRES_DSN", "postgres://vn:vn@localhost/voicenotes?sslmode=disable")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DB.Driver)
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"empty_is_allowed", "", false},
		{"valid", "sk-test1234567890abcdef", false},
		{"wrong_prefix", "pk-test1234567890abcdef", true},
		{"too_short", "sk-short", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAPIKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
