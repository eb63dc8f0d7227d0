package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_DRIVER", "SESSION_TTL", "INVITE_DEFAULT_EXPIRY_HOURS", "SMTP_HOST"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, 8*time.Hour, cfg.SessionTTL)
	require.Equal(t, 24, cfg.InviteDefaultExpiryHours)
	require.Equal(t, 720, cfg.InviteMaxExpiryHours)
	require.Empty(t, cfg.SMTPHost)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/backoffice")
	t.Setenv("SESSION_TTL", "90")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "30s")
	t.Setenv("INVITE_DEFAULT_EXPIRY_HOURS", "48")

	cfg := LoadConfig()
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, 90*time.Minute, cfg.SessionTTL)
	require.Equal(t, 30*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, 48, cfg.InviteDefaultExpiryHours)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigIgnoresGarbage(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("SESSION_TTL", "forever")

	cfg := LoadConfig()
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 8*time.Hour, cfg.SessionTTL)
}

func TestValidate(t *testing.T) {
	base := Config{
		DatabaseDriver:           DriverSQLite,
		SessionTTL:               time.Hour,
		InviteDefaultExpiryHours: 24,
		InviteMaxExpiryHours:     720,
	}
	require.NoError(t, base.Validate())

	c := base
	c.DatabaseDriver = DriverPostgres
	require.Error(t, c.Validate())

	c = base
	c.DatabaseDriver = "mysql"
	require.Error(t, c.Validate())

	c = base
	c.InviteDefaultExpiryHours = 1000
	require.Error(t, c.Validate())

	c = base
	c.SessionTTL = 0
	require.Error(t, c.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SESSION_ISSUER=from-dotenv\nSMTP_FROM=ops@elma.example\n"), 0o600))

	// Existing variables are not overwritten.
	t.Setenv("SMTP_FROM", "set@elma.example")
	t.Setenv("SESSION_ISSUER", "")
	require.NoError(t, os.Unsetenv("SESSION_ISSUER"))

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { _ = os.Unsetenv("SESSION_ISSUER") })

	cfg := LoadConfig()
	require.Equal(t, "from-dotenv", cfg.SessionIssuer)
	require.Equal(t, "set@elma.example", cfg.SMTPFrom)
}
