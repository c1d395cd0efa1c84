package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEDGER_TIMEZONE", "Europe/Warsaw")
	t.Setenv("JWT_AUDIENCE", "authenticated, mobile")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "PLN", cfg.Ledger.Currency)
	assert.Equal(t, 14, cfg.Ledger.RevenueWindowDays)
	assert.Equal(t, []string{"authenticated", "mobile"}, cfg.JWT.Audience)
	assert.Equal(t, 15*time.Second, cfg.Billing.Timeout)
	assert.Equal(t, "Europe/Warsaw", cfg.Ledger.Location().String())
}

func TestLedgerLocationFallback(t *testing.T) {
	assert.Equal(t, time.UTC, LedgerConfig{Timezone: "Mars/Olympus"}.Location())
	assert.Equal(t, time.UTC, LedgerConfig{}.Location())
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("bogus", time.Minute))
	assert.Equal(t, 3*time.Second, parseDuration("3s", time.Minute))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
