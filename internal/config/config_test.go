package config

import (
	"testing"
	"time"
)

func TestLoadEngineConfigDefaults(t *testing.T) {
	cfg := LoadEngineConfig()
	if cfg.MaxStations != 1000 || cfg.MaxPassingStations != 30 {
		t.Fatalf("limits = %d/%d", cfg.MaxStations, cfg.MaxPassingStations)
	}
	if cfg.AdminPrivilege != 10 || cfg.BusyThreshold != 1 {
		t.Fatalf("admin=%d busy=%d", cfg.AdminPrivilege, cfg.BusyThreshold)
	}
	if cfg.PathLimits.MaxDepth != 0 || cfg.PathLimits.MaxPaths != 1000 {
		t.Fatalf("path limits = %+v", cfg.PathLimits)
	}
}

func TestLoadEngineConfigOverrides(t *testing.T) {
	t.Setenv("MAX_STATIONS", "50")
	t.Setenv("MAX_PASSING_STATIONS", "1")
	t.Setenv("BUSY_THRESHOLD", "-3")
	t.Setenv("MAX_ROUTES", "7")
	t.Setenv("ADMIN_PRIVILEGE", "notanumber")

	cfg := LoadEngineConfig()
	if cfg.MaxStations != 50 {
		t.Fatalf("MaxStations = %d", cfg.MaxStations)
	}
	if cfg.MaxPassingStations != 2 {
		t.Fatalf("MaxPassingStations = %d, want clamped to 2", cfg.MaxPassingStations)
	}
	if cfg.BusyThreshold != 0 {
		t.Fatalf("BusyThreshold = %d, want clamped to 0", cfg.BusyThreshold)
	}
	if cfg.PathLimits.MaxPaths != 7 {
		t.Fatalf("MaxPaths = %d", cfg.PathLimits.MaxPaths)
	}
	if cfg.AdminPrivilege != 10 {
		t.Fatalf("invalid ADMIN_PRIVILEGE should fall back, got %d", cfg.AdminPrivilege)
	}
}

func TestLoadBackendSelection(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
	t.Setenv("ADMIN_PASSWORD", "pw")
	t.Setenv("STORE_BACKEND", "SQLite")

	c := Load("")
	if c.Backend != BackendSQLite {
		t.Fatalf("Backend = %q", c.Backend)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c := Load("memory"); c.Backend != BackendMemory {
		t.Fatalf("flag override ignored: %q", c.Backend)
	}
	c.Backend = "postgres"
	if err := c.Validate(); err == nil {
		t.Fatal("unknown backend accepted")
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "off")
	t.Setenv("X_DUR", "1m30s")
	t.Setenv("X_BAD_DUR", "soon")
	if envBool("X_BOOL", true) {
		t.Fatal("off parsed as true")
	}
	if got := envDur("X_DUR", 0); got != 90*time.Second {
		t.Fatalf("envDur = %v", got)
	}
	if got := envDur("X_BAD_DUR", time.Second); got != time.Second {
		t.Fatalf("bad duration = %v", got)
	}
	if got := envStr("X_UNSET_FOR_TEST", "d"); got != "d" {
		t.Fatalf("envStr = %q", got)
	}
}
