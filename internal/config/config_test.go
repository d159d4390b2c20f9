package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "REDIS_DB", "MIN_WITHDRAWAL", "CORS_ORIGINS", "SUBMIT_RATE_REFILL_PER_SEC"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if !cfg.MinWithdrawal.Equal(decimal.NewFromInt(10)) {
		t.Errorf("MinWithdrawal = %s, want 10", cfg.MinWithdrawal)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SUBMIT_RATE_REFILL_PER_SEC", "1.5")
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("MIN_WITHDRAWAL", "25.50")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()
	if cfg.Port != "9000" || cfg.RedisDB != 3 || cfg.SubmitRateRefill != 1.5 || cfg.ShutdownTimeout != 2*time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.MinWithdrawal.String() != "25.5" {
		t.Errorf("MinWithdrawal = %s", cfg.MinWithdrawal)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "x")
	t.Setenv("MIN_WITHDRAWAL", "ten")
	cfg := Load()
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want 0", cfg.RedisDB)
	}
	if !cfg.MinWithdrawal.Equal(decimal.NewFromInt(10)) {
		t.Errorf("MinWithdrawal = %s, want default", cfg.MinWithdrawal)
	}
}
