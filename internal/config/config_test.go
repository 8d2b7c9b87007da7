package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv はテストに影響する環境変数を空にする。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORE_BACKEND", "DATA_DIR", "DATABASE_URL",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_KEY_PREFIX",
		"BCRYPT_COST", "RATE_LIMIT_AUTH", "OPTIONS_FILE", "LOG_LEVEL",
		"SERVER_PORT", "REQUEST_TIMEOUT", "CORS_ALLOWED_ORIGIN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.StoreBackend != StoreFile {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, StoreFile)
	}
	if cfg.DataDir != "./data" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "./data")
	}
	if cfg.RedisKeyPrefix != "hiretrack" {
		t.Errorf("RedisKeyPrefix = %q, want %q", cfg.RedisKeyPrefix, "hiretrack")
	}
	if cfg.BcryptCost != 8 {
		t.Errorf("BcryptCost = %d, want 8", cfg.BcryptCost)
	}
	if cfg.RateLimitAuth != 20 {
		t.Errorf("RateLimitAuth = %d, want 20", cfg.RateLimitAuth)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.ServerPort != "5000" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "5000")
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v, want 15s", cfg.RequestTimeout)
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "http://localhost:3000")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_KEY_PREFIX", "staging")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("RATE_LIMIT_AUTH", "5")
	t.Setenv("OPTIONS_FILE", "/etc/hiretrack/options.yaml")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("REQUEST_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://hr.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.StoreBackend != StoreRedis || cfg.RedisAddr != "redis:6379" || cfg.RedisPassword != "secret" {
		t.Errorf("redis settings = %q %q %q", cfg.StoreBackend, cfg.RedisAddr, cfg.RedisPassword)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("RedisDB = %d, want 3", cfg.RedisDB)
	}
	if cfg.RedisKeyPrefix != "staging" {
		t.Errorf("RedisKeyPrefix = %q", cfg.RedisKeyPrefix)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if cfg.RateLimitAuth != 5 {
		t.Errorf("RateLimitAuth = %d, want 5", cfg.RateLimitAuth)
	}
	if cfg.OptionsFile != "/etc/hiretrack/options.yaml" {
		t.Errorf("OptionsFile = %q", cfg.OptionsFile)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.CORSAllowedOrigin != "https://hr.example.com" {
		t.Errorf("CORSAllowedOrigin = %q", cfg.CORSAllowedOrigin)
	}
}

func TestLoad_PostgresRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "postgres")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error should mention DATABASE_URL, got %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/hiretrack?sslmode=disable")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.StoreBackend != StorePostgres {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
}

func TestLoad_RedisRequiresAddr(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "redis")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "REDIS_ADDR") {
		t.Errorf("expected error mentioning REDIS_ADDR, got %v", err)
	}
}

func TestLoad_UnsupportedBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "mongo")

	if _, err := Load(); err == nil {
		t.Error("expected error for unsupported backend")
	}
}

func TestLoad_InvalidNumbersFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BCRYPT_COST", "abc")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.BcryptCost != 8 {
		t.Errorf("BcryptCost = %d, want default 8", cfg.BcryptCost)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v, want default 15s", cfg.RequestTimeout)
	}
}

func TestLoad_RejectsNonPositiveRateLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_AUTH", "0")

	if _, err := Load(); err == nil {
		t.Error("expected error for RATE_LIMIT_AUTH=0")
	}
}
