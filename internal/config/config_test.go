package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every key Load reads so host settings do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "PORT", "STORE_DRIVER", "MONGO_URI", "MONGO_DATABASE", "MONGO_COLLECTION",
		"MONGO_OP_TIMEOUT", "REDIS_URL", "RATE_LIMIT_PER_IP", "CORS_ALLOWED_ORIGINS", "SECURE_DEV",
		"WEBHOOK_URL", "WEBHOOK_SECRET", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	// Load reads .env from the working directory; run from an empty one.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "3000" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Store.Driver != StoreMongo {
		t.Errorf("Driver = %q", cfg.Store.Driver)
	}
	if cfg.Mongo.URI != "mongodb://localhost:27017" || cfg.Mongo.Database != "taskboard" || cfg.Mongo.Collection != "users" {
		t.Errorf("Mongo = %+v", cfg.Mongo)
	}
	if cfg.Mongo.OpTimeout != 5*time.Second {
		t.Errorf("OpTimeout = %v", cfg.Mongo.OpTimeout)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Redis.URL != "" || cfg.Webhook.URL != "" || cfg.RateLimit.RatePerIP != "" {
		t.Errorf("optional settings should be empty: %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("MONGO_OP_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("SECURE_DEV", "true")
	t.Setenv("WEBHOOK_URL", "http://hooks.test/in")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "8081" || cfg.Store.Driver != StoreMemory || cfg.Mongo.OpTimeout != 2*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Secure.IsDevelopment || cfg.Webhook.URL != "http://hooks.test/in" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	dir, _ := os.Getwd()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MONGO_DATABASE=fromfile\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("MONGO_DATABASE") })
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mongo.Database != "fromfile" {
		t.Errorf("Database = %q", cfg.Mongo.Database)
	}
}
