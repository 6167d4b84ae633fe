package config

import (
	"testing"
	"time"
)

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("CATALOG_ADDR", ":3000")
	t.Setenv("CATALOG_BACKEND", "memory")
	t.Setenv("CATALOG_RATE_LIMIT", "many")
	t.Setenv("CATALOG_SEED", "")
	t.Setenv("CATALOG_READ_TIMEOUT_SEC", "15s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":3000" || cfg.Backend != BackendMemory {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.RateLimit != 60 {
		t.Errorf("expected malformed rate limit to fall back to 60, got %d", cfg.RateLimit)
	}
	if !cfg.Seed {
		t.Error("expected malformed seed flag to fall back to true")
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Errorf("expected 15s read timeout, got %v", cfg.ReadTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CATALOG_ADDR", ":8080")
	t.Setenv("CATALOG_BACKEND", "DynamoDB")
	t.Setenv("CATALOG_TABLE_PREFIX", "dev_")
	t.Setenv("CATALOG_RATE_LIMIT", "5")
	t.Setenv("CATALOG_SEED", "false")
	t.Setenv("CATALOG_WRITE_TIMEOUT_SEC", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Backend != BackendDynamoDB || cfg.TablePrefix != "dev_" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.RateLimit != 5 || cfg.Seed || cfg.WriteTimeout != 3*time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Backend: BackendMemory}, false},
		{"dynamodb", Config{Backend: BackendDynamoDB}, false},
		{"postgres with dsn", Config{Backend: BackendPostgres, PostgresDSN: "postgres://x"}, false},
		{"postgres without dsn", Config{Backend: BackendPostgres}, true},
		{"unknown backend", Config{Backend: "mongo"}, true},
		{"negative rate limit", Config{Backend: BackendMemory, RateLimit: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
