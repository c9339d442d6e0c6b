package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, yamlContent string) {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	writeConfig(t, `
env: "test"
database:
  host: "db.example.com"
  port: 5432
  user: "testuser"
  database: "testdb"
source:
  schema: "public"
  table_prefix: "thelook_"
`)

	os.Unsetenv("PGHOST")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PGDATABASE", "overridden")
	t.Setenv("SOURCE_TABLE_PREFIX", "thelook_ecommerce_")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("Env = %q, want env override %q", cfg.Env, "production")
	}
	if cfg.Database.Database != "overridden" {
		t.Errorf("Database.Database = %q, want env override %q", cfg.Database.Database, "overridden")
	}
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("Database.Host = %q, want yaml value %q", cfg.Database.Host, "db.example.com")
	}
	if cfg.Source.TablePrefix != "thelook_ecommerce_" {
		t.Errorf("Source.TablePrefix = %q, want env override %q", cfg.Source.TablePrefix, "thelook_ecommerce_")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Version = %q, want %q", cfg.Version, "test-version")
	}
}

func TestLoad_PasswordOnlyFromEnv(t *testing.T) {
	writeConfig(t, `
database:
  host: "localhost"
source:
  schema: "public"
`)

	t.Setenv("PGPASSWORD", "supersecret")

	cfg, err := Load("dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Database.Password != "supersecret" {
		t.Errorf("Password = %q, want value from PGPASSWORD", cfg.Database.Password)
	}
}

func TestLoad_RejectsQuotedIdentifiers(t *testing.T) {
	writeConfig(t, `
source:
  schema: 'bad"schema'
`)

	_, err := Load("dev")
	if err == nil {
		t.Fatal("Load() succeeded, want error for double quote in source schema")
	}
	if !strings.Contains(err.Error(), "double quotes") {
		t.Errorf("error = %v, want mention of double quotes", err)
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5433,
		User:     "mart",
		Password: "pw",
		Database: "ecommerce",
		SSLMode:  "disable",
	}

	got := cfg.ConnectionString()
	want := "host=localhost port=5433 user=mart password=pw dbname=ecommerce sslmode=disable"
	if got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}

	gotURL := cfg.URL()
	wantURL := "postgres://mart:pw@localhost:5433/ecommerce?sslmode=disable"
	if gotURL != wantURL {
		t.Errorf("URL() = %q, want %q", gotURL, wantURL)
	}
}
