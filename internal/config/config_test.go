package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := Load(dir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if AppConfig.StoreBackend != StoreSQL {
		t.Errorf("StoreBackend = %q, want %q", AppConfig.StoreBackend, StoreSQL)
	}
	if AppConfig.SessionTTL != 720*time.Hour {
		t.Errorf("SessionTTL = %v, want 720h", AppConfig.SessionTTL)
	}
	if !AppConfig.CoalesceLoads {
		t.Error("CoalesceLoads = false, want true")
	}
	if !reflect.DeepEqual(AppConfig.CORSOrigins, []string{"*"}) {
		t.Errorf("CORSOrigins = %v, want [*]", AppConfig.CORSOrigins)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("JOBTRACKER_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("JOBTRACKER_STORE_BACKEND", "memory")

	if err := Load(t.TempDir()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if AppConfig.ServerAddr != "127.0.0.1:9999" {
		t.Errorf("ServerAddr = %q, want env override", AppConfig.ServerAddr)
	}
	if AppConfig.StoreBackend != StoreMemory {
		t.Errorf("StoreBackend = %q, want %q", AppConfig.StoreBackend, StoreMemory)
	}
}

func TestLoadRejectsInvalidBackend(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store_backend: redis\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := Load(dir); err == nil {
		t.Error("Load() accepted store_backend redis")
	}
}

func TestSetPersists(t *testing.T) {
	dir := t.TempDir()
	if err := Load(dir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := Set("log_level", "debug"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := Set("no_such_key", "x"); err == nil {
		t.Error("Set() accepted an unknown key")
	}
	if err := Set("store_backend", "redis"); err == nil {
		t.Error("Set() accepted an invalid store_backend")
	}

	if err := Load(dir); err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if AppConfig.LogLevel != "debug" {
		t.Errorf("LogLevel = %q after reload, want debug", AppConfig.LogLevel)
	}
	if AppConfig.StoreBackend != StoreSQL {
		t.Errorf("StoreBackend = %q after rejected Set, want %q", AppConfig.StoreBackend, StoreSQL)
	}
	if got := Get("log_level"); got != "debug" {
		t.Errorf("Get(log_level) = %q, want debug", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("LoadDotEnv() on missing file error = %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("JOBTRACKER_TEST_DOTENV=from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("JOBTRACKER_TEST_DOTENV") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("JOBTRACKER_TEST_DOTENV"); got != "from-file" {
		t.Errorf("JOBTRACKER_TEST_DOTENV = %q, want from-file", got)
	}
}

func TestDirHonoursHomeEnv(t *testing.T) {
	t.Setenv(HomeEnv, "/tmp/jt-home")
	if got := Dir(); got != "/tmp/jt-home" {
		t.Errorf("Dir() = %q, want /tmp/jt-home", got)
	}
	if got := GetConfigPath(); got != "/tmp/jt-home/config.yaml" {
		t.Errorf("GetConfigPath() = %q", got)
	}
}
