// config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Importer.UseLock {
		t.Error("the lock must be on by default")
	}
	if cfg.Importer.CheckChanged {
		t.Error("change detection must be off by default")
	}
	if cfg.Importer.DownloadTimeout != 5*time.Minute {
		t.Errorf("download timeout = %v", cfg.Importer.DownloadTimeout)
	}
	if cfg.Importer.ProbeTimeout != 20*time.Second {
		t.Errorf("probe timeout = %v", cfg.Importer.ProbeTimeout)
	}
	if cfg.ZipPath() != "/data/l_amat.zip" {
		t.Errorf("zip path = %q", cfg.ZipPath())
	}
	if cfg.ExtractDir() != "/data/extract" {
		t.Errorf("extract dir = %q", cfg.ExtractDir())
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9090"
importer:
  job_name: "l_amat_test"
  use_lock: false
  check_changed: true
  download_timeout: "90s"
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Importer.UseLock {
		t.Error("use_lock: false should be honored")
	}
	if !cfg.Importer.CheckChanged {
		t.Error("check_changed: true should be honored")
	}
	if cfg.Importer.DownloadTimeout != 90*time.Second {
		t.Errorf("download timeout = %v", cfg.Importer.DownloadTimeout)
	}
	// Untouched sections keep their defaults.
	if cfg.Database.DBName != "uls" {
		t.Errorf("dbname = %q", cfg.Database.DBName)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("DB_HOST", "db.example.internal")
	t.Setenv("DATA_DIR", "/mnt/uls")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Host != "db.example.internal" {
		t.Errorf("host = %q", cfg.Database.Host)
	}
	if cfg.ZipPath() != "/mnt/uls/l_amat.zip" {
		t.Errorf("zip path = %q", cfg.ZipPath())
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("importer:\n  download_timeout: \"soon\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unparseable timeout")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing config path")
	}
}
