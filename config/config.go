// config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type SourceConfig struct {
	// ZipURL is the FCC ULS complete "Licenses" package (l_amat.zip).
	ZipURL string `yaml:"zip_url"`
	// UpdatePage is the FCC downloads page that carries the posted
	// "Date Last Updated" text. Used for operator diagnostics only.
	UpdatePage string `yaml:"update_page"`
}

type PathsConfig struct {
	// DataDir holds the downloaded ZIP and the extracted .dat files
	// (usually a Docker volume mounted at /data).
	DataDir    string `yaml:"data_dir"`
	SchemaPath string `yaml:"schema_path"`
	// StateDir holds one JSON state record per import job.
	StateDir string `yaml:"state_dir"`
	// MarkerPath is the flat "last import" JSON written next to the data
	// for quick glancing and as a fallback if the state record is lost.
	MarkerPath string `yaml:"marker_path"`
}

type ImporterConfig struct {
	JobName            string `yaml:"job_name"`
	UseLock            bool   `yaml:"use_lock"`
	CheckChanged       bool   `yaml:"check_changed"`
	MinZipBytes        int64  `yaml:"min_zip_bytes"`
	DownloadTimeoutStr string `yaml:"download_timeout"`
	ProbeTimeoutStr    string `yaml:"probe_timeout"`

	DownloadTimeout time.Duration `yaml:"-"`
	ProbeTimeout    time.Duration `yaml:"-"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Source   SourceConfig   `yaml:"source"`
	Paths    PathsConfig    `yaml:"paths"`
	Importer ImporterConfig `yaml:"importer"`
}

// ZipPath is where the downloaded package lands.
func (c Config) ZipPath() string {
	return filepath.Join(c.Paths.DataDir, "l_amat.zip")
}

// ExtractDir is where the .dat files are unpacked.
func (c Config) ExtractDir() string {
	return filepath.Join(c.Paths.DataDir, "extract")
}

// Default returns the built-in configuration. Values here match the
// docker-compose service naming (DB_HOST=uls-mariadb, /data volume).
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Host:   "uls-mariadb",
			Port:   "3306",
			User:   "uls",
			DBName: "uls",
		},
		Source: SourceConfig{
			ZipURL:     "https://data.fcc.gov/download/pub/uls/complete/l_amat.zip",
			UpdatePage: "https://www.fcc.gov/uls/transactions/daily-weekly",
		},
		Paths: PathsConfig{
			DataDir:    "/data",
			SchemaPath: "schema.sql",
			StateDir:   "/data/state",
			MarkerPath: "/data/last_import.json",
		},
		Importer: ImporterConfig{
			JobName:            "l_amat",
			UseLock:            true,
			CheckChanged:       false,
			MinZipBytes:        50_000_000,
			DownloadTimeoutStr: "5m",
			ProbeTimeoutStr:    "20s",
		},
	}
}

// Load reads configuration from a YAML file, then overlays environment
// variables. The result is a plain value: callers pass it down instead of
// reading package globals.
func Load(configPath string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnv(&cfg)

	var err error
	cfg.Importer.DownloadTimeout, err = time.ParseDuration(cfg.Importer.DownloadTimeoutStr)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse download_timeout: %w", err)
	}
	cfg.Importer.ProbeTimeout, err = time.ParseDuration(cfg.Importer.ProbeTimeoutStr)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse probe_timeout: %w", err)
	}

	return cfg, nil
}

// applyEnv overlays the environment settings used by the containers.
// An unset variable leaves the file/default value alone.
func applyEnv(cfg *Config) {
	setenv := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setenv(&cfg.Server.Port, "SERVER_PORT")
	setenv(&cfg.Database.Host, "DB_HOST")
	setenv(&cfg.Database.Port, "DB_PORT")
	setenv(&cfg.Database.User, "DB_USER")
	setenv(&cfg.Database.Password, "DB_PASS")
	setenv(&cfg.Database.DBName, "DB_NAME")
	setenv(&cfg.Source.ZipURL, "FCC_AMAT_URL")
	setenv(&cfg.Paths.DataDir, "DATA_DIR")
	setenv(&cfg.Paths.SchemaPath, "SCHEMA_PATH")
	setenv(&cfg.Paths.StateDir, "STATE_DIR")
	setenv(&cfg.Paths.MarkerPath, "MARKER_PATH")
}
