// Package config layers a run's settings the way this project's original
// CLI front end did with its own .env loader, generalized to a real
// loader (joho/godotenv) plus an optional project manifest
// (postfix.yaml, gopkg.in/yaml.v3) sitting between compiled-in defaults
// and the command line. Precedence, lowest to highest: defaults →
// manifest → .env → CLI flags.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"postfix/pkg/alert"
)

// Config is the fully resolved set of knobs one `postfix run` invocation
// needs.
type Config struct {
	Path           string `yaml:"path"`
	Module         string `yaml:"module"`
	Debug          bool   `yaml:"debug"`
	SymbolicLabels bool   `yaml:"symbolic_labels"`
	WatchAddr      string `yaml:"watch_addr"`
	TraceFile      string `yaml:"trace_file"`

	AttestSecret string        `yaml:"attest_secret"`
	AttestTTL    time.Duration `yaml:"-"`
	AttestTTLStr string        `yaml:"attest_ttl"`

	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass"`
	SMTPFrom string `yaml:"smtp_from"`
	SMTPTo   string `yaml:"smtp_to"`
}

// Defaults returns the compiled-in baseline every layer overrides.
func Defaults() Config {
	return Config{
		Path:      ".",
		Debug:     false,
		WatchAddr: "",
		AttestTTL: time.Hour,
	}
}

// LoadManifest reads a postfix.yaml project manifest if path exists; a
// missing manifest is not an error, matching how a .env file is treated
// as optional.
func LoadManifest(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	if cfg.AttestTTLStr != "" {
		ttl, err := time.ParseDuration(cfg.AttestTTLStr)
		if err != nil {
			return err
		}
		cfg.AttestTTL = ttl
	}
	return nil
}

// LoadDotEnv loads envPath into the process environment (if present) and
// overlays any of the recognized POSTFIX_* variables onto cfg.
func LoadDotEnv(cfg *Config, envPath string) error {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return err
		}
	}

	if v := os.Getenv("POSTFIX_PATH"); v != "" {
		cfg.Path = v
	}
	if v := os.Getenv("POSTFIX_MODULE"); v != "" {
		cfg.Module = v
	}
	if v := os.Getenv("POSTFIX_DEBUG"); v != "" {
		cfg.Debug = v == "1" || v == "true"
	}
	if v := os.Getenv("POSTFIX_SYMBOLIC_LABELS"); v != "" {
		cfg.SymbolicLabels = v == "1" || v == "true"
	}
	if v := os.Getenv("POSTFIX_WATCH_ADDR"); v != "" {
		cfg.WatchAddr = v
	}
	if v := os.Getenv("POSTFIX_TRACE_FILE"); v != "" {
		cfg.TraceFile = v
	}
	if v := os.Getenv("POSTFIX_ATTEST_SECRET"); v != "" {
		cfg.AttestSecret = v
	}
	if v := os.Getenv("POSTFIX_ATTEST_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.AttestTTL = ttl
		}
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.SMTPPort = p
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.SMTPUser = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		cfg.SMTPPass = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.SMTPFrom = v
	}
	if v := os.Getenv("SMTP_TO"); v != "" {
		cfg.SMTPTo = v
	}
	return nil
}

// AlertConfig projects the SMTP fields into the shape pkg/alert expects.
func (c Config) AlertConfig() alert.SMTPConfig {
	return alert.SMTPConfig{
		Host: c.SMTPHost,
		Port: c.SMTPPort,
		User: c.SMTPUser,
		Pass: c.SMTPPass,
		From: c.SMTPFrom,
		To:   c.SMTPTo,
	}
}
