package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting of a maintenance run.
type Config struct {
	// LogFile is the append-only log mirrored from the console.
	LogFile string `yaml:"log_file"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// MetricsFile receives a Prometheus textfile after every run when set.
	MetricsFile string `yaml:"metrics_file"`
	// EscalateWith names the privilege escalation mechanism: sudo, pkexec or none.
	EscalateWith string `yaml:"escalate_with"`

	Connectivity Connectivity `yaml:"connectivity"`
	Identity     Identity     `yaml:"identity"`
	Overlay      Overlay      `yaml:"overlay"`
	Packages     Packages     `yaml:"packages"`
	Service      Service      `yaml:"service"`
}

// Connectivity configures the reachability gate.
type Connectivity struct {
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// Identity locates the device identity inside the kiosk database.
type Identity struct {
	// Database is the SQLite file written by the kiosk application.
	Database string `yaml:"database"`
	// Key is the row of the configs table holding the license key.
	Key string `yaml:"key"`
}

// Overlay configures the overlay network client.
type Overlay struct {
	Enable *bool `yaml:"enabled"`
	// Binary is the client CLI name or path.
	Binary string `yaml:"binary"`
	// InstallScriptURL is the vendor install routine fetched by curl.
	InstallScriptURL string `yaml:"install_script_url"`
	// LoginServer is the coordination server; empty means the vendor default.
	LoginServer string `yaml:"login_server"`
	// Operator is the account granted operator rights after install.
	Operator string `yaml:"operator"`
	// AuthKeyFile is an env file provisioned at deploy time holding the auth key.
	AuthKeyFile string `yaml:"auth_key_file"`

	StatusTimeout  time.Duration `yaml:"status_timeout"`
	LoginTimeout   time.Duration `yaml:"login_timeout"`
	InstallTimeout time.Duration `yaml:"install_timeout"`
}

// Packages configures the package upgrade steps.
type Packages struct {
	Enable *bool `yaml:"enabled"`
	// Name is the package kept up to date.
	Name string `yaml:"name"`
	// MatchMode is exact or substring.
	MatchMode string `yaml:"match_mode"`

	RefreshTimeout time.Duration `yaml:"refresh_timeout"`
	QueryTimeout   time.Duration `yaml:"query_timeout"`
	InstallTimeout time.Duration `yaml:"install_timeout"`
}

// Service configures the foreground application reload.
type Service struct {
	Enable *bool `yaml:"enabled"`
	// Unit is the systemd unit restarted after an upgrade.
	Unit string `yaml:"unit"`
	// Process is the foreground executable name looked up after the restart.
	// Empty disables the lookup.
	Process string        `yaml:"process"`
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default path of the updater settings.
	DefaultConfigFilename = "/etc/radiantwave/updater.yaml"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// MatchExact compares package names field by field.
	MatchExact = "exact"
	// MatchSubstring reproduces the legacy containment test over the listing.
	MatchSubstring = "substring"

	// EscalateSudo runs privileged commands through non-interactive sudo.
	EscalateSudo = "sudo"
	// EscalatePkexec runs privileged commands through polkit.
	EscalatePkexec = "pkexec"
	// EscalateNone runs privileged commands as is, for root deployments.
	EscalateNone = "none"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidPort is returned when the probe port is out of range.
	errInvalidPort = errors.New("connectivity port must be within 1..65535")
	// errPackageRequired is returned when no package name is configured.
	errPackageRequired = errors.New("package name must be provided")
	// errUnitRequired is returned when the service step has no unit.
	errUnitRequired = errors.New("service unit must be provided")
	// errUnknownMatchMode is returned for an unsupported match mode.
	errUnknownMatchMode = errors.New("unknown match mode")
	// errUnknownEscalation is returned for an unsupported escalation mechanism.
	errUnknownEscalation = errors.New("unknown escalation mechanism")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings.
//
//nolint:cyclop // A flat list of checks reads better than helpers per section.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	if cfg.Connectivity.Port <= 0 || cfg.Connectivity.Port > 65535 {
		return fmt.Errorf("%w: %d", errInvalidPort, cfg.Connectivity.Port)
	}

	switch cfg.EscalateWith {
	case EscalateSudo, EscalatePkexec, EscalateNone:
	default:
		return fmt.Errorf("%w: %s", errUnknownEscalation, cfg.EscalateWith)
	}

	switch cfg.Packages.MatchMode {
	case MatchExact, MatchSubstring:
	default:
		return fmt.Errorf("%w: %s", errUnknownMatchMode, cfg.Packages.MatchMode)
	}

	if cfg.Packages.IsEnabled() && strings.TrimSpace(cfg.Packages.Name) == "" {
		return errPackageRequired
	}

	if cfg.Service.IsEnabled() && strings.TrimSpace(cfg.Service.Unit) == "" {
		return errUnitRequired
	}

	if _, err := url.ParseRequestURI(cfg.Overlay.InstallScriptURL); err != nil {
		return fmt.Errorf("invalid install script URI: %w", err)
	}

	if cfg.Overlay.LoginServer == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.Overlay.LoginServer); err != nil {
		return fmt.Errorf("invalid login server URI: %w", err)
	}

	return nil
}

// Escalation returns the argv prefix for privileged commands.
func (c *Config) Escalation() []string {
	switch c.EscalateWith {
	case EscalatePkexec:
		return []string{"pkexec"}
	case EscalateNone:
		return nil
	default:
		return []string{"sudo", "-n"}
	}
}

// IsEnabled reports whether the overlay steps run.
func (o *Overlay) IsEnabled() bool {
	return enabled(o.Enable)
}

// IsEnabled reports whether the package steps run.
func (p *Packages) IsEnabled() bool {
	return enabled(p.Enable)
}

// IsEnabled reports whether the service reload runs.
func (s *Service) IsEnabled() bool {
	return enabled(s.Enable)
}

// enabled treats an unset toggle as on.
func enabled(toggle *bool) bool {
	return toggle == nil || *toggle
}
