package config

import "time"

// Defaults match the kiosk image layout.
const (
	DefaultLogFile      = "/home/kiosk/radiantwave-updater.log"
	DefaultLogLevel     = "info"
	DefaultEscalateWith = EscalateSudo

	DefaultProbeHost    = "8.8.8.8"
	DefaultProbePort    = 53
	DefaultProbeTimeout = 3 * time.Second

	DefaultIdentityDatabase = "/var/lib/radiantwave/data.db"
	DefaultIdentityKey      = "license_key"

	DefaultOverlayBinary         = "tailscale"
	DefaultOverlayInstallScript  = "https://tailscale.com/install.sh"
	DefaultOverlayOperator       = "kiosk"
	DefaultOverlayAuthKeyFile    = "/etc/radiantwave/overlay.env"
	DefaultOverlayStatusTimeout  = 10 * time.Second
	DefaultOverlayLoginTimeout   = time.Minute
	DefaultOverlayInstallTimeout = 5 * time.Minute

	DefaultPackageName           = "radiantwave"
	DefaultPackageMatchMode      = MatchExact
	DefaultPackageRefreshTimeout = 5 * time.Minute
	DefaultPackageQueryTimeout   = 30 * time.Second
	DefaultPackageInstallTimeout = 10 * time.Minute

	DefaultServiceUnit    = "display-manager.service"
	DefaultServiceTimeout = time.Minute
)

//nolint:cyclop,funlen // One assignment per field.
func applyDefaults(cfg *Config) {
	setString(&cfg.LogFile, DefaultLogFile)
	setString(&cfg.LogLevel, DefaultLogLevel)
	setString(&cfg.EscalateWith, DefaultEscalateWith)

	setString(&cfg.Connectivity.Host, DefaultProbeHost)

	if cfg.Connectivity.Port == 0 {
		cfg.Connectivity.Port = DefaultProbePort
	}

	setDuration(&cfg.Connectivity.Timeout, DefaultProbeTimeout)

	setString(&cfg.Identity.Database, DefaultIdentityDatabase)
	setString(&cfg.Identity.Key, DefaultIdentityKey)

	setString(&cfg.Overlay.Binary, DefaultOverlayBinary)
	setString(&cfg.Overlay.InstallScriptURL, DefaultOverlayInstallScript)
	setString(&cfg.Overlay.Operator, DefaultOverlayOperator)
	setString(&cfg.Overlay.AuthKeyFile, DefaultOverlayAuthKeyFile)
	setDuration(&cfg.Overlay.StatusTimeout, DefaultOverlayStatusTimeout)
	setDuration(&cfg.Overlay.LoginTimeout, DefaultOverlayLoginTimeout)
	setDuration(&cfg.Overlay.InstallTimeout, DefaultOverlayInstallTimeout)

	setString(&cfg.Packages.Name, DefaultPackageName)
	setString(&cfg.Packages.MatchMode, DefaultPackageMatchMode)
	setDuration(&cfg.Packages.RefreshTimeout, DefaultPackageRefreshTimeout)
	setDuration(&cfg.Packages.QueryTimeout, DefaultPackageQueryTimeout)
	setDuration(&cfg.Packages.InstallTimeout, DefaultPackageInstallTimeout)

	setString(&cfg.Service.Unit, DefaultServiceUnit)
	setDuration(&cfg.Service.Timeout, DefaultServiceTimeout)
}

func setString(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func setDuration(field *time.Duration, value time.Duration) {
	if *field <= 0 {
		*field = value
	}
}
