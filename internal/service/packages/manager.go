package packages

import (
	"context"
	"time"

	domain "radiantwavetech.com/radiantwave-updater/internal/domain/packages"
	"radiantwavetech.com/radiantwave-updater/internal/logger"
	"radiantwavetech.com/radiantwave-updater/internal/service/common"
)

// Timeouts bounds each package manager command.
type Timeouts struct {
	Refresh time.Duration
	Query   time.Duration
	Install time.Duration
}

// Manager drives apt for a single package.
type Manager struct {
	runner   common.Runner
	mode     domain.MatchMode
	timeouts Timeouts
}

// NewManager creates a Manager looking packages up with mode.
func NewManager(runner common.Runner, mode domain.MatchMode, timeouts Timeouts) *Manager {
	return &Manager{
		runner:   runner,
		mode:     mode,
		timeouts: timeouts,
	}
}

// RefreshPackageLists runs an elevated `apt-get update`.
// A stale index makes the upgrade check unreliable, so callers treat false as fatal.
func (m *Manager) RefreshPackageLists(ctx context.Context) bool {
	logger.Info(ctx, "Refreshing package lists")

	cmd := common.Command{
		Name:     "apt-get",
		Args:     []string{"update"},
		Elevated: true,
		Timeout:  m.timeouts.Refresh,
	}

	result, err := m.runner.Run(ctx, cmd)
	if err != nil {
		common.LogFailure(ctx, "Package list refresh failed", cmd, result, err)
		return false
	}

	logger.Success(ctx, "Package lists refreshed")

	return true
}

// CheckUpgradeAvailable lists upgradable packages without privileges and
// looks name up with the configured match mode. A failed query reads as no upgrade.
func (m *Manager) CheckUpgradeAvailable(ctx context.Context, name string) bool {
	logger.InfoKV(ctx, "Checking for upgrades", "package", name, "match_mode", m.mode)

	cmd := common.Command{
		Name:    "apt",
		Args:    []string{"list", "--upgradable"},
		Timeout: m.timeouts.Query,
	}

	result, err := m.runner.Run(ctx, cmd)
	if err != nil {
		common.LogFailure(ctx, "Upgradable package query failed", cmd, result, err)
		return false
	}

	listing := domain.ParseListing(result.Stdout)
	if !listing.Has(name, m.mode) {
		logger.InfoKV(ctx, "Package is up to date", "package", name)
		return false
	}

	if entry, ok := listing.Find(name); ok {
		logger.InfoKV(ctx, "Upgrade available",
			"package", name, "from", entry.FromVersion, "to", entry.Version)
	} else {
		logger.InfoKV(ctx, "Upgrade available", "package", name)
	}

	return true
}

// InstallUpgrade installs the pending upgrade of name only, non-interactively.
func (m *Manager) InstallUpgrade(ctx context.Context, name string) bool {
	logger.InfoKV(ctx, "Installing upgrade", "package", name)

	cmd := common.Command{
		Name: "apt-get",
		Args: []string{
			"install", "--only-upgrade", "-y",
			"-o", "Dpkg::Options::=--force-confdef",
			"-o", "Dpkg::Options::=--force-confold",
			name,
		},
		Env:      []string{"DEBIAN_FRONTEND=noninteractive"},
		Elevated: true,
		Timeout:  m.timeouts.Install,
	}

	result, err := m.runner.Run(ctx, cmd)
	if err != nil {
		common.LogFailure(ctx, "Upgrade installation failed", cmd, result, err)
		return false
	}

	common.LogOutput(ctx, cmd, result)
	logger.SuccessKV(ctx, "Upgrade installed", "package", name)

	return true
}
