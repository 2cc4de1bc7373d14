package overlay

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/looplab/fsm"

	domain "radiantwavetech.com/radiantwave-updater/internal/domain/overlay"
	"radiantwavetech.com/radiantwave-updater/internal/logger"
	"radiantwavetech.com/radiantwave-updater/internal/repository/identity"
	"radiantwavetech.com/radiantwave-updater/internal/service/common"
)

// Settings configures the overlay client invocations.
type Settings struct {
	// Binary is the client CLI.
	Binary string
	// InstallScriptURL is the vendor install routine.
	InstallScriptURL string
	// LoginServer is the coordination server; empty keeps the client default.
	LoginServer string
	// Operator is granted operator rights after install; empty skips the grant.
	Operator string
	// AuthKey is the pre-shared key used to join the network.
	AuthKey string

	StatusTimeout  time.Duration
	LoginTimeout   time.Duration
	InstallTimeout time.Duration
}

// Manager installs, authenticates and reconciles the overlay client.
type Manager struct {
	runner   common.Runner
	identity identity.Repository
	settings Settings
	// membership tracks the state observed during this run.
	membership *fsm.FSM
}

// NewManager creates a Manager. The membership starts as not installed.
func NewManager(runner common.Runner, identities identity.Repository, settings Settings) *Manager {
	return &Manager{
		runner:     runner,
		identity:   identities,
		settings:   settings,
		membership: newMembership(),
	}
}

// IsInstalled queries the client version. A missing binary and a failing
// client are logged differently; both mean not ready.
func (m *Manager) IsInstalled(ctx context.Context) bool {
	cmd := common.Command{
		Name:    m.settings.Binary,
		Args:    []string{"version"},
		Timeout: m.settings.StatusTimeout,
	}

	result, err := m.runner.Run(ctx, cmd)

	switch {
	case err == nil:
		version, _, _ := strings.Cut(strings.TrimSpace(result.Stdout), "\n")
		logger.DebugKV(ctx, "Overlay client present", "binary", m.settings.Binary, "version", version)

		return true
	case errors.Is(err, common.ErrCommandNotFound):
		logger.InfoKV(ctx, "Overlay client not installed", "binary", m.settings.Binary)
	default:
		common.LogFailure(ctx, "Overlay client version query failed", cmd, result, err)
	}

	return false
}

// Install runs the vendor install routine with elevation and re-verifies.
// A failed operator grant is logged but does not fail the install.
func (m *Manager) Install(ctx context.Context) bool {
	logger.InfoKV(ctx, "Installing overlay client", "script", m.settings.InstallScriptURL)

	cmd := common.Command{
		Name:     "sh",
		// The URL is a positional argument so the shell never interprets it.
		Args:     []string{"-c", `curl -fsSL "$1" | sh`, "sh", m.settings.InstallScriptURL},
		Elevated: true,
		Timeout:  m.settings.InstallTimeout,
	}

	result, err := m.runner.Run(ctx, cmd)
	if err != nil {
		common.LogFailure(ctx, "Overlay client installation failed", cmd, result, err)
		return false
	}

	common.LogOutput(ctx, cmd, result)

	if !m.IsInstalled(ctx) {
		logger.Error(ctx, "Overlay client still unavailable after installation")
		return false
	}

	m.atLeast(ctx, domain.LoggedOut)
	logger.Success(ctx, "Overlay client installed")

	m.grantOperator(ctx)

	return true
}

func (m *Manager) grantOperator(ctx context.Context) {
	if m.settings.Operator == "" {
		return
	}

	cmd := common.Command{
		Name:     m.settings.Binary,
		Args:     []string{"set", "--operator=" + m.settings.Operator},
		Elevated: true,
		Timeout:  m.settings.StatusTimeout,
	}

	result, err := m.runner.Run(ctx, cmd)
	if err != nil {
		common.LogFailure(ctx, "Overlay operator grant failed, continuing", cmd, result, err)
		return
	}

	logger.SuccessKV(ctx, "Overlay operator granted", "operator", m.settings.Operator)
}

// Status queries the client. Unavailable or malformed output yields false.
func (m *Manager) Status(ctx context.Context) (*domain.Status, bool) {
	cmd := common.Command{
		Name:    m.settings.Binary,
		Args:    []string{"status", "--json"},
		Timeout: m.settings.StatusTimeout,
	}

	result, err := m.runner.Run(ctx, cmd)
	if err != nil {
		common.LogFailure(ctx, "Overlay status query failed", cmd, result, err)
		return nil, false
	}

	status, err := parseStatus(result.Stdout)
	if err != nil {
		logger.WarnKV(ctx, "Overlay status unreadable", "error", err)
		return nil, false
	}

	logger.DebugKV(ctx, "Overlay status",
		"backend_state", status.BackendState,
		"hostname", status.HostName,
		"dns_name", status.DNSName,
		"online", status.Online,
		"addresses", status.Addresses,
		"health", status.Health)

	return status, true
}

// IsLoggedIn reports whether status shows a fully connected backend.
func (m *Manager) IsLoggedIn(status *domain.Status) bool {
	return status.IsLoggedIn()
}

// Login authenticates against the coordination server with the provisioned
// auth key. A non-empty hostname is advertised as the device name.
func (m *Manager) Login(ctx context.Context, hostname string) bool {
	if m.settings.AuthKey == "" {
		logger.Error(ctx, "No overlay auth key provisioned, cannot log in")
		return false
	}

	args := []string{"up", "--reset", "--authkey=" + m.settings.AuthKey}

	if m.settings.LoginServer != "" {
		args = append(args, "--login-server="+m.settings.LoginServer)
	}

	if hostname != "" {
		args = append(args, "--hostname="+hostname)
	}

	cmd := common.Command{
		Name:     m.settings.Binary,
		Args:     args,
		Elevated: true,
		Timeout:  m.settings.LoginTimeout,
		Secrets:  []string{m.settings.AuthKey},
	}

	logger.InfoKV(ctx, "Logging in to overlay network", "login_server", m.settings.LoginServer, "hostname", hostname)

	result, err := m.runner.Run(ctx, cmd)
	if err != nil {
		common.LogFailure(ctx, "Overlay login failed", cmd, result, err)
		return false
	}

	return true
}

// EnsureInstalled installs the client unless it is already present.
func (m *Manager) EnsureInstalled(ctx context.Context) bool {
	if m.IsInstalled(ctx) {
		m.atLeast(ctx, domain.LoggedOut)
		logger.Debug(ctx, "Overlay client already installed")

		return true
	}

	return m.Install(ctx)
}

// EnsureConnected logs in unless the client is already connected. The device
// identity, when known, becomes the advertised hostname.
func (m *Manager) EnsureConnected(ctx context.Context) bool {
	if status, ok := m.Status(ctx); ok && m.IsLoggedIn(status) {
		m.atLeast(ctx, domain.WrongIdentity)
		logger.DebugKV(ctx, "Overlay already connected", "hostname", status.HostName)

		return true
	}

	desired, known := m.identity.Get(ctx)
	if !known {
		logger.Info(ctx, "No device identity, logging in with the client default hostname")
	}

	if !m.Login(ctx, desired) {
		return false
	}

	status, ok := m.Status(ctx)
	if !ok || !m.IsLoggedIn(status) {
		state := "unknown"
		if ok {
			state = string(status.BackendState)
		}

		logger.ErrorKV(ctx, "Overlay still not connected after login", "backend_state", state)

		return false
	}

	m.observe(ctx, status, desired, known)
	logger.SuccessKV(ctx, "Overlay connected",
		"hostname", status.HostName,
		"dns_name", status.DNSName,
		"addresses", status.Addresses)

	return true
}

// SyncHostname re-advertises the device identity when the client reports a
// different hostname. It never fails: problems are logged and absorbed.
func (m *Manager) SyncHostname(ctx context.Context) {
	desired, known := m.identity.Get(ctx)
	if !known {
		logger.Info(ctx, "No device identity, skipping hostname sync")
		return
	}

	status, ok := m.Status(ctx)
	if !ok {
		logger.Warn(ctx, "Overlay status unavailable, skipping hostname sync")
		return
	}

	if !m.IsLoggedIn(status) {
		m.observe(ctx, status, desired, known)
		logger.WarnKV(ctx, "Overlay not connected, skipping hostname sync", "backend_state", status.BackendState)

		return
	}

	if status.HasHostName(desired) {
		m.observe(ctx, status, desired, known)
		logger.DebugKV(ctx, "Overlay hostname matches device identity", "hostname", status.HostName)

		return
	}

	before := status.HostName

	m.observe(ctx, status, desired, known)
	logger.InfoKV(ctx, "Overlay hostname differs from device identity", "current", before, "desired", desired)

	if !m.Login(ctx, desired) {
		logger.WarnKV(ctx, "Hostname sync failed, keeping current hostname", "current", before)
		return
	}

	after := ""

	if refreshed, ok := m.Status(ctx); ok {
		after = refreshed.HostName
		m.observe(ctx, refreshed, desired, known)
	}

	logger.InfoKV(ctx, "Overlay hostname synchronized", "before", before, "after", after)

	if !strings.EqualFold(after, desired) {
		logger.WarnKV(ctx, "Overlay hostname still differs after login", "after", after, "desired", desired)
	}
}

// Inspect reads the client state without changing it: install check, status
// and device identity. Status is nil when the client is missing or unreadable.
func (m *Manager) Inspect(ctx context.Context) (domain.Membership, *domain.Status) {
	if !m.IsInstalled(ctx) {
		m.reach(ctx, domain.NotInstalled)
		return m.Membership(), nil
	}

	m.atLeast(ctx, domain.LoggedOut)

	status, ok := m.Status(ctx)
	if !ok {
		return m.Membership(), nil
	}

	desired, known := m.identity.Get(ctx)
	m.observe(ctx, status, desired, known)

	return m.Membership(), status
}
