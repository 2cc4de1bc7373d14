package integration

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"radiantwavetech.com/radiantwave-updater/internal/config"
)

const (
	statusOldHost = `{"BackendState":"Running","Self":{"HostName":"old-host","DNSName":"old-host.fleet.example.",` +
		`"Online":true,"TailscaleIPs":["100.64.0.7"]},"Health":[]}`
	statusIdentity = `{"BackendState":"Running","Self":{"HostName":"abc123","DNSName":"abc123.fleet.example.",` +
		`"Online":true,"TailscaleIPs":["100.64.0.7"]},"Health":[]}`

	aptWarning = "WARNING: apt does not have a stable CLI interface. Use with caution in scripts."
)

// kiosk is a temporary machine: stub executables first on PATH, a log file,
// a reachable probe endpoint and a settings file.
type kiosk struct {
	dir        string
	bin        string
	callsFile  string
	logFile    string
	configPath string
	database   string
	probePort  int
}

func newKiosk(t *testing.T) *kiosk {
	t.Helper()

	dir := t.TempDir()
	k := &kiosk{
		dir:        dir,
		bin:        filepath.Join(dir, "bin"),
		callsFile:  filepath.Join(dir, "calls.log"),
		logFile:    filepath.Join(dir, "updater.log"),
		configPath: filepath.Join(dir, "updater.yaml"),
		database:   filepath.Join(dir, "data.db"),
	}

	require.NoError(t, os.Mkdir(k.bin, 0o755))
	t.Setenv("PATH", k.bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = listener.Close()
	})

	k.probePort = listener.Addr().(*net.TCPAddr).Port

	return k
}

// writeConfig saves settings pointing every path into the kiosk directory.
func (k *kiosk) writeConfig(t *testing.T, mutate func(*config.Config)) {
	t.Helper()

	cfg := &config.Config{
		LogFile:      k.logFile,
		MetricsFile:  filepath.Join(k.dir, "radiantwave_updater.prom"),
		EscalateWith: config.EscalateNone,
		Connectivity: config.Connectivity{Host: "127.0.0.1", Port: k.probePort, Timeout: time.Second},
		Identity:     config.Identity{Database: k.database},
		Overlay: config.Overlay{
			AuthKeyFile:   filepath.Join(k.dir, "overlay.env"),
			LoginServer:   "https://hs.fleet.example",
			StatusTimeout: 5 * time.Second,
		},
		Service: config.Service{Timeout: 5 * time.Second},
	}

	if mutate != nil {
		mutate(cfg)
	}

	require.NoError(t, config.Save(k.configPath, cfg))
}

// stub installs an executable that records its argv and then runs body.
func (k *kiosk) stub(t *testing.T, name, body string) {
	t.Helper()

	script := fmt.Sprintf("#!/bin/sh\necho \"%s $*\" >> '%s'\n%s\n", name, k.callsFile, body)

	//nolint:gosec // Stubs must be executable.
	require.NoError(t, os.WriteFile(filepath.Join(k.bin, name), []byte(script), 0o755))
}

// stubOverlay installs a client reporting before until `up` is called, after afterwards.
func (k *kiosk) stubOverlay(t *testing.T, before, after string) {
	t.Helper()

	beforeFile := filepath.Join(k.dir, "status-before.json")
	afterFile := filepath.Join(k.dir, "status-after.json")
	marker := filepath.Join(k.dir, "logged-in")

	require.NoError(t, os.WriteFile(beforeFile, []byte(before), 0o600))
	require.NoError(t, os.WriteFile(afterFile, []byte(after), 0o600))

	k.stub(t, "tailscale", fmt.Sprintf(`case "$1" in
version) echo "1.76.6"; echo "  tailscale commit: 0000000" ;;
status) if [ -f '%[3]s' ]; then cat '%[2]s'; else cat '%[1]s'; fi ;;
up) touch '%[3]s' ;;
esac`, beforeFile, afterFile, marker))
}

// stubApt installs apt and apt-get; refreshExit is the exit code of apt-get update.
func (k *kiosk) stubApt(t *testing.T, listing string, refreshExit int) {
	t.Helper()

	k.stub(t, "apt", fmt.Sprintf(`echo %q >&2
echo "Listing... Done"
printf '%%s\n' %q`, aptWarning, listing))

	k.stub(t, "apt-get", fmt.Sprintf(`case "$1" in
update)
  if [ %[1]d -ne 0 ]; then echo "E: Could not get lock /var/lib/apt/lists/lock" >&2; exit %[1]d; fi
  echo "Reading package lists... Done" ;;
install) echo "Setting up radiantwave (2.1.0) ..." ;;
esac`, refreshExit))

	k.stub(t, "systemctl", "exit 0")
}

// storeIdentity creates the kiosk database holding the license key.
func (k *kiosk) storeIdentity(t *testing.T, licenseKey string) {
	t.Helper()

	type kioskConfig struct {
		gorm.Model

		Key   string `gorm:"uniqueIndex"`
		Value string
	}

	db, err := gorm.Open(sqlite.Open(k.database), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Table("configs").AutoMigrate(&kioskConfig{}))
	require.NoError(t, db.Table("configs").Create(&kioskConfig{Key: "license_key", Value: licenseKey}).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

// calls returns the recorded stub invocations.
func (k *kiosk) calls(t *testing.T) []string {
	t.Helper()

	data, err := os.ReadFile(k.callsFile)
	if os.IsNotExist(err) {
		return nil
	}

	require.NoError(t, err)

	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// log returns the updater log file contents.
func (k *kiosk) log(t *testing.T) string {
	t.Helper()

	data, err := os.ReadFile(k.logFile)
	require.NoError(t, err)

	return string(data)
}

func hasCall(calls []string, prefix string) bool {
	for _, call := range calls {
		if strings.HasPrefix(call, prefix) {
			return true
		}
	}

	return false
}

func indexOf(calls []string, prefix string) int {
	for i, call := range calls {
		if strings.HasPrefix(call, prefix) {
			return i
		}
	}

	return -1
}
