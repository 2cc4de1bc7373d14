package updater

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"radiantwavetech.com/radiantwave-updater/internal/config"
	domain "radiantwavetech.com/radiantwave-updater/internal/domain/packages"
	"radiantwavetech.com/radiantwave-updater/internal/domain/run"
	"radiantwavetech.com/radiantwave-updater/internal/logger"
	"radiantwavetech.com/radiantwave-updater/internal/metrics"
	"radiantwavetech.com/radiantwave-updater/internal/repository/identity"
	"radiantwavetech.com/radiantwave-updater/internal/service/common"
	"radiantwavetech.com/radiantwave-updater/internal/service/connectivity"
	"radiantwavetech.com/radiantwave-updater/internal/service/overlay"
	"radiantwavetech.com/radiantwave-updater/internal/service/packages"
	"radiantwavetech.com/radiantwave-updater/internal/service/reloader"
	"radiantwavetech.com/radiantwave-updater/internal/version"
)

// separator closes the log of every pass.
const separator = "------------------------------------------------------------"

var errOptionsNotSet = errors.New("options are not set")

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// Debug forces debug logging regardless of the configured level.
	Debug bool
	// Clock times the pass; the real clock when nil.
	Clock clockwork.Clock
}

// Run executes one maintenance pass and is the public entry point for the CLI.
// The error is set only when the pass could not start; the outcome of a pass
// that ran is reported through run.Outcome alone.
func Run(ctx context.Context, opts *Options) (run.Outcome, error) {
	if opts == nil {
		return run.Failure, errOptionsNotSet
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return run.Failure, err
	}

	secrets, secretsErr := config.LoadSecrets(cfg.Overlay.AuthKeyFile)

	log, closeLog, logErr := newLogger(cfg, opts.Debug)

	defer func() {
		_ = log.Sync()

		closeLog()
	}()

	ctx = logger.ToContext(ctx, log)
	ctx = logger.WithName(ctx, "radiantwave-updater")
	ctx = logger.WithKV(ctx, "run_id", uuid.NewString())

	if logErr != nil {
		logger.WarnKV(ctx, "Log file unavailable, logging to console only", "error", logErr)
	}

	if secretsErr != nil {
		// Only the overlay login needs the secrets; it fails on its own without them.
		logger.WarnKV(ctx, "Secrets unavailable, continuing without overlay auth key",
			"auth_key_file", cfg.Overlay.AuthKeyFile, "error", secretsErr)

		secrets = &config.Secrets{}
	}

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	recorder := metrics.NewRecorder(clock)

	logBanner(ctx, cfg)

	runner := common.NewExecRunner(common.WithEscalation(cfg.Escalation()))
	outcome := Assemble(cfg, secrets, runner, recorder).Run(ctx)
	elapsed := recorder.Finish(outcome)

	logger.InfoKV(ctx, "Maintenance run finished",
		"outcome", outcome,
		"exit_code", outcome.ExitCode(),
		"duration", elapsed)
	logger.Info(ctx, separator)

	recorder.Flush(ctx, cfg.MetricsFile)

	return outcome, nil
}

// Assemble wires the collaborators described by cfg around runner.
func Assemble(
	cfg *config.Config,
	secrets *config.Secrets,
	runner common.Runner,
	recorder *metrics.Recorder,
) *Orchestrator {
	identities := identity.NewSQLiteRepository(cfg.Identity.Database, cfg.Identity.Key)

	var reloadOpts []reloader.Option
	if cfg.Service.Process != "" {
		reloadOpts = append(reloadOpts, reloader.WithProcessCheck(cfg.Service.Process))
	}

	return NewOrchestrator(
		Plan{
			Package:  cfg.Packages.Name,
			Unit:     cfg.Service.Unit,
			Overlay:  cfg.Overlay.IsEnabled(),
			Packages: cfg.Packages.IsEnabled(),
			Service:  cfg.Service.IsEnabled(),
		},
		Dependencies{
			Prober:  connectivity.NewProber(cfg.Connectivity.Host, cfg.Connectivity.Port, cfg.Connectivity.Timeout),
			Overlay: overlay.NewManager(runner, identities, OverlaySettings(cfg, secrets)),
			Packages: packages.NewManager(runner, domain.MatchMode(cfg.Packages.MatchMode), packages.Timeouts{
				Refresh: cfg.Packages.RefreshTimeout,
				Query:   cfg.Packages.QueryTimeout,
				Install: cfg.Packages.InstallTimeout,
			}),
			Reloader: reloader.New(runner, cfg.Service.Timeout, reloadOpts...),
			Recorder: recorder,
		},
	)
}

// OverlaySettings maps the overlay section and the provisioned auth key.
func OverlaySettings(cfg *config.Config, secrets *config.Secrets) overlay.Settings {
	settings := overlay.Settings{
		Binary:           cfg.Overlay.Binary,
		InstallScriptURL: cfg.Overlay.InstallScriptURL,
		LoginServer:      cfg.Overlay.LoginServer,
		Operator:         cfg.Overlay.Operator,
		StatusTimeout:    cfg.Overlay.StatusTimeout,
		LoginTimeout:     cfg.Overlay.LoginTimeout,
		InstallTimeout:   cfg.Overlay.InstallTimeout,
	}

	if secrets != nil {
		settings.AuthKey = secrets.OverlayAuthKey
	}

	return settings
}

// newLogger builds the console and file logger. When the file cannot be
// opened the console logger is returned together with the error.
func newLogger(cfg *config.Config, debug bool) (*zap.SugaredLogger, func(), error) {
	level, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		level = zap.InfoLevel
	}

	var options []zap.Option
	if debug {
		options = append(options, logger.WithLevel(zap.DebugLevel))
	}

	log, closeFile, err := logger.NewWithFile(level, cfg.LogFile, options...)
	if err != nil {
		return logger.New(level, options...), func() {}, err
	}

	return log, closeFile, nil
}

func logBanner(ctx context.Context, cfg *config.Config) {
	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect user and host", "error", err)

		actor = &common.Actor{}
	}

	logger.InfoKV(ctx, "Maintenance run started",
		"version", version.Full(),
		"user", actor.Username,
		"host", actor.Hostname,
		"log_file", cfg.LogFile,
		"config", fmt.Sprintf("overlay=%t packages=%t service=%t",
			cfg.Overlay.IsEnabled(), cfg.Packages.IsEnabled(), cfg.Service.IsEnabled()))
}
