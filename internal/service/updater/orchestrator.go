package updater

import (
	"context"
	"runtime/debug"

	"radiantwavetech.com/radiantwave-updater/internal/domain/overlay"
	"radiantwavetech.com/radiantwave-updater/internal/domain/run"
	"radiantwavetech.com/radiantwave-updater/internal/logger"
	"radiantwavetech.com/radiantwave-updater/internal/metrics"
)

// Step names recorded in metrics.
const (
	StepConnectivity   = "connectivity"
	StepOverlayInstall = "overlay_install"
	StepOverlayConnect = "overlay_connect"
	StepRefresh        = "refresh"
	StepInstall        = "install"
	StepRestart        = "restart"
)

// Prober reports whether the network is reachable.
type Prober interface {
	Probe(ctx context.Context) bool
}

// OverlayManager reconciles the overlay network client.
type OverlayManager interface {
	EnsureInstalled(ctx context.Context) bool
	EnsureConnected(ctx context.Context) bool
	SyncHostname(ctx context.Context)
	Membership() overlay.Membership
}

// PackageUpdater refreshes, checks and installs package upgrades.
type PackageUpdater interface {
	RefreshPackageLists(ctx context.Context) bool
	CheckUpgradeAvailable(ctx context.Context, name string) bool
	InstallUpgrade(ctx context.Context, name string) bool
}

// ServiceReloader restarts a service unit.
type ServiceReloader interface {
	Restart(ctx context.Context, unit string) bool
}

// Plan selects what a pass does.
type Plan struct {
	// Package is kept up to date.
	Package string
	// Unit is restarted after an upgrade.
	Unit string

	Overlay  bool
	Packages bool
	Service  bool
}

// Dependencies are the collaborators of a pass.
type Dependencies struct {
	Prober   Prober
	Overlay  OverlayManager
	Packages PackageUpdater
	Reloader ServiceReloader
	// Recorder is optional.
	Recorder *metrics.Recorder
}

// Orchestrator executes the maintenance policy in a fixed order.
type Orchestrator struct {
	plan Plan
	deps Dependencies
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(plan Plan, deps Dependencies) *Orchestrator {
	return &Orchestrator{
		plan: plan,
		deps: deps,
	}
}

// Run executes one pass. A panic in any step ends the pass with run.Failure.
func (o *Orchestrator) Run(ctx context.Context) (outcome run.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorKV(ctx, "Maintenance step panicked", "panic", r, "stack", string(debug.Stack()))

			outcome = run.Failure
		}
	}()

	return o.run(ctx)
}

func (o *Orchestrator) run(ctx context.Context) run.Outcome {
	reachable := o.deps.Prober.Probe(ctx)
	o.record(StepConnectivity, reachable)

	if !reachable {
		logger.Warn(ctx, "Network unreachable, skipping this run")
		return run.SuccessNoop
	}

	if o.plan.Overlay {
		o.reconcileOverlay(ctx)
	} else {
		logger.Info(ctx, "Overlay step disabled")
	}

	if !o.plan.Packages {
		logger.Info(ctx, "Package step disabled")
		return run.SuccessNoop
	}

	return o.upgrade(ctx)
}

// reconcileOverlay never affects the outcome.
func (o *Orchestrator) reconcileOverlay(ctx context.Context) {
	ctx = logger.WithName(ctx, "overlay")

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorKV(ctx, "Overlay step panicked, continuing without it",
				"panic", r, "stack", string(debug.Stack()))
		}

		if o.deps.Recorder != nil {
			o.deps.Recorder.Membership(o.deps.Overlay.Membership())
		}
	}()

	installed := o.deps.Overlay.EnsureInstalled(ctx)
	o.record(StepOverlayInstall, installed)

	if !installed {
		logger.Warn(ctx, "Overlay client unavailable, continuing without it")
		return
	}

	connected := o.deps.Overlay.EnsureConnected(ctx)
	o.record(StepOverlayConnect, connected)

	if !connected {
		logger.Warn(ctx, "Overlay not connected, continuing without it")
		return
	}

	o.deps.Overlay.SyncHostname(ctx)
}

func (o *Orchestrator) upgrade(ctx context.Context) run.Outcome {
	pkgCtx := logger.WithName(ctx, "packages")

	refreshed := o.deps.Packages.RefreshPackageLists(pkgCtx)
	o.record(StepRefresh, refreshed)

	if !refreshed {
		logger.Error(pkgCtx, "Package index refresh failed, aborting run")
		return run.Failure
	}

	if !o.deps.Packages.CheckUpgradeAvailable(pkgCtx, o.plan.Package) {
		logger.InfoKV(pkgCtx, "Nothing to do, package is up to date", "package", o.plan.Package)
		return run.SuccessNoop
	}

	installed := o.deps.Packages.InstallUpgrade(pkgCtx, o.plan.Package)
	o.record(StepInstall, installed)

	if !installed {
		logger.ErrorKV(pkgCtx, "Package upgrade failed, aborting run", "package", o.plan.Package)
		return run.Failure
	}

	if !o.plan.Service {
		logger.Info(ctx, "Service step disabled, skipping restart")
		return run.Success
	}

	svcCtx := logger.WithName(ctx, "service")

	restarted := o.deps.Reloader.Restart(svcCtx, o.plan.Unit)
	o.record(StepRestart, restarted)

	if !restarted {
		logger.WarnKV(svcCtx, "Upgrade installed but the service was not restarted", "unit", o.plan.Unit)
	}

	return run.Success
}

func (o *Orchestrator) record(step string, ok bool) {
	if o.deps.Recorder != nil {
		o.deps.Recorder.Step(step, ok)
	}
}
