package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"

	"radiantwavetech.com/radiantwave-updater/internal/config"
	domain "radiantwavetech.com/radiantwave-updater/internal/domain/overlay"
	"radiantwavetech.com/radiantwave-updater/internal/logger"
	"radiantwavetech.com/radiantwave-updater/internal/repository/identity"
	"radiantwavetech.com/radiantwave-updater/internal/service/common"
	"radiantwavetech.com/radiantwave-updater/internal/service/overlay"
)

const (
	absent     = "(absent)"
	maxColumns = 80
)

var errOptionsNotSet = errors.New("options are not set")

// Options are inputs accepted by the status command.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// Out receives the table.
	Out io.Writer
	// Runner executes the overlay client; an unprivileged ExecRunner when nil.
	Runner common.Runner
}

// Report is the read-only view of a kiosk.
type Report struct {
	Identity   string
	Membership domain.Membership
	Status     *domain.Status
	Package    string
	Unit       string
}

// Run collects a Report and prints it as a table.
func Run(ctx context.Context, opts *Options) error {
	if opts == nil || opts.Out == nil {
		return errOptionsNotSet
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	runner := opts.Runner
	if runner == nil {
		// Never escalate: status must work for an unprivileged operator.
		runner = common.NewExecRunner()
	}

	report := Collect(ctx, cfg, runner)

	if _, err = fmt.Fprintln(opts.Out, Render(report)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// Collect reads the identity and the overlay client state.
func Collect(ctx context.Context, cfg *config.Config, runner common.Runner) *Report {
	identities := identity.NewSQLiteRepository(cfg.Identity.Database, cfg.Identity.Key)

	report := &Report{
		Identity: absent,
		Package:  cfg.Packages.Name,
		Unit:     cfg.Service.Unit,
	}

	if value, ok := identities.Get(ctx); ok {
		report.Identity = value
	}

	manager := overlay.NewManager(runner, identities, overlay.Settings{
		Binary:        cfg.Overlay.Binary,
		StatusTimeout: cfg.Overlay.StatusTimeout,
	})

	report.Membership, report.Status = manager.Inspect(ctx)

	logger.DebugKV(ctx, "Kiosk inspected", "membership", report.Membership)

	return report
}

// Render formats the report as a two-column table.
func Render(report *Report) string {
	table := uitable.New()
	table.MaxColWidth = maxColumns
	table.Wrap = true

	table.AddRow("IDENTITY:", report.Identity)
	table.AddRow("MEMBERSHIP:", report.Membership)

	if status := report.Status; status != nil {
		table.AddRow("BACKEND:", status.BackendState)
		table.AddRow("HOSTNAME:", orAbsent(status.HostName))
		table.AddRow("DNS NAME:", orAbsent(status.DNSName))
		table.AddRow("ONLINE:", status.Online)
		table.AddRow("ADDRESSES:", orAbsent(strings.Join(status.Addresses, ", ")))
		table.AddRow("HEALTH:", orAbsent(strings.Join(status.Health, "; ")))
	} else {
		table.AddRow("BACKEND:", absent)
	}

	table.AddRow("PACKAGE:", report.Package)
	table.AddRow("UNIT:", report.Unit)

	return table.String()
}

func orAbsent(s string) string {
	if s == "" {
		return absent
	}

	return s
}
