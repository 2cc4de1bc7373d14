package overlay

import (
	"context"

	"github.com/looplab/fsm"

	domain "radiantwavetech.com/radiantwave-updater/internal/domain/overlay"
	"radiantwavetech.com/radiantwave-updater/internal/logger"
)

// Membership events, named after what the client was observed doing.
const (
	eventInstalled       = "installed"
	eventUninstalled     = "uninstalled"
	eventLoggedIn        = "logged_in"
	eventLoggedOut       = "logged_out"
	eventIdentityMatched = "identity_matched"
	eventIdentityDrifted = "identity_drifted"
)

// maxSteps bounds a walk across the machine; it has four states.
const maxSteps = 4

func newMembership() *fsm.FSM {
	return fsm.NewFSM(
		string(domain.NotInstalled),
		fsm.Events{
			{Name: eventInstalled, Src: []string{string(domain.NotInstalled)}, Dst: string(domain.LoggedOut)},
			{Name: eventUninstalled, Src: []string{string(domain.LoggedOut)}, Dst: string(domain.NotInstalled)},
			{Name: eventLoggedIn, Src: []string{string(domain.LoggedOut)}, Dst: string(domain.WrongIdentity)},
			{
				Name: eventLoggedOut,
				Src:  []string{string(domain.WrongIdentity), string(domain.CorrectIdentity)},
				Dst:  string(domain.LoggedOut),
			},
			{Name: eventIdentityMatched, Src: []string{string(domain.WrongIdentity)}, Dst: string(domain.CorrectIdentity)},
			{Name: eventIdentityDrifted, Src: []string{string(domain.CorrectIdentity)}, Dst: string(domain.WrongIdentity)},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				logger.DebugKV(ctx, "Overlay membership changed", "event", e.Event, "from", e.Src, "to", e.Dst)
			},
		},
	)
}

func rank(m domain.Membership) int {
	for i, candidate := range domain.Memberships() {
		if candidate == m {
			return i
		}
	}

	return 0
}

// nextEvent returns the event moving one step from current toward target.
func nextEvent(current, target domain.Membership) (string, bool) {
	switch {
	case rank(target) > rank(current):
		switch current {
		case domain.NotInstalled:
			return eventInstalled, true
		case domain.LoggedOut:
			return eventLoggedIn, true
		case domain.WrongIdentity:
			return eventIdentityMatched, true
		case domain.CorrectIdentity:
		}
	case rank(target) < rank(current):
		switch current {
		case domain.CorrectIdentity:
			if target == domain.WrongIdentity {
				return eventIdentityDrifted, true
			}

			return eventLoggedOut, true
		case domain.WrongIdentity:
			return eventLoggedOut, true
		case domain.LoggedOut:
			return eventUninstalled, true
		case domain.NotInstalled:
		}
	}

	return "", false
}

// Membership returns the last observed membership state.
func (m *Manager) Membership() domain.Membership {
	return domain.Membership(m.membership.Current())
}

// reach walks the machine to target.
func (m *Manager) reach(ctx context.Context, target domain.Membership) {
	for i := 0; i < maxSteps; i++ {
		event, ok := nextEvent(m.Membership(), target)
		if !ok {
			return
		}

		if err := m.membership.Event(ctx, event); err != nil {
			logger.DebugKV(ctx, "Overlay membership transition rejected", "event", event, "error", err)
			return
		}
	}
}

// atLeast walks forward to target but never backward.
func (m *Manager) atLeast(ctx context.Context, target domain.Membership) {
	if rank(m.Membership()) < rank(target) {
		m.reach(ctx, target)
	}
}

// observe records what a fresh status says about the membership.
func (m *Manager) observe(ctx context.Context, status *domain.Status, desired string, known bool) {
	switch {
	case !status.IsLoggedIn():
		m.reach(ctx, domain.LoggedOut)
	case known && status.HasHostName(desired):
		m.reach(ctx, domain.CorrectIdentity)
	case known:
		m.reach(ctx, domain.WrongIdentity)
	default:
		m.atLeast(ctx, domain.WrongIdentity)
	}
}
