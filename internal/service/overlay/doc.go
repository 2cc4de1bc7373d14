// Package overlay keeps the kiosk a member of the overlay network.
//
// Every operation is idempotent and degrades to "log and continue": overlay
// connectivity supports remote fleet management but must never stand in the
// way of keeping the kiosk software current. The observed membership is
// tracked by a small state machine:
//
//	not_installed -> logged_out -> wrong_identity -> correct_identity
//
// with back edges when the client reports a logout or a hostname drift.
package overlay
