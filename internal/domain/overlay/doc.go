// Package overlay contains the domain types describing the device's membership
// in the overlay network: the status snapshot reported by the client and the
// membership states the updater reconciles through.
package overlay
