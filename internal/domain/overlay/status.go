package overlay

import "strings"

// BackendState is the connection state reported by the overlay client.
type BackendState string

// Backend states reported by the client. Only BackendRunning means connected.
const (
	BackendNoState          BackendState = "NoState"
	BackendNeedsLogin       BackendState = "NeedsLogin"
	BackendNeedsMachineAuth BackendState = "NeedsMachineAuth"
	BackendStopped          BackendState = "Stopped"
	BackendStarting         BackendState = "Starting"
	BackendRunning          BackendState = "Running"
)

// Status is one snapshot of the overlay client state.
// It is queried fresh whenever needed and never kept beyond one operation.
type Status struct {
	// BackendState is the client connection state.
	BackendState BackendState
	// HostName is the name this device advertises.
	HostName string
	// DNSName is the fully qualified name assigned by the coordination server.
	DNSName string
	// Online reports whether the coordination server sees the device.
	Online bool
	// Addresses are the overlay addresses assigned to the device, in client order.
	Addresses []string
	// Health lists the client warnings, in client order.
	Health []string
}

// IsLoggedIn reports whether the backend is fully connected.
func (s *Status) IsLoggedIn() bool {
	return s != nil && s.BackendState == BackendRunning
}

// HasHostName reports whether the advertised hostname equals name.
// The client lower-cases hostnames, so the comparison ignores case.
func (s *Status) HasHostName(name string) bool {
	return s != nil && strings.EqualFold(strings.TrimSpace(s.HostName), strings.TrimSpace(name))
}
