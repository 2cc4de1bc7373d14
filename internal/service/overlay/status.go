package overlay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domain "radiantwavetech.com/radiantwave-updater/internal/domain/overlay"
)

var errNoBackendState = errors.New("status has no backend state")

// statusMessage is the subset of `status --json` the updater reads.
type statusMessage struct {
	BackendState string       `json:"BackendState"`
	Self         *peerMessage `json:"Self"`
	Health       []string     `json:"Health"`
}

type peerMessage struct {
	HostName     string   `json:"HostName"`
	DNSName      string   `json:"DNSName"`
	Online       bool     `json:"Online"`
	TailscaleIPs []string `json:"TailscaleIPs"`
}

// parseStatus converts client JSON into the domain Status.
func parseStatus(raw string) (*domain.Status, error) {
	var message statusMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &message); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}

	if message.BackendState == "" {
		return nil, errNoBackendState
	}

	status := &domain.Status{
		BackendState: domain.BackendState(message.BackendState),
		Health:       message.Health,
	}

	if self := message.Self; self != nil {
		status.HostName = self.HostName
		status.DNSName = strings.TrimSuffix(self.DNSName, ".")
		status.Online = self.Online
		status.Addresses = self.TailscaleIPs
	}

	return status, nil
}
