package overlay

// Membership is the state of the device in the overlay network.
type Membership string

// Membership states, from least to most reconciled.
const (
	NotInstalled    Membership = "not_installed"
	LoggedOut       Membership = "logged_out"
	WrongIdentity   Membership = "wrong_identity"
	CorrectIdentity Membership = "correct_identity"
)

// Memberships lists every state in reconciliation order.
func Memberships() []Membership {
	return []Membership{NotInstalled, LoggedOut, WrongIdentity, CorrectIdentity}
}
