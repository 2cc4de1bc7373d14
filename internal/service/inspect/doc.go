// Package inspect prints what the updater knows about the kiosk without
// changing anything: device identity, overlay membership and client status.
package inspect
