// Package updater runs one maintenance pass on a kiosk.
//
// A pass gates on connectivity, reconciles the overlay network client
// (best-effort), upgrades the application package through apt (fatal on
// failure) and restarts the foreground unit (soft on failure). The produced
// run.Outcome maps onto the process exit code.
package updater
