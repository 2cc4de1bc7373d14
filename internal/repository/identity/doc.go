// Package identity reads the device identity (the license key) from the
// SQLite database maintained by the kiosk application.
//
// The lookup never fails: a missing file, a missing row, an empty value and
// any storage error all read as "no identity".
package identity
