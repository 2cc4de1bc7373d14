// Package packages models the upgradable package listing of the system
// package manager and the rule deciding whether a package has an upgrade.
package packages
