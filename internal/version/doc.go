// Package version exposes build metadata of the updater.
//
// Version, Commit and BuildTime are injected with -ldflags at package build
// time; local builds report development defaults.
package version
