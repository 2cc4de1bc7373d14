// Package common holds helpers shared by several services.
//
// It runs external processes with explicit timeouts and an optional privilege
// escalation prefix, classifies their failures, and detects the acting
// user and host for the run banner.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
