// Package config defines the updater settings and provides helpers to load,
// validate and save them in YAML format.
//
// Secrets never live in the YAML file: LoadSecrets reads them from the
// environment, optionally seeded from an env file provisioned at deploy time.
package config
