// Package packages keeps one system package up to date through apt: refresh
// the package indices, check whether the package has a pending upgrade and
// install only that upgrade.
package packages
