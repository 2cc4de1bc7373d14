// Package run defines the outcome of one maintenance run.
package run
