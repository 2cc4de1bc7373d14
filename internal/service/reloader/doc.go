// Package reloader restarts the foreground kiosk session so the application
// picks up a freshly installed binary.
package reloader
