// Package logger provides a small wrapper around zap to offer:
//   - a sugared logger with a console encoder, optionally mirrored to an
//     append-only log file,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing utilities,
//   - convenience functions (Infof, ErrorKV, SuccessKV, etc.).
//
// The logger is built once by the CLI and travels in the context of every
// operation. Code that receives a context without a logger logs nowhere.
package logger
