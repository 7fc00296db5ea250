// Package logger wraps zap for the alert node:
//   - a global sugared logger writing console output to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and adjustment,
//   - leveled helpers (Infof, WarnKV, etc.) that take a context.
//
// Standard output is never used so that a node attached to a terminal does
// not mix log lines with anything a host reads from the process.
package logger
