// Package version exposes build metadata of alert-node.
//
// Version, Commit and BuildTime are injected via ldflags.
package version
