// Package config defines the node settings and provides helpers to load,
// validate and save them in YAML format.
//
// A Config is read once at startup and treated as immutable afterwards.
// Defaults reproduce the reference device: 115200 baud, GPIO8, a 5s alert
// cycle toggling every 200ms.
package config
