// Package alert contains the core domain types of the alert node.
//
// It defines the recognized command and acknowledgment tokens, output
// levels, immutable cycle Settings and the Report produced by one alert
// cycle.
package alert
