// Package common holds helpers shared by several services.
//
// It provides the single instance guard that keeps two node processes from
// driving the same pin and serial line.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
