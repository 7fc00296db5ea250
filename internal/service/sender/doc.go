// Package sender triggers an alert on a remote node from the host side of
// the serial line and waits for the node's acknowledgment.
package sender
