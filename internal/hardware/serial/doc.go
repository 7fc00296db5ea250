// Package serial opens the node's serial channel and splits its byte stream
// into lines.
//
// The port is opened 8N1 with a read timeout, so that one Read either
// returns the bytes already received or gives up after the timeout. The
// LineReader builds on that to offer a polling, non-blocking line API.
package serial
