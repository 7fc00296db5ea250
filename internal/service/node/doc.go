// Package node implements the command listener and alert driver.
//
// The Driver polls the serial channel for lines, runs a blocking alert
// cycle when the ALERT command arrives and acknowledges it with ALERT_ACK
// once the cycle completes. Everything runs on the calling goroutine; while
// a cycle is in progress no input is read.
package node
