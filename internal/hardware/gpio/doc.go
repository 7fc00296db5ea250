// Package gpio provides the digital output line driven during an alert
// cycle: a periph.io backed pin for real hardware and a Simulated line for
// dry runs and tests.
package gpio
