// Package serialsink provides a sink that writes messages to a serial
// tty device such as a UART.
//
// On Linux the device is put into raw 8N1 mode at the configured baud
// rate when the sink is opened, and Flush waits until the driver has
// transmitted all queued output. On other platforms the device is used
// as is.
package serialsink
