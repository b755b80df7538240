// Package probesink provides a sink for debug-probe output such as ARM
// semihosting or RTT, where messages are written to a numbered channel of
// a probe connection.
//
// The probe transport is abstracted as a Channel. WriterChannel adapts any
// io.Writer, for example a TCP connection to a probe server.
package probesink
