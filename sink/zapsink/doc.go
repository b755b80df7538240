// Package zapsink provides a sink that forwards messages to a zap logger,
// so uLog output can join an existing zap pipeline.
//
// Entries are written through the logger's core, which means a FatalLevel
// message is recorded at zap's fatal level without exiting the process.
package zapsink
