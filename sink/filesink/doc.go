// Package filesink provides a sink that appends messages to a file with
// optional size and interval based rotation.
//
// The file is opened when the sink is registered and closed when it is
// removed. Writes go through a buffered writer; Flush pushes them to the
// file and syncs it to stable storage.
//
// On rotation the current file is renamed to "<name>.<timestamp>" and a
// new file is opened. With MaxBackups set, the oldest backups beyond
// that count are deleted.
package filesink
