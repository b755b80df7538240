// Package promsink provides a sink that counts log traffic in Prometheus
// collectors instead of storing the messages.
//
// The collectors are registered when the sink is opened and unregistered
// when it is closed, so registering the sink with a dispatcher is enough
// to expose ulog_messages_total and ulog_message_bytes_total.
package promsink
