// Command ulog relays text through configured uLog sinks and inspects sink
// configurations.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
