//go:build !linux

package serialsink

import "os"

const openFlags = os.O_RDWR

func supportedBaud(baud int) bool {
	return baud > 0
}

func configure(int, int) error {
	return nil
}

func drain(int) error {
	return nil
}
