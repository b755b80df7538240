package guard

import "runtime"

var goroutinePrefix = []byte("goroutine ")

// goid returns the id of the calling goroutine, parsed from the header
// line of its stack trace ("goroutine 18 [running]:").
func goid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	if len(b) <= len(goroutinePrefix) {
		return 0
	}
	b = b[len(goroutinePrefix):]

	var id int64
	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}
