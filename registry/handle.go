package registry

import "fmt"

// Handle is an opaque reference to a registered sink
type Handle struct {
	index uint16
	gen   uint32
}

// None is the zero Handle. It never resolves to a slot.
var None = Handle{}

// IsNone reports whether h is the zero Handle
func (h Handle) IsNone() bool {
	return h.gen == 0
}

// String returns a short, stable description of the handle
func (h Handle) String() string {
	if h.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%d#%d", h.index, h.gen)
}
