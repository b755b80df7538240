package asyncsink

import (
	"fmt"
	"strings"

	"github.com/philipp01105/ulog/core"
)

// OverflowPolicy defines how to handle a full queue
type OverflowPolicy int

const (
	// DropNewest drops the incoming message when the queue is full
	DropNewest OverflowPolicy = iota
	// DropOldest drops the oldest queued message when the queue is full
	DropOldest
	// Block blocks the caller until space is available (with timeout)
	Block
)

// String returns the string representation of the policy
func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// ParsePolicy converts a policy name such as "drop_oldest" or "DropOldest"
// to an OverflowPolicy
func ParsePolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "")) {
	case "dropnewest", "drop":
		return DropNewest, nil
	case "dropoldest":
		return DropOldest, nil
	case "block":
		return Block, nil
	}
	return DropNewest, fmt.Errorf("%w: unknown overflow policy %q", core.ErrFail, s)
}

// DefaultLevelPolicy returns the default level-based overflow policies
func DefaultLevelPolicy() map[core.Level]OverflowPolicy {
	return map[core.Level]OverflowPolicy{
		core.TraceLevel: DropNewest,
		core.DebugLevel: DropNewest,
		core.InfoLevel:  DropNewest,
		core.WarnLevel:  DropNewest,
		core.ErrorLevel: Block,
		core.FatalLevel: Block,
	}
}
