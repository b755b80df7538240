package sink

import (
	"github.com/philipp01105/ulog/core"
	"github.com/philipp01105/ulog/formatter"
)

// Flog formats a message prefixed with the sink name ("[name] -- ") and
// logs it directly on s, bypassing any dispatcher. Output longer than
// core.MaxMessageLength is truncated and still logged.
func Flog(s Sink, level core.Level, format string, args ...interface{}) error {
	var buf formatter.Buffer
	formatter.WriteNamePrefix(&buf, s.Name())
	buf.Printf(format, args...)
	return s.Log(level, buf.Bytes())
}
