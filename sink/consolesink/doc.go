// Package consolesink provides a sink that writes messages to an
// io.Writer, by default os.Stdout.
//
// Messages are written verbatim unless a formatter.Config asks for
// decoration (timestamp, level tag, trailing newline, ANSI color). Color
// can follow whether the writer is a terminal:
//
//	s := consolesink.New(consolesink.Config{
//	    Format: formatter.Config{LevelTag: true, Newline: true},
//	    Color:  consolesink.ColorAuto,
//	})
package consolesink
