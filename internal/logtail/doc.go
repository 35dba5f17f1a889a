// Package logtail reads the tail of hireboard's own log file for the board's
// log panel.
//
// Read returns the last N lines using a ring buffer, so memory stays
// O(maxLines) regardless of file size; a non-positive N returns the whole
// file. A missing file is not an error.
//
// Parse understands both logrus formatters the app can be configured with:
// the text formatter's key=value pairs and the JSON formatter's objects. The
// fields the board cares about are lifted out (time, level, component, op,
// msg, error); anything else is kept only in Raw. Tail combines the two and
// drops entries more verbose than a minimum level.
package logtail
