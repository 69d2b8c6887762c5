// Package logtail reads the end of Circle's log file for the log view.
//
// Read uses a ring buffer so only the last maxLines are kept in memory no
// matter how large the file grows. A missing file is not an error; the log
// simply has nothing to show yet.
//
// The log is written by zerolog as one JSON object per line. Parse turns a
// line into an Entry with the fields the view shows (time, level, the
// component/domain that logged it, message and error). Lines that are not
// JSON, such as a panic trace, are passed through verbatim.
package logtail
