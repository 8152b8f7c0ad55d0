// Package normalize reshapes cached rows into the views callers consume.
//
// Two transforms run after every event/market read, in this order:
//   - days-to-resolution (dtr) from an end-date column, dropping rows whose
//     date is the Unknown sentinel or cannot be parsed
//   - list-column decoding for columns holding string-encoded lists
package normalize
