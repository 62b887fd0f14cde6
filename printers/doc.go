// Package printers holds the external pretty-printing collaborators: a
// DOT renderer for graph viewers, a plain-text dump for quick
// inspection, and an HTML report that can colorize blocks by their
// solved execution frequency.
//
// Printers only read the program and its attributes; they never mutate
// analysis state.
package printers
