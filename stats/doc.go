// Package stats is the cache-statistics collaborator: it aggregates the
// per-instruction hit/miss classifications the cache analyses wrote into
// per-level counts, one count per (instruction, context) pair; solved block
// frequencies are not used.
// A report is purely informational; nothing downstream reads it.
package stats
