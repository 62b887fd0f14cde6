// Package cachedom implements the three abstract-interpretation cache
// domains the analysis is built on (Must, May, and Persistence) plus the
// shared classification vocabulary (CAC, CHMC) and the replacement-policy
// width table that narrows the Must/PS domains for non-LRU policies.
//
// icache and dcache drive fixed points over these domains; cachedom itself
// never looks at a program.Program; it is pure lattice arithmetic over
// cache-line addresses.
package cachedom
