// Package xmlio is the external (de)serialization collaborator: it reads
// and writes the program CFG XML and parses the analysis configuration
// XML, including its ordered pass list.
//
// The program format is structural: CFGs with their nodes, edges, loops
// and instructions, entity references (a call node's callee) serialized
// as CFG name strings and resolved in a second pass once every CFG is
// known. A program round-trips through SaveProgram/LoadProgram.
//
// Configuration structs carry validator tags; LoadConfig rejects an
// unknown target, a missing or duplicated MEMORY element, an unknown
// replacement policy, and cache level lists that do not cover 1..N
// contiguously, before any analysis runs.
package xmlio
