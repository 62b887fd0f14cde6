// Package addrline maps binary addresses back to source locations by
// shelling out to addr2line. It is an external collaborator of the
// orchestrator's CODELINE pass and is never consulted by the analyses
// themselves.
package addrline
