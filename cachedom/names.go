// File: names.go
// Role: canonical contextual attribute-name builders shared by icache and
// dcache, so both cache kinds and every downstream reader (timing, ipet)
// agree on how CAC/CHMC/ACS attributes are named per level.

package cachedom

import "strconv"

// ICacheCACBase returns the base attribute name for instruction-cache CAC
// at level lvl ("icac@<lvl>"); contextualize with attrstore.CtxName.
func ICacheCACBase(lvl int) string { return "icac@" + strconv.Itoa(lvl) }

// ICacheCHMCBase returns the base attribute name for instruction-cache
// CHMC at level lvl.
func ICacheCHMCBase(lvl int) string { return "ichmc@" + strconv.Itoa(lvl) }

// DCacheCACBase returns the base attribute name for data-cache CAC at
// level lvl.
func DCacheCACBase(lvl int) string { return "dcac@" + strconv.Itoa(lvl) }

// DCacheCHMCBase returns the base attribute name for data-cache CHMC at
// level lvl.
func DCacheCHMCBase(lvl int) string { return "dchmc@" + strconv.Itoa(lvl) }

// DataBlockCountBase returns the base attribute name for the per-load
// touched-block-count attribute at level lvl.
func DataBlockCountBase(lvl int) string { return "dblkcount@" + strconv.Itoa(lvl) }

// DataAddressBase returns the base attribute name for a load's candidate
// block address set, written per context by the DATAADDRESS pass and
// consumed by dcache.
func DataAddressBase() string { return "daddr" }

// The Must/May/PS ACS{In,Out}Base builders name the ephemeral whole-cache ACS
// attributes attached to nodes during a fixed point; prefix distinguishes
// icache from dcache so the two analyses' private state never collides
// when both run at the same level.
func MustACSInBase(prefix string, lvl int) string  { return prefix + "mustIn@" + strconv.Itoa(lvl) }
func MustACSOutBase(prefix string, lvl int) string { return prefix + "mustOut@" + strconv.Itoa(lvl) }
func MayACSInBase(prefix string, lvl int) string   { return prefix + "mayIn@" + strconv.Itoa(lvl) }
func MayACSOutBase(prefix string, lvl int) string  { return prefix + "mayOut@" + strconv.Itoa(lvl) }
func PSACSInBase(prefix string, lvl int) string    { return prefix + "psIn@" + strconv.Itoa(lvl) }
func PSACSOutBase(prefix string, lvl int) string   { return prefix + "psOut@" + strconv.Itoa(lvl) }

// AgeAtClassificationBase names the optional "age at classification"
// attribute recorded on an instruction when a level's keep_age flag is set.
func AgeAtClassificationBase(prefix string, lvl int) string {
	return prefix + "ageAtClass@" + strconv.Itoa(lvl)
}
