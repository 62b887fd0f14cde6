// Package dcache implements the data-cache analysis (component C7): the
// same per-level Must/Persistence/May fixed point as package icache, but
// restricted to load instructions and driven by each load's per-context
// set of candidate block addresses instead of a single code address.
//
// Differences from the instruction-cache analysis:
//   - only loads participate; stores never update the modeled
//     write-through cache, and every non-load receives CHMC=AU at every
//     level;
//   - abstract-cache updates are set-valued (cachedom.UpdateBlocks): a
//     load that may touch several blocks updates every touched cache set
//     independently;
//   - after classification, each load carries a per-level block-count
//     attribute (cachedom.DataBlockCountBase) read by the IPET builder to
//     bound how often the access can reach the next level;
//   - only LRU replacement is supported; any other policy is rejected
//     before the fixed point starts.
package dcache
