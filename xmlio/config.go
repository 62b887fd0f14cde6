// File: config.go
// Role: LoadConfig: decode, struct-validate, then cross-check the cache
// hierarchy shape.

package xmlio

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/wcet-estimator/wcet/cachedom"
)

var validate = validator.New()

// LoadConfig decodes and validates one configuration document.
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := xml.NewDecoder(r).Decode(&cfg); err != nil {
		if errors.Is(err, ErrUnknownPass) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrBadConfig, err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadConfig, err)
	}
	if err := checkCacheLevels(cfg.Architecture.Caches); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// checkCacheLevels enforces that each hierarchy's declared levels cover
// 1..N contiguously and that the instruction and data hierarchies have
// the same depth when both are declared.
func checkCacheLevels(caches []Cache) error {
	var ilevels, dlevels []int
	for _, c := range caches {
		if c.Instruction() {
			ilevels = append(ilevels, c.Level)
		} else {
			dlevels = append(dlevels, c.Level)
		}
	}
	for _, levels := range [][]int{ilevels, dlevels} {
		sort.Ints(levels)
		for i, l := range levels {
			if l != i+1 {
				return fmt.Errorf("%w: cache levels must cover 1..N contiguously", ErrBadConfig)
			}
		}
	}
	if len(ilevels) > 0 && len(dlevels) > 0 && len(ilevels) != len(dlevels) {
		return fmt.Errorf("%w: icache and dcache level counts differ", ErrBadConfig)
	}
	return nil
}

// CachesFor returns the declared levels of one hierarchy in level order.
func (c *Config) CachesFor(instruction bool) []Cache {
	var out []Cache
	for _, cache := range c.Architecture.Caches {
		if cache.Instruction() == instruction {
			out = append(out, cache)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// PolicyOf maps a declaration's replacement_policy attribute to the
// cachedom policy; the empty string defaults to LRU.
func PolicyOf(c Cache) (cachedom.ReplacementPolicy, error) {
	switch c.Policy {
	case "", "LRU":
		return cachedom.PolicyLRU, nil
	case "PLRU":
		return cachedom.PolicyPLRU, nil
	case "MRU":
		return cachedom.PolicyMRU, nil
	case "FIFO":
		return cachedom.PolicyFIFO, nil
	case "RANDOM":
		return cachedom.PolicyRandom, nil
	default:
		return 0, fmt.Errorf("%w: unknown replacement policy %q", ErrBadConfig, c.Policy)
	}
}
