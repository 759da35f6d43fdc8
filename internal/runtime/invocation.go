// Package runtime evaluates a resolved generator tree into Values. It owns
// the per-run state spec.md §4.2/§4.3 describe: the PRNG, the uniqueness
// memory, and the same_as reference pools.
package runtime

import (
	"time"

	"github.com/alfredjeanlab/synth/internal/schema"
	"github.com/alfredjeanlab/synth/internal/value"
)

// maxUniqueAttempts bounds rejection sampling for a `unique` node before it
// gives up with a uniqueness_exhausted error (spec.md §4.2).
const maxUniqueAttempts = 64

// MaxArrayLength bounds how large a single array node may draw, guarding
// against a runaway length generator (spec.md §4.1).
const MaxArrayLength = 1_000_000

// Invocation holds everything a run of the generator tree needs beyond the
// tree itself: uniqueness memory, same_as reference pools, and Now, the
// clock reading frozen for the run. date_time nodes do not read Now: their
// default end is the clock reading taken when the schema is parsed.
type Invocation struct {
	Now time.Time

	uniqueSeen map[string]map[string]bool
	pools      map[string][]value.Value
	remaining  map[string][]int
	idCounters map[string]int64

	// record holds every node value produced so far within the record
	// currently in flight, keyed by dotted path. It backs same_as's
	// same-record resolution mode (spec.md §4.3): a reference to a node in
	// the referrer's own collection reads directly from here instead of
	// sampling pools. beginRecord resets it between records.
	record map[string]value.Value
}

// NewInvocation starts a fresh invocation with now frozen at construction
// time, per spec.md §4.2's requirement that a single run see one consistent
// clock reading.
func NewInvocation(now time.Time) *Invocation {
	return &Invocation{
		Now:        now,
		uniqueSeen: make(map[string]map[string]bool),
		pools:      make(map[string][]value.Value),
		remaining:  make(map[string][]int),
		idCounters: make(map[string]int64),
		record:     make(map[string]value.Value),
	}
}

// beginRecord clears the same-record scratch state, so a reference never
// sees a sibling value left over from the previous record.
func (inv *Invocation) beginRecord() {
	inv.record = make(map[string]value.Value)
}

func (inv *Invocation) seenSet(path string) map[string]bool {
	s, ok := inv.uniqueSeen[path]
	if !ok {
		s = make(map[string]bool)
		inv.uniqueSeen[path] = s
	}
	return s
}

func (inv *Invocation) nextID(path string, startAt int64) int64 {
	v, ok := inv.idCounters[path]
	if !ok {
		v = startAt
	} else {
		v++
	}
	inv.idCounters[path] = v
	return v
}

// CollectPools walks n's generated value v and records every addressable
// sub-value under its node path, so that a later collection's same_as
// reference can sample from the full pool of already-generated values
// (spec.md §4.3's precomputed resolution mode, SPEC_FULL.md §3).
func (inv *Invocation) CollectPools(n *schema.Node, v value.Value) {
	if n == nil {
		return
	}
	inv.pools[n.Path] = append(inv.pools[n.Path], v)
	switch n.Kind {
	case schema.KindObject:
		for _, f := range n.Object.Fields {
			fv, ok := v.Get(f.Name)
			if ok {
				inv.CollectPools(f.Node, fv)
			}
		}
	case schema.KindArray:
		for _, elem := range v.Array {
			inv.CollectPools(n.Array.Content, elem)
		}
	}
}

// samplePool draws one value from target's pool, uniformly with
// replacement, or without replacement (scoped per referrerPath) when the
// referrer itself requires uniqueness.
func (inv *Invocation) samplePool(src randIntn, target *schema.Node, referrerPath string, withoutReplacement bool) (value.Value, bool) {
	pool := inv.pools[target.Path]
	if len(pool) == 0 {
		return value.Value{}, false
	}
	if !withoutReplacement {
		return pool[src.IntRangeInt(0, len(pool))], true
	}

	remaining, ok := inv.remaining[referrerPath]
	if !ok {
		remaining = make([]int, len(pool))
		for i := range remaining {
			remaining[i] = i
		}
	}
	if len(remaining) == 0 {
		return value.Value{}, false
	}
	pick := src.IntRangeInt(0, len(remaining))
	idx := remaining[pick]
	remaining[pick] = remaining[len(remaining)-1]
	inv.remaining[referrerPath] = remaining[:len(remaining)-1]
	return pool[idx], true
}

// randIntn is the subset of *randsrc.Source this file needs, kept narrow so
// tests can substitute a stub without constructing a real Source.
type randIntn interface {
	IntRangeInt(low, high int) int
}
