// Package mapping holds the per-run identifier remapping tables.
//
// Each entity kind gets its own old-id to new-id table. Within one run the
// table for a kind is a bijection: every id maps to id+offset and no two old
// ids collide. Ids that were never registered (rows already resident in the
// target, or references out of merge scope) pass through unchanged.
package mapping

import (
	"fmt"
)

// Kind identifies one logical row type being merged.
type Kind string

const (
	KindAccount Kind = "account"
	KindPlayer  Kind = "player"
	KindClan    Kind = "clan"
)

// NoClan is the reserved clan-reference value meaning "no clan".
// It is exempt from remapping.
const NoClan int64 = -1

// DuplicateIDError reports a duplicate id in the input set of Generate.
// Primary keys should make this impossible, but the invariant is checked
// rather than assumed.
type DuplicateIDError struct {
	Kind Kind
	ID   int64
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate %s id %d in mapping input", e.Kind, e.ID)
}

// Registry is the per-run mapping state. It is owned by a single orchestrator
// and mutated by one merger at a time; there is no cross-run or global state.
type Registry struct {
	kinds  map[Kind]map[int64]int64
	offset int64
}

// NewRegistry returns an empty registry for a run with the given id offset.
func NewRegistry(offset int64) *Registry {
	return &Registry{
		kinds:  make(map[Kind]map[int64]int64),
		offset: offset,
	}
}

// Offset returns the id offset this registry was created with.
func (r *Registry) Offset() int64 {
	return r.offset
}

// Generate populates the mapping for kind with new_id = old_id + offset for
// every id. It fails with DuplicateIDError if the input contains a duplicate.
func (r *Registry) Generate(kind Kind, ids []int64) error {
	table := r.kinds[kind]
	if table == nil {
		table = make(map[int64]int64, len(ids))
		r.kinds[kind] = table
	}
	for _, id := range ids {
		if _, exists := table[id]; exists {
			return &DuplicateIDError{Kind: kind, ID: id}
		}
		table[id] = id + r.offset
	}
	return nil
}

// Lookup returns the mapped id for old, or old unchanged when it was never
// registered. Pass-through on miss is deliberate: references to rows already
// resident in the target must not be shifted.
func (r *Registry) Lookup(kind Kind, old int64) int64 {
	if mapped, ok := r.kinds[kind][old]; ok {
		return mapped
	}
	return old
}

// LookupOrSentinel behaves like Lookup but leaves the sentinel value alone.
func (r *Registry) LookupOrSentinel(kind Kind, old, sentinel int64) int64 {
	if old == sentinel {
		return sentinel
	}
	return r.Lookup(kind, old)
}

// Count returns how many ids are registered for kind.
func (r *Registry) Count(kind Kind) int {
	return len(r.kinds[kind])
}
