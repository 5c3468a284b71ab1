package merge

import (
	"fmt"
	"sort"
)

// Kind identifies which entity family an identity mapping belongs to.
type Kind string

const (
	KindUser    Kind = "users"
	KindTerm    Kind = "terms"
	KindPost    Kind = "posts"
	KindComment Kind = "comments"
)

// IdentityMap translates source IDs to destination IDs for one import run.
// Each kind has an independent mapping. Entries are write-once: importers
// populate the map strictly in dependency order and later stages only read
// the entries earlier stages wrote.
type IdentityMap struct {
	kinds map[Kind]map[int64]int64
}

// NewIdentityMap creates an empty identity map.
func NewIdentityMap() *IdentityMap {
	return &IdentityMap{
		kinds: map[Kind]map[int64]int64{
			KindUser:    {},
			KindTerm:    {},
			KindPost:    {},
			KindComment: {},
		},
	}
}

// Record stores a source-to-destination mapping. Recording the same
// (kind, sourceID) twice is an error even with an identical destination:
// it means two importers claimed the same source record.
func (im *IdentityMap) Record(kind Kind, sourceID, destID int64) error {
	m, ok := im.kinds[kind]
	if !ok {
		return fmt.Errorf("unknown identity map kind %q", kind)
	}
	if existing, dup := m[sourceID]; dup {
		return fmt.Errorf("%s source ID %d already mapped to %d", kind, sourceID, existing)
	}
	m[sourceID] = destID
	return nil
}

// Lookup returns the destination ID for a source ID, and whether it has
// been mapped yet.
func (im *IdentityMap) Lookup(kind Kind, sourceID int64) (int64, bool) {
	destID, ok := im.kinds[kind][sourceID]
	return destID, ok
}

// Len returns the number of entries recorded for a kind.
func (im *IdentityMap) Len(kind Kind) int {
	return len(im.kinds[kind])
}

// SourceIDs returns the mapped source IDs for a kind in ascending order.
// The fixup pass iterates these so its substitutions are deterministic.
func (im *IdentityMap) SourceIDs(kind Kind) []int64 {
	ids := make([]int64, 0, len(im.kinds[kind]))
	for id := range im.kinds[kind] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
