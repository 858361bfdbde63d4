package bgp

import (
	"sort"

	"github.com/alyssa18grasso/bgpRouterProject/network"
)

// Table is the forwarding table of spec §3/§4.2: a mapping from neighbor
// identifier to an unordered collection of route entries, with every
// entry under key K satisfying Route.LearnedFrom == K.
type Table struct {
	routes map[string][]Route
}

// NewTable creates an empty table with one (empty) entry per declared
// neighbor, per spec §3 "the table begins empty for every declared
// neighbor".
func NewTable(neighbors []string) *Table {
	t := &Table{routes: make(map[string][]Route, len(neighbors))}
	for _, n := range neighbors {
		t.routes[n] = nil
	}
	return t
}

// Insert appends route under neighbor, replacing any existing entry for
// the same prefix, then runs aggregation to a fixpoint. route.LearnedFrom
// must equal neighbor.
func (t *Table) Insert(neighbor string, route Route) {
	t.insertRaw(neighbor, route)
	t.aggregate(neighbor)
}

// insertRaw appends route under neighbor, replacing any existing entry
// for the same prefix, without running aggregation. Used by Rebuild,
// which must disaggregate fully before removing revocations and only
// aggregate once at the end.
func (t *Table) insertRaw(neighbor string, route Route) {
	entries := t.routes[neighbor]
	replaced := false
	for i, existing := range entries {
		if existing.Prefix == route.Prefix {
			entries[i] = route
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, route)
	}
	t.routes[neighbor] = entries
}

// RemoveExact removes the single entry under neighbor whose prefix
// exactly matches prefix, performing no aggregation. It returns true iff
// such an entry existed — the "safe" withdrawal path of spec §4.2.3.
func (t *Table) RemoveExact(neighbor string, prefix Prefix) bool {
	entries := t.routes[neighbor]
	for i, existing := range entries {
		if existing.Prefix == prefix {
			t.routes[neighbor] = append(entries[:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// Rebuild clears all entries under neighbor, replays announcements in
// order with no aggregation in between, removes every prefix listed in
// revocations by exact match against that fully disaggregated table, and
// only then aggregates once. This is the rebuild path of spec §4.2.3,
// invoked when RemoveExact cannot satisfy a withdrawal because
// aggregation has merged the target into a coarser prefix — aggregating
// between replayed announcements would reproduce exactly that problem
// and leave the withdrawn prefix unremovable.
func (t *Table) Rebuild(neighbor string, announcements []Route, revocations []Prefix) {
	t.routes[neighbor] = nil
	for _, route := range announcements {
		t.insertRaw(neighbor, route)
	}
	for _, prefix := range revocations {
		t.RemoveExact(neighbor, prefix)
	}
	t.aggregate(neighbor)
}

// aggregate merges sibling entries under neighbor to a fixpoint, per spec
// §4.2.2. Per DESIGN NOTES "mutation during iteration", each scan stops at
// the first mergeable pair, builds a fresh slice with that one merge
// applied, and restarts, rather than mutating the slice mid-range.
func (t *Table) aggregate(neighbor string) {
	for {
		entries := t.routes[neighbor]
		merged := false
		for i := 0; i < len(entries) && !merged; i++ {
			for j := i + 1; j < len(entries); j++ {
				if !entries[i].equalAttributes(entries[j]) {
					continue
				}
				newPrefix, ok := Siblings(entries[i].Prefix, entries[j].Prefix)
				if !ok {
					continue
				}
				combined := entries[i]
				combined.Prefix = newPrefix

				next := make([]Route, 0, len(entries)-1)
				for k, e := range entries {
					if k == i || k == j {
						continue
					}
					next = append(next, e)
				}
				next = append(next, combined)
				t.routes[neighbor] = next
				merged = true
				break
			}
		}
		if !merged {
			return
		}
	}
}

// candidate pairs a route with the neighbor it was learned from, for use
// during best-route selection which scans across all neighbors at once.
type candidate struct {
	neighbor string
	route    Route
}

// BestRoute returns the neighbor through which dst should be forwarded,
// applying the tie-break ladder of spec §4.2.1, or "" and false if no
// entry contains dst.
func (t *Table) BestRoute(dst uint32) (neighbor string, ok bool) {
	var candidates []candidate
	for n, entries := range t.routes {
		for _, r := range entries {
			if r.Prefix.Contains(dst) {
				candidates = append(candidates, candidate{neighbor: n, route: r})
			}
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best.neighbor, true
}

// better reports whether a beats b under the spec §4.2.1 tie-break
// ladder. Each step below is an early-return: it only fires once the
// preceding steps are tied.
func better(a, b candidate) bool {
	if a.route.Prefix.Len() != b.route.Prefix.Len() {
		return a.route.Prefix.Len() > b.route.Prefix.Len()
	}
	if a.route.LocalPref != b.route.LocalPref {
		return a.route.LocalPref > b.route.LocalPref
	}
	if a.route.SelfOrigin != b.route.SelfOrigin {
		return a.route.SelfOrigin
	}
	if len(a.route.ASPath) != len(b.route.ASPath) {
		return len(a.route.ASPath) < len(b.route.ASPath)
	}
	if a.route.Origin.rank() != b.route.Origin.rank() {
		return a.route.Origin.rank() < b.route.Origin.rank()
	}
	if a.route.LearnedFrom != b.route.LearnedFrom {
		// spec §4.2.1 step 6 compares learned_from as a 32-bit integer,
		// not lexicographically, so "9.0.0.1" sorts before "10.0.0.2".
		aNum, aErr := network.QuadToUint32(a.route.LearnedFrom)
		bNum, bErr := network.QuadToUint32(b.route.LearnedFrom)
		if aErr == nil && bErr == nil {
			return aNum < bNum
		}
		return a.route.LearnedFrom < b.route.LearnedFrom
	}
	return false
}

// Entry is one row of a table snapshot: a route together with the
// neighbor it is filed under.
type Entry struct {
	Neighbor string
	Route    Route
}

// Snapshot returns every (neighbor, route) pair currently in the table,
// for spec §4.2's dump operation. The order is deterministic (sorted by
// neighbor, then by network) so callers and tests can compare snapshots
// without caring about map iteration order.
func (t *Table) Snapshot() []Entry {
	var out []Entry
	for n, entries := range t.routes {
		for _, r := range entries {
			out = append(out, Entry{Neighbor: n, Route: r})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Neighbor != out[j].Neighbor {
			return out[i].Neighbor < out[j].Neighbor
		}
		return out[i].Route.Prefix.Network < out[j].Route.Prefix.Network
	})
	return out
}
