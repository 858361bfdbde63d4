package bgp

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alyssa18grasso/bgpRouterProject/network"
)

func mustRoute(t *testing.T, networkQuad, maskQuad, learnedFrom string, localPref uint32, selfOrigin bool, asPath []uint32, origin Origin) Route {
	t.Helper()
	prefix := mustPrefix(t, networkQuad, maskQuad)
	return Route{
		Prefix:      prefix,
		LocalPref:   localPref,
		SelfOrigin:  selfOrigin,
		ASPath:      asPath,
		Origin:      origin,
		LearnedFrom: learnedFrom,
	}
}

func TestTableAggregatesSiblings(t *testing.T) {
	table := NewTable([]string{"192.168.0.2"})
	table.Insert("192.168.0.2", mustRoute(t, "192.0.0.0", "255.255.255.0", "192.168.0.2", 100, true, nil, OriginIGP))
	table.Insert("192.168.0.2", mustRoute(t, "192.0.1.0", "255.255.255.0", "192.168.0.2", 100, true, nil, OriginIGP))

	snap := table.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected aggregation to leave a single entry, got %d: %+v", len(snap), snap)
	}
	want := mustPrefix(t, "192.0.0.0", "255.255.254.0")
	if snap[0].Route.Prefix != want {
		t.Errorf("aggregated prefix = %+v, want %+v", snap[0].Route.Prefix, want)
	}
}

func TestTableDoesNotAggregateMismatchedAttributes(t *testing.T) {
	table := NewTable([]string{"192.168.0.2"})
	table.Insert("192.168.0.2", mustRoute(t, "192.0.0.0", "255.255.255.0", "192.168.0.2", 100, true, nil, OriginIGP))
	table.Insert("192.168.0.2", mustRoute(t, "192.0.1.0", "255.255.255.0", "192.168.0.2", 50, true, nil, OriginIGP))

	snap := table.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected mismatched local_pref to block aggregation, got %d entries: %+v", len(snap), snap)
	}
}

func TestBestRouteLongestPrefixMatch(t *testing.T) {
	table := NewTable([]string{"a", "b"})
	table.Insert("a", mustRoute(t, "192.168.0.0", "255.255.0.0", "a", 100, false, nil, OriginIGP))
	table.Insert("b", mustRoute(t, "192.168.1.0", "255.255.255.0", "b", 100, false, nil, OriginIGP))

	dst, err := network.QuadToUint32("192.168.1.50")
	if err != nil {
		t.Fatal(err)
	}
	neighbor, ok := table.BestRoute(dst)
	if !ok || neighbor != "b" {
		t.Errorf("BestRoute = %q,%v, want %q,true (longest prefix match wins)", neighbor, ok, "b")
	}
}

func TestBestRouteTieBreaksByLocalPref(t *testing.T) {
	table := NewTable([]string{"a", "b"})
	table.Insert("a", mustRoute(t, "192.168.0.0", "255.255.255.0", "a", 100, false, nil, OriginIGP))
	table.Insert("b", mustRoute(t, "192.168.0.0", "255.255.255.0", "b", 200, false, nil, OriginIGP))

	dst, _ := network.QuadToUint32("192.168.0.1")
	neighbor, ok := table.BestRoute(dst)
	if !ok || neighbor != "b" {
		t.Errorf("BestRoute = %q,%v, want %q,true (higher local_pref wins)", neighbor, ok, "b")
	}
}

func TestBestRouteTieBreaksByLearnedFromNumerically(t *testing.T) {
	table := NewTable([]string{"10.0.0.2", "9.0.0.1"})
	table.Insert("10.0.0.2", mustRoute(t, "192.168.0.0", "255.255.255.0", "10.0.0.2", 100, false, nil, OriginIGP))
	table.Insert("9.0.0.1", mustRoute(t, "192.168.0.0", "255.255.255.0", "9.0.0.1", 100, false, nil, OriginIGP))

	dst, _ := network.QuadToUint32("192.168.0.1")
	neighbor, ok := table.BestRoute(dst)
	if !ok || neighbor != "9.0.0.1" {
		t.Errorf("BestRoute = %q,%v, want %q,true (9.0.0.1 < 10.0.0.2 numerically, though not lexicographically)", neighbor, ok, "9.0.0.1")
	}
}

func TestRemoveExactFailsAcrossAnAggregatedBoundary(t *testing.T) {
	table := NewTable([]string{"192.168.0.2"})
	table.Insert("192.168.0.2", mustRoute(t, "192.0.0.0", "255.255.255.0", "192.168.0.2", 100, true, nil, OriginIGP))
	table.Insert("192.168.0.2", mustRoute(t, "192.0.1.0", "255.255.255.0", "192.168.0.2", 100, true, nil, OriginIGP))

	if table.RemoveExact("192.168.0.2", mustPrefix(t, "192.0.0.0", "255.255.255.0")) {
		t.Fatal("RemoveExact should fail once the entry has been merged into a /23")
	}
}

func TestRebuildRestoresUnwithdrawnRoutes(t *testing.T) {
	r1 := mustRoute(t, "192.0.0.0", "255.255.255.0", "192.168.0.2", 100, true, nil, OriginIGP)
	r2 := mustRoute(t, "192.0.1.0", "255.255.255.0", "192.168.0.2", 100, true, nil, OriginIGP)

	table := NewTable([]string{"192.168.0.2"})
	table.Insert("192.168.0.2", r1)
	table.Insert("192.168.0.2", r2)

	journal := NewJournal([]string{"192.168.0.2"})
	journal.RecordAnnouncement("192.168.0.2", r1)
	journal.RecordAnnouncement("192.168.0.2", r2)

	table.Rebuild("192.168.0.2", journal.Announcements("192.168.0.2"), []Prefix{r1.Prefix})

	snap := table.Snapshot()
	want := []Entry{{Neighbor: "192.168.0.2", Route: r2}}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Errorf("Rebuild snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestBestRouteNoMatch(t *testing.T) {
	table := NewTable([]string{"a"})
	table.Insert("a", mustRoute(t, "192.168.0.0", "255.255.255.0", "a", 100, false, nil, OriginIGP))

	dst, _ := network.QuadToUint32("10.0.0.1")
	if _, ok := table.BestRoute(dst); ok {
		t.Error("expected no matching route for an address outside every advertised prefix")
	}
}
