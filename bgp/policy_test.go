package bgp

import "testing"

func TestParseRelationRejectsOriginalSpelling(t *testing.T) {
	if _, err := ParseRelation("provider"); err == nil {
		t.Error(`"provider" should be rejected; only "prov" is recognized`)
	}
}

func TestShouldReadvertise(t *testing.T) {
	cases := []struct {
		name          string
		learnedFrom   Relation
		candidate     Relation
		wantAdvertise bool
	}{
		{"customer route floods to a peer", Customer, Peer, true},
		{"customer route floods to a provider", Customer, Provider, true},
		{"peer route only reaches customers", Peer, Customer, true},
		{"peer route withheld from another peer", Peer, Peer, false},
		{"peer route withheld from a provider", Peer, Provider, false},
		{"provider route only reaches customers", Provider, Customer, true},
		{"provider route withheld from a peer", Provider, Peer, false},
		{"provider route withheld from another provider", Provider, Provider, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ShouldReadvertise(c.learnedFrom, c.candidate)
			if got != c.wantAdvertise {
				t.Errorf("ShouldReadvertise(%v, %v) = %v, want %v", c.learnedFrom, c.candidate, got, c.wantAdvertise)
			}
		})
	}
}

func TestShouldForwardData(t *testing.T) {
	cases := []struct {
		name       string
		source     Relation
		nextHop    Relation
		wantForward bool
	}{
		{"from customer to peer", Customer, Peer, true},
		{"from peer to customer", Peer, Customer, true},
		{"from peer to peer is a forbidden valley", Peer, Peer, false},
		{"from provider to peer is a forbidden valley", Provider, Peer, false},
		{"from provider to provider is a forbidden valley", Provider, Provider, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ShouldForwardData(c.source, c.nextHop)
			if got != c.wantForward {
				t.Errorf("ShouldForwardData(%v, %v) = %v, want %v", c.source, c.nextHop, got, c.wantForward)
			}
		})
	}
}
