package bgp

import "fmt"

// Relation is the commercial relationship label of spec §3/§6: customer,
// peer, or provider, governing valley-free export policy.
type Relation int

const (
	Customer Relation = iota
	Peer
	Provider
)

func (r Relation) String() string {
	switch r {
	case Customer:
		return "cust"
	case Peer:
		return "peer"
	case Provider:
		return "prov"
	default:
		return "unknown"
	}
}

// ParseRelation decodes the wire/descriptor spelling of a relation. Per
// DESIGN NOTES (b), "prov" is the only spelling recognized — the
// original source's divergent "provider" check is not carried forward.
func ParseRelation(s string) (Relation, error) {
	switch s {
	case "cust":
		return Customer, nil
	case "peer":
		return Peer, nil
	case "prov":
		return Provider, nil
	default:
		return 0, fmt.Errorf("bgp: unknown relation %q", s)
	}
}

// ShouldReadvertise implements the relation half of the valley-free
// re-advertisement rule of spec §4.3: it reports true iff the route was
// learned from a customer (flood to everyone) or candidate is itself a
// customer (peers and providers only flood to customers). It sees only
// relations; Router.propagate separately skips the neighbor the route
// was learned from.
func ShouldReadvertise(learnedFromRelation, candidateRelation Relation) bool {
	return learnedFromRelation == Customer || candidateRelation == Customer
}

// ShouldForwardData implements spec §4.4's data-message policy: a data
// packet is forwarded iff it arrived from a customer or its chosen
// next-hop neighbor is a customer. Anything else (peer-to-peer,
// peer/provider-to-peer/provider) is a forbidden policy boundary and is
// dropped silently per spec §7.
func ShouldForwardData(sourceRelation, nextHopRelation Relation) bool {
	return sourceRelation == Customer || nextHopRelation == Customer
}
