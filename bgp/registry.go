package bgp

import (
	"fmt"
	"strconv"
	"strings"
)

// NeighborSpec is a parsed neighbor descriptor from spec §6: a
// "port-ip-relation" construction-input string.
type NeighborSpec struct {
	Port     uint16
	IP       string
	Relation Relation
}

// ParseNeighborSpec decodes one "port-ip-relation" descriptor string, as
// passed on the command line per spec §6.
func ParseNeighborSpec(descriptor string) (NeighborSpec, error) {
	parts := strings.Split(descriptor, "-")
	if len(parts) != 3 {
		return NeighborSpec{}, fmt.Errorf("bgp: malformed neighbor descriptor %q, want port-ip-relation", descriptor)
	}
	port, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return NeighborSpec{}, fmt.Errorf("bgp: malformed port in descriptor %q: %w", descriptor, err)
	}
	relation, err := ParseRelation(parts[2])
	if err != nil {
		return NeighborSpec{}, fmt.Errorf("bgp: malformed relation in descriptor %q: %w", descriptor, err)
	}
	return NeighborSpec{Port: uint16(port), IP: parts[1], Relation: relation}, nil
}

// Registry maps neighbor IPs to their relation and port, and computes
// the router's own interface address toward each neighbor, per spec
// §4.5. It is fixed at construction: the set of neighbors never grows or
// shrinks.
type Registry struct {
	neighbors map[string]NeighborSpec
	order     []string
}

// NewRegistry builds a Registry from a list of neighbor descriptors,
// rejecting duplicate neighbor IPs. Per spec §7, a duplicate neighbor is
// a fatal construction error.
func NewRegistry(specs []NeighborSpec) (*Registry, error) {
	r := &Registry{
		neighbors: make(map[string]NeighborSpec, len(specs)),
		order:     make([]string, 0, len(specs)),
	}
	for _, spec := range specs {
		if _, exists := r.neighbors[spec.IP]; exists {
			return nil, fmt.Errorf("bgp: duplicate neighbor %s", spec.IP)
		}
		r.neighbors[spec.IP] = spec
		r.order = append(r.order, spec.IP)
	}
	return r, nil
}

// Neighbors returns every neighbor IP, in construction order.
func (r *Registry) Neighbors() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Relation returns the relationship label for neighbor ip.
func (r *Registry) Relation(ip string) (Relation, bool) {
	spec, ok := r.neighbors[ip]
	return spec.Relation, ok
}

// Port returns the UDP port a neighbor listens on.
func (r *Registry) Port(ip string) (uint16, bool) {
	spec, ok := r.neighbors[ip]
	return spec.Port, ok
}

// Known reports whether ip is a declared neighbor.
func (r *Registry) Known(ip string) bool {
	_, ok := r.neighbors[ip]
	return ok
}

// OurAddr returns the router's local interface address on the link to
// neighbor ip: the same first three octets with the last octet replaced
// by 1, per spec §4.5/§6.
func OurAddr(neighborIP string) string {
	octets := strings.Split(neighborIP, ".")
	if len(octets) != 4 {
		return neighborIP
	}
	return octets[0] + "." + octets[1] + "." + octets[2] + ".1"
}
