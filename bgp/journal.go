package bgp

// Journal is the per-neighbor announcement log of spec §3/§4.2: an
// append-only record of every announcement and revocation received from
// each neighbor, in arrival order, used solely to rebuild the forwarding
// table after a withdrawal that in-place removal cannot satisfy.
//
// Entries are never removed, even on rebuild.
type Journal struct {
	announcements map[string][]Route
	revocations   map[string][]Prefix
}

// NewJournal creates an empty journal with one (empty) history per
// declared neighbor.
func NewJournal(neighbors []string) *Journal {
	j := &Journal{
		announcements: make(map[string][]Route, len(neighbors)),
		revocations:   make(map[string][]Prefix, len(neighbors)),
	}
	for _, n := range neighbors {
		j.announcements[n] = nil
		j.revocations[n] = nil
	}
	return j
}

// RecordAnnouncement appends route to neighbor's announcement history.
func (j *Journal) RecordAnnouncement(neighbor string, route Route) {
	j.announcements[neighbor] = append(j.announcements[neighbor], route)
}

// RecordRevocation appends prefix to neighbor's revocation history.
func (j *Journal) RecordRevocation(neighbor string, prefix Prefix) {
	j.revocations[neighbor] = append(j.revocations[neighbor], prefix)
}

// Announcements returns neighbor's announcement history in arrival order.
func (j *Journal) Announcements(neighbor string) []Route {
	return j.announcements[neighbor]
}

// Revocations returns neighbor's revocation history in arrival order.
func (j *Journal) Revocations(neighbor string) []Prefix {
	return j.revocations[neighbor]
}
