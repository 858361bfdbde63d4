package bgp

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/alyssa18grasso/bgpRouterProject/network"
)

// Inbound is one decoded message tagged with the neighbor interface it
// arrived on, the unit of work the transport layer feeds to Router.Handle.
type Inbound struct {
	Interface string
	Envelope  Envelope
}

// Outbound is one message the router wants sent to a named neighbor. The
// transport layer is responsible for actually writing it to that
// neighbor's socket.
type Outbound struct {
	To       string
	Envelope Envelope
}

// Router is the message dispatcher of spec §4.4: it owns the forwarding
// table, announcement journal, and neighbor registry, and turns one
// decoded inbound message into zero or more outbound messages. It has no
// I/O of its own — sockets, CLI parsing, and logging destinations are all
// supplied by its caller, per spec §1.
type Router struct {
	as       uint32
	table    *Table
	journal  *Journal
	registry *Registry
	log      *logrus.Logger
}

// NewRouter builds a Router for autonomous system as, peering with the
// given neighbors. A duplicate neighbor IP is surfaced as an error and is
// fatal per spec §7; malformed descriptor strings are rejected earlier, by
// ParseNeighborSpec.
func NewRouter(as uint32, neighbors []NeighborSpec, log *logrus.Logger) (*Router, error) {
	registry, err := NewRegistry(neighbors)
	if err != nil {
		return nil, err
	}
	ips := registry.Neighbors()
	if log == nil {
		log = logrus.New()
	}
	return &Router{
		as:       as,
		table:    NewTable(ips),
		journal:  NewJournal(ips),
		registry: registry,
		log:      log,
	}, nil
}

// Neighbors returns every configured neighbor IP, for the transport layer
// to open sockets against and send startup handshakes to.
func (r *Router) Neighbors() []string {
	return r.registry.Neighbors()
}

// Handle processes one inbound message to completion and returns the
// outbound messages it produced, implementing spec §4.4's dispatch rules
// and §7's error taxonomy. It never blocks and performs no I/O.
func (r *Router) Handle(in Inbound) []Outbound {
	entry := r.log.WithFields(logrus.Fields{
		"neighbor": in.Interface,
		"type":     in.Envelope.Type,
	})

	switch in.Envelope.Type {
	case TypeHandshake:
		return nil

	case TypeUpdate:
		return r.handleUpdate(in, entry)

	case TypeWithdraw:
		return r.handleWithdraw(in, entry)

	case TypeData:
		return r.handleData(in, entry)

	case TypeDump:
		return r.handleDump(in, entry)

	default:
		entry.Debug("ignoring unrecognized message type")
		return nil
	}
}

func (r *Router) handleUpdate(in Inbound, entry *logrus.Entry) []Outbound {
	var payload UpdatePayload
	if err := json.Unmarshal(in.Envelope.Msg, &payload); err != nil {
		entry.WithError(err).Warn("dropping malformed update")
		return nil
	}
	route, err := payload.toRoute(in.Interface)
	if err != nil {
		entry.WithError(err).Warn("dropping malformed update")
		return nil
	}

	r.journal.RecordAnnouncement(in.Interface, route)
	r.table.Insert(in.Interface, route)

	advertised := route.withPrependedAS(r.as)
	return r.propagate(in.Interface, TypeUpdate, mustMarshal(fromRoute(advertised)))
}

func (r *Router) handleWithdraw(in Inbound, entry *logrus.Entry) []Outbound {
	var entries []WithdrawEntry
	if err := json.Unmarshal(in.Envelope.Msg, &entries); err != nil {
		entry.WithError(err).Warn("dropping malformed withdraw")
		return nil
	}

	prefixes := make([]Prefix, 0, len(entries))
	for _, w := range entries {
		prefix, err := w.toPrefix()
		if err != nil {
			entry.WithError(err).Warn("dropping malformed withdraw entry")
			continue
		}
		prefixes = append(prefixes, prefix)
		r.journal.RecordRevocation(in.Interface, prefix)
	}

	// spec §4.2.3: attempt in-place removal of every listed prefix before
	// deciding whether a rebuild is needed.
	anyFailed := false
	for _, prefix := range prefixes {
		if !r.table.RemoveExact(in.Interface, prefix) {
			anyFailed = true
		}
	}
	if anyFailed {
		r.table.Rebuild(in.Interface, r.journal.Announcements(in.Interface), r.journal.Revocations(in.Interface))
		entry.Debug("rebuilt table after withdrawal of an aggregated prefix")
	}

	return r.propagate(in.Interface, TypeWithdraw, in.Envelope.Msg)
}

// propagate implements spec §4.3: re-advertise msg to every neighbor the
// relationship policy allows, addressed and sourced per neighbor.
func (r *Router) propagate(learnedFrom string, msgType MessageType, msg json.RawMessage) []Outbound {
	learnedFromRelation, ok := r.registry.Relation(learnedFrom)
	if !ok {
		return nil
	}

	var out []Outbound
	for _, candidateIP := range r.registry.Neighbors() {
		if candidateIP == learnedFrom {
			continue
		}
		candidateRelation, _ := r.registry.Relation(candidateIP)
		if !ShouldReadvertise(learnedFromRelation, candidateRelation) {
			continue
		}
		out = append(out, Outbound{
			To: candidateIP,
			Envelope: Envelope{
				Src:  OurAddr(candidateIP),
				Dst:  candidateIP,
				Type: msgType,
				Msg:  msg,
			},
		})
	}
	return out
}

func (r *Router) handleData(in Inbound, entry *logrus.Entry) []Outbound {
	dst, err := network.QuadToUint32(in.Envelope.Dst)
	if err != nil {
		entry.WithError(err).Warn("dropping data message with malformed destination")
		return nil
	}

	nextHop, ok := r.table.BestRoute(dst)
	if !ok {
		return []Outbound{{
			To: in.Interface,
			Envelope: Envelope{
				Src:  OurAddr(in.Interface),
				Dst:  in.Envelope.Src,
				Type: TypeNoRoute,
				Msg:  json.RawMessage(`{}`),
			},
		}}
	}

	srcRelation, _ := r.registry.Relation(in.Interface)
	nextHopRelation, _ := r.registry.Relation(nextHop)
	if !ShouldForwardData(srcRelation, nextHopRelation) {
		entry.WithField("next_hop", nextHop).Debug("dropping data message across a forbidden policy boundary")
		return nil
	}

	return []Outbound{{To: nextHop, Envelope: in.Envelope}}
}

func (r *Router) handleDump(in Inbound, _ *logrus.Entry) []Outbound {
	snapshot := r.table.Snapshot()
	rows := make([]TableEntry, 0, len(snapshot))
	for _, e := range snapshot {
		rows = append(rows, tableEntryFromRoute(e))
	}
	return []Outbound{{
		To: in.Interface,
		Envelope: Envelope{
			Src:  OurAddr(in.Interface),
			Dst:  in.Envelope.Src,
			Type: TypeTable,
			Msg:  mustMarshal(rows),
		},
	}}
}

// handshakeFor builds the startup handshake the transport layer sends to
// every neighbor once, per spec §4.4.
func (r *Router) handshakeFor(neighborIP string) Outbound {
	return Outbound{
		To: neighborIP,
		Envelope: Envelope{
			Src:  OurAddr(neighborIP),
			Dst:  neighborIP,
			Type: TypeHandshake,
			Msg:  json.RawMessage(`{}`),
		},
	}
}

// Handshakes returns the startup handshake for every configured
// neighbor, to be sent once before the event loop begins reading.
func (r *Router) Handshakes() []Outbound {
	out := make([]Outbound, 0, len(r.registry.Neighbors()))
	for _, ip := range r.registry.Neighbors() {
		out = append(out, r.handshakeFor(ip))
	}
	return out
}
