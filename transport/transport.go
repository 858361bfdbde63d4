// Package transport owns the UDP sockets, one per neighbor, that carry
// the router's JSON messages, per spec §5. It reads datagrams on a
// goroutine per socket, funnels them through a single ordered channel so
// exactly one dispatcher goroutine ever calls bgp.Router.Handle, and
// drains a per-neighbor outbound queue back onto that neighbor's socket.
package transport

import (
	"encoding/json"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alyssa18grasso/bgpRouterProject/bgp"
	"github.com/alyssa18grasso/bgpRouterProject/counter"
	"github.com/alyssa18grasso/bgpRouterProject/queue"
	"github.com/alyssa18grasso/bgpRouterProject/timer"
)

const datagramBufferSize = 65535

// link is the socket and outbound queue for one neighbor.
type link struct {
	neighbor string
	conn     *net.UDPConn
	outbound *queue.Queue
	wake     chan struct{}
}

// Loop runs the router's full event loop: it opens one UDP socket per
// neighbor, sends the startup handshake, and then reads and dispatches
// messages until ctx-like cancellation via Stop. It blocks the calling
// goroutine; callers typically run it directly from main.
type Loop struct {
	router *bgp.Router
	log    *logrus.Logger
	links  map[string]*link
	stats  *counter.ByType
	inbox  chan bgp.Inbound
	done   chan struct{}
}

// New opens a UDP socket for every neighbor the router knows about,
// binding to an ephemeral local port and targeting the neighbor's
// configured port on localhost, matching the original router's transport
// model. Socket setup failures are returned to the caller, which per
// spec §7 should treat them as fatal.
func New(router *bgp.Router, ports map[string]uint16, log *logrus.Logger) (*Loop, error) {
	if log == nil {
		log = logrus.New()
	}
	l := &Loop{
		router: router,
		log:    log,
		links:  make(map[string]*link, len(ports)),
		stats:  counter.NewByType(),
		inbox:  make(chan bgp.Inbound, 256),
		done:   make(chan struct{}),
	}
	for _, neighbor := range router.Neighbors() {
		port, ok := ports[neighbor]
		if !ok {
			return nil, &MissingPortError{Neighbor: neighbor}
		}
		conn, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: int(port)})
		if err != nil {
			return nil, err
		}
		l.links[neighbor] = &link{
			neighbor: neighbor,
			conn:     conn,
			outbound: queue.New(),
			wake:     make(chan struct{}, 1),
		}
	}
	return l, nil
}

// MissingPortError reports a neighbor the router knows about but that
// has no configured listening port, a construction-time mismatch between
// the registry and the descriptor list.
type MissingPortError struct {
	Neighbor string
}

func (e *MissingPortError) Error() string {
	return "transport: no port configured for neighbor " + e.Neighbor
}

// Run starts one reader goroutine per neighbor socket, one writer
// goroutine per neighbor socket, and a periodic stats flush, queues the
// startup handshakes, then dispatches inbound messages on the calling
// goroutine (the single dispatcher) until Stop is called.
func (l *Loop) Run() {
	for _, lk := range l.links {
		go l.readLoop(lk)
		go l.writeLoop(lk)
	}
	stopStats := timer.Repeating(30*time.Second, l.logStats)
	defer stopStats()

	for _, out := range l.router.Handshakes() {
		l.enqueue(out)
	}

	for {
		select {
		case in := <-l.inbox:
			l.stats.Increment(string(in.Envelope.Type))
			for _, out := range l.router.Handle(in) {
				l.enqueue(out)
			}
		case <-l.done:
			return
		}
	}
}

// Stop ends Run's event loop and closes every socket.
func (l *Loop) Stop() {
	close(l.done)
	for _, lk := range l.links {
		lk.conn.Close()
	}
}

func (l *Loop) readLoop(lk *link) {
	buf := make([]byte, datagramBufferSize)
	for {
		n, err := lk.conn.Read(buf)
		if err != nil {
			select {
			case <-l.done:
				return
			default:
				l.log.WithError(err).WithField("neighbor", lk.neighbor).Warn("socket read failed")
				return
			}
		}
		raw := make([]byte, n)
		copy(raw, buf[:n])
		envelope, err := bgp.DecodeEnvelope(raw)
		if err != nil {
			l.log.WithError(err).WithField("neighbor", lk.neighbor).Warn("dropping malformed datagram")
			continue
		}
		select {
		case l.inbox <- bgp.Inbound{Interface: lk.neighbor, Envelope: envelope}:
		case <-l.done:
			return
		}
	}
}

func (l *Loop) writeLoop(lk *link) {
	for {
		select {
		case <-lk.wake:
			for {
				item, ok := lk.outbound.Pop()
				if !ok {
					break
				}
				if _, err := lk.conn.Write(item); err != nil {
					l.log.WithError(err).WithField("neighbor", lk.neighbor).Warn("socket write failed")
				}
			}
		case <-l.done:
			return
		}
	}
}

func (l *Loop) enqueue(out bgp.Outbound) {
	lk, ok := l.links[out.To]
	if !ok {
		l.log.WithField("to", out.To).Warn("dropping outbound message to unknown neighbor")
		return
	}
	raw, err := marshalEnvelope(out.Envelope)
	if err != nil {
		l.log.WithError(err).Warn("failed to marshal outbound message")
		return
	}
	lk.outbound.Push(raw)
	select {
	case lk.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) logStats() {
	l.log.WithField("counts", l.stats.Snapshot()).Info("message counts")
}

func marshalEnvelope(e bgp.Envelope) ([]byte, error) {
	return json.Marshal(e)
}
