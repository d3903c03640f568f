// Package relay wires the Codec, Cache Facade, ID Pool, and Query Pool
// together behind the two UDP endpoints spec §4.F describes, and runs
// the single-threaded cooperative event loop spec §5 requires.
//
// Go has no native single-threaded event loop, so this package adapts
// the idiom rather than copying it literally: two reader goroutines do
// nothing but block in ReadFromUDP and hand datagrams to one owner
// goroutine over a channel. All mutation of the Trie, ID Pool, and Query
// Pool happens exclusively on that owner goroutine, which is what spec
// §5 actually requires ("no shared-memory concurrency; no locks" on the
// mutated state) — the reader goroutines touch only their own sockets.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/dnsrelay/relay/internal/querypool"
)

// maxDatagramSize is the classic DNS UDP payload limit (spec §5
// "Resource caps... 512 bytes on the server side"); EDNS0 is out of
// scope (spec §1 Non-goals).
const maxDatagramSize = 512

type origin int

const (
	originClient origin = iota
	originUpstream
)

type inbound struct {
	origin origin
	data   []byte
	addr   net.Addr
}

// Server owns the two UDP endpoints and the single event-loop goroutine
// that mutates the query pool (spec §4.F).
type Server struct {
	serverConn *net.UDPConn
	clientConn *net.UDPConn
	upstream   *net.UDPAddr
	pool       *querypool.Pool
	logger     *slog.Logger

	recv    chan inbound
	timeout chan uint16
	timers  map[uint16]*time.Timer
}

// New binds the server endpoint (listenAddr, spec §6 "--listen",
// defaulting to 0.0.0.0:53) and the client endpoint (an ephemeral port
// used to talk to upstream). Binding failure is the caller's cue to exit
// with spec §6's ExitBindError.
func New(listenAddr, upstream *net.UDPAddr, pool *querypool.Pool, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	serverConn, err := net.ListenUDP("udp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("bind server endpoint %s: %w", listenAddr, err)
	}
	clientConn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		serverConn.Close()
		return nil, fmt.Errorf("bind client endpoint: %w", err)
	}

	return &Server{
		serverConn: serverConn,
		clientConn: clientConn,
		upstream:   upstream,
		pool:       pool,
		logger:     logger,
		recv:       make(chan inbound, 64),
		timeout:    make(chan uint16, 64),
		timers:     make(map[uint16]*time.Timer),
	}, nil
}

// Run starts the reader goroutines and runs the event loop until ctx is
// cancelled. Teardown (spec §5 "Lifecycle"): cancel every outstanding
// timer, then close both sockets.
func (s *Server) Run(ctx context.Context) error {
	go s.readLoop(s.serverConn, originClient)
	go s.readLoop(s.clientConn, originUpstream)

	defer s.shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case in := <-s.recv:
			s.dispatch(in)

		case id := <-s.timeout:
			delete(s.timers, id)
			s.execute(s.pool.HandleTimeout(id))
		}
	}
}

func (s *Server) readLoop(conn *net.UDPConn, o origin) {
	buf := make([]byte, maxDatagramSize)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error("udp read failed", "origin", o, "err", err)
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		s.recv <- inbound{origin: o, data: data, addr: addr}
	}
}

func (s *Server) dispatch(in inbound) {
	switch in.origin {
	case originClient:
		s.execute(s.pool.HandleClientDatagram(in.data, in.addr))
	case originUpstream:
		s.execute(s.pool.HandleUpstreamDatagram(in.data))
	}
}

// execute runs the side effects a query-pool handler asked for (spec
// §4.E "->" column). Sending datagrams is fire-and-forget and send errors
// are only logged. A failed client reply needs nothing more, since the
// pool has already freed the id for a terminal action. A failed upstream
// send does not tear the record down: it stays pending until its timer
// fires and takes the usual retry/SERVFAIL path.
func (s *Server) execute(actions []querypool.Action) {
	for _, a := range actions {
		switch a.Type {
		case querypool.ActionReplyClient:
			if _, err := s.serverConn.WriteTo(a.Payload, a.ClientAddr); err != nil {
				s.logger.Error("send to client failed", "addr", a.ClientAddr, "err", err)
			}
		case querypool.ActionSendUpstream:
			if _, err := s.clientConn.WriteTo(a.Payload, s.upstream); err != nil {
				s.logger.Error("send upstream failed", "err", err)
			}
		case querypool.ActionArmTimer:
			s.armTimer(a.OutboundID, a.Timeout)
		case querypool.ActionCancelTimer:
			s.cancelTimer(a.OutboundID)
		}
	}
}

func (s *Server) armTimer(id uint16, d time.Duration) {
	s.cancelTimer(id)
	s.timers[id] = time.AfterFunc(d, func() {
		s.timeout <- id
	})
}

func (s *Server) cancelTimer(id uint16) {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Server) shutdown() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.serverConn.Close()
	s.clientConn.Close()
}
