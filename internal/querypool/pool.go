// Package querypool implements the per-in-flight-query multiplexer (spec
// §4.E "Query Pool"): the state machine that turns a decoded client
// datagram into either an immediate cache-backed reply or an upstream
// forward, and that later reconciles an upstream reply (or a timeout)
// back to the client that asked for it.
//
// Handlers here never perform I/O themselves — each returns the list of
// Actions the caller (the single-threaded event loop in internal/relay,
// spec §5) should execute: send this payload to that address, arm a
// timer, cancel one. Keeping I/O out of this package is what makes the
// state machine deterministic and unit-testable without a real socket.
package querypool

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/dnsrelay/relay/internal/cache"
	"github.com/dnsrelay/relay/internal/dns"
	"github.com/dnsrelay/relay/internal/idpool"
)

// DefaultTimeout and DefaultRetries implement spec §4.E "Timeout policy":
// T_upstream defaults to 5s, retries_left defaults to 2, for a maximum
// total latency of 3*T_upstream.
const (
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 2
)

// Config tunes the timeout policy (spec §4.E). The upstream address
// itself is not part of this config: it belongs to the transport
// (internal/relay), which is the only thing that ever dials it.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultRetries
	}
	return c
}

// ActionType names the side effect an Action asks the event loop to
// perform.
type ActionType int

const (
	// ActionReplyClient sends Payload to ClientAddr.
	ActionReplyClient ActionType = iota
	// ActionSendUpstream sends Payload to the configured upstream resolver.
	ActionSendUpstream
	// ActionArmTimer (re-)arms a single-shot timer for OutboundID.
	ActionArmTimer
	// ActionCancelTimer cancels any timer previously armed for OutboundID.
	ActionCancelTimer
)

// Action is one side effect the caller must perform after a handler
// returns (spec §4.E state table, "->" column).
type Action struct {
	Type       ActionType
	ClientAddr net.Addr
	Payload    []byte
	OutboundID uint16
	Timeout    time.Duration
}

// Pool is the query multiplexer: it owns no sockets, only the mapping
// from outbound id to in-flight client context (via the ID Pool) and the
// cache it consults before ever going upstream.
type Pool struct {
	ids    *idpool.Pool
	cache  *cache.Cache
	cfg    Config
	logger *slog.Logger
}

// New returns a Pool. ids and c are created and owned by the caller and
// shared with the rest of the relay; New does not create the ID pool
// itself (cmd/dnsrelay builds it just before the query pool).
func New(ids *idpool.Pool, c *cache.Cache, cfg Config, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{ids: ids, cache: c, cfg: cfg.withDefaults(), logger: logger}
}

// HandleClientDatagram implements the `New` state (spec §4.E): decode,
// then either resolve from cache (-> Cached -> reply) or allocate an
// outbound id and forward upstream (-> Pending), or drop on decode
// failure or pool exhaustion (-> Drop).
func (p *Pool) HandleClientDatagram(raw []byte, clientAddr net.Addr) []Action {
	req, err := dns.ParsePacket(raw)
	if err != nil {
		p.logger.Error("drop client datagram: decode failed", "addr", clientAddr, "err", err)
		return nil
	}
	if len(req.Questions) == 0 {
		p.logger.Debug("drop client datagram: no question", "addr", clientAddr)
		return nil
	}
	if p.logger.Enabled(context.Background(), slog.LevelDebug) {
		p.logger.Debug("client query decoded", "addr", clientAddr, "msg", dns.Dump(req))
	}
	q := req.Questions[0]

	res := p.cache.Resolve(q.Name, q.Type)
	if res.Hit {
		if res.Blocked {
			reply := dns.BuildErrorResponse(req, dns.RCodeNXDomain)
			return p.replyAction(clientAddr, reply)
		}
		reply := dns.Packet{
			Header: dns.Header{
				ID:      req.Header.ID,
				Flags:   dns.SetRCode(req.Header.Flags, dns.RCodeNoError),
				QDCount: 1,
				ANCount: uint16(len(res.Answers)),
			},
			Questions: req.Questions,
			Answers:   res.Answers,
		}
		return p.replyAction(clientAddr, reply)
	}

	outboundID, err := p.ids.Insert(idpool.Index{
		ClientID:         req.Header.ID,
		ClientAddr:       clientAddr,
		OriginalQuestion: q,
		RetriesLeft:      p.cfg.MaxRetries,
	})
	if err != nil {
		p.logger.Warn("drop client query: id pool exhausted", "addr", clientAddr, "name", q.Name)
		return nil
	}

	payload, err := buildQuery(outboundID, q)
	if err != nil {
		p.logger.Error("encode invariant: failed to build upstream query", "err", err)
		if _, delErr := p.ids.Delete(outboundID); delErr != nil {
			p.logger.Error("id pool: delete after encode failure", "err", delErr)
		}
		return nil
	}

	return []Action{
		{Type: ActionSendUpstream, Payload: payload, OutboundID: outboundID},
		{Type: ActionArmTimer, OutboundID: outboundID, Timeout: p.cfg.Timeout},
	}
}

// HandleUpstreamDatagram implements the `Resolved` transition (spec
// §4.E): look the reply's id up in the ID Pool; if unbound, the reply is
// late or spurious and is dropped (spec §7 "UpstreamUnbound"); otherwise
// restore the client's original id, cache the answers, and reply.
func (p *Pool) HandleUpstreamDatagram(raw []byte) []Action {
	resp, err := dns.ParsePacket(raw)
	if err != nil {
		p.logger.Error("drop upstream datagram: decode failed", "err", err)
		return nil
	}

	idx, err := p.ids.Delete(resp.Header.ID)
	if err != nil {
		p.logger.Debug("drop upstream datagram: id not bound", "id", resp.Header.ID)
		return nil
	}

	p.cache.Insert(resp.Answers)

	reply := resp
	reply.Header = reply.Header.WithID(idx.ClientID)

	actions := p.replyAction(idx.ClientAddr, reply)
	actions = append(actions, Action{Type: ActionCancelTimer, OutboundID: resp.Header.ID})
	return actions
}

// HandleTimeout implements the `Pending` -> `Retrying`/`Failed`
// transitions (spec §4.E). If the id is no longer bound the reply beat
// the timer in the same tick; there is nothing left to do.
func (p *Pool) HandleTimeout(outboundID uint16) []Action {
	idx, ok := p.ids.Get(outboundID)
	if !ok {
		return nil
	}

	if idx.RetriesLeft > 0 {
		idx.RetriesLeft--
		if err := p.ids.Update(outboundID, idx); err != nil {
			p.logger.Error("id pool: update during retry", "err", err)
			return nil
		}
		payload, err := buildQuery(outboundID, idx.OriginalQuestion)
		if err != nil {
			p.logger.Error("encode invariant: failed to rebuild retry query", "err", err)
			return nil
		}
		return []Action{
			{Type: ActionSendUpstream, Payload: payload, OutboundID: outboundID},
			{Type: ActionArmTimer, OutboundID: outboundID, Timeout: p.cfg.Timeout},
		}
	}

	if _, err := p.ids.Delete(outboundID); err != nil {
		p.logger.Error("id pool: delete after retries exhausted", "err", err)
		return nil
	}
	reply := dns.Packet{
		Header: dns.Header{
			ID:      idx.ClientID,
			Flags:   dns.SetRCode(dns.RDFlag, dns.RCodeServFail),
			QDCount: 1,
		},
		Questions: []dns.Question{idx.OriginalQuestion},
	}
	return p.replyAction(idx.ClientAddr, reply)
}

func (p *Pool) replyAction(clientAddr net.Addr, reply dns.Packet) []Action {
	payload, err := reply.Marshal()
	if err != nil {
		p.logger.Error("encode invariant: failed to marshal reply", "err", err)
		return nil
	}
	return []Action{{Type: ActionReplyClient, ClientAddr: clientAddr, Payload: payload}}
}

// buildQuery constructs the wire bytes of a recursive query for q, with
// id as its transaction id (spec §4.E "ID rewrite protocol").
func buildQuery(id uint16, q dns.Question) ([]byte, error) {
	pkt := dns.Packet{
		Header: dns.Header{
			ID:      id,
			Flags:   dns.RDFlag,
			QDCount: 1,
		},
		Questions: []dns.Question{q},
	}
	return pkt.Marshal()
}
