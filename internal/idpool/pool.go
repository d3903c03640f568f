// Package idpool implements the bounded 16-bit transaction-ID allocator
// described in spec §3 ("ID Pool") and §4.D. It hands out DNS message IDs
// for outbound (upstream) queries and binds each one to the in-flight
// context needed to route the eventual reply back to its client.
//
// The pool is a fixed-capacity FIFO free list over the full id space
// (0..65535, spec §3 "ID Pool" invariants): every id is either free or
// bound to exactly one Index, never both, and |free| + |bound| is always
// 65536. FIFO allocation order maximizes the time before any one id is
// reused (spec testable property 4), which bounds how long a stray,
// late-arriving upstream reply could collide with a freshly issued id.
package idpool

import (
	"errors"
	"net"

	"github.com/dnsrelay/relay/internal/dns"
)

// poolSize is the full 16-bit id space (spec §3 "0..65535").
const poolSize = 1 << 16

// ErrPoolExhausted is returned by Insert when every id is currently bound
// (spec §7 "PoolExhausted: ID Pool full").
var ErrPoolExhausted = errors.New("idpool: pool exhausted")

// ErrNotBound is returned by Delete when the given id has no Index bound
// to it (spec §4.E "UpstreamUnbound").
var ErrNotBound = errors.New("idpool: id not bound")

// Index is the per-in-flight-query context an outbound id is bound to
// (spec §3 "Index entry"). It lives from send-upstream until the query
// pool frees its id on response, timeout-exhaustion, or cancellation.
type Index struct {
	ClientID         uint16
	ClientAddr       net.Addr
	OriginalQuestion dns.Question
	RetriesLeft      int
	TimerHandle      any
}

// Pool is a bounded FIFO free list of 16-bit ids, each either free or
// bound to an Index. It is not safe for concurrent use; callers
// (the query pool, in turn owned by the single event loop, spec §5)
// serialize all access.
type Pool struct {
	free  []uint16 // ring buffer of free ids
	head  int      // index of the next id Insert will hand out
	count int      // number of free ids currently in the ring
	bound map[uint16]Index
}

// New returns a pool with every id in 0..65535 free, in ascending order.
func New() *Pool {
	p := &Pool{
		free:  make([]uint16, poolSize),
		bound: make(map[uint16]Index, poolSize),
	}
	for i := 0; i < poolSize; i++ {
		p.free[i] = uint16(i)
	}
	p.count = poolSize
	return p
}

// Full reports whether every id is currently bound (spec §4.D "full()").
func (p *Pool) Full() bool {
	return p.count == 0
}

// Insert binds idx to the next free id in FIFO order and returns that id
// (spec §4.D "insert(Index) -> u16"). It returns ErrPoolExhausted if no id
// is free.
func (p *Pool) Insert(idx Index) (uint16, error) {
	if p.Full() {
		return 0, ErrPoolExhausted
	}
	id := p.free[p.head]
	p.head = (p.head + 1) % poolSize
	p.count--
	p.bound[id] = idx
	return id, nil
}

// Query reports whether id is currently bound to an Index (spec §4.D
// "query(id) -> bool").
func (p *Pool) Query(id uint16) bool {
	_, ok := p.bound[id]
	return ok
}

// Get returns the Index bound to id without freeing it, for callers that
// need to inspect in-flight state (e.g. for retry bookkeeping) before
// deciding whether to delete.
func (p *Pool) Get(id uint16) (Index, bool) {
	idx, ok := p.bound[id]
	return idx, ok
}

// Update replaces the Index bound to id in place, for retry bookkeeping
// (spec §4.E "Retrying": retries_left--, timer re-armed) that must not
// disturb the id's position in the free-list rotation.
func (p *Pool) Update(id uint16, idx Index) error {
	if _, ok := p.bound[id]; !ok {
		return ErrNotBound
	}
	p.bound[id] = idx
	return nil
}

// Delete unbinds id, returns the Index it was bound to, and returns the
// id to the back of the free queue (spec §4.D "delete(id) -> Index").
// Returning it to the tail, not the head, is what gives the pool its FIFO
// reuse ordering (spec testable property 4): a just-freed id is the last
// one Insert will hand out again.
func (p *Pool) Delete(id uint16) (Index, error) {
	idx, ok := p.bound[id]
	if !ok {
		return Index{}, ErrNotBound
	}
	delete(p.bound, id)
	tail := (p.head + p.count) % poolSize
	p.free[tail] = id
	p.count++
	return idx, nil
}

// Destroy releases every binding and resets the pool to its initial,
// fully-free state. Any outstanding timers referenced by TimerHandle are
// the caller's responsibility to cancel first (spec §5 "Teardown...
// outstanding timers are cancelled").
func (p *Pool) Destroy() {
	*p = *New()
}

// Bound reports how many ids are currently bound.
func (p *Pool) Bound() int {
	return poolSize - p.count
}
