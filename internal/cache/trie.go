// Package cache implements the domain-name-indexed cache store (spec §3
// "Trie node", §4.B "Domain Trie") and the lookup/insert orchestration
// built on top of it (spec §4.C "Cache Facade"). The trie itself is
// adapted from the label-reversed domain trie pattern used for filter-list
// matching in the wider DNS corpus this relay is drawn from, generalized
// here to hold typed resource-record sets with per-entry expiry instead of
// a boolean membership flag.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/dnsrelay/relay/internal/dns"
)

// entry is one (type, rdata) tuple in a node's RR set (spec §3 "Cache
// entry"). Deadline is the absolute expiry instant; Permanent entries
// (hosts-file seeds) never expire regardless of Deadline.
type entry struct {
	record    dns.Record
	deadline  time.Time
	permanent bool
}

func (e entry) expired(now time.Time) bool {
	return !e.permanent && now.After(e.deadline)
}

// entryKey de-duplicates a node's RR set on (type, rdata) per spec §3.
type entryKey struct {
	rtype RecordType
	rdata string
}

// RecordType is an alias of dns.RecordType, so record types pass between
// this package and the wire codec without conversion.
type RecordType = dns.RecordType

// node is one trie vertex. Each edge is a single reversed domain label
// (spec §3 "Each edge is a single label string"); a node carries entries
// directly rather than wrapping them in a separate "leaf" type, since any
// node (even an intermediate one created for a subdomain) can carry RRs of
// its own.
type node struct {
	children map[string]*node
	entries  map[entryKey]entry
}

func newNode() *node {
	return &node{children: make(map[string]*node, 2)}
}

// Trie is a domain-name-indexed cache store. Keys descend by reversed
// labels (com -> example -> www), so sibling names share prefixes with
// the zone hierarchy (spec §4.B). Mutations are expected to be serialized
// by the single event loop (spec §5); the mutex additionally makes every
// method safe to call from any goroutine.
type Trie struct {
	mu   sync.Mutex
	root *node
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{root: newNode()}
}

// reversedLabels splits a normalized domain name into labels ordered
// right-to-left: "www.example.com" -> ["com", "example", "www"].
func reversedLabels(name string) []string {
	if name == "" {
		return nil
	}
	labels := strings.Split(name, ".")
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return labels
}

// Insert adds a resource record under name, with the given TTL measured
// from now. If permanent is true the entry never expires (used for
// hosts-file seeds — spec §4.C). Insertion creates any missing
// intermediate nodes along the path (spec §4.B).
func (t *Trie) Insert(name string, rec dns.Record, ttl time.Duration, permanent bool) {
	key := entryKey{rtype: rec.Header().Type, rdata: rdataKey(rec)}
	e := entry{record: rec, permanent: permanent}
	if !permanent {
		e.deadline = time.Now().Add(ttl)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.root
	for _, label := range reversedLabels(name) {
		child, ok := n.children[label]
		if !ok {
			child = newNode()
			n.children[label] = child
		}
		n = child
	}
	if n.entries == nil {
		n.entries = make(map[entryKey]entry, 1)
	}
	n.entries[key] = e
}

// Lookup returns the non-expired records of the given type at name.
// Expired entries are dropped from the node as a side effect (spec §4.B
// "lazily on read"); if the set becomes empty the node is left in place
// (a later Insert may repopulate it) but Lookup reports a miss.
func (t *Trie) Lookup(name string, rtype RecordType) ([]dns.Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.descend(name)
	if n == nil || len(n.entries) == 0 {
		return nil, false
	}

	now := time.Now()
	var out []dns.Record
	for key, e := range n.entries {
		if e.expired(now) {
			delete(n.entries, key)
			continue
		}
		if key.rtype == rtype {
			out = append(out, e.record)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// RemoveExpired drops expired entries at name without returning them —
// used opportunistically so long-lived nodes don't accumulate stale RRs
// between lookups (spec §4.B operation list).
func (t *Trie) RemoveExpired(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.descend(name)
	if n == nil {
		return
	}
	now := time.Now()
	for key, e := range n.entries {
		if e.expired(now) {
			delete(n.entries, key)
		}
	}
}

// Destroy releases every node and entry, leaving the trie empty. The trie
// remains usable afterward: lookups miss until new entries are inserted.
func (t *Trie) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root = newNode()
}

// descend walks exactly label_count(name) edges and returns the node at
// name, or nil if any edge is missing (spec §4.B). Caller must hold t.mu.
func (t *Trie) descend(name string) *node {
	n := t.root
	for _, label := range reversedLabels(name) {
		child, ok := n.children[label]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

// rdataKey produces a stable de-duplication key for a record's RDATA.
// Marshal errors fold into an empty key, which at worst merges two
// genuinely distinct-but-unmarshalable entries — never a correctness
// issue for the record types this relay actually caches.
func rdataKey(rec dns.Record) string {
	b, err := rec.MarshalRData()
	if err != nil {
		return ""
	}
	return string(b)
}
