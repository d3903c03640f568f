package cache

import (
	"log/slog"
	"time"

	"github.com/dnsrelay/relay/internal/dns"
)

// maxChaseDepth bounds how many CNAME hops resolve() follows in a single
// lookup before giving up (spec §4.C, testable property 7).
const maxChaseDepth = 8

// Resolution is the outcome of a Cache.Resolve call.
type Resolution struct {
	Hit     bool
	Blocked bool       // hosts-file sink-hole entry was the reason for the hit
	Answers []dns.Record
}

// Cache is the lookup/insert orchestration layer on top of the Trie (spec
// §4.C "Cache Facade"). It owns no network state — it is purely a
// name -> records lookup the query pool consults before forwarding
// upstream.
type Cache struct {
	trie   *Trie
	logger *slog.Logger
}

// New returns an empty cache using the given trie and logger (nil logger
// falls back to slog.Default()).
func New(trie *Trie, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{trie: trie, logger: logger}
}

// Resolve looks up a question locally, chasing CNAMEs as needed (spec
// §4.C algorithm). It never touches the network; a Miss means the caller
// should forward to upstream.
func (c *Cache) Resolve(name string, qtype uint16) Resolution {
	name = dns.NormalizeName(name)
	var chain []dns.Record

	cur := name
	for depth := 0; depth <= maxChaseDepth; depth++ {
		if recs, ok := c.trie.Lookup(cur, RecordType(qtype)); ok {
			if _, ok := blockedRecord(recs); ok {
				c.logger.Debug("cache hit: blocked", "name", cur, "qtype", qtype)
				return Resolution{Hit: true, Blocked: true, Answers: nil}
			}
			return Resolution{Hit: true, Answers: append(chain, recs...)}
		}

		if depth == maxChaseDepth {
			break
		}
		cnames, ok := c.trie.Lookup(cur, dns.TypeCNAME)
		if !ok || len(cnames) == 0 {
			break
		}
		chain = append(chain, cnames[0])
		target, ok := cnames[0].(*dns.NameRecord)
		if !ok {
			break
		}
		cur = target.Target
	}

	return Resolution{Hit: false}
}

// blockedRecord reports whether recs contains a hosts-file sink-hole
// entry, identified by the all-zero address (0.0.0.0 or ::) that
// seedHostsLine stores for blocked names (spec §4.C "Blocked-response
// synthesis"). Only the address is checked, not whether the entry is
// permanent.
func blockedRecord(recs []dns.Record) (dns.Record, bool) {
	for _, r := range recs {
		if ip, ok := r.(*dns.IPRecord); ok && isBlockedAddr(ip.Addr) {
			return r, true
		}
	}
	return nil, false
}

func isBlockedAddr(addr []byte) bool {
	for _, b := range addr {
		if b != 0 {
			return false
		}
	}
	return len(addr) > 0
}

// Insert ingests the Answer-section records of an upstream response into
// the trie (spec §4.C "insert(message)"). Authority and Additional
// sections are never cached (scope limit, spec §4.C).
func (c *Cache) Insert(answers []dns.Record) {
	for _, rr := range answers {
		h := rr.Header()
		switch h.Type {
		case dns.TypeA, dns.TypeAAAA, dns.TypeCNAME, dns.TypeNS, dns.TypeSOA:
			c.trie.Insert(h.Name, rr, time.Duration(h.TTL)*time.Second, false)
		default:
			// Out of scope per spec §1/§3 (only A, AAAA, CNAME, NS, SOA are cached).
		}
	}
}

// trieFor exposes the underlying Trie to in-package callers (the tests)
// that need to insert or look up entries directly.
func (c *Cache) trieFor() *Trie { return c.trie }

// InsertPermanent seeds rec directly as a never-expiring entry, bypassing
// TTL bookkeeping, for callers outside this package that need to
// pre-populate the cache (e.g. tests) without a TTL-bearing upstream
// reply. The hosts-file loader inserts into the trie directly.
func (c *Cache) InsertPermanent(rec dns.Record) {
	c.trie.Insert(rec.Header().Name, rec, 0, true)
}
