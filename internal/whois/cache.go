package whois

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jonboulle/clockwork"
	"github.com/yl2chen/cidranger"
)

// WallClock is the package's testable time source; tests substitute a
// clockwork.NewFakeClock().
var WallClock = clockwork.NewRealClock()

// ErrCacheNotFound and ErrCacheExpired are the two Get outcomes that
// tell the caller to fetch upstream.
var (
	ErrCacheNotFound = errors.New("whois cache: not found")
	ErrCacheExpired  = errors.New("whois cache: expired")
)

// entry is one cached WHOIS response, scoped to whichever network block
// the upstream response applied to (or a single-address /32 or /128 when
// the response didn't name a wider block). key identifies the
// (resource, kind) pair that produced this entry, letting Insert replace
// a stale entry for a resource queried again rather than leaking a
// second copy into order.
type entry struct {
	key     uint64
	network net.IPNet
	kind    QueryKind
	payload []byte
	err     error
	expires time.Time
}

func (e *entry) Network() net.IPNet { return e.network }

// Cache is an LRU+TTL cache guarded by a short-held mutex around the
// single get/insert operation; the HTTP call happens outside the lock.
// It is keyed by (resource, query-type), but a cached entry matches any
// IP inside the network block the upstream response named: one
// cidranger.Ranger per QueryKind, each entry additionally carrying an
// LRU-eviction order.
type Cache struct {
	mu      sync.Mutex
	rangers map[QueryKind]cidranger.Ranger
	order   []*entry // approximate LRU order, oldest first
	max     int
	ttl     time.Duration
}

// NewCache builds a Cache holding at most maxEntries (0 = unbounded)
// live entries in total across all query kinds, each valid for ttl.
func NewCache(maxEntries int, ttl time.Duration) *Cache {
	return &Cache{
		rangers: make(map[QueryKind]cidranger.Ranger),
		max:     maxEntries,
		ttl:     ttl,
	}
}

func (c *Cache) rangerFor(kind QueryKind) cidranger.Ranger {
	r, ok := c.rangers[kind]
	if !ok {
		r = cidranger.NewPCTrieRanger()
		c.rangers[kind] = r
	}
	return r
}

// Get looks up a cached response for (ip, kind). Concurrent double
// fetches for the same key are permitted; this
// only returns ErrCacheNotFound/ErrCacheExpired so the caller knows to
// fetch, never blocking on an in-flight fetch elsewhere.
func (c *Cache) Get(ip net.IP, kind QueryKind) ([]byte, error, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rangers[kind]
	if !ok {
		return nil, nil, ErrCacheNotFound
	}
	matches, err := r.ContainingNetworks(ip)
	if err != nil || len(matches) == 0 {
		return nil, nil, ErrCacheNotFound
	}
	e := matches[len(matches)-1].(*entry) // cidranger returns broadest-to-narrowest; the last match is the most specific block
	if WallClock.Now().After(e.expires) {
		return nil, nil, ErrCacheExpired
	}
	if i := c.indexOf(e.key); i >= 0 {
		c.order = append(append(c.order[:i], c.order[i+1:]...), e)
	}
	return e.payload, e.err, nil
}

// Insert stores a response for resource's network block under kind,
// replacing any existing entry for the same (resource, kind) pair in
// place and otherwise evicting the oldest entry if the cache is at
// capacity. network should be the block the upstream response applies
// to; callers that only know a single IP should pass a /32
// (net.CIDRMask(32, 32)) or /128 host network.
func (c *Cache) Insert(resource string, network net.IPNet, kind QueryKind, payload []byte, fetchErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(resource, kind)
	e := &entry{key: k, network: network, kind: kind, payload: payload, err: fetchErr, expires: WallClock.Now().Add(c.ttl)}

	if i := c.indexOf(k); i >= 0 {
		stale := c.order[i]
		if r, ok := c.rangers[stale.kind]; ok {
			_, _ = r.Remove(stale.network)
		}
		c.order = append(c.order[:i], c.order[i+1:]...)
	} else if c.max > 0 && len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		if r, ok := c.rangers[oldest.kind]; ok {
			_, _ = r.Remove(oldest.network)
		}
	}

	r := c.rangerFor(kind)
	_ = r.Insert(e)
	c.order = append(c.order, e)
}

func (c *Cache) indexOf(k uint64) int {
	for i, e := range c.order {
		if e.key == k {
			return i
		}
	}
	return -1
}

// key hashes a (resource, query-type) pair into the stable identifier
// Insert uses to find and replace a stale entry for a re-queried
// resource.
func key(resource string, kind QueryKind) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(resource)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(kind.String())
	return h.Sum64()
}
