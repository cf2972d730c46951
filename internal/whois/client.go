package whois

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dnsfleet/mhost/internal/dnserrors"
	"github.com/dnsfleet/mhost/internal/metrics"
	"github.com/dnsfleet/mhost/internal/stream"
)

// ClientOpts configures a Client: the stat-service endpoint, cache
// sizing/TTL, request concurrency and rate limit.
type ClientOpts struct {
	Endpoint              string
	CacheSize             int
	CacheTTL              time.Duration
	MaxConcurrentRequests int
	RateLimitPerSecond    float64
	AbortOnError          bool
}

// Client is the typed WHOIS client: it exposes only
// Query(MultiQuery) -> []Response, backed by an HTTP client, a rate
// limiter, and the LRU+TTL cache in cache.go.
type Client struct {
	opts    ClientOpts
	http    *http.Client
	limiter *rate.Limiter
	cache   *Cache
	metrics *metrics.Registry // optional; nil means no metrics recorded
}

// WithMetrics attaches a metrics.Registry that subsequent Query calls
// report whois_cache_hits_total/whois_cache_misses_total and
// breaker_trips_total against. Returns c for chaining.
func (c *Client) WithMetrics(m *metrics.Registry) *Client {
	c.metrics = m
	return c
}

// New constructs a Client. The rate limiter and bounded-concurrency
// stream together bound outbound request pressure on the stat-service,
// the same admission-control shape the DNS side uses, here collapsed
// to one level since WHOIS has no per-resolver fan-out.
func New(opts ClientOpts) *Client {
	if opts.MaxConcurrentRequests < 1 {
		opts.MaxConcurrentRequests = 1
	}
	limit := rate.Limit(opts.RateLimitPerSecond)
	if opts.RateLimitPerSecond <= 0 {
		limit = rate.Inf
	}
	return &Client{
		opts:    opts,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(limit, 1),
		cache:   NewCache(opts.CacheSize, opts.CacheTTL),
	}
}

// Query runs mq's (resource, kind) cross-product through the bounded
// stream, cache-first, falling back to an HTTP GET against the
// configured endpoint. When AbortOnError is set, the stream's breaker
// stops pulling further upstream requests after the first Error
// response.
func (c *Client) Query(ctx context.Context, mq MultiQuery) []Response {
	pairs := mq.Expand()
	tasks := make([]stream.Task[Response], 0, len(pairs))
	for _, p := range pairs {
		p := p
		tasks = append(tasks, func(ctx context.Context) (Response, error) {
			return c.queryOne(ctx, p.Resource, p.Kind), nil
		})
	}

	var breaker stream.Breaker[Response]
	if c.opts.AbortOnError {
		breaker = func(r Response) bool {
			tripped := r.Err != nil
			if tripped && c.metrics != nil {
				c.metrics.ObserveBreakerTrip()
			}
			return tripped
		}
	}

	items, _ := stream.Collect(ctx, c.opts.MaxConcurrentRequests, tasks, breaker)
	return items
}

func (c *Client) queryOne(ctx context.Context, resource string, kind QueryKind) Response {
	ip, resNet := parseResource(resource)
	if ip != nil {
		if payload, fetchErr, cacheErr := c.cache.Get(ip, kind); cacheErr == nil {
			if c.metrics != nil {
				c.metrics.ObserveCacheResult(true)
			}
			return Response{Resource: resource, Kind: kind, Payload: payload, Err: fetchErr}
		}
	}
	if c.metrics != nil {
		c.metrics.ObserveCacheResult(false)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Response{Resource: resource, Kind: kind, Err: &dnserrors.IoError{Source: err}}
	}

	payload, network, fetchErr := c.fetch(ctx, resource, kind)
	if ip != nil {
		block := network
		if block.IP == nil {
			if resNet != nil {
				block = *resNet
			} else {
				block = hostNetwork(ip)
			}
		}
		c.cache.Insert(resource, block, kind, payload, fetchErr)
	}
	return Response{Resource: resource, Kind: kind, Payload: payload, Err: fetchErr}
}

// parseResource interprets resource as an IP literal or a CIDR network.
// An IP resource is cached under whatever block the upstream response
// names (falling back to a host network); a network resource is cached
// under its own block, keyed by its network address. Anything else is
// uncacheable and always fetched.
func parseResource(resource string) (net.IP, *net.IPNet) {
	if ip := net.ParseIP(resource); ip != nil {
		return ip, nil
	}
	if _, ipnet, err := net.ParseCIDR(resource); err == nil {
		return ipnet.IP, ipnet
	}
	return nil, nil
}

func (c *Client) fetch(ctx context.Context, resource string, kind QueryKind) ([]byte, net.IPNet, error) {
	url := fmt.Sprintf("%s/%s/%s", c.opts.Endpoint, kind.String(), resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, net.IPNet{}, &dnserrors.IoError{Source: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, net.IPNet{}, &dnserrors.IoError{Source: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, net.IPNet{}, &dnserrors.HttpStatusError{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, net.IPNet{}, &dnserrors.HttpBodyError{Source: err}
	}

	network, _ := extractNetwork(body)
	return body, network, nil
}

// hostNetwork returns the single-address /32 or /128 network for ip,
// used when the upstream response doesn't name a wider CIDR block.
func hostNetwork(ip net.IP) net.IPNet {
	if v4 := ip.To4(); v4 != nil {
		return net.IPNet{IP: v4, Mask: net.CIDRMask(32, 32)}
	}
	return net.IPNet{IP: ip.To16(), Mask: net.CIDRMask(128, 128)}
}
