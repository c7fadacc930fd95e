package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nijaru/videovoyager/utils"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const defaultMaxClients = 10000

// Limit allows Events requests per Period, refilled continuously.
type Limit struct {
	Events int
	Period time.Duration
}

func (l Limit) String() string {
	return strconv.Itoa(l.Events) + " per " + l.Period.String()
}

var periods = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseLimit parses limits of the form "30 per minute" or "200 per day".
func ParseLimit(s string) (Limit, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) != 3 || fields[1] != "per" {
		return Limit{}, pkgerrors.Errorf("invalid rate limit %q", s)
	}

	events, err := strconv.Atoi(fields[0])
	if err != nil || events <= 0 {
		return Limit{}, pkgerrors.Errorf("invalid rate limit count in %q", s)
	}

	period, ok := periods[strings.TrimSuffix(fields[2], "s")]
	if !ok {
		return Limit{}, pkgerrors.Errorf("invalid rate limit period in %q", s)
	}

	return Limit{Events: events, Period: period}, nil
}

func ParseLimits(specs ...string) ([]Limit, error) {
	limits := make([]Limit, 0, len(specs))
	for _, s := range specs {
		if strings.TrimSpace(s) == "" {
			continue
		}
		l, err := ParseLimit(s)
		if err != nil {
			return nil, err
		}
		limits = append(limits, l)
	}
	return limits, nil
}

// RateLimiter applies a set of limits per client address. A request passes
// only when every limit has capacity; a rejected request consumes nothing.
type RateLimiter struct {
	limits     []Limit
	clients    *lru.Cache[string, []*rate.Limiter]
	trustProxy bool
}

// NewRateLimiter tracks at most maxClients addresses, forgetting the least
// recently seen ones first.
func NewRateLimiter(maxClients int, limits ...Limit) (*RateLimiter, error) {
	if maxClients <= 0 {
		maxClients = defaultMaxClients
	}
	clients, err := lru.New[string, []*rate.Limiter](maxClients)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create rate limiter cache")
	}
	return &RateLimiter{limits: limits, clients: clients}, nil
}

// TrustProxy makes the limiter key clients on X-Forwarded-For.
func (rl *RateLimiter) TrustProxy(trust bool) *RateLimiter {
	rl.trustProxy = trust
	return rl
}

func (rl *RateLimiter) limitersFor(client string) []*rate.Limiter {
	if limiters, ok := rl.clients.Get(client); ok {
		return limiters
	}
	limiters := make([]*rate.Limiter, len(rl.limits))
	for i, l := range rl.limits {
		every := l.Period / time.Duration(l.Events)
		limiters[i] = rate.NewLimiter(rate.Every(every), l.Events)
	}
	// Another request for the same client may have raced us; keep theirs.
	if prev, ok, _ := rl.clients.PeekOrAdd(client, limiters); ok {
		return prev
	}
	return limiters
}

// Allow reports whether client may proceed now and, if not, how long until
// it may retry.
func (rl *RateLimiter) Allow(client string) (bool, time.Duration) {
	if len(rl.limits) == 0 {
		return true, 0
	}

	now := time.Now()
	limiters := rl.limitersFor(client)
	reservations := make([]*rate.Reservation, 0, len(limiters))
	var wait time.Duration
	for _, l := range limiters {
		r := l.ReserveN(now, 1)
		reservations = append(reservations, r)
		if !r.OK() {
			wait = math.MaxInt64
			continue
		}
		if d := r.DelayFrom(now); d > wait {
			wait = d
		}
	}

	if wait == 0 {
		return true, 0
	}
	for _, r := range reservations {
		r.CancelAt(now)
	}
	return false, wait
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.Allow(ClientIP(r, rl.trustProxy))
		if !ok {
			if wait < math.MaxInt64 {
				seconds := int(math.Ceil(wait.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
			}
			GetLogger(r.Context()).WithField("retry_after", wait).Warn("Rate limit exceeded")
			utils.WriteError(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the host part of RemoteAddr. With trustProxy set, the first
// X-Forwarded-For address takes precedence.
func ClientIP(r *http.Request, trustProxy bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); trustProxy && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
