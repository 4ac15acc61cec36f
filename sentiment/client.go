// Package sentiment wraps the external sentiment service behind a
// non-blocking, circuit-broken client. The tick loop never waits on it:
// a trigger either starts a request in the background or does nothing,
// and results are picked up later if they are still fresh.
package sentiment

import (
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/yanun0323/logs"

	"botmarket/engine"
)

// Config controls the client.
type Config struct {
	BaseURL     string
	Timeout     time.Duration // hard per-request timeout
	MaxFailures int           // consecutive failures before the breaker opens
	Break       time.Duration // how long the breaker stays open
	StaleTicks  int           // cached results older than this are discarded
	MaxTextLen  int
}

// DefaultConfig mirrors the worker's expected deployment.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://127.0.0.1:9933",
		Timeout:     200 * time.Millisecond,
		MaxFailures: 5,
		Break:       10 * time.Second,
		StaleTicks:  8,
		MaxTextLen:  140,
	}
}

// Result is a usable sentiment suggestion, stamped with the tick it
// describes.
type Result struct {
	Text   string
	Stance engine.Stance
	Tick   int
}

// Client holds at most one request in flight and at most one cached
// result. All state lives behind one mutex; the completion handler runs on
// the request goroutine and clears the in-flight flag exactly once.
type Client struct {
	cfg  Config
	http *resty.Client

	mu           sync.Mutex
	inFlight     bool
	failures     int
	breakerUntil time.Time
	latest       *Result

	now func() time.Time
}

// NewClient builds a client. Zero-valued config fields fall back to
// DefaultConfig.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.Break <= 0 {
		cfg.Break = def.Break
	}
	if cfg.StaleTicks <= 0 {
		cfg.StaleTicks = def.StaleTicks
	}
	if cfg.MaxTextLen <= 0 {
		cfg.MaxTextLen = def.MaxTextLen
	}
	return &Client{
		cfg: cfg,
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout),
		now: time.Now,
	}
}

type announceConstraints struct {
	TimeoutMs  int `json:"timeout_ms"`
	MaxTextLen int `json:"max_text_len"`
	Tick       int `json:"tick"`
}

type announceRequest struct {
	Type        string              `json:"type"`
	State       any                 `json:"state"`
	Constraints announceConstraints `json:"constraints"`
}

type announcePayload struct {
	Text   string `json:"text"`
	Stance string `json:"stance"`
}

type announceResponse struct {
	Announce announcePayload `json:"announce"`
	Tick     *int            `json:"tick"`
}

// TriggerAnnounce starts a background request carrying the caller's state
// snapshot. It is a no-op while a request is in flight or the breaker is
// open; it never blocks on the network.
func (c *Client) TriggerAnnounce(state any, tick int) {
	c.mu.Lock()
	if c.inFlight || c.now().Before(c.breakerUntil) {
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.mu.Unlock()

	go c.request(state, tick)
}

func (c *Client) request(state any, tick int) {
	body := announceRequest{
		Type:  "announce",
		State: state,
		Constraints: announceConstraints{
			TimeoutMs:  int(c.cfg.Timeout / time.Millisecond),
			MaxTextLen: c.cfg.MaxTextLen,
			Tick:       tick,
		},
	}

	var out announceResponse
	resp, err := c.http.R().
		SetBody(body).
		SetResult(&out).
		Post("/announce")

	c.mu.Lock()
	defer func() {
		c.inFlight = false
		c.mu.Unlock()
	}()

	if err != nil || !resp.IsSuccess() {
		c.failures++
		if c.failures >= c.cfg.MaxFailures {
			c.breakerUntil = c.now().Add(c.cfg.Break)
			c.failures = 0
			logs.Warnf("sentiment breaker open for %s", c.cfg.Break)
		}
		return
	}

	// any 2xx counts against the breaker, even if the payload is unusable
	c.failures = 0

	stance := engine.Stance(out.Announce.Stance)
	if out.Announce.Text == "" || !engine.ValidStance(stance) {
		return
	}
	text := engine.TruncateText(out.Announce.Text, c.cfg.MaxTextLen)
	resultTick := tick
	if out.Tick != nil {
		resultTick = *out.Tick
	}
	c.latest = &Result{Text: text, Stance: stance, Tick: resultTick}
}

// PopIfFresh returns the cached result once, or nil when there is none or
// it has gone stale. Stale results are discarded, never delivered.
func (c *Client) PopIfFresh(currentTick int) *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return nil
	}
	if currentTick-c.latest.Tick > c.cfg.StaleTicks {
		c.latest = nil
		return nil
	}
	r := c.latest
	c.latest = nil
	return r
}
