// Package match runs a single continuous market: one tick clock, one
// price engine, one announcement feed, and a registry of autonomous
// agents with per-agent profit ledgers.
package match

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/yanun0323/logs"

	"botmarket/bots"
	"botmarket/engine"
)

// ErrDuplicateAgent is returned when a bot id is already registered.
var ErrDuplicateAgent = errors.New("agent id already registered")

// BotSeed describes one agent to register.
type BotSeed struct {
	BotID        string              `json:"botId"`
	StrategyKind string              `json:"strategyKind"`
	Params       bots.StrategyParams `json:"strategyParams"`
	MaxPosition  float64             `json:"maxPos"`
	Limits       bots.Limits         `json:"limits"`
}

// Config controls a match.
type Config struct {
	TickInterval    time.Duration
	AnnounceWindow  int // ticks of announcement visibility
	Engine          engine.Config
	InitialPrice    float64
	StartingCapital float64
	LeaderboardSize int
	Seed            int64 // follower sampling; 0 seeds from the clock
	DefaultBots     []BotSeed
}

// LeaderboardEntry ranks one agent by equity.
type LeaderboardEntry struct {
	BotID string `json:"botId"`
	engine.PnLSnapshot
}

// TickSummary is emitted to subscribers after every settled tick.
type TickSummary struct {
	Tick          int                   `json:"tick"`
	Price         float64               `json:"price"`
	BuyVolume     float64               `json:"buyVolume"`
	SellVolume    float64               `json:"sellVolume"`
	NetFlow       float64               `json:"netFlow"`
	Announcements []engine.Announcement `json:"announcements"`
	Cartel        *CartelStatus         `json:"cartel"`
	Leaderboard   []LeaderboardEntry    `json:"leaderboard"`
}

// Snapshot is the read-only projection served by the query surface.
type Snapshot struct {
	Tick       int           `json:"tick"`
	Price      float64       `json:"price"`
	Running    bool          `json:"running"`
	Bots       []string      `json:"bots"`
	HistoryLen int           `json:"historyLen"`
	Cartel     *CartelStatus `json:"cartel,omitempty"`
}

type agentSlot struct {
	bot  *bots.Bot
	book *engine.PnLBook
}

// Match owns the tick clock and every piece of market state. All state is
// guarded by mu; one tick is processed synchronously under the lock, so
// agents, settlement, and emission are deterministic relative to each
// other.
type Match struct {
	cfg Config

	mu      sync.Mutex
	eng     *engine.PriceEngine
	feed    *engine.Feed
	history []float64
	agents  []*agentSlot // append-only between resets
	index   map[string]int
	tick    int
	cartel  *Cartel
	rng     *rand.Rand

	running bool
	stopCh  chan struct{}

	summaries chan TickSummary
}

// NewMatch builds a match and registers the configured default roster.
// The clock is not started.
func NewMatch(cfg Config) *Match {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 500 * time.Millisecond
	}
	if cfg.AnnounceWindow <= 0 {
		cfg.AnnounceWindow = 30
	}
	if cfg.InitialPrice <= 0 {
		cfg.InitialPrice = 100
	}
	if cfg.StartingCapital <= 0 {
		cfg.StartingCapital = 10
	}
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = 10
	}
	// a zero liquidity depth would turn the first flat tick into NaN
	if cfg.Engine.K <= 0 {
		cfg.Engine.K = 0.25
	}
	if cfg.Engine.L <= 0 {
		cfg.Engine.L = 2000
	}
	if cfg.Engine.Lambda <= 0 {
		cfg.Engine.Lambda = 0.03
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m := &Match{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(seed)),
		summaries: make(chan TickSummary, 64),
	}
	m.initLocked()

	for _, s := range cfg.DefaultBots {
		if err := m.AddAgent(s); err != nil {
			logs.Warnf("default bot %s skipped: %v", s.BotID, err)
		}
	}
	return m
}

// initLocked rebuilds all market state. Callers hold mu (or are the
// constructor).
func (m *Match) initLocked() {
	m.eng = engine.NewPriceEngine(m.cfg.Engine, m.cfg.InitialPrice)
	m.feed = engine.NewFeed(m.cfg.AnnounceWindow)
	m.history = []float64{m.eng.Price()}
	m.agents = nil
	m.index = make(map[string]int)
	m.tick = 0
	m.cartel = nil
}

// AddAgent registers a new agent. Duplicate ids are rejected.
func (m *Match) AddAgent(seed BotSeed) error {
	maxPos := seed.MaxPosition
	if maxPos <= 0 {
		maxPos = 20
	}
	limits := seed.Limits
	if limits.MaxPerTick <= 0 {
		limits.MaxPerTick = 2
	}
	if limits.Cooldown <= 0 {
		limits.Cooldown = 1
	}
	return m.addAgent(seed.BotID, bots.NewStrategy(seed.StrategyKind, seed.Params), maxPos, limits)
}

func (m *Match) addAgent(id string, strategy bots.Strategy, maxPos float64, limits bots.Limits) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.index[id]; exists {
		return ErrDuplicateAgent
	}

	book := engine.NewPnLBook(m.cfg.StartingCapital)
	feeTrade := m.cfg.Engine.FeeTrade

	// both callbacks run inside step() while mu is held
	submitOrder := func(o engine.Order) {
		fill := m.eng.Price()
		m.eng.SubmitOrder(o)
		book.Apply(o.Side, o.Size, fill, feeTrade)
	}
	submitAnnounce := func(agentID string, a engine.Announce) {
		m.feed.Post(agentID, a.Text, a.Stance, m.tick)
	}

	bot := bots.NewBot(
		id,
		strategy,
		bots.Wallet{MaxPosition: maxPos},
		limits,
		submitOrder,
		submitAnnounce,
	)

	m.agents = append(m.agents, &agentSlot{bot: bot, book: book})
	m.index[id] = len(m.agents) - 1
	return nil
}

// Start launches the tick clock. Idempotent.
func (m *Match) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	go m.run(m.stopCh)
	logs.Infof("match started, tick interval %s", m.cfg.TickInterval)
}

// Pause stops the tick clock without touching market state. Idempotent.
func (m *Match) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	close(m.stopCh)
	m.running = false
	logs.Info("match paused")
}

// Reset stops the clock and rebuilds all state: agents, ledgers, feed,
// cartel, price, tick counter. The default roster is not re-seeded.
func (m *Match) Reset() {
	m.Pause()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initLocked()
	logs.Info("match reset")
}

// Summaries exposes the stream of settled-tick summaries. Slow consumers
// miss summaries rather than stalling the clock.
func (m *Match) Summaries() <-chan TickSummary {
	return m.summaries
}

func (m *Match) run(stop chan struct{}) {
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.step()
		}
	}
}

// step processes exactly one tick.
func (m *Match) step() {
	m.mu.Lock()

	tick := m.tick
	if m.cartel != nil && tick >= m.cartel.UntilTick {
		logs.Infof("cartel led by %s expired at tick %d", m.cartel.LeaderID, tick)
		m.cartel = nil
	}

	anns := m.feed.Recent(tick, m.cfg.AnnounceWindow)
	ctx := engine.MarketCtx{
		Tick:          tick,
		Price:         m.eng.Price(),
		History:       append([]float64(nil), m.history...),
		Announcements: anns,
	}

	if m.cartel == nil {
		for _, s := range m.agents {
			s.bot.OnTick(ctx)
		}
	} else {
		m.cartelTick(ctx)
	}

	res := m.eng.SettleTick()
	m.history = append(m.history, res.Price)

	summary := TickSummary{
		Tick:          res.Tick,
		Price:         res.Price,
		BuyVolume:     res.BuyVolume,
		SellVolume:    res.SellVolume,
		NetFlow:       res.NetFlow,
		Announcements: anns,
		Cartel:        m.cartelStatusLocked(),
		Leaderboard:   m.leaderboardLocked(m.cfg.LeaderboardSize),
	}

	m.tick++
	m.mu.Unlock()

	select {
	case m.summaries <- summary:
	default:
	}
}

// cartelTick runs the leader first and replicates its submitted order to
// every follower through the follow path. Only a follower's own trade
// decision is replaced; its announce step still runs. Non-members run
// normally. When the leader does not trade, followers receive nothing.
func (m *Match) cartelTick(ctx engine.MarketCtx) {
	leaderIdx := m.index[m.cartel.LeaderID]
	followerSet := make(map[string]struct{}, len(m.cartel.Followers))
	for _, id := range m.cartel.Followers {
		followerSet[id] = struct{}{}
	}

	leaderOrder := m.agents[leaderIdx].bot.OnTick(ctx)

	for i, s := range m.agents {
		if i == leaderIdx {
			continue
		}
		if _, follows := followerSet[s.bot.ID()]; follows {
			s.bot.Announce(ctx)
			if leaderOrder != nil {
				s.bot.Follow(ctx.Tick, leaderOrder.Side, leaderOrder.Size)
			}
			continue
		}
		s.bot.OnTick(ctx)
	}
}

// Snapshot returns the read-only projection of current match state.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.agents))
	for i, s := range m.agents {
		ids[i] = s.bot.ID()
	}
	return Snapshot{
		Tick:       m.tick,
		Price:      m.eng.Price(),
		Running:    m.running,
		Bots:       ids,
		HistoryLen: len(m.history),
		Cartel:     m.cartelStatusLocked(),
	}
}

// Leaderboard returns the top n agents by equity, descending.
func (m *Match) Leaderboard(n int) []LeaderboardEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaderboardLocked(n)
}

func (m *Match) leaderboardLocked(n int) []LeaderboardEntry {
	mark := m.eng.Price()
	entries := make([]LeaderboardEntry, 0, len(m.agents))
	for _, s := range m.agents {
		entries = append(entries, LeaderboardEntry{
			BotID:       s.bot.ID(),
			PnLSnapshot: s.book.Snapshot(mark),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Equity > entries[j].Equity
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
