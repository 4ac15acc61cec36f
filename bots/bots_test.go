package bots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botmarket/engine"
)

// scripted always returns the same decision and announcement.
type scripted struct {
	d *engine.Decision
	a *engine.Announce
}

func (s *scripted) Decide(engine.MarketCtx) *engine.Decision { return s.d }
func (s *scripted) Announce(engine.MarketCtx) *engine.Announce { return s.a }

// decideOnly has no announce capability at all.
type decideOnly struct {
	d *engine.Decision
}

func (s *decideOnly) Decide(engine.MarketCtx) *engine.Decision { return s.d }

type sink struct {
	orders    []engine.Order
	announces []engine.Announce
}

func (s *sink) submitOrder(o engine.Order)                 { s.orders = append(s.orders, o) }
func (s *sink) submitAnnounce(_ string, a engine.Announce) { s.announces = append(s.announces, a) }

func ctxAt(tick int) engine.MarketCtx {
	return engine.MarketCtx{Tick: tick, Price: 100, History: []float64{100}}
}

func TestOnTickClampsSizeToPerTickLimit(t *testing.T) {
	out := &sink{}
	b := NewBot("b1", &decideOnly{d: &engine.Decision{Side: engine.Buy, Size: 5}},
		Wallet{MaxPosition: 20}, Limits{MaxPerTick: 2, Cooldown: 1},
		out.submitOrder, out.submitAnnounce)

	order := b.OnTick(ctxAt(0))
	require.NotNil(t, order)
	assert.Equal(t, 2.0, order.Size)
	assert.Equal(t, engine.Buy, order.Side)
	assert.Equal(t, 2.0, b.Position())
	require.Len(t, out.orders, 1)
}

func TestOnTickCooldownSkipsTrading(t *testing.T) {
	out := &sink{}
	b := NewBot("b1", &decideOnly{d: &engine.Decision{Side: engine.Buy, Size: 1}},
		Wallet{MaxPosition: 20}, Limits{MaxPerTick: 1, Cooldown: 3},
		out.submitOrder, out.submitAnnounce)

	require.NotNil(t, b.OnTick(ctxAt(0)))
	assert.Nil(t, b.OnTick(ctxAt(1)))
	assert.Nil(t, b.OnTick(ctxAt(2)))
	require.NotNil(t, b.OnTick(ctxAt(3)))
	assert.Len(t, out.orders, 2)
}

func TestOnTickRejectsPositionBreach(t *testing.T) {
	out := &sink{}
	b := NewBot("b1", &decideOnly{d: &engine.Decision{Side: engine.Buy, Size: 4}},
		Wallet{MaxPosition: 3}, Limits{MaxPerTick: 5, Cooldown: 1},
		out.submitOrder, out.submitAnnounce)

	assert.Nil(t, b.OnTick(ctxAt(0)))
	assert.Equal(t, 0.0, b.Position())
	assert.Empty(t, out.orders)

	// rejection leaves the cooldown clock untouched
	b2 := NewBot("b2", &decideOnly{d: &engine.Decision{Side: engine.Sell, Size: 2}},
		Wallet{MaxPosition: 3}, Limits{MaxPerTick: 5, Cooldown: 10},
		out.submitOrder, out.submitAnnounce)
	require.NotNil(t, b2.OnTick(ctxAt(0)))
	assert.Equal(t, -2.0, b2.Position())
}

func TestOnTickAnnouncesDuringCooldown(t *testing.T) {
	out := &sink{}
	b := NewBot("b1", &scripted{
		d: &engine.Decision{Side: engine.Buy, Size: 1},
		a: &engine.Announce{Text: "Uptrend", Stance: engine.StanceBull},
	}, Wallet{MaxPosition: 20}, Limits{MaxPerTick: 1, Cooldown: 100},
		out.submitOrder, out.submitAnnounce)

	b.OnTick(ctxAt(0))
	b.OnTick(ctxAt(1)) // cooling down: no trade, announce still fires

	assert.Len(t, out.orders, 1)
	assert.Len(t, out.announces, 2)
}

func TestAnnounceLeavesTradeStateUntouched(t *testing.T) {
	out := &sink{}
	b := NewBot("b1", &scripted{
		d: &engine.Decision{Side: engine.Buy, Size: 1},
		a: &engine.Announce{Text: "Uptrend", Stance: engine.StanceBull},
	}, Wallet{MaxPosition: 20}, Limits{MaxPerTick: 1, Cooldown: 100},
		out.submitOrder, out.submitAnnounce)

	b.Announce(ctxAt(0))
	assert.Len(t, out.announces, 1)
	assert.Empty(t, out.orders)

	// publishing did not consume the cooldown clock
	require.NotNil(t, b.OnTick(ctxAt(0)))
}

func TestOnTickNoAnnounceCapability(t *testing.T) {
	out := &sink{}
	b := NewBot("b1", &decideOnly{}, Wallet{MaxPosition: 20}, Limits{MaxPerTick: 1, Cooldown: 1},
		out.submitOrder, out.submitAnnounce)

	assert.Nil(t, b.OnTick(ctxAt(0)))
	assert.Empty(t, out.announces)
}

func TestFollowPassesRiskGate(t *testing.T) {
	out := &sink{}
	b := NewBot("f1", &decideOnly{}, Wallet{MaxPosition: 20}, Limits{MaxPerTick: 2, Cooldown: 1},
		out.submitOrder, out.submitAnnounce)

	order := b.Follow(0, engine.Buy, 5)
	require.NotNil(t, order)
	assert.Equal(t, 2.0, order.Size) // capped at the follower's own limit
	assert.Equal(t, 2.0, b.Position())
}

func TestFollowRespectsCooldownAndPositionCap(t *testing.T) {
	out := &sink{}
	b := NewBot("f1", &decideOnly{}, Wallet{MaxPosition: 2}, Limits{MaxPerTick: 2, Cooldown: 5},
		out.submitOrder, out.submitAnnounce)

	require.NotNil(t, b.Follow(0, engine.Buy, 2))
	assert.Nil(t, b.Follow(1, engine.Buy, 2))  // cooling down
	assert.Nil(t, b.Follow(10, engine.Buy, 2)) // would breach max position
	assert.Equal(t, 2.0, b.Position())
}

func TestSmaCrossDeadband(t *testing.T) {
	s := &SmaCross{Fast: 2, Slow: 4, BaseSize: 3, Band: 0.001}

	flat := engine.MarketCtx{History: []float64{100, 100, 100, 100}}
	assert.Nil(t, s.Decide(flat))

	rising := engine.MarketCtx{History: []float64{100, 101, 103, 106}}
	d := s.Decide(rising)
	require.NotNil(t, d)
	assert.Equal(t, engine.Buy, d.Side)
	assert.Equal(t, 3.0, d.Size)
}

func TestSmaCrossCrowdSignalBreaksTie(t *testing.T) {
	s := &SmaCross{Fast: 2, Slow: 4, BaseSize: 3, Band: 0.001}
	ctx := engine.MarketCtx{
		History:       []float64{100, 100, 100, 100},
		Announcements: []engine.Announcement{{Stance: engine.StanceBear}},
	}
	d := s.Decide(ctx)
	require.NotNil(t, d)
	assert.Equal(t, engine.Sell, d.Side)
}

func TestMeanRevertFadesStretch(t *testing.T) {
	s := &MeanRevert{Lookback: 4, ZThresh: 1.2, BaseSize: 2}

	stretched := engine.MarketCtx{Price: 110, History: []float64{100, 100, 100, 110}}
	d := s.Decide(stretched)
	require.NotNil(t, d)
	assert.Equal(t, engine.Sell, d.Side)
}

func TestMeanRevertNeedsHistory(t *testing.T) {
	s := &MeanRevert{Lookback: 30, ZThresh: 1.2, BaseSize: 2}
	assert.Nil(t, s.Decide(engine.MarketCtx{History: []float64{100}}))
}

func TestRandomStaysInsideProbabilities(t *testing.T) {
	s := NewRandom(0.3, 0.3, 1, 42)

	buys, sells, passes := 0, 0, 0
	for i := 0; i < 1000; i++ {
		switch d := s.Decide(engine.MarketCtx{}); {
		case d == nil:
			passes++
		case d.Side == engine.Buy:
			buys++
		default:
			sells++
		}
	}
	assert.Greater(t, buys, 0)
	assert.Greater(t, sells, 0)
	assert.Greater(t, passes, 0)
	assert.InDelta(t, 300, buys, 100)
	assert.InDelta(t, 300, sells, 100)
}

func TestNewStrategyDefaults(t *testing.T) {
	s := NewStrategy("sma", StrategyParams{})
	cross, ok := s.(*SmaCross)
	require.True(t, ok)
	assert.Equal(t, 5, cross.Fast)
	assert.Equal(t, 20, cross.Slow)

	r := NewStrategy("revert", StrategyParams{Lookback: 10})
	revert, ok := r.(*MeanRevert)
	require.True(t, ok)
	assert.Equal(t, 10, revert.Lookback)
	assert.Equal(t, 1.2, revert.ZThresh)

	_, isRandom := NewStrategy("unknown", StrategyParams{}).(*Random)
	assert.True(t, isRandom)
}
