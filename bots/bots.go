package bots

import (
	"math"

	"botmarket/engine"
)

// Strategy decides whether an agent trades on a tick.
type Strategy interface {
	Decide(ctx engine.MarketCtx) *engine.Decision
}

// Announcer is the optional capability of strategies that publish
// sentiment announcements. Detected by interface assertion; a strategy
// without it simply never speaks.
type Announcer interface {
	Announce(ctx engine.MarketCtx) *engine.Announce
}

// Wallet tracks an agent's net position against its hard cap.
type Wallet struct {
	MaxPosition float64
	Position    float64
}

// Limits are the per-agent risk limits applied before any order leaves
// the agent.
type Limits struct {
	MaxPerTick float64 `json:"maxPerTick"`
	Cooldown   int     `json:"cooldown"`
}

// Bot wires a strategy to the market through a risk gate. Orders that pass
// the gate fill optimistically at the current price; there is no order book
// and no partial fills.
type Bot struct {
	id       string
	strategy Strategy
	wallet   Wallet
	limits   Limits

	lastTradeTick int

	submitOrder    func(engine.Order)
	submitAnnounce func(agentID string, a engine.Announce)
}

// NewBot builds an agent. submitOrder and submitAnnounce are the only paths
// out of the agent; both are invoked synchronously during a tick.
func NewBot(
	id string,
	strategy Strategy,
	wallet Wallet,
	limits Limits,
	submitOrder func(engine.Order),
	submitAnnounce func(agentID string, a engine.Announce),
) *Bot {
	return &Bot{
		id:             id,
		strategy:       strategy,
		wallet:         wallet,
		limits:         limits,
		lastTradeTick:  math.MinInt32,
		submitOrder:    submitOrder,
		submitAnnounce: submitAnnounce,
	}
}

// ID returns the agent identifier.
func (b *Bot) ID() string {
	return b.id
}

// Position returns the wallet's current net position.
func (b *Bot) Position() float64 {
	return b.wallet.Position
}

// Announce runs the strategy's announce capability, if any. Publishing is
// not subject to the cooldown or any trade limit.
func (b *Bot) Announce(ctx engine.MarketCtx) {
	if a, ok := b.strategy.(Announcer); ok {
		if msg := a.Announce(ctx); msg != nil {
			b.submitAnnounce(b.id, *msg)
		}
	}
}

// OnTick runs the agent's full per-tick routine: announce first (not
// subject to cooldown), then the trade path. It returns the order actually
// submitted this tick, or nil.
func (b *Bot) OnTick(ctx engine.MarketCtx) *engine.Order {
	b.Announce(ctx)

	if ctx.Tick-b.lastTradeTick < b.limits.Cooldown {
		return nil
	}
	d := b.strategy.Decide(ctx)
	if d == nil {
		return nil
	}
	return b.trade(ctx.Tick, d.Side, d.Size)
}

// Follow injects a pre-built order into the agent's trading pipeline,
// bypassing the strategy but not the risk gate. Used for cartel
// replication; a rejected copy is a silent no-op.
func (b *Bot) Follow(tick int, side engine.Side, size float64) *engine.Order {
	if tick-b.lastTradeTick < b.limits.Cooldown {
		return nil
	}
	return b.trade(tick, side, size)
}

func (b *Bot) trade(tick int, side engine.Side, size float64) *engine.Order {
	size = math.Min(math.Abs(size), b.limits.MaxPerTick)
	if size <= 0 {
		return nil
	}

	next := b.wallet.Position + size
	if side == engine.Sell {
		next = b.wallet.Position - size
	}
	if math.Abs(next) > b.wallet.MaxPosition {
		return nil
	}

	order := engine.Order{AgentID: b.id, Side: side, Size: size}
	b.submitOrder(order)
	b.wallet.Position = next
	b.lastTradeTick = tick
	return &order
}
