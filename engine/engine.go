package engine

import (
	"math"
	"math/rand"
)

// PriceEngine aggregates per-tick order flow and settles it into a new
// price through a liquidity-depth impact model. It is the only component
// that mutates price state.
type PriceEngine struct {
	cfg   Config
	price float64
	tick  int

	// per-tick accumulators, zeroed on every settle
	buy  float64
	sell float64
	fees float64

	randn func() float64
}

// NewPriceEngine builds an engine starting at initialPrice.
func NewPriceEngine(cfg Config, initialPrice float64) *PriceEngine {
	if cfg.PriceFloor <= 0 {
		cfg.PriceFloor = 0.01
	}
	return &PriceEngine{
		cfg:   cfg,
		price: initialPrice,
		randn: rand.NormFloat64,
	}
}

// Price returns the current settled price.
func (e *PriceEngine) Price() float64 {
	return e.price
}

// Config returns the engine parameters.
func (e *PriceEngine) Config() Config {
	return e.cfg
}

// SubmitOrder accumulates an order into the current tick's flow.
// Orders with size <= 0 are dropped.
func (e *PriceEngine) SubmitOrder(o Order) {
	if o.Size <= 0 {
		return
	}
	if o.Side == Buy {
		e.buy += o.Size
	} else {
		e.sell += o.Size
	}
	if e.cfg.FeeTrade > 0 {
		e.fees += e.cfg.FeeTrade
	}
}

// SettleTick converts the accumulated flow into a new price and resets the
// per-tick accumulators.
//
// net flow moves the price by k*net/(L+|net|), bounded in (-k, k) for any
// net magnitude. The move is then clamped to ±lambda of the pre-tick price,
// scaled by a lognormal noise factor when SigmaNoise > 0, and floored.
func (e *PriceEngine) SettleTick() TickResult {
	net := e.buy - e.sell
	delta := e.cfg.K * net / (e.cfg.L + math.Abs(net))

	next := e.price * (1 + delta)
	next = clip(next, e.price*(1-e.cfg.Lambda), e.price*(1+e.cfg.Lambda))
	if e.cfg.SigmaNoise > 0 {
		next *= math.Exp(e.randn() * e.cfg.SigmaNoise)
	}
	e.price = math.Max(e.cfg.PriceFloor, next)

	res := TickResult{
		Tick:       e.tick,
		Price:      e.price,
		BuyVolume:  e.buy,
		SellVolume: e.sell,
		NetFlow:    net,
		Fees:       e.fees,
	}
	e.tick++
	e.buy = 0
	e.sell = 0
	e.fees = 0
	return res
}

func clip(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
