package bots

import (
	"math"
	"math/rand"

	"botmarket/engine"
)

// crowdBias reads the latest visible announcement as a directional signal.
func crowdBias(anns []engine.Announcement) int {
	if len(anns) == 0 {
		return 0
	}
	switch anns[len(anns)-1].Stance {
	case engine.StanceBull:
		return 1
	case engine.StanceBear:
		return -1
	}
	return 0
}

// SmaCross trades a fast/slow moving-average crossover blended with the
// crowd signal, and announces the trend direction on a fixed cadence.
type SmaCross struct {
	Fast     int
	Slow     int
	BaseSize float64
	Band     float64 // deadband around the slow average
}

func (s *SmaCross) Decide(ctx engine.MarketCtx) *engine.Decision {
	fast, ok := sma(ctx.History, s.Fast)
	if !ok {
		return nil
	}
	slow, ok := sma(ctx.History, s.Slow)
	if !ok {
		return nil
	}

	intent := 0
	if fast > slow*(1+s.Band) {
		intent = 1
	} else if fast < slow*(1-s.Band) {
		intent = -1
	}

	score := intent + crowdBias(ctx.Announcements)
	if score > 0 {
		return &engine.Decision{Side: engine.Buy, Size: s.BaseSize, Reason: "trend+crowd"}
	}
	if score < 0 {
		return &engine.Decision{Side: engine.Sell, Size: s.BaseSize, Reason: "trend+crowd"}
	}
	return nil
}

func (s *SmaCross) Announce(ctx engine.MarketCtx) *engine.Announce {
	if ctx.Tick%12 != 0 {
		return nil
	}
	fast, ok := sma(ctx.History, s.Fast)
	if !ok {
		return nil
	}
	slow, ok := sma(ctx.History, s.Slow)
	if !ok {
		return nil
	}
	switch {
	case fast > slow*(1+s.Band):
		return &engine.Announce{Text: "Uptrend", Stance: engine.StanceBull}
	case fast < slow*(1-s.Band):
		return &engine.Announce{Text: "Downtrend", Stance: engine.StanceBear}
	}
	return &engine.Announce{Text: "Sideways", Stance: engine.StanceNeutral}
}

// MeanRevert fades statistically stretched prices and announces
// overbought/oversold readings.
type MeanRevert struct {
	Lookback int
	ZThresh  float64
	BaseSize float64
}

func (s *MeanRevert) Decide(ctx engine.MarketCtx) *engine.Decision {
	z, ok := zScore(ctx.History, s.Lookback)
	if !ok {
		return nil
	}

	intent := 0
	if z > s.ZThresh {
		intent = -1
	} else if z < -s.ZThresh {
		intent = 1
	}

	score := intent + crowdBias(ctx.Announcements)
	if score > 0 {
		return &engine.Decision{Side: engine.Buy, Size: s.BaseSize, Reason: "revert+crowd"}
	}
	if score < 0 {
		return &engine.Decision{Side: engine.Sell, Size: s.BaseSize, Reason: "revert+crowd"}
	}
	return nil
}

func (s *MeanRevert) Announce(ctx engine.MarketCtx) *engine.Announce {
	if ctx.Tick%15 != 0 {
		return nil
	}
	z, ok := zScore(ctx.History, s.Lookback)
	if !ok || math.Abs(z) < s.ZThresh {
		return nil
	}
	if z > 0 {
		return &engine.Announce{Text: "Overbought", Stance: engine.StanceBear}
	}
	return &engine.Announce{Text: "Oversold", Stance: engine.StanceBull}
}

// Random is the no-signal baseline: coin-flip orders, no announcements.
type Random struct {
	BuyProb  float64
	SellProb float64
	Size     float64

	rng *rand.Rand
}

// NewRandom builds a random strategy with its own seeded stream so runs
// can be reproduced.
func NewRandom(buyProb, sellProb, size float64, seed int64) *Random {
	return &Random{
		BuyProb:  buyProb,
		SellProb: sellProb,
		Size:     size,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (s *Random) Decide(_ engine.MarketCtx) *engine.Decision {
	r := s.rng.Float64()
	if r < s.BuyProb {
		return &engine.Decision{Side: engine.Buy, Size: s.Size}
	}
	if r < s.BuyProb+s.SellProb {
		return &engine.Decision{Side: engine.Sell, Size: s.Size}
	}
	return nil
}
