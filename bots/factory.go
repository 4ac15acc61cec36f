package bots

import (
	"time"

	"botmarket/sentiment"
)

// StrategyParams is the flat parameter bag accepted at registration time.
// Zero values fall back to per-kind defaults.
type StrategyParams struct {
	// sma
	Fast int     `json:"fast,omitempty"`
	Slow int     `json:"slow,omitempty"`
	Band float64 `json:"band,omitempty"`
	// revert
	Lookback int     `json:"lookback,omitempty"`
	Z        float64 `json:"z,omitempty"`
	// shared
	Size float64 `json:"size,omitempty"`
	// random
	BuyProb  float64 `json:"buyProb,omitempty"`
	SellProb float64 `json:"sellProb,omitempty"`
	Seed     int64   `json:"seed,omitempty"`
	// ai_announcer
	Base       string `json:"base,omitempty"`
	TimeoutMs  int    `json:"timeoutMs,omitempty"`
	ThinkEvery int    `json:"thinkEvery,omitempty"`
	SpeakEvery int    `json:"speakEvery,omitempty"`
}

// Preset advertises a selectable strategy kind with its defaults.
type Preset struct {
	Kind   string         `json:"kind"`
	Params StrategyParams `json:"params"`
}

// NewStrategy builds a strategy by kind. Unknown kinds fall back to the
// random baseline.
func NewStrategy(kind string, p StrategyParams) Strategy {
	switch kind {
	case "sma":
		return &SmaCross{
			Fast:     orInt(p.Fast, 5),
			Slow:     orInt(p.Slow, 20),
			BaseSize: orFloat(p.Size, 3),
			Band:     orFloat(p.Band, 0.001),
		}
	case "revert":
		return &MeanRevert{
			Lookback: orInt(p.Lookback, 30),
			ZThresh:  orFloat(p.Z, 1.2),
			BaseSize: orFloat(p.Size, 2),
		}
	case "ai_announcer":
		client := sentiment.NewClient(sentiment.Config{
			BaseURL: p.Base,
			Timeout: time.Duration(p.TimeoutMs) * time.Millisecond,
		})
		return NewSentimentAnnouncer(client, p.ThinkEvery, p.SpeakEvery)
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewRandom(orFloat(p.BuyProb, 0.15), orFloat(p.SellProb, 0.15), orFloat(p.Size, 1), seed)
}

// Presets lists the strategy kinds offered to the command surface.
func Presets() []Preset {
	return []Preset{
		{Kind: "sma", Params: StrategyParams{Fast: 5, Slow: 20, Size: 3, Band: 0.001}},
		{Kind: "revert", Params: StrategyParams{Lookback: 30, Z: 1.2, Size: 2}},
		{Kind: "random", Params: StrategyParams{BuyProb: 0.15, SellProb: 0.15, Size: 1}},
		{Kind: "ai_announcer", Params: StrategyParams{ThinkEvery: 6, SpeakEvery: 12, TimeoutMs: 200}},
	}
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orFloat(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
