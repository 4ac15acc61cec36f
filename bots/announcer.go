package bots

import (
	"botmarket/engine"
	"botmarket/sentiment"
)

// marketState is the snapshot shipped to the sentiment service.
type marketState struct {
	Tick          int                   `json:"tick"`
	Price         float64               `json:"price"`
	SMA5          *float64              `json:"sma5"`
	SMA20         *float64              `json:"sma20"`
	Z30           *float64              `json:"z30"`
	Announcements []engine.Announcement `json:"anns"`
}

// SentimentAnnouncer never trades. It asks the sentiment client for a
// suggestion on its own think cadence and relays fresh results on its own
// speak cadence; both are independent of the client's internal timing.
type SentimentAnnouncer struct {
	client     *sentiment.Client
	thinkEvery int
	speakEvery int
	lastThink  int
}

// NewSentimentAnnouncer builds the announcer strategy around an existing
// client.
func NewSentimentAnnouncer(client *sentiment.Client, thinkEvery, speakEvery int) *SentimentAnnouncer {
	if thinkEvery <= 0 {
		thinkEvery = 6
	}
	if speakEvery <= 0 {
		speakEvery = 12
	}
	return &SentimentAnnouncer{
		client:     client,
		thinkEvery: thinkEvery,
		speakEvery: speakEvery,
		lastThink:  -1 << 30,
	}
}

func (s *SentimentAnnouncer) Decide(_ engine.MarketCtx) *engine.Decision {
	return nil
}

func (s *SentimentAnnouncer) Announce(ctx engine.MarketCtx) *engine.Announce {
	if ctx.Tick-s.lastThink >= s.thinkEvery {
		s.client.TriggerAnnounce(snapshotState(ctx), ctx.Tick)
		s.lastThink = ctx.Tick
	}

	pending := s.client.PopIfFresh(ctx.Tick)
	if pending == nil {
		return nil
	}
	if ctx.Tick%s.speakEvery != 0 {
		return nil
	}
	return &engine.Announce{Text: pending.Text, Stance: pending.Stance}
}

func snapshotState(ctx engine.MarketCtx) marketState {
	st := marketState{Tick: ctx.Tick, Price: ctx.Price}
	if v, ok := sma(ctx.History, 5); ok {
		st.SMA5 = &v
	}
	if v, ok := sma(ctx.History, 20); ok {
		st.SMA20 = &v
	}
	if v, ok := zScore(ctx.History, 30); ok {
		st.Z30 = &v
	}
	anns := ctx.Announcements
	if len(anns) > 6 {
		anns = anns[len(anns)-6:]
	}
	st.Announcements = anns
	return st
}
