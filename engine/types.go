package engine

// Side represents the direction of an order.
type Side int

const (
	// Buy pushes the net flow up.
	Buy Side = iota
	// Sell pushes the net flow down.
	Sell
)

// String returns the wire spelling of the side.
func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Stance classifies the sentiment of an announcement.
type Stance string

const (
	StanceBull    Stance = "BULL"
	StanceBear    Stance = "BEAR"
	StanceNeutral Stance = "NEUTRAL"
)

// ValidStance reports whether s is one of the recognized stances.
func ValidStance(s Stance) bool {
	switch s {
	case StanceBull, StanceBear, StanceNeutral:
		return true
	}
	return false
}

// Order describes a request to trade. Size must be positive; orders with
// size <= 0 are dropped by the engine.
type Order struct {
	AgentID string
	Side    Side
	Size    float64
}

// Decision is a strategy's trade intent for the current tick.
type Decision struct {
	Side   Side
	Size   float64
	Reason string
}

// Announce is a strategy's outgoing sentiment message, before it is
// tagged with an author and tick.
type Announce struct {
	Text   string
	Stance Stance
}

// Announcement is a sentiment message recorded in the feed. Immutable
// once posted.
type Announcement struct {
	Tick    int    `json:"tick"`
	AgentID string `json:"agentId"`
	Text    string `json:"text"`
	Stance  Stance `json:"stance"`
}

// MarketCtx is the shared read-only view handed to every strategy on a tick.
type MarketCtx struct {
	Tick          int
	Price         float64
	History       []float64
	Announcements []Announcement
}

// Config controls the price formation model.
type Config struct {
	K          float64 // price sensitivity
	L          float64 // virtual liquidity depth
	Lambda     float64 // per-tick price limit, e.g. 0.03 = ±3%
	SigmaNoise float64 // lognormal noise std; 0 disables noise
	FeeTrade   float64 // fixed fee per accepted order
	PriceFloor float64 // minimum settled price
}

// TickResult summarizes one settled tick.
type TickResult struct {
	Tick       int
	Price      float64
	BuyVolume  float64
	SellVolume float64
	NetFlow    float64
	Fees       float64
}
