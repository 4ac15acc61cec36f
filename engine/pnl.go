package engine

import "math"

// PnLBook tracks one agent's net position, weighted-average cost, realized
// profit and fees across fills. Positive position is long, negative short.
type PnLBook struct {
	Position float64
	AvgCost  float64 // defined only while Position != 0
	Realized float64
	Fees     float64
	Volume   float64

	startingCapital float64
}

// PnLSnapshot is a mark-to-market view of a book.
type PnLSnapshot struct {
	Position   float64 `json:"pos"`
	AvgCost    float64 `json:"avg"`
	Realized   float64 `json:"realized"`
	Unrealized float64 `json:"unreal"`
	Fees       float64 `json:"fees"`
	Equity     float64 `json:"equity"`
	Volume     float64 `json:"volume"`
}

// NewPnLBook creates a flat book with the given starting capital.
func NewPnLBook(startingCapital float64) *PnLBook {
	return &PnLBook{startingCapital: startingCapital}
}

// Apply records a fill. Fills with size <= 0 are ignored.
//
// Same-direction fills (or fills from flat) extend the position and update
// the size-weighted average cost. Opposite-direction fills first close
// min(|pos|, size) units against the average cost, booking realized PnL;
// any residual size opens a fresh position at the fill price.
func (b *PnLBook) Apply(side Side, size, fillPrice, fee float64) {
	if size <= 0 {
		return
	}
	dir := 1.0
	if side == Sell {
		dir = -1
	}
	b.Fees += fee
	b.Volume += size

	if b.Position == 0 || sameSign(b.Position, dir) {
		absPos := math.Abs(b.Position)
		if absPos == 0 {
			b.AvgCost = fillPrice
		} else {
			b.AvgCost = (b.AvgCost*absPos + fillPrice*size) / (absPos + size)
		}
		b.Position += dir * size
		return
	}

	closeQty := math.Min(math.Abs(b.Position), size)
	if b.Position > 0 {
		b.Realized += (fillPrice - b.AvgCost) * closeQty
	} else {
		b.Realized += (b.AvgCost - fillPrice) * closeQty
	}

	remaining := size - closeQty
	b.Position += dir * closeQty

	if b.Position == 0 {
		b.AvgCost = 0
		if remaining > 0 {
			// flipped: residual opens the new side at the fill price
			b.AvgCost = fillPrice
			b.Position = dir * remaining
		}
	}
}

// Snapshot marks the book against the given price.
func (b *PnLBook) Snapshot(markPrice float64) PnLSnapshot {
	var unreal float64
	switch {
	case b.Position > 0:
		unreal = (markPrice - b.AvgCost) * b.Position
	case b.Position < 0:
		unreal = (b.AvgCost - markPrice) * -b.Position
	}
	return PnLSnapshot{
		Position:   b.Position,
		AvgCost:    b.AvgCost,
		Realized:   b.Realized,
		Unrealized: unreal,
		Fees:       b.Fees,
		Equity:     b.startingCapital + b.Realized + unreal - b.Fees,
		Volume:     b.Volume,
	}
}

func sameSign(pos, dir float64) bool {
	return (pos > 0 && dir > 0) || (pos < 0 && dir < 0)
}
