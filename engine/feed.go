package engine

import "unicode/utf8"

// maxAnnouncementLen bounds stored announcement text.
const maxAnnouncementLen = 280

// TruncateText cuts s down to at most max bytes without splitting a rune.
func TruncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// pruneThreshold is the feed length at which old entries are compacted away.
const pruneThreshold = 4096

// Feed is the append-only, time-windowed store of announcements.
type Feed struct {
	entries   []Announcement
	maxWindow int
}

// NewFeed creates a feed. maxWindow is the widest visibility window any
// reader will ask for; older entries become eligible for pruning.
func NewFeed(maxWindow int) *Feed {
	return &Feed{maxWindow: maxWindow}
}

// Post appends an announcement for the given tick and returns it.
// Text longer than the feed bound is truncated.
func (f *Feed) Post(agentID, text string, stance Stance, tick int) Announcement {
	a := Announcement{Tick: tick, AgentID: agentID, Text: TruncateText(text, maxAnnouncementLen), Stance: stance}
	f.entries = append(f.entries, a)
	if len(f.entries) >= pruneThreshold {
		f.prune(tick - f.maxWindow)
	}
	return a
}

// Recent returns every announcement with tick >= currentTick - windowTicks,
// in insertion order.
func (f *Feed) Recent(currentTick, windowTicks int) []Announcement {
	from := currentTick - windowTicks
	out := make([]Announcement, 0, 8)
	for _, a := range f.entries {
		if a.Tick >= from {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of stored entries.
func (f *Feed) Len() int {
	return len(f.entries)
}

func (f *Feed) prune(beforeTick int) {
	kept := f.entries[:0]
	for _, a := range f.entries {
		if a.Tick >= beforeTick {
			kept = append(kept, a)
		}
	}
	f.entries = kept
}
