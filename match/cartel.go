package match

import (
	"errors"

	"github.com/yanun0323/logs"
)

// ErrLeaderNotFound is returned when a cartel start names an unregistered
// leader.
var ErrLeaderNotFound = errors.New("cartel leader not registered")

// Cartel is the leader/follower order-copying arrangement. At most one
// exists at a time.
type Cartel struct {
	LeaderID  string   `json:"leaderId"`
	Followers []string `json:"followers"`
	UntilTick int      `json:"untilTick"`
}

// CartelStatus is the per-tick view of the active cartel.
type CartelStatus struct {
	LeaderID  string   `json:"leaderId"`
	Followers []string `json:"followers"`
	TicksLeft int      `json:"ticksLeft"`
}

// StartCartel installs a cartel led by leaderID, sampling followerCount
// distinct followers (without replacement, leader excluded) from the
// registered agents. An existing cartel is replaced.
func (m *Match) StartCartel(leaderID string, followerCount, durationTicks int) (Cartel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.index[leaderID]; !ok {
		return Cartel{}, ErrLeaderNotFound
	}

	candidates := make([]string, 0, len(m.agents))
	for _, s := range m.agents {
		if id := s.bot.ID(); id != leaderID {
			candidates = append(candidates, id)
		}
	}
	m.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if followerCount < 0 {
		followerCount = 0
	}
	if followerCount > len(candidates) {
		followerCount = len(candidates)
	}
	followers := append([]string(nil), candidates[:followerCount]...)

	m.cartel = &Cartel{
		LeaderID:  leaderID,
		Followers: followers,
		UntilTick: m.tick + durationTicks,
	}
	logs.Infof("cartel started: leader=%s followers=%d until=%d", leaderID, len(followers), m.cartel.UntilTick)
	return *m.cartel, nil
}

// StopCartel clears any active cartel immediately. Always succeeds.
func (m *Match) StopCartel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cartel != nil {
		logs.Infof("cartel led by %s stopped", m.cartel.LeaderID)
	}
	m.cartel = nil
}

func (m *Match) cartelStatusLocked() *CartelStatus {
	if m.cartel == nil {
		return nil
	}
	left := m.cartel.UntilTick - m.tick
	if left < 0 {
		left = 0
	}
	return &CartelStatus{
		LeaderID:  m.cartel.LeaderID,
		Followers: m.cartel.Followers,
		TicksLeft: left,
	}
}
