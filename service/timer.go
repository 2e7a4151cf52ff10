package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wizard-game/engine"
)

// armTimer restarts the table's turn clock. When it runs out before anyone
// moves, the player to act forfeits. Callers hold t.mu.
func (m *Manager) armTimer(roomID string, t *table) {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if m.turnTimeout <= 0 {
		return
	}
	snap := t.session.State()
	if snap.CurrentPlayer == "" {
		return
	}
	version := snap.Version
	t.timer = time.AfterFunc(m.turnTimeout, func() {
		m.expire(roomID, version)
	})
}

func (m *Manager) expire(roomID string, version int) {
	t, err := m.lookup(roomID)
	if err != nil {
		return
	}
	t.mu.Lock()
	snap := t.session.State()
	if snap.Version != version || snap.CurrentPlayer == "" {
		t.mu.Unlock()
		return
	}
	player := snap.CurrentPlayer
	choose := m.chooser(roomID, t, snap)
	err = m.moveLocked(context.Background(), roomID, t, func(s *engine.Session) error {
		_, err := s.ForfeitTurnWith(player, choose)
		return err
	})
	t.mu.Unlock()
	if err != nil {
		m.log.Warn("turn timeout forfeit failed", zap.String("room_id", roomID), zap.String("player_id", player), zap.Error(err))
		return
	}
	m.log.Info("turn timed out", zap.String("room_id", roomID), zap.String("player_id", player))
	m.changed(roomID)
}

// chooser asks the autoplay policy for the move. The view is gathered before
// the forfeit since the chooser runs under the session lock. Callers hold t.mu.
func (m *Manager) chooser(roomID string, t *table, snap engine.Snapshot) engine.Chooser {
	if m.autoplay == nil {
		return nil
	}
	hand, err := t.session.Hand(snap.CurrentPlayer)
	if err != nil {
		return nil
	}
	view := AutoplayView{
		Player: snap.CurrentPlayer,
		Phase:  snap.Phase,
		Round:  snap.Round,
		Trump:  snap.Trump,
		Hand:   hand,
		Trick:  snap.CurrentTrick,
		Bids:   snap.Bids,
	}
	return func(options []engine.Action) (int, error) {
		i, err := m.autoplay.Choose(context.Background(), view, options)
		if err != nil {
			m.log.Warn("autoplay policy failed, using default move",
				zap.String("room_id", roomID), zap.String("player_id", view.Player), zap.Error(err))
		}
		return i, err
	}
}
