package engine

import (
	"fmt"

	"wizard-game/entities"
)

type ActionKind string

const (
	ActionChooseTrump ActionKind = "choose_trump"
	ActionBid         ActionKind = "bid"
	ActionPlayCard    ActionKind = "play_card"
)

// Action is one accepted move. Forfeit marks moves the engine chose for a
// player whose turn was given up.
type Action struct {
	Kind    ActionKind     `json:"kind"`
	Round   int            `json:"round"`
	Player  string         `json:"player"`
	Value   int            `json:"value"`
	Card    *entities.Card `json:"card,omitempty"`
	Suit    entities.Suit  `json:"suit,omitempty"`
	Forfeit bool           `json:"forfeit,omitempty"`
}

// Record is everything needed to rebuild a session: the roster, the seed and
// the moves in the order they were accepted.
type Record struct {
	ID      string   `json:"id"`
	Players []string `json:"players"`
	Seed    uint64   `json:"seed"`
	Options Options  `json:"options"`
	Actions []Action `json:"actions"`
	Closed  bool     `json:"closed"`
}

// Restore replays rec into a new session.
func Restore(rec Record) (*Session, error) {
	s, err := NewSession(rec.ID, rec.Players, rec.Seed, rec.Options)
	if err != nil {
		return nil, err
	}
	for i, a := range rec.Actions {
		if a.Round != s.round.Number() {
			return nil, fmt.Errorf("replay action %d: recorded in round %d, session is in round %d", i, a.Round, s.round.Number())
		}
		if err := s.apply(a); err != nil {
			return nil, fmt.Errorf("replay action %d (%s by %s): %w", i, a.Kind, a.Player, err)
		}
	}
	if rec.Closed {
		s.closed = true
	}
	return s, nil
}
