package engine

import "wizard-game/entities"

// Snapshot is the public view of a table, safe to broadcast to everyone at
// it. It never carries a hand, only how many cards each player holds.
type Snapshot struct {
	SessionID     string          `json:"sessionId"`
	Version       int             `json:"version"`
	Players       []string        `json:"players"`
	Round         int             `json:"round"`
	MaxRounds     int             `json:"maxRounds"`
	Phase         Phase           `json:"phase"`
	Dealer        string          `json:"dealer"`
	CurrentPlayer string          `json:"currentPlayer"`
	Trump         string          `json:"trump"`
	TrumpCard     *entities.Card  `json:"trumpCard,omitempty"`
	TrickIndex    int             `json:"trickIndex"`
	Bids          map[string]int  `json:"bids"`
	TricksWon     map[string]int  `json:"tricksWon"`
	HandCounts    map[string]int  `json:"handCounts"`
	CurrentTrick  []Play          `json:"currentTrick"`
	LastTrick     *CompletedTrick `json:"lastTrick,omitempty"`
	Scores        map[string]int  `json:"scores"`
	Standings     []Standing      `json:"standings"`
	History       []RoundSummary  `json:"history"`
	Options       Options         `json:"options"`
}

const (
	TrumpNone    = "none"
	TrumpPending = "pending"
)

// State takes a snapshot under the session lock.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.round
	snap := Snapshot{
		SessionID:     s.id,
		Version:       len(s.actions),
		Players:       append([]string(nil), s.players...),
		Round:         r.Number(),
		MaxRounds:     s.maxRounds,
		Phase:         r.Phase(),
		Dealer:        r.Dealer(),
		CurrentPlayer: r.CurrentPlayer(),
		TrickIndex:    r.TrickIndex(),
		Bids:          r.Ledger().Bids(),
		TricksWon:     r.TricksWon(),
		HandCounts:    r.HandCounts(),
		CurrentTrick:  r.Trick(),
		Scores:        make(map[string]int, len(s.players)),
		Standings:     s.standings(),
		History:       append([]RoundSummary(nil), s.history...),
		Options:       s.opts,
	}
	if s.finished {
		snap.Phase = PhaseFinished
	}
	if s.closed {
		snap.Phase = PhaseClosed
		snap.CurrentPlayer = ""
	}

	switch {
	case r.Phase() == PhaseChoosingTrump:
		snap.Trump = TrumpPending
	case r.Trump() == entities.NoSuit:
		snap.Trump = TrumpNone
	default:
		snap.Trump = r.Trump().String()
	}
	if c, ok := r.Indicator(); ok {
		snap.TrumpCard = &c
	}
	if s.lastTrick != nil {
		last := *s.lastTrick
		last.Plays = append([]Play(nil), last.Plays...)
		snap.LastTrick = &last
	}
	for i, p := range s.players {
		snap.Scores[p] = s.scores[i]
	}
	return snap
}
