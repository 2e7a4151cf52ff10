package engine

import (
	"fmt"
	"sync"

	"golang.org/x/exp/rand"

	"wizard-game/entities"
)

const (
	MinPlayers = 3
	MaxPlayers = 6
)

// Options are the house rules of a table.
type Options struct {
	ForbidExactBids bool     `json:"forbidExactBids"`
	TieBreak        TieBreak `json:"tieBreak"`
}

func DefaultOptions() Options {
	return Options{ForbidExactBids: true, TieBreak: TieBreakShared}
}

// MaxRounds is how many rounds a table of players plays.
func MaxRounds(players int) int {
	if players <= 0 {
		return 0
	}
	return entities.DeckSize / players
}

// RoundSummary is what a scored round leaves behind.
type RoundSummary struct {
	Round     int            `json:"round"`
	Dealer    string         `json:"dealer"`
	Trump     entities.Suit  `json:"trump"`
	Bids      map[string]int `json:"bids"`
	TricksWon map[string]int `json:"tricksWon"`
	Deltas    map[string]int `json:"deltas"`
}

// Session is one table. All moves go through its lock, one at a time; State
// hands out copies taken under the same lock.
type Session struct {
	mu sync.Mutex

	id        string
	players   []string
	seed      uint64
	opts      Options
	maxRounds int

	round     *Round
	scores    []int
	exact     []int
	history   []RoundSummary
	lastTrick *CompletedTrick
	actions   []Action
	finished  bool
	closed    bool
}

// NewSession seats players in the given order and deals round one. The last
// seat deals first, so the first seat bids and leads first.
func NewSession(id string, players []string, seed uint64, opts Options) (*Session, error) {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return nil, fmt.Errorf("%w: %d players, want %d-%d", ErrInvalidRoster, len(players), MinPlayers, MaxPlayers)
	}
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if p == "" || seen[p] {
			return nil, fmt.Errorf("%w: player id %q is empty or repeated", ErrInvalidRoster, p)
		}
		seen[p] = true
	}
	if opts.TieBreak == "" {
		opts.TieBreak = TieBreakShared
	}

	s := &Session{
		id:        id,
		players:   append([]string(nil), players...),
		seed:      seed,
		opts:      opts,
		maxRounds: MaxRounds(len(players)),
		scores:    make([]int, len(players)),
		exact:     make([]int, len(players)),
	}
	if err := s.startRound(1, len(players)-1); err != nil {
		return nil, err
	}
	return s, nil
}

// roundSource derives the shuffle for a round from the table seed, so a
// round deals the same cards however the session got there.
func roundSource(seed uint64, round int) *rand.Rand {
	return rand.New(rand.NewSource(seed ^ uint64(round)*0x9E3779B97F4A7C15))
}

func (s *Session) startRound(number, dealer int) error {
	deck := entities.Shuffle(entities.NewDeck(), roundSource(s.seed, number))
	r, err := NewRound(number, s.players, dealer, deck, s.opts.ForbidExactBids)
	if err != nil {
		return fmt.Errorf("start round %d: %w", number, err)
	}
	s.round = r
	return nil
}

func (s *Session) ID() string { return s.id }

// SubmitBid records a bid for player in the current round.
func (s *Session) SubmitBid(player string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(Action{Kind: ActionBid, Round: s.round.Number(), Player: player, Value: value})
}

// ChooseTrump names trump for a round whose indicator was a Wizard.
func (s *Session) ChooseTrump(player string, suit entities.Suit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(Action{Kind: ActionChooseTrump, Round: s.round.Number(), Player: player, Suit: suit})
}

// PlayCard lays card from player's hand on the open trick.
func (s *Session) PlayCard(player string, card entities.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(Action{Kind: ActionPlayCard, Round: s.round.Number(), Player: player, Card: &card})
}

// ForfeitTurn makes the default move for player, who must be the one to act.
// It returns the move that was made.
func (s *Session) ForfeitTurn(player string) (Action, error) {
	return s.ForfeitTurnWith(player, nil)
}

// Chooser picks the index of one of the legal actions offered to a player
// whose turn is being made for them.
type Chooser func(options []Action) (int, error)

// ForfeitTurnWith is ForfeitTurn with the move picked by choose. A nil
// chooser, a chooser error or an out of range index all fall back to the
// default move. choose runs under the session lock and must not call back
// into the session.
func (s *Session) ForfeitTurnWith(player string, choose Chooser) (Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return Action{}, err
	}
	if _, err := s.round.seatOf(player); err != nil {
		return Action{}, err
	}
	current := s.round.CurrentPlayer()
	if current == "" {
		return Action{}, fmt.Errorf("%w: round %d is %s", ErrWrongPhase, s.round.Number(), s.round.Phase())
	}
	if current != player {
		return Action{}, fmt.Errorf("%w: waiting for %s", ErrNotPlayersTurn, current)
	}
	a, err := s.round.DefaultAction()
	if err != nil {
		return Action{}, err
	}
	if choose != nil {
		options, err := s.round.LegalActions()
		if err == nil {
			if i, err := choose(options); err == nil && i >= 0 && i < len(options) {
				a = options[i]
			}
		}
	}
	a.Round = s.round.Number()
	a.Forfeit = true
	if err := s.apply(a); err != nil {
		return Action{}, err
	}
	return a, nil
}

// LegalActions lists the moves open to player, who must be the one to act.
func (s *Session) LegalActions(player string) ([]Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if _, err := s.round.seatOf(player); err != nil {
		return nil, err
	}
	if current := s.round.CurrentPlayer(); current != player {
		return nil, fmt.Errorf("%w: waiting for %s", ErrNotPlayersTurn, current)
	}
	return s.round.LegalActions()
}

func (s *Session) checkOpen() error {
	if s.closed {
		return fmt.Errorf("%w: %s", ErrSessionClosed, s.id)
	}
	if s.finished {
		return fmt.Errorf("%w: game is finished", ErrWrongPhase)
	}
	return nil
}

// apply runs one move against the current round and, once the round is
// scored, folds it into the totals and deals the next. Callers hold mu.
func (s *Session) apply(a Action) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	r := s.round
	switch a.Kind {
	case ActionChooseTrump:
		if err := r.ChooseTrump(a.Player, a.Suit); err != nil {
			return err
		}
	case ActionBid:
		if err := r.Bid(a.Player, a.Value); err != nil {
			return err
		}
	case ActionPlayCard:
		if a.Card == nil {
			return fmt.Errorf("%w: no card given", ErrIllegalCard)
		}
		done, err := r.Play(a.Player, *a.Card)
		if err != nil {
			return err
		}
		if done != nil {
			s.lastTrick = done
		}
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	s.actions = append(s.actions, a)

	if r.Phase() != PhaseDone {
		return nil
	}
	return s.finishRound()
}

func (s *Session) finishRound() error {
	r := s.round
	deltas := r.Deltas()
	bids := r.Ledger().Bids()
	won := r.TricksWon()
	for i, p := range s.players {
		s.scores[i] += deltas[p]
		if bids[p] == won[p] {
			s.exact[i]++
		}
	}
	s.history = append(s.history, RoundSummary{
		Round:     r.Number(),
		Dealer:    r.Dealer(),
		Trump:     r.Trump(),
		Bids:      bids,
		TricksWon: won,
		Deltas:    deltas,
	})
	if r.Number() >= s.maxRounds {
		s.finished = true
		return nil
	}
	return s.startRound(r.Number()+1, (r.DealerSeat()+1)%len(s.players))
}

// Hand returns player's cards. It must only ever reach that player.
func (s *Session) Hand(player string) ([]entities.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Hand(player)
}

// Close tears the session down for good.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Record returns a copy of the session's replay record.
func (s *Session) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Record{
		ID:      s.id,
		Players: append([]string(nil), s.players...),
		Seed:    s.seed,
		Options: s.opts,
		Actions: append([]Action(nil), s.actions...),
		Closed:  s.closed,
	}
}

// Version counts accepted moves; it changes whenever the state does.
func (s *Session) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

func (s *Session) standings() []Standing {
	lines := make([]Standing, len(s.players))
	for i, p := range s.players {
		lines[i] = Standing{Player: p, Score: s.scores[i], ExactBids: s.exact[i]}
	}
	return Rank(lines, s.opts.TieBreak)
}

// Ranking orders players by total score under the table's tie-break rule.
func (s *Session) Ranking() []Standing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.standings()
}
