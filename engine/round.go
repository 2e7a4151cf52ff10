package engine

import (
	"fmt"

	"wizard-game/entities"
)

// Phase is where a round, or the session around it, currently stands.
type Phase string

const (
	PhaseDealing       Phase = "dealing"
	PhaseChoosingTrump Phase = "choosing_trump"
	PhaseBidding       Phase = "bidding"
	PhasePlaying       Phase = "playing"
	PhaseScoring       Phase = "scoring"
	PhaseDone          Phase = "done"

	// session-level
	PhaseFinished Phase = "finished"
	PhaseClosed   Phase = "closed"
)

// CompletedTrick is a resolved trick, kept for the round history.
type CompletedTrick struct {
	Index  int    `json:"index"`
	Plays  []Play `json:"plays"`
	Winner string `json:"winner"`
}

// Round runs one deal from the first bid to scoring. Seats are fixed for the
// round; everything is indexed by seat.
type Round struct {
	number      int
	seats       []string
	dealer      int
	forbidExact bool

	phase        Phase
	hands        [][]entities.Card
	indicator    entities.Card
	hasIndicator bool
	trump        entities.Suit

	ledger     *BidLedger
	turn       int
	trickIndex int
	trick      []Play
	tricksWon  []int
	completed  []CompletedTrick
	deltas     []int
}

// NewRound deals from an already shuffled deck and settles trump. The round
// leaves the dealing phase before returning: it waits either for the dealer
// to name trump or for the first bid.
func NewRound(number int, seats []string, dealer int, deck []entities.Card, forbidExact bool) (*Round, error) {
	n := len(seats)
	if dealer < 0 || dealer >= n {
		return nil, fmt.Errorf("%w: dealer seat %d", ErrInvalidRoster, dealer)
	}
	r := &Round{
		number:      number,
		seats:       append([]string(nil), seats...),
		dealer:      dealer,
		forbidExact: forbidExact,
		phase:       PhaseDealing,
		tricksWon:   make([]int, n),
		deltas:      make([]int, n),
	}

	dealt, err := entities.Deal(deck, n, number)
	if err != nil {
		return nil, err
	}
	// seat dealer+1 receives the first card
	r.hands = make([][]entities.Card, n)
	for i := 0; i < n; i++ {
		r.hands[(dealer+1+i)%n] = dealt.Hands[i]
	}
	r.indicator, r.hasIndicator = dealt.Indicator, dealt.HasIndicator
	r.ledger = NewBidLedger(number, n, forbidExact)

	switch {
	case !r.hasIndicator, r.indicator.IsJester():
		r.trump = entities.NoSuit
		r.startBidding()
	case r.indicator.IsWizard():
		r.phase = PhaseChoosingTrump
		r.turn = dealer
	default:
		r.trump = r.indicator.Suit
		r.startBidding()
	}
	return r, nil
}

func (r *Round) startBidding() {
	r.phase = PhaseBidding
	r.turn = r.left(r.dealer)
}

func (r *Round) left(seat int) int { return (seat + 1) % len(r.seats) }

func (r *Round) seatOf(player string) (int, error) {
	for i, p := range r.seats {
		if p == player {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrUnknownPlayer, player)
}

// actor resolves player and checks that it is their move in phase.
func (r *Round) actor(player string, phase Phase) (int, error) {
	seat, err := r.seatOf(player)
	if err != nil {
		return -1, err
	}
	if r.phase != phase {
		return -1, fmt.Errorf("%w: round %d is %s, not %s", ErrWrongPhase, r.number, r.phase, phase)
	}
	if seat != r.turn {
		return -1, fmt.Errorf("%w: waiting for %s", ErrNotPlayersTurn, r.seats[r.turn])
	}
	return seat, nil
}

// ChooseTrump lets the dealer name trump after a Wizard was turned.
func (r *Round) ChooseTrump(player string, suit entities.Suit) error {
	if _, err := r.actor(player, PhaseChoosingTrump); err != nil {
		return err
	}
	if suit == entities.NoSuit {
		return fmt.Errorf("%w: the dealer must name a suit", ErrInvalidTrump)
	}
	if _, err := entities.ParseSuit(suit.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTrump, err)
	}
	r.trump = suit
	r.startBidding()
	return nil
}

// Bid records player's bid. The last bid moves the round to play.
func (r *Round) Bid(player string, value int) error {
	seat, err := r.actor(player, PhaseBidding)
	if err != nil {
		return err
	}
	if err := r.ledger.RecordBid(player, value); err != nil {
		return err
	}
	if !r.ledger.Complete() {
		r.turn = r.left(seat)
		return nil
	}
	if err := r.ledger.ValidateRoundBids(); err != nil {
		// RecordBid already refused the offending bid
		return err
	}
	r.phase = PhasePlaying
	r.trickIndex = 0
	r.turn = r.left(r.dealer)
	return nil
}

// Play lays card for player. It returns the trick when this card completed it.
func (r *Round) Play(player string, card entities.Card) (*CompletedTrick, error) {
	seat, err := r.actor(player, PhasePlaying)
	if err != nil {
		return nil, err
	}
	hand := r.hands[seat]
	if entities.IndexOf(hand, card) < 0 {
		return nil, fmt.Errorf("%w: %s is not in %s's hand", ErrIllegalCard, card, player)
	}
	if !IsLegal(hand, r.trick, r.trump, card) {
		led, _ := LedSuit(r.trick)
		return nil, fmt.Errorf("%w: %s must follow %s", ErrIllegalCard, player, led)
	}

	r.hands[seat], _ = entities.RemoveCard(hand, card)
	r.trick = append(r.trick, Play{Player: player, Card: card})
	if len(r.trick) < len(r.seats) {
		r.turn = r.left(seat)
		return nil, nil
	}

	winner, err := ResolveTrick(r.trick, len(r.seats), r.trump)
	if err != nil {
		return nil, err
	}
	winSeat, _ := r.seatOf(winner)
	r.tricksWon[winSeat]++
	done := CompletedTrick{Index: r.trickIndex, Plays: r.trick, Winner: winner}
	r.completed = append(r.completed, done)
	r.trick = nil
	r.trickIndex++
	r.turn = winSeat
	if r.trickIndex == r.number {
		r.score()
	}
	return &done, nil
}

func (r *Round) score() {
	r.phase = PhaseScoring
	for i, p := range r.seats {
		bid, _ := r.ledger.Bid(p)
		r.deltas[i] = Score(bid, r.tricksWon[i])
	}
	r.phase = PhaseDone
}

// DefaultAction is what a forfeited turn does for the player to act.
func (r *Round) DefaultAction() (Action, error) {
	if r.turn < 0 || r.turn >= len(r.seats) {
		return Action{}, fmt.Errorf("%w: nobody is to act", ErrWrongPhase)
	}
	player := r.seats[r.turn]
	switch r.phase {
	case PhaseChoosingTrump:
		return Action{Kind: ActionChooseTrump, Player: player, Suit: strongestSuit(r.hands[r.turn])}, nil
	case PhaseBidding:
		for v := 0; v <= r.number; v++ {
			if r.ledger.Acceptable(player, v) {
				return Action{Kind: ActionBid, Player: player, Value: v}, nil
			}
		}
		return Action{}, fmt.Errorf("%w: no acceptable bid for %s", ErrInvalidBid, player)
	case PhasePlaying:
		legal := LegalMoves(r.hands[r.turn], r.trick, r.trump)
		entities.SortHand(legal)
		card := legal[0]
		return Action{Kind: ActionPlayCard, Player: player, Card: &card}, nil
	}
	return Action{}, fmt.Errorf("%w: round %d is %s", ErrWrongPhase, r.number, r.phase)
}

// LegalActions lists every move open to the player to act, cards in
// canonical order.
func (r *Round) LegalActions() ([]Action, error) {
	if r.CurrentPlayer() == "" {
		return nil, fmt.Errorf("%w: round %d is %s", ErrWrongPhase, r.number, r.phase)
	}
	player := r.seats[r.turn]
	var out []Action
	switch r.phase {
	case PhaseChoosingTrump:
		for _, s := range entities.Suits {
			out = append(out, Action{Kind: ActionChooseTrump, Player: player, Suit: s})
		}
	case PhaseBidding:
		for v := 0; v <= r.number; v++ {
			if r.ledger.Acceptable(player, v) {
				out = append(out, Action{Kind: ActionBid, Player: player, Value: v})
			}
		}
	case PhasePlaying:
		legal := LegalMoves(r.hands[r.turn], r.trick, r.trump)
		entities.SortHand(legal)
		for i := range legal {
			out = append(out, Action{Kind: ActionPlayCard, Player: player, Card: &legal[i]})
		}
	}
	return out, nil
}

// strongestSuit is the suit with the most numbered cards, earliest suit on ties.
func strongestSuit(hand []entities.Card) entities.Suit {
	counts := map[entities.Suit]int{}
	for _, c := range hand {
		if c.IsNumbered() {
			counts[c.Suit]++
		}
	}
	best := entities.Suits[0]
	for _, s := range entities.Suits[1:] {
		if counts[s] > counts[best] {
			best = s
		}
	}
	return best
}

func (r *Round) Number() int                      { return r.number }
func (r *Round) Phase() Phase                     { return r.phase }
func (r *Round) Trump() entities.Suit             { return r.trump }
func (r *Round) DealerSeat() int                  { return r.dealer }
func (r *Round) Dealer() string                   { return r.seats[r.dealer] }
func (r *Round) TrickIndex() int                  { return r.trickIndex }
func (r *Round) Completed() []CompletedTrick      { return append([]CompletedTrick(nil), r.completed...) }
func (r *Round) Ledger() *BidLedger               { return r.ledger }
func (r *Round) Indicator() (entities.Card, bool) { return r.indicator, r.hasIndicator }

// CurrentPlayer is the player the round waits on, empty once it is done.
func (r *Round) CurrentPlayer() string {
	switch r.phase {
	case PhaseChoosingTrump, PhaseBidding, PhasePlaying:
		return r.seats[r.turn]
	}
	return ""
}

// Trick returns the cards laid so far in the open trick.
func (r *Round) Trick() []Play { return append([]Play(nil), r.trick...) }

// Hand returns a sorted copy of player's cards.
func (r *Round) Hand(player string) ([]entities.Card, error) {
	seat, err := r.seatOf(player)
	if err != nil {
		return nil, err
	}
	hand := append([]entities.Card(nil), r.hands[seat]...)
	entities.SortHand(hand)
	return hand, nil
}

func (r *Round) HandCounts() map[string]int {
	out := make(map[string]int, len(r.seats))
	for i, p := range r.seats {
		out[p] = len(r.hands[i])
	}
	return out
}

func (r *Round) TricksWon() map[string]int {
	out := make(map[string]int, len(r.seats))
	for i, p := range r.seats {
		out[p] = r.tricksWon[i]
	}
	return out
}

// Deltas holds each player's score change; zero until the round is done.
func (r *Round) Deltas() map[string]int {
	out := make(map[string]int, len(r.seats))
	for i, p := range r.seats {
		out[p] = r.deltas[i]
	}
	return out
}
