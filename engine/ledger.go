package engine

import "fmt"

// BidLedger records one round of bids. Accepted bids are never changed.
type BidLedger struct {
	roundSize   int
	seats       int
	forbidExact bool
	order       []string
	bids        map[string]int
}

func NewBidLedger(roundSize, seats int, forbidExact bool) *BidLedger {
	return &BidLedger{
		roundSize:   roundSize,
		seats:       seats,
		forbidExact: forbidExact,
		bids:        make(map[string]int, seats),
	}
}

// RecordBid accepts value for player. When the forbidden-total rule is on,
// the bid completing the round is refused if it makes the total equal the
// number of tricks available.
func (l *BidLedger) RecordBid(player string, value int) error {
	if err := l.check(player, value); err != nil {
		return err
	}
	l.order = append(l.order, player)
	l.bids[player] = value
	return nil
}

func (l *BidLedger) check(player string, value int) error {
	if value < 0 || value > l.roundSize {
		return fmt.Errorf("%w: %d is outside 0..%d", ErrInvalidBid, value, l.roundSize)
	}
	if _, ok := l.bids[player]; ok {
		return fmt.Errorf("%w: %s already bid this round", ErrInvalidBid, player)
	}
	if l.forbidExact && len(l.bids) == l.seats-1 && l.Total()+value == l.roundSize {
		return fmt.Errorf("%w: total bids may not equal %d", ErrBidRuleViolation, l.roundSize)
	}
	return nil
}

// Acceptable reports whether RecordBid would take value from player.
func (l *BidLedger) Acceptable(player string, value int) bool {
	return l.check(player, value) == nil
}

// ValidateRoundBids checks a complete ledger against the forbidden-total rule.
func (l *BidLedger) ValidateRoundBids() error {
	if !l.Complete() {
		return fmt.Errorf("%w: %d of %d bids recorded", ErrWrongPhase, len(l.bids), l.seats)
	}
	if l.forbidExact && l.Total() == l.roundSize {
		return fmt.Errorf("%w: total bids equal %d", ErrBidRuleViolation, l.roundSize)
	}
	return nil
}

func (l *BidLedger) Complete() bool { return len(l.bids) == l.seats }

func (l *BidLedger) Total() int {
	total := 0
	for _, v := range l.bids {
		total += v
	}
	return total
}

func (l *BidLedger) Bid(player string) (int, bool) {
	v, ok := l.bids[player]
	return v, ok
}

// Bids returns a copy of the accepted bids.
func (l *BidLedger) Bids() map[string]int {
	out := make(map[string]int, len(l.bids))
	for p, v := range l.bids {
		out[p] = v
	}
	return out
}
