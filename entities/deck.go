package entities

import (
	"errors"
	"fmt"
	"sort"
)

const (
	DeckSize     = 60
	SpecialCount = 4 // Wizards and Jesters each
)

// ErrInsufficientCards means the deck cannot give every player a full hand.
var ErrInsufficientCards = errors.New("insufficient cards")

// Shuffler is the randomness a shuffle needs; *rand.Rand from math/rand and
// golang.org/x/exp/rand both satisfy it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// NewDeck returns the canonical 60 cards in canonical order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for r := MinRank; r <= MaxRank; r++ {
			deck = append(deck, Card{Kind: Numbered, Suit: s, Rank: r})
		}
	}
	for i := 0; i < SpecialCount; i++ {
		deck = append(deck, NewWizard())
	}
	for i := 0; i < SpecialCount; i++ {
		deck = append(deck, NewJester())
	}
	return deck
}

// Shuffle returns a permuted copy of deck, leaving the input untouched.
func Shuffle(deck []Card, rng Shuffler) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// DealResult is what one deal hands out. Rest holds the cards nobody saw.
type DealResult struct {
	Hands        [][]Card
	Indicator    Card
	HasIndicator bool
	Rest         []Card
}

// Deal gives roundSize cards to each of players seats, one at a time in seat
// order, then turns the next card as the trump indicator if any remain.
func Deal(deck []Card, players, roundSize int) (DealResult, error) {
	if players <= 0 || roundSize <= 0 {
		return DealResult{}, fmt.Errorf("deal %d cards to %d players: bad arguments", roundSize, players)
	}
	need := players * roundSize
	if need > len(deck) {
		return DealResult{}, fmt.Errorf("%w: need %d, deck has %d", ErrInsufficientCards, need, len(deck))
	}

	hands := make([][]Card, players)
	for i := range hands {
		hands[i] = make([]Card, 0, roundSize)
	}
	next := 0
	for r := 0; r < roundSize; r++ {
		for p := 0; p < players; p++ {
			hands[p] = append(hands[p], deck[next])
			next++
		}
	}

	res := DealResult{Hands: hands}
	if next < len(deck) {
		res.Indicator = deck[next]
		res.HasIndicator = true
		next++
	}
	res.Rest = append([]Card(nil), deck[next:]...)
	return res, nil
}

// SortHand orders cards canonically in place.
func SortHand(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool { return Less(cards[i], cards[j]) })
}

// IndexOf returns the position of the first card equal to c, or -1.
func IndexOf(hand []Card, c Card) int {
	for i, h := range hand {
		if h == c {
			return i
		}
	}
	return -1
}

// RemoveCard returns hand without one copy of c.
func RemoveCard(hand []Card, c Card) ([]Card, bool) {
	idx := IndexOf(hand, c)
	if idx < 0 {
		return hand, false
	}
	out := make([]Card, 0, len(hand)-1)
	out = append(out, hand[:idx]...)
	out = append(out, hand[idx+1:]...)
	return out, true
}
