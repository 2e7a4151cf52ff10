package engine

import (
	"fmt"

	"wizard-game/entities"
)

// Play is one card laid in a trick.
type Play struct {
	Player string        `json:"player"`
	Card   entities.Card `json:"card"`
}

// LedSuit is the suit of the first numbered card in the trick. Wizards and
// Jesters played before it do not set one.
func LedSuit(trick []Play) (entities.Suit, bool) {
	for _, p := range trick {
		if p.Card.IsNumbered() {
			return p.Card.Suit, true
		}
	}
	return entities.NoSuit, false
}

// LegalMoves returns the cards of hand that may join trick. Trump does not
// restrict what may be played; it only matters when resolving.
func LegalMoves(hand []entities.Card, trick []Play, trump entities.Suit) []entities.Card {
	all := append([]entities.Card(nil), hand...)
	led, ok := LedSuit(trick)
	if !ok {
		return all
	}

	following := false
	for _, c := range hand {
		if c.IsNumbered() && c.Suit == led {
			following = true
			break
		}
	}
	if !following {
		return all
	}

	legal := make([]entities.Card, 0, len(hand))
	for _, c := range hand {
		switch c.Kind {
		case entities.Wizard, entities.Jester:
			legal = append(legal, c)
		case entities.Numbered:
			if c.Suit == led {
				legal = append(legal, c)
			}
		}
	}
	return legal
}

// IsLegal reports whether card may be played from hand onto trick.
func IsLegal(hand []entities.Card, trick []Play, trump entities.Suit, card entities.Card) bool {
	return entities.IndexOf(LegalMoves(hand, trick, trump), card) >= 0
}

// ResolveTrick names the winner of a complete trick among seats players.
//
// The first Wizard wins outright. Otherwise the highest trump wins, then the
// highest card of the led suit. A trick of nothing but Jesters goes to the
// first Jester.
func ResolveTrick(trick []Play, seats int, trump entities.Suit) (string, error) {
	if len(trick) != seats || seats == 0 {
		return "", fmt.Errorf("%w: %d of %d cards played", ErrIncompleteTrick, len(trick), seats)
	}
	seen := make(map[string]bool, seats)
	for _, p := range trick {
		if seen[p.Player] {
			return "", fmt.Errorf("%w: %s played twice", ErrIncompleteTrick, p.Player)
		}
		seen[p.Player] = true
	}
	return trick[winningIndex(trick, trump)].Player, nil
}

func winningIndex(trick []Play, trump entities.Suit) int {
	for i, p := range trick {
		if p.Card.IsWizard() {
			return i
		}
	}

	led, ok := LedSuit(trick)
	if !ok {
		// no Wizard and no numbered card: all Jesters
		return 0
	}

	best := -1
	for i, p := range trick {
		if !p.Card.IsNumbered() {
			continue
		}
		if best < 0 || beats(p.Card, trick[best].Card, led, trump) {
			best = i
		}
	}
	return best
}

// beats reports whether numbered card c outranks the current best numbered card.
func beats(c, best entities.Card, led, trump entities.Suit) bool {
	cTrump := trump != entities.NoSuit && c.Suit == trump
	bestTrump := trump != entities.NoSuit && best.Suit == trump
	switch {
	case cTrump && !bestTrump:
		return true
	case bestTrump && !cTrump:
		return false
	case cTrump && bestTrump:
		return c.Rank > best.Rank
	}
	if c.Suit == led && best.Suit != led {
		return true
	}
	return c.Suit == led && best.Suit == led && c.Rank > best.Rank
}
