package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Suit is one of the four colours of numbered cards.
type Suit uint8

const (
	NoSuit Suit = iota // Wizards, Jesters and "no trump"
	Red
	Yellow
	Green
	Blue
)

// Suits lists the four colours in canonical order.
var Suits = []Suit{Red, Yellow, Green, Blue}

var suitNames = map[Suit]string{
	NoSuit: "none",
	Red:    "red",
	Yellow: "yellow",
	Green:  "green",
	Blue:   "blue",
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return "suit(" + strconv.Itoa(int(s)) + ")"
}

// ParseSuit accepts the lower-case colour names used on the wire.
func ParseSuit(text string) (Suit, error) {
	for _, s := range Suits {
		if strings.EqualFold(text, suitNames[s]) {
			return s, nil
		}
	}
	return NoSuit, fmt.Errorf("unknown suit %q", text)
}

func (s Suit) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Suit) UnmarshalText(text []byte) error {
	if string(text) == suitNames[NoSuit] {
		*s = NoSuit
		return nil
	}
	parsed, err := ParseSuit(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Kind tags the three card variants.
type Kind uint8

const (
	Numbered Kind = iota
	Wizard
	Jester
)

const (
	MinRank = 1
	MaxRank = 13
)

// Card is an immutable value. Wizards and Jesters carry no suit and no rank,
// so two Wizards compare equal.
type Card struct {
	Kind Kind
	Suit Suit
	Rank int
}

// NewNumbered builds a suited card, panicking on values outside the deck.
func NewNumbered(s Suit, rank int) Card {
	if s == NoSuit || rank < MinRank || rank > MaxRank {
		panic(fmt.Sprintf("invalid numbered card %s %d", s, rank))
	}
	return Card{Kind: Numbered, Suit: s, Rank: rank}
}

func NewWizard() Card { return Card{Kind: Wizard} }

func NewJester() Card { return Card{Kind: Jester} }

func (c Card) IsWizard() bool   { return c.Kind == Wizard }
func (c Card) IsJester() bool   { return c.Kind == Jester }
func (c Card) IsNumbered() bool { return c.Kind == Numbered }

func (c Card) String() string {
	switch c.Kind {
	case Wizard:
		return "wizard"
	case Jester:
		return "jester"
	default:
		return c.Suit.String() + "-" + strconv.Itoa(c.Rank)
	}
}

// ParseCard reads the text form produced by String: "red-9", "wizard", "jester".
func ParseCard(text string) (Card, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	switch text {
	case "wizard":
		return NewWizard(), nil
	case "jester":
		return NewJester(), nil
	}
	suitText, rankText, ok := strings.Cut(text, "-")
	if !ok {
		return Card{}, fmt.Errorf("malformed card %q", text)
	}
	s, err := ParseSuit(suitText)
	if err != nil {
		return Card{}, err
	}
	rank, err := strconv.Atoi(rankText)
	if err != nil || rank < MinRank || rank > MaxRank {
		return Card{}, fmt.Errorf("malformed card rank %q", text)
	}
	return Card{Kind: Numbered, Suit: s, Rank: rank}, nil
}

func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// order gives the canonical position of a card: numbered by suit then rank,
// Wizards before Jesters at the end.
func (c Card) order() int {
	switch c.Kind {
	case Wizard:
		return 100
	case Jester:
		return 101
	default:
		return int(c.Suit)*MaxRank + c.Rank
	}
}

// Less reports whether a sorts before b in canonical order.
func Less(a, b Card) bool {
	return a.order() < b.order()
}
