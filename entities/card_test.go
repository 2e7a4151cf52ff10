package entities

import (
	"errors"
	"math/rand"
	"testing"
)

func TestNewDeckComposition(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("deck size = %d, want %d", len(deck), DeckSize)
	}
	counts := map[Card]int{}
	for _, c := range deck {
		counts[c]++
	}
	if counts[NewWizard()] != 4 || counts[NewJester()] != 4 {
		t.Fatalf("wizards=%d jesters=%d, want 4 each", counts[NewWizard()], counts[NewJester()])
	}
	for _, s := range Suits {
		for r := MinRank; r <= MaxRank; r++ {
			if counts[NewNumbered(s, r)] != 1 {
				t.Fatalf("%s-%d appears %d times", s, r, counts[NewNumbered(s, r)])
			}
		}
	}
}

func TestShuffleIsDeterministicPermutation(t *testing.T) {
	deck := NewDeck()
	a := Shuffle(deck, rand.New(rand.NewSource(7)))
	b := Shuffle(deck, rand.New(rand.NewSource(7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed gave different order at %d", i)
		}
	}
	if deck[0] != NewNumbered(Red, 1) {
		t.Fatalf("shuffle mutated its input")
	}
	counts := map[Card]int{}
	for _, c := range a {
		counts[c]++
	}
	for _, c := range deck {
		counts[c]--
	}
	for c, n := range counts {
		if n != 0 {
			t.Fatalf("card %s count off by %d after shuffle", c, n)
		}
	}
}

func TestDeal(t *testing.T) {
	tests := []struct {
		name          string
		players       int
		roundSize     int
		wantIndicator bool
		wantRest      int
		wantErr       error
	}{
		{"first round", 4, 1, true, 55, nil},
		{"last round of four", 4, 15, false, 0, nil},
		{"last round of three", 3, 20, false, 0, nil},
		{"six players round nine", 6, 9, true, 5, nil},
		{"too many cards", 6, 11, false, 0, ErrInsufficientCards},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Deal(NewDeck(), tt.players, tt.roundSize)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("deal: %v", err)
			}
			for i, h := range res.Hands {
				if len(h) != tt.roundSize {
					t.Fatalf("hand %d has %d cards", i, len(h))
				}
			}
			if res.HasIndicator != tt.wantIndicator {
				t.Fatalf("indicator = %v, want %v", res.HasIndicator, tt.wantIndicator)
			}
			if len(res.Rest) != tt.wantRest {
				t.Fatalf("rest = %d, want %d", len(res.Rest), tt.wantRest)
			}
		})
	}
}

func TestParseCardRoundTrip(t *testing.T) {
	for _, c := range NewDeck() {
		got, err := ParseCard(c.String())
		if err != nil {
			t.Fatalf("parse %q: %v", c, err)
		}
		if got != c {
			t.Fatalf("parse %q = %v", c, got)
		}
	}
	for _, bad := range []string{"", "red", "red-0", "red-14", "purple-3", "wizzard"} {
		if _, err := ParseCard(bad); err == nil {
			t.Errorf("ParseCard(%q) succeeded", bad)
		}
	}
}

func TestRemoveCard(t *testing.T) {
	hand := []Card{NewWizard(), NewNumbered(Blue, 3), NewWizard()}
	out, ok := RemoveCard(hand, NewWizard())
	if !ok || len(out) != 2 || out[0] != NewNumbered(Blue, 3) || out[1] != NewWizard() {
		t.Fatalf("RemoveCard = %v, %v", out, ok)
	}
	if _, ok := RemoveCard(hand, NewJester()); ok {
		t.Fatalf("removed a card not in hand")
	}
	if len(hand) != 3 {
		t.Fatalf("input hand mutated")
	}
}
