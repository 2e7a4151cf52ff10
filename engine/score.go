package engine

import (
	"fmt"
	"sort"
)

// Score is a player's change for one round: 20 plus 10 per trick for an exact
// bid, otherwise minus 10 per trick of difference.
func Score(bid, won int) int {
	if bid == won {
		return 20 + 10*bid
	}
	diff := won - bid
	if diff < 0 {
		diff = -diff
	}
	return -10 * diff
}

// TieBreak decides how equal totals are ordered in the final ranking.
type TieBreak string

const (
	TieBreakShared    TieBreak = "shared"     // equal totals share a place
	TieBreakSeat      TieBreak = "seat"       // earlier seat first
	TieBreakExactBids TieBreak = "exact_bids" // more exactly met bids first, then shared
)

func ParseTieBreak(s string) (TieBreak, error) {
	switch tb := TieBreak(s); tb {
	case TieBreakShared, TieBreakSeat, TieBreakExactBids:
		return tb, nil
	case "":
		return TieBreakShared, nil
	}
	return "", fmt.Errorf("unknown tie break %q", s)
}

// Standing is one line of the ranking. Place starts at 1.
type Standing struct {
	Player    string `json:"player"`
	Score     int    `json:"score"`
	ExactBids int    `json:"exactBids"`
	Place     int    `json:"place"`
}

// Rank orders standings given in seat order by descending score.
func Rank(seatOrder []Standing, tb TieBreak) []Standing {
	out := append([]Standing(nil), seatOrder...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if tb == TieBreakExactBids {
			return out[i].ExactBids > out[j].ExactBids
		}
		return false
	})
	for i := range out {
		out[i].Place = i + 1
		if i == 0 || tb == TieBreakSeat {
			continue
		}
		prev := out[i-1]
		tied := prev.Score == out[i].Score
		if tb == TieBreakExactBids {
			tied = tied && prev.ExactBids == out[i].ExactBids
		}
		if tied {
			out[i].Place = prev.Place
		}
	}
	return out
}
