package engine

import (
	"errors"

	"wizard-game/entities"
)

// Rejections. All of them leave the session untouched and the caller may
// retry with corrected input, except ErrInsufficientCards and
// ErrInvalidRoster which stop a session from being created.
var (
	ErrInvalidBid        = errors.New("invalid bid")
	ErrBidRuleViolation  = errors.New("bid rule violation")
	ErrIllegalCard       = errors.New("illegal card")
	ErrWrongPhase        = errors.New("wrong phase")
	ErrNotPlayersTurn    = errors.New("not player's turn")
	ErrInsufficientCards = entities.ErrInsufficientCards
	ErrIncompleteTrick   = errors.New("incomplete trick")
	ErrInvalidTrump      = errors.New("invalid trump")
	ErrInvalidRoster     = errors.New("invalid roster")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrSessionClosed     = errors.New("session closed")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidBid, "invalid_bid"},
	{ErrBidRuleViolation, "bid_rule_violation"},
	{ErrIllegalCard, "illegal_card"},
	{ErrWrongPhase, "wrong_phase"},
	{ErrNotPlayersTurn, "not_players_turn"},
	{ErrInsufficientCards, "insufficient_cards"},
	{ErrIncompleteTrick, "incomplete_trick"},
	{ErrInvalidTrump, "invalid_trump"},
	{ErrInvalidRoster, "invalid_roster"},
	{ErrUnknownPlayer, "unknown_player"},
	{ErrSessionClosed, "session_closed"},
}

// Code returns a stable identifier for err, "internal" if it is not one of ours.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
