package mahjong

import "errors"

var (
	ErrGameEnded     = errors.New("game already ended")
	ErrOutOfTurn     = errors.New("action out of turn")
	ErrWrongPhase    = errors.New("action out of phase")
	ErrTileNotInHand = errors.New("tile not in hand")
	ErrNoOpenDiscard = errors.New("no discard open to claims")
	ErrInvalidClaim  = errors.New("claim does not meet tile requirements")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
