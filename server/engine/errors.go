package engine

import "errors"

var (
	ErrDeckExhausted      = errors.New("deck exhausted")
	ErrCardNotFound       = errors.New("card not found")
	ErrInvalidIndex       = errors.New("invalid card index")
	ErrGameClosed         = errors.New("game cannot be joined now")
	ErrAlreadyJoined      = errors.New("player already joined")
	ErrNotPlayer          = errors.New("not a player in this game")
	ErrActionNotAvailable = errors.New("action not available")

	// ErrUnreachableState means hand-winner resolution found no matching
	// trick distribution. It indicates a rules bug, not bad input.
	ErrUnreachableState = errors.New("unreachable game state")
)
