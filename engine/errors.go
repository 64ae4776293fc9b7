package engine

import "errors"

// Rule violations. A call that returns one of these leaves the game unchanged.
var (
	ErrCardNotHeld     = errors.New("card is not in the player's hand or on their table")
	ErrIllegalMove     = errors.New("card may not be played under last-nine rules")
	ErrInvalidMeld     = errors.New("cards do not form the declared meld")
	ErrMeldCardsReused = errors.New("card already used for this meld type")
	ErrNotTrickWinner  = errors.New("only the last trick winner may act")
	ErrMeldingClosed   = errors.New("melding is not available in the last nine cards")
	ErrWrongState      = errors.New("action not allowed in the current state")
	ErrSwapUnavailable = errors.New("trump seven swap not available")
)

// Precondition failures: integration errors, not game outcomes.
var (
	ErrNotInitialized = errors.New("game engine is not initialized")
	ErrInvalidConfig  = errors.New("invalid game configuration")
)
