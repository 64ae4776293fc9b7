package models

import "github.com/google/uuid"

// Card is the wire form of a physical card. Code is the rank+suit text
// ("QS", "TD", "JK"); Copy distinguishes identical cards from different
// sub-decks.
type Card struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Rank string    `json:"rank"`
	Suit string    `json:"suit,omitempty"`
	Copy int       `json:"copy"`
}
