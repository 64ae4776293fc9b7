package engine

import (
	"fmt"
	"strings"
)

// Suit of a card. Jokers have no suit; see Card.IsJoker.
type Suit uint8

// Suit constants, derived from card id mod 4.
const (
	SuitHearts   Suit = 0
	SuitDiamonds Suit = 1
	SuitClubs    Suit = 2
	SuitSpades   Suit = 3
	SuitNone     Suit = 0xFF
)

// Rank of a card. Numeric values follow 7 + id/4, which is NOT the trick order
// for Ten and Jack; use Strength for comparisons.
type Rank uint8

const (
	RankSeven Rank = 7
	RankEight Rank = 8
	RankNine  Rank = 9
	RankTen   Rank = 10
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
	RankAce   Rank = 14
	RankJoker Rank = 0xFF
)

// JokerID is the card id shared by every joker.
const JokerID uint8 = 32

// MaxDeckCount is bounded by the two copy-index bits in Card.
const MaxDeckCount = 4

// Card is a packed uint8: low 6 bits = card id (0..31, or JokerID),
// high 2 bits = deck copy index.
type Card uint8

// NewCard constructs a card from suit, rank and copy index. RankJoker ignores
// the suit and yields the joker of that sub-deck.
func NewCard(suit Suit, rank Rank, copyIdx uint8) Card {
	if rank == RankJoker {
		return NewJoker(copyIdx)
	}
	id := (uint8(rank)-uint8(RankSeven))*4 + uint8(suit)
	return Card(id&0x3F | copyIdx<<6)
}

// NewJoker constructs the joker of the given sub-deck.
func NewJoker(copyIdx uint8) Card {
	return Card(JokerID | copyIdx<<6)
}

// ID returns the card id (low 6 bits).
func (c Card) ID() uint8 { return uint8(c) & 0x3F }

// Copy returns the deck copy index (high 2 bits).
func (c Card) Copy() uint8 { return uint8(c) >> 6 }

// IsJoker reports whether c is a joker.
func (c Card) IsJoker() bool { return c.ID() == JokerID }

// Suit returns the suit, or SuitNone for a joker.
func (c Card) Suit() Suit {
	if c.IsJoker() {
		return SuitNone
	}
	return Suit(c.ID() % 4)
}

// Rank returns the rank, or RankJoker for a joker.
func (c Card) Rank() Rank {
	if c.IsJoker() {
		return RankJoker
	}
	return Rank(7 + c.ID()/4)
}

// SameFace reports whether a and b are the same rank and suit, ignoring copy index.
func (c Card) SameFace(o Card) bool { return c.ID() == o.ID() }

// Strength orders ranks for trick play:
// Seven < Eight < Nine < Jack < Queen < King < Ten < Ace.
func (r Rank) Strength() int {
	switch r {
	case RankSeven:
		return 0
	case RankEight:
		return 1
	case RankNine:
		return 2
	case RankJack:
		return 3
	case RankQueen:
		return 4
	case RankKing:
		return 5
	case RankTen:
		return 6
	case RankAce:
		return 7
	default:
		return -1
	}
}

// IsBrisque reports whether the rank counts towards the Ace/Ten bonus.
func (r Rank) IsBrisque() bool { return r == RankAce || r == RankTen }

func (s Suit) String() string {
	switch s {
	case SuitHearts:
		return "H"
	case SuitDiamonds:
		return "D"
	case SuitClubs:
		return "C"
	case SuitSpades:
		return "S"
	default:
		return "?"
	}
}

func (r Rank) String() string {
	switch r {
	case RankSeven:
		return "7"
	case RankEight:
		return "8"
	case RankNine:
		return "9"
	case RankTen:
		return "T"
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	case RankAce:
		return "A"
	case RankJoker:
		return "JK"
	default:
		return "?"
	}
}

func (c Card) String() string {
	if c.IsJoker() {
		return "JK"
	}
	return c.Rank().String() + c.Suit().String()
}

// ParseSuit parses a single-letter suit.
func ParseSuit(s string) (Suit, error) {
	switch strings.ToUpper(s) {
	case "H":
		return SuitHearts, nil
	case "D":
		return SuitDiamonds, nil
	case "C":
		return SuitClubs, nil
	case "S":
		return SuitSpades, nil
	}
	return SuitNone, fmt.Errorf("unknown suit %q", s)
}

// ParseRank parses a rank token as rendered by Rank.String.
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(s) {
	case "7":
		return RankSeven, nil
	case "8":
		return RankEight, nil
	case "9":
		return RankNine, nil
	case "T", "10":
		return RankTen, nil
	case "J":
		return RankJack, nil
	case "Q":
		return RankQueen, nil
	case "K":
		return RankKing, nil
	case "A":
		return RankAce, nil
	case "JK":
		return RankJoker, nil
	}
	return 0, fmt.Errorf("unknown rank %q", s)
}

// ParseCard parses "7H", "TD", "10S" or "JK" with an explicit copy index.
func ParseCard(s string, copyIdx uint8) (Card, error) {
	if copyIdx >= MaxDeckCount {
		return 0, fmt.Errorf("copy index %d out of range", copyIdx)
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "JK" {
		return NewJoker(copyIdx), nil
	}
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid card %q", s)
	}
	rank, err := ParseRank(s[:len(s)-1])
	if err != nil {
		return 0, err
	}
	if rank == RankJoker {
		return 0, fmt.Errorf("invalid card %q: a joker has no suit", s)
	}
	suit, err := ParseSuit(s[len(s)-1:])
	if err != nil {
		return 0, err
	}
	return NewCard(suit, rank, copyIdx), nil
}

// Phase of play within a round.
type Phase uint8

const (
	PhaseNormal   Phase = iota // 0: stock available, melding allowed
	PhaseLastNine              // 1: stock exhausted, strict follow rules
)

func (p Phase) String() string {
	switch p {
	case PhaseNormal:
		return "normal"
	case PhaseLastNine:
		return "last_nine"
	default:
		return "unknown"
	}
}

// State of the engine's round state machine.
type State uint8

const (
	StateUninitialized  State = iota // 0
	StateDeal                        // 1: waiting for a deal
	StateTrumpSelection              // 2: transient while the trump card is turned
	StatePlay                        // 3: waiting for the current player's card
	StateTrickComplete               // 4: all cards played, awaiting ResolveTrick
	StateMeld                        // 5: trick winner may declare, swap or skip
	StateDraw                        // 6: waiting for DrawCards
	StateRoundEnd                    // 7: final trick resolved, awaiting EndRound
	StateGameOver                    // 8
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateDeal:
		return "deal"
	case StateTrumpSelection:
		return "trump_selection"
	case StatePlay:
		return "play"
	case StateTrickComplete:
		return "trick_complete"
	case StateMeld:
		return "meld"
	case StateDraw:
		return "draw"
	case StateRoundEnd:
		return "round_end"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}
