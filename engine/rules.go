package engine

import "fmt"

// ScoringMode selects how a round's scores roll up into the game total.
type ScoringMode uint8

const (
	ModeStandard ScoringMode = iota // round score only
	ModeAdvanced                    // plus Ace/Ten bonus from won tricks
)

func (m ScoringMode) String() string {
	if m == ModeAdvanced {
		return "advanced"
	}
	return "standard"
}

// Scoring and dealing constants.
const (
	HandSize          = 9
	CardsPerSubDeck   = 32
	JokersPerSubDeck  = 1
	TrumpSevenBonus   = 10
	LastTrickBonus    = 10
	DealerSevenBonus  = 10
	SwapSevenBonus    = 10
	BrisqueCardPoints = 10
)

// Config holds the game settings passed to Initialize.
type Config struct {
	PlayerCount uint8 // 2 or 4
	Mode        ScoringMode
	TargetScore uint32
	DeckCount   uint8 // sub-decks shuffled together, 1..MaxDeckCount
	Dealer      uint8 // first round's dealer
}

// DefaultConfig returns a two-player standard game with four sub-decks.
func DefaultConfig() Config {
	return Config{
		PlayerCount: 2,
		Mode:        ModeStandard,
		TargetScore: 1000,
		DeckCount:   4,
	}
}

// DeckSize returns the number of physical cards, jokers included.
func (c Config) DeckSize() int {
	return int(c.DeckCount) * (CardsPerSubDeck + JokersPerSubDeck)
}

// validate checks the configuration can produce a playable round.
func (c Config) validate() error {
	if c.PlayerCount != 2 && c.PlayerCount != 4 {
		return fmt.Errorf("%w: player count must be 2 or 4, got %d", ErrInvalidConfig, c.PlayerCount)
	}
	if c.DeckCount == 0 || c.DeckCount > MaxDeckCount {
		return fmt.Errorf("%w: deck count must be 1..%d, got %d", ErrInvalidConfig, MaxDeckCount, c.DeckCount)
	}
	if c.Mode != ModeStandard && c.Mode != ModeAdvanced {
		return fmt.Errorf("%w: unknown scoring mode %d", ErrInvalidConfig, c.Mode)
	}
	if c.Dealer >= c.PlayerCount {
		return fmt.Errorf("%w: dealer %d out of range", ErrInvalidConfig, c.Dealer)
	}
	// Every hand plus the turned-up trump must come from the deck.
	if need := int(c.PlayerCount)*HandSize + 1; c.DeckSize() < need {
		return fmt.Errorf("%w: %d cards cannot deal %d players", ErrInvalidConfig, c.DeckSize(), c.PlayerCount)
	}
	return nil
}

// aceTenThreshold is the minimum number of Aces and Tens in the won pile
// before the advanced-mode bonus applies.
func aceTenThreshold(playerCount int) int {
	if playerCount >= 4 {
		return 8
	}
	return 14
}
