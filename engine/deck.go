package engine

// RNG is the pluggable randomness source used for shuffling.
type RNG interface {
	// IntN returns a non-negative random int in [0, n).
	IntN(n int) int
}

// xorshift is the default seeded generator; same seed, same shuffles.
type xorshift struct {
	state uint64
}

// NewSeededRNG returns a deterministic xorshift64 generator.
func NewSeededRNG(seed uint64) RNG {
	if seed == 0 {
		seed = 1 // xorshift can't start at 0
	}
	return &xorshift{state: seed}
}

func (x *xorshift) next() uint64 {
	v := x.state
	v ^= v << 13
	v ^= v >> 7
	v ^= v << 17
	x.state = v
	return v
}

func (x *xorshift) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return int(x.next() % uint64(n))
}

// BuildDeck returns deckCount sub-decks of 32 cards plus one joker each,
// in canonical order (sub-deck by sub-deck, ids ascending).
func BuildDeck(deckCount uint8) []Card {
	deck := make([]Card, 0, int(deckCount)*(CardsPerSubDeck+JokersPerSubDeck))
	for d := uint8(0); d < deckCount; d++ {
		for id := uint8(0); id < CardsPerSubDeck; id++ {
			deck = append(deck, Card(id|d<<6))
		}
		deck = append(deck, NewJoker(d))
	}
	return deck
}

// Shuffle permutes deck in place (Fisher-Yates).
func Shuffle(deck []Card, rng RNG) {
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// popCard removes and returns the top (last) card of a stock.
func popCard(stock *[]Card) (Card, bool) {
	n := len(*stock)
	if n == 0 {
		return 0, false
	}
	c := (*stock)[n-1]
	*stock = (*stock)[:n-1]
	return c, true
}

// indexOfCard finds an exact card (id and copy) in a slice.
func indexOfCard(cards []Card, target Card) int {
	for i, c := range cards {
		if c == target {
			return i
		}
	}
	return -1
}

// removeCardAt deletes cards[i] preserving order.
func removeCardAt(cards []Card, i int) []Card {
	return append(cards[:i], cards[i+1:]...)
}

// containsCard reports whether the exact card is present.
func containsCard(cards []Card, target Card) bool {
	return indexOfCard(cards, target) >= 0
}
