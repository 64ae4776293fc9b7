package engine

import "testing"

// mc parses a copy-0 card, failing the test on a typo.
func mc(t *testing.T, s string) Card {
	t.Helper()
	c, err := ParseCard(s, 0)
	if err != nil {
		t.Fatalf("bad card %q: %v", s, err)
	}
	return c
}

// mcs parses several copy-0 cards.
func mcs(t *testing.T, ss ...string) []Card {
	t.Helper()
	out := make([]Card, len(ss))
	for i, s := range ss {
		out[i] = mc(t, s)
	}
	return out
}

// mcCopy parses a card from a specific sub-deck.
func mcCopy(t *testing.T, s string, copyIdx uint8) Card {
	t.Helper()
	c, err := ParseCard(s, copyIdx)
	if err != nil {
		t.Fatalf("bad card %q/%d: %v", s, copyIdx, err)
	}
	return c
}

// identityRNG leaves a deck in canonical order when shuffled.
type identityRNG struct{}

func (identityRNG) IntN(n int) int { return n - 1 }

// scriptedRNG answers each IntN call through a function of n.
type scriptedRNG func(n int) int

func (f scriptedRNG) IntN(n int) int { return f(n) }

// newDealtEngine initializes an engine with a fixed seed.
func newDealtEngine(t *testing.T, cfg Config, seed uint64) *GameEngine {
	t.Helper()
	e := NewGameEngine(NewSeededRNG(seed))
	if err := e.Initialize(cfg); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return e
}
