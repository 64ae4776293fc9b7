package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardEncoding(t *testing.T) {
	c := NewCard(SuitSpades, RankQueen, 2)
	assert.Equal(t, uint8(23), c.ID())
	assert.Equal(t, uint8(2), c.Copy())
	assert.Equal(t, SuitSpades, c.Suit())
	assert.Equal(t, RankQueen, c.Rank())
	assert.False(t, c.IsJoker())
	assert.Equal(t, "QS", c.String())
}

func TestCardIDFormula(t *testing.T) {
	for id := uint8(0); id < CardsPerSubDeck; id++ {
		c := Card(id)
		assert.Equal(t, Suit(id%4), c.Suit(), "id %d", id)
		assert.Equal(t, Rank(7+id/4), c.Rank(), "id %d", id)
		assert.Equal(t, c, NewCard(c.Suit(), c.Rank(), 0), "id %d", id)
	}
}

func TestJoker(t *testing.T) {
	j := NewJoker(3)
	assert.True(t, j.IsJoker())
	assert.Equal(t, uint8(3), j.Copy())
	assert.Equal(t, SuitNone, j.Suit())
	assert.Equal(t, RankJoker, j.Rank())
	assert.Equal(t, -1, j.Rank().Strength())
	assert.Equal(t, "JK", j.String())
}

func TestRankStrengthOrder(t *testing.T) {
	order := []Rank{RankSeven, RankEight, RankNine, RankJack, RankQueen, RankKing, RankTen, RankAce}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i].Strength(), order[i-1].Strength(), "%s over %s", order[i], order[i-1])
	}
	assert.True(t, RankTen.IsBrisque())
	assert.True(t, RankAce.IsBrisque())
	assert.False(t, RankKing.IsBrisque())
}

func TestSameFaceIgnoresCopy(t *testing.T) {
	a := NewCard(SuitHearts, RankAce, 0)
	b := NewCard(SuitHearts, RankAce, 3)
	assert.NotEqual(t, a, b)
	assert.True(t, a.SameFace(b))
}

func TestNewCardJokerIgnoresSuit(t *testing.T) {
	jk := NewCard(SuitSpades, RankJoker, 1)
	assert.True(t, jk.IsJoker())
	assert.Equal(t, NewJoker(1), jk)
	assert.Equal(t, SuitNone, jk.Suit())
}

func TestParseCard(t *testing.T) {
	ten, err := ParseCard("10d", 1)
	require.NoError(t, err)
	alt, err := ParseCard("TD", 1)
	require.NoError(t, err)
	assert.Equal(t, ten, alt)
	assert.Equal(t, "TD", ten.String())

	jk, err := ParseCard("jk", 2)
	require.NoError(t, err)
	assert.Equal(t, NewJoker(2), jk)

	for _, bad := range []string{"", "X", "1H", "7X", "ZZZ", "JKH", "jks"} {
		_, err := ParseCard(bad, 0)
		assert.Error(t, err, "input %q", bad)
	}
	_, err = ParseCard("7H", MaxDeckCount)
	assert.Error(t, err)
}

func TestStateAndPhaseStrings(t *testing.T) {
	assert.Equal(t, "normal", PhaseNormal.String())
	assert.Equal(t, "last_nine", PhaseLastNine.String())
	assert.Equal(t, "play", StatePlay.String())
	assert.Equal(t, "game_over", StateGameOver.String())
}
