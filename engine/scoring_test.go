package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// brisques returns n Aces and Tens spread over copies and suits.
func brisques(n int) []Card {
	out := make([]Card, 0, n)
	for i := 0; len(out) < n; i++ {
		suit := Suit(i % 4)
		copyIdx := uint8(i/8) % MaxDeckCount
		r := RankAce
		if (i/4)%2 == 1 {
			r = RankTen
		}
		out = append(out, NewCard(suit, r, copyIdx))
	}
	return out
}

func TestAdvancedBonusTwoPlayers(t *testing.T) {
	assert.Equal(t, 140, AdvancedBonus(brisques(14), 2))
	assert.Equal(t, 0, AdvancedBonus(brisques(13), 2))

	padded := append(brisques(14), NewCard(SuitClubs, RankKing, 0), NewJoker(0))
	assert.Equal(t, 14, AceTenCount(padded))
	assert.Equal(t, 140, AdvancedBonus(padded, 2))
}

func TestAdvancedBonusFourPlayers(t *testing.T) {
	assert.Equal(t, 80, AdvancedBonus(brisques(8), 4))
	assert.Equal(t, 0, AdvancedBonus(brisques(7), 4))
}

func TestApplyRoundScores(t *testing.T) {
	players := []*Player{
		{RoundScore: 100, TotalScore: 50, WonPile: brisques(14)},
		{RoundScore: 30, WonPile: brisques(3)},
	}
	added := ApplyRoundScores(players, ModeAdvanced)
	assert.Equal(t, []int{240, 30}, added)
	assert.Equal(t, 290, players[0].TotalScore)
	assert.Equal(t, 30, players[1].TotalScore)

	std := []*Player{{RoundScore: 100, WonPile: brisques(14)}}
	assert.Equal(t, []int{100}, ApplyRoundScores(std, ModeStandard))
}

func TestFinalTrickWithTrumpSevenStacks(t *testing.T) {
	players := []*Player{{ID: 0}, {ID: 1}}
	played := mcs(t, "7S", "8C")
	winner := TrickWinner(played, SuitSpades)

	AwardTrickBonuses(players, []int{0, 1}, played, SuitSpades, winner, true)

	assert.Equal(t, 20, players[0].RoundScore)
	assert.Zero(t, players[1].RoundScore)
}

func TestTrumpSevenBonusGoesToEveryPlayer(t *testing.T) {
	players := []*Player{{ID: 0}, {ID: 1}}
	played := []Card{mcCopy(t, "7S", 0), mcCopy(t, "7S", 1)}

	AwardTrickBonuses(players, []int{1, 0}, played, SuitSpades, 1, false)

	assert.Equal(t, 10, players[0].RoundScore)
	assert.Equal(t, 10, players[1].RoundScore)
}

func TestCheckForWinnerVersusWinnerID(t *testing.T) {
	players := []*Player{{TotalScore: 1010}, {TotalScore: 1200}, {TotalScore: 900}}

	seat, ok := CheckForWinner(players, 1000)
	assert.True(t, ok)
	assert.Equal(t, 0, seat)
	assert.Equal(t, 1, WinnerID(players))

	_, ok = CheckForWinner(players, 2000)
	assert.False(t, ok)

	tied := []*Player{{TotalScore: 500}, {TotalScore: 500}}
	assert.Equal(t, 0, WinnerID(tied))
	assert.Equal(t, -1, WinnerID(nil))
}
