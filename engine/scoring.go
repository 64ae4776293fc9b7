package engine

// AceTenCount counts Aces and Tens in a won pile.
func AceTenCount(won []Card) int {
	n := 0
	for _, c := range won {
		if !c.IsJoker() && c.Rank().IsBrisque() {
			n++
		}
	}
	return n
}

// AdvancedBonus is the Ace/Ten bonus for one player's won pile: ten points
// per card once the count reaches the threshold for the table size.
func AdvancedBonus(won []Card, playerCount int) int {
	n := AceTenCount(won)
	if n >= aceTenThreshold(playerCount) {
		return n * BrisqueCardPoints
	}
	return 0
}

// ApplyRoundScores folds every round score into the game totals and, in
// advanced mode, adds each player's Ace/Ten bonus. Returns the per-player
// amount added.
func ApplyRoundScores(players []*Player, mode ScoringMode) []int {
	added := make([]int, len(players))
	for i, p := range players {
		gain := p.RoundScore
		if mode == ModeAdvanced {
			gain += AdvancedBonus(p.WonPile, len(players))
		}
		p.TotalScore += gain
		added[i] = gain
	}
	return added
}

// AwardTrickBonuses gives every player who played the trump Seven in this
// trick its bonus, and the winner the last-trick bonus when final. The two
// bonuses stack independently.
func AwardTrickBonuses(players []*Player, order []int, played []Card, trump Suit, winner int, final bool) {
	for i, c := range played {
		if !c.IsJoker() && c.Suit() == trump && c.Rank() == RankSeven {
			players[order[i]].RoundScore += TrumpSevenBonus
		}
	}
	if final {
		players[winner].RoundScore += LastTrickBonus
	}
}

// CheckForWinner returns the first player, in seat order, whose total has
// reached target. This is not necessarily the highest scorer.
func CheckForWinner(players []*Player, target int) (int, bool) {
	for i, p := range players {
		if p.TotalScore >= target {
			return i, true
		}
	}
	return -1, false
}

// WinnerID returns the highest total score, first seat on ties.
func WinnerID(players []*Player) int {
	if len(players) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(players); i++ {
		if players[i].TotalScore > players[best].TotalScore {
			best = i
		}
	}
	return best
}
