package engine

// TrickWinner returns the index of the winning card in played, or -1 when
// nothing has been played. The first card leads; a led joker sets no lead suit.
//
// Precedence, checked in this order for each challenger:
//   - a joker challenger never wins;
//   - a led joker is unseated only by a trump;
//   - trump beats non-trump, higher trump beats lower trump;
//   - higher lead-suit card beats lower, lead suit beats off-suit;
//   - otherwise the current winner stands.
func TrickWinner(played []Card, trump Suit) int {
	if len(played) == 0 {
		return -1
	}
	lead := played[0].Suit()
	hasLead := !played[0].IsJoker()

	best := 0
	for i := 1; i < len(played); i++ {
		if Beats(played[i], played[best], lead, hasLead, trump) {
			best = i
		}
	}
	return best
}

// Beats reports whether challenger takes the trick from the current winner.
func Beats(challenger, winner Card, lead Suit, hasLead bool, trump Suit) bool {
	if challenger.IsJoker() {
		return false
	}
	if winner.IsJoker() {
		// Only reachable when the joker led.
		return challenger.Suit() == trump
	}

	cTrump := challenger.Suit() == trump
	wTrump := winner.Suit() == trump
	switch {
	case cTrump && !wTrump:
		return true
	case !cTrump && wTrump:
		return false
	case cTrump && wTrump:
		return outranks(challenger, winner)
	}

	if !hasLead {
		return false
	}
	cLead := challenger.Suit() == lead
	wLead := winner.Suit() == lead
	switch {
	case cLead && wLead:
		return outranks(challenger, winner)
	case cLead && !wLead:
		return true
	default:
		return false
	}
}

// outranks compares trick strength; equal faces from different sub-decks
// never outrank each other, so the earlier card keeps the trick.
func outranks(a, b Card) bool {
	return a.Rank().Strength() > b.Rank().Strength()
}

// trickLead returns the lead suit of a partial trick and whether one exists.
func trickLead(played []Card) (Suit, bool) {
	if len(played) == 0 || played[0].IsJoker() {
		return SuitNone, false
	}
	return played[0].Suit(), true
}
