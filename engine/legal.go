package engine

// IsLegalMove applies the last-nine-cards follow rules. lead/hasLead describe
// the trick's lead suit (absent when a joker led); winner/hasWinner the card
// currently taking the trick (absent when nothing has been played).
//
//   - nothing played yet: any card;
//   - holding the lead suit: must follow, and must beat the winner if any
//     held lead-suit card can;
//   - else holding trump: must trump, and must beat a winning trump if able;
//   - else: any card.
func IsLegalMove(hand []Card, candidate Card, lead Suit, hasLead bool, winner Card, hasWinner bool, trump Suit) bool {
	if !hasWinner {
		return true
	}

	if hasLead {
		if follow := cardsOfSuit(hand, lead); len(follow) > 0 {
			if candidate.IsJoker() || candidate.Suit() != lead {
				return false
			}
			return satisfiesOvertake(follow, candidate, winner, lead, hasLead, trump)
		}
	}

	if trumps := cardsOfSuit(hand, trump); len(trumps) > 0 {
		if candidate.IsJoker() || candidate.Suit() != trump {
			return false
		}
		if winner.IsJoker() || winner.Suit() != trump {
			return true
		}
		return satisfiesOvertake(trumps, candidate, winner, lead, hasLead, trump)
	}

	return true
}

// satisfiesOvertake: if any option beats the winner, the candidate must too.
func satisfiesOvertake(options []Card, candidate, winner Card, lead Suit, hasLead bool, trump Suit) bool {
	for _, c := range options {
		if Beats(c, winner, lead, hasLead, trump) {
			return Beats(candidate, winner, lead, hasLead, trump)
		}
	}
	return true
}

// LegalMoves filters hand through IsLegalMove for the partial trick played.
func LegalMoves(hand []Card, played []Card, trump Suit) []Card {
	lead, hasLead := trickLead(played)
	var winner Card
	hasWinner := len(played) > 0
	if hasWinner {
		winner = played[TrickWinner(played, trump)]
	}

	out := make([]Card, 0, len(hand))
	for _, c := range hand {
		if IsLegalMove(hand, c, lead, hasLead, winner, hasWinner, trump) {
			out = append(out, c)
		}
	}
	return out
}

func cardsOfSuit(cards []Card, s Suit) []Card {
	var out []Card
	for _, c := range cards {
		if !c.IsJoker() && c.Suit() == s {
			out = append(out, c)
		}
	}
	return out
}
