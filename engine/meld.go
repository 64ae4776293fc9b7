package engine

// MeldType is the closed set of declarable combinations. Values outside
// [MeldTrumpSeven, MeldFourJacks] are rejected everywhere via Valid.
type MeldType uint8

const (
	MeldTrumpSeven       MeldType = iota // 0
	MeldTrumpMarriage                    // 1
	MeldNonTrumpMarriage                 // 2
	MeldBezique                          // 3
	MeldDoubleBezique                    // 4
	MeldTrumpRun                         // 5
	MeldFourAces                         // 6
	MeldFourKings                        // 7
	MeldFourQueens                       // 8
	MeldFourJacks                        // 9
	numMeldTypes
)

type meldSpec struct {
	name     string
	points   int
	required int
}

var meldCatalog = [numMeldTypes]meldSpec{
	MeldTrumpSeven:       {"trump_seven", 10, 1},
	MeldTrumpMarriage:    {"trump_marriage", 40, 2},
	MeldNonTrumpMarriage: {"marriage", 20, 2},
	MeldBezique:          {"bezique", 40, 2},
	MeldDoubleBezique:    {"double_bezique", 500, 4},
	MeldTrumpRun:         {"trump_run", 250, 5},
	MeldFourAces:         {"four_aces", 100, 4},
	MeldFourKings:        {"four_kings", 80, 4},
	MeldFourQueens:       {"four_queens", 60, 4},
	MeldFourJacks:        {"four_jacks", 40, 4},
}

// AllMeldTypes lists every meld type in catalog order.
func AllMeldTypes() []MeldType {
	out := make([]MeldType, 0, numMeldTypes)
	for t := MeldType(0); t < numMeldTypes; t++ {
		out = append(out, t)
	}
	return out
}

// Valid reports whether t is a catalog entry.
func (t MeldType) Valid() bool { return t < numMeldTypes }

// Points awarded for declaring t; 0 for unknown types.
func (t MeldType) Points() int {
	if !t.Valid() {
		return 0
	}
	return meldCatalog[t].points
}

// RequiredCards is the exact number of cards a declaration of t takes.
func (t MeldType) RequiredCards() int {
	if !t.Valid() {
		return 0
	}
	return meldCatalog[t].required
}

func (t MeldType) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return meldCatalog[t].name
}

// ParseMeldType is the inverse of MeldType.String.
func ParseMeldType(s string) (MeldType, bool) {
	for t := MeldType(0); t < numMeldTypes; t++ {
		if meldCatalog[t].name == s {
			return t, true
		}
	}
	return 0, false
}

// fourOfAKindRank maps the four-of-a-kind melds to their rank.
func (t MeldType) fourOfAKindRank() (Rank, bool) {
	switch t {
	case MeldFourAces:
		return RankAce, true
	case MeldFourKings:
		return RankKing, true
	case MeldFourQueens:
		return RankQueen, true
	case MeldFourJacks:
		return RankJack, true
	}
	return 0, false
}

// Meld is a declaration request or a found candidate.
type Meld struct {
	Type   MeldType
	Cards  []Card
	Points int
}

// ValidateMeld checks the structure of a declaration. Jokers stand in only for
// the four-of-a-kind melds, which still need one natural card of the rank.
func ValidateMeld(t MeldType, cards []Card, trump Suit) bool {
	if !t.Valid() || len(cards) != t.RequiredCards() {
		return false
	}
	for i := range cards {
		for j := i + 1; j < len(cards); j++ {
			if cards[i] == cards[j] {
				return false
			}
		}
	}

	switch t {
	case MeldTrumpSeven:
		c := cards[0]
		return !c.IsJoker() && c.Suit() == trump && c.Rank() == RankSeven

	case MeldTrumpMarriage:
		return isKingQueenPair(cards) && cards[0].Suit() == trump && cards[1].Suit() == trump

	case MeldNonTrumpMarriage:
		return isKingQueenPair(cards) && cards[0].Suit() == cards[1].Suit() && cards[0].Suit() != trump

	case MeldBezique:
		return countFace(cards, SuitSpades, RankQueen) == 1 && countFace(cards, SuitDiamonds, RankJack) == 1

	case MeldDoubleBezique:
		return countFace(cards, SuitSpades, RankQueen) == 2 && countFace(cards, SuitDiamonds, RankJack) == 2

	case MeldTrumpRun:
		for _, r := range []Rank{RankAce, RankTen, RankKing, RankQueen, RankJack} {
			if countFace(cards, trump, r) != 1 {
				return false
			}
		}
		return true

	case MeldFourAces, MeldFourKings, MeldFourQueens, MeldFourJacks:
		rank, _ := t.fourOfAKindRank()
		natural := 0
		for _, c := range cards {
			switch {
			case c.IsJoker():
			case c.Rank() == rank:
				natural++
			default:
				return false
			}
		}
		return natural >= 1
	}
	return false
}

func isKingQueenPair(cards []Card) bool {
	if len(cards) != 2 || cards[0].IsJoker() || cards[1].IsJoker() {
		return false
	}
	a, b := cards[0].Rank(), cards[1].Rank()
	return (a == RankKing && b == RankQueen) || (a == RankQueen && b == RankKing)
}

func countFace(cards []Card, suit Suit, rank Rank) int {
	n := 0
	for _, c := range cards {
		if !c.IsJoker() && c.Suit() == suit && c.Rank() == rank {
			n++
		}
	}
	return n
}

// CanUseCardsForMeld rejects a card already consumed by an earlier declaration
// of the same meld type. Other meld types may reuse it.
func CanUseCardsForMeld(p *Player, cards []Card, t MeldType) bool {
	used := p.MeldHistory[t]
	for _, c := range cards {
		if containsCard(used, c) {
			return false
		}
	}
	return true
}

// TryExecuteMeld validates and applies a declaration atomically: hand cards
// move to the table, table cards stay, points go to the round score and the
// cards are recorded against t. Returns false with no side effects on failure.
func TryExecuteMeld(p *Player, cards []Card, t MeldType, trump Suit) bool {
	if !ValidateMeld(t, cards, trump) || !CanUseCardsForMeld(p, cards, t) {
		return false
	}
	fromHand := make([]Card, 0, len(cards))
	for _, c := range cards {
		switch {
		case containsCard(p.Hand, c):
			fromHand = append(fromHand, c)
		case containsCard(p.Table, c):
		default:
			return false
		}
	}

	for _, c := range fromHand {
		p.Hand = removeCardAt(p.Hand, indexOfCard(p.Hand, c))
		p.Table = append(p.Table, c)
	}
	p.RoundScore += t.Points()
	if p.MeldHistory == nil {
		p.MeldHistory = make(map[MeldType][]Card)
	}
	p.MeldHistory[t] = append(p.MeldHistory[t], cards...)
	return true
}

// FindBestMeld returns the highest-scoring meld the player could declare now
// from hand and table cards. Ties go to the earlier catalog entry.
func FindBestMeld(p *Player, trump Suit) (Meld, bool) {
	held := make([]Card, 0, len(p.Hand)+len(p.Table))
	held = append(held, p.Hand...)
	held = append(held, p.Table...)

	var best Meld
	found := false
	consider := func(t MeldType, cards []Card) {
		if cards == nil || !ValidateMeld(t, cards, trump) || !CanUseCardsForMeld(p, cards, t) {
			return
		}
		if !found || t.Points() > best.Points {
			best = Meld{Type: t, Cards: cards, Points: t.Points()}
			found = true
		}
	}

	for _, t := range AllMeldTypes() {
		used := p.MeldHistory[t]
		switch t {
		case MeldTrumpSeven:
			consider(t, pickFaces(held, used, faceSpec{trump, RankSeven, 1}))
		case MeldTrumpMarriage:
			consider(t, pickFaces(held, used, faceSpec{trump, RankKing, 1}, faceSpec{trump, RankQueen, 1}))
		case MeldNonTrumpMarriage:
			for s := SuitHearts; s <= SuitSpades; s++ {
				if s != trump {
					consider(t, pickFaces(held, used, faceSpec{s, RankKing, 1}, faceSpec{s, RankQueen, 1}))
				}
			}
		case MeldBezique:
			consider(t, pickFaces(held, used, faceSpec{SuitSpades, RankQueen, 1}, faceSpec{SuitDiamonds, RankJack, 1}))
		case MeldDoubleBezique:
			consider(t, pickFaces(held, used, faceSpec{SuitSpades, RankQueen, 2}, faceSpec{SuitDiamonds, RankJack, 2}))
		case MeldTrumpRun:
			consider(t, pickFaces(held, used,
				faceSpec{trump, RankAce, 1}, faceSpec{trump, RankTen, 1}, faceSpec{trump, RankKing, 1},
				faceSpec{trump, RankQueen, 1}, faceSpec{trump, RankJack, 1}))
		default:
			rank, _ := t.fourOfAKindRank()
			consider(t, pickRankWithJokers(held, used, rank, t.RequiredCards()))
		}
	}
	return best, found
}

type faceSpec struct {
	suit  Suit
	rank  Rank
	count int
}

// pickFaces selects unused cards for each face, or nil if any face is short.
func pickFaces(held, used []Card, specs ...faceSpec) []Card {
	var out []Card
	for _, fs := range specs {
		n := 0
		for _, c := range held {
			if n == fs.count {
				break
			}
			if c.IsJoker() || c.Suit() != fs.suit || c.Rank() != fs.rank {
				continue
			}
			if containsCard(used, c) || containsCard(out, c) {
				continue
			}
			out = append(out, c)
			n++
		}
		if n < fs.count {
			return nil
		}
	}
	return out
}

// pickRankWithJokers prefers natural cards and tops up with jokers.
func pickRankWithJokers(held, used []Card, rank Rank, need int) []Card {
	var naturals, jokers []Card
	for _, c := range held {
		if containsCard(used, c) {
			continue
		}
		switch {
		case c.IsJoker():
			jokers = append(jokers, c)
		case c.Rank() == rank:
			naturals = append(naturals, c)
		}
	}
	if len(naturals) == 0 || len(naturals)+len(jokers) < need {
		return nil
	}
	out := make([]Card, 0, need)
	out = append(out, naturals[:min(need, len(naturals))]...)
	out = append(out, jokers[:need-len(out)]...)
	return out
}
