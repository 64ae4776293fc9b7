package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegalMoves(t *testing.T) {
	tests := []struct {
		name   string
		hand   []string
		played []string
		trump  Suit
		want   []string
	}{
		{"leading: anything", []string{"7H", "AS", "JK"}, nil, SuitSpades, []string{"7H", "AS", "JK"}},
		{"must follow even when losing", []string{"7H", "AS"}, []string{"KH"}, SuitSpades, []string{"7H"}},
		{"must overtake when able", []string{"7H", "AH", "8C"}, []string{"KH"}, SuitSpades, []string{"AH"}},
		{"any overtaking card", []string{"TH", "AH", "7H"}, []string{"KH"}, SuitSpades, []string{"TH", "AH"}},
		{"void in lead: must trump", []string{"7S", "AC"}, []string{"KH"}, SuitSpades, []string{"7S"}},
		{"must beat winning trump", []string{"7S", "AS", "8C"}, []string{"KH", "9S"}, SuitSpades, []string{"AS"}},
		{"trump even when unable to beat", []string{"7S", "8C"}, []string{"KH", "9S"}, SuitSpades, []string{"7S"}},
		{"void in both: anything", []string{"8C", "JK"}, []string{"KH"}, SuitSpades, []string{"8C", "JK"}},
		{"follow beats joker discard", []string{"7H", "JK"}, []string{"KH"}, SuitSpades, []string{"7H"}},
		{"follow suit even with trump winning", []string{"AH", "9H", "AS"}, []string{"KH", "7S"}, SuitSpades, []string{"AH", "9H"}},
		{"joker led: trump required", []string{"7H", "8S"}, []string{"JK"}, SuitSpades, []string{"8S"}},
		{"joker led: void in trump", []string{"7H", "8C"}, []string{"JK"}, SuitSpades, []string{"7H", "8C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LegalMoves(mcs(t, tt.hand...), mcs(t, tt.played...), tt.trump)
			assert.ElementsMatch(t, mcs(t, tt.want...), got)
		})
	}
}

func TestIsLegalMoveNoWinner(t *testing.T) {
	hand := mcs(t, "7H", "8C")
	assert.True(t, IsLegalMove(hand, mc(t, "8C"), SuitHearts, true, 0, false, SuitSpades))
}
