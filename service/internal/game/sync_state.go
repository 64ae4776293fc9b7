// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"

	"github.com/jason-s-yu/bezique/engine"
	"github.com/jason-s-yu/bezique/service/internal/models"
)

// ObfPlayerState is one seat as seen by a particular observer. Tables, won
// pile sizes and scores are public; the hand is revealed only to its owner.
type ObfPlayerState struct {
	PlayerID      uuid.UUID      `json:"playerId"`
	Username      string         `json:"username"`
	Seat          int            `json:"seat"`
	Connected     bool           `json:"connected"`
	IsCurrentTurn bool           `json:"isCurrentTurn"`
	HandSize      int            `json:"handSize"`
	Table         []*models.Card `json:"table"`
	WonPileSize   int            `json:"wonPileSize"`
	RoundScore    int            `json:"roundScore"`
	TotalScore    int            `json:"totalScore"`
	SwappedSeven  bool           `json:"swappedSeven"`
	// RevealedHand and LegalMoves are populated only for the requester.
	RevealedHand []*models.Card `json:"revealedHand,omitempty"`
	LegalMoves   []uuid.UUID    `json:"legalMoves,omitempty"`
}

// ObfTrickCard is a card played to the current trick.
type ObfTrickCard struct {
	PlayerID uuid.UUID    `json:"playerId"`
	Card     *models.Card `json:"card"`
}

// ObfGameState is the full game state filtered for one observer.
type ObfGameState struct {
	GameID          uuid.UUID        `json:"gameId"`
	Started         bool             `json:"started"`
	GameOver        bool             `json:"gameOver"`
	Round           int              `json:"round"`
	Phase           string           `json:"phase"`
	Expect          string           `json:"expect,omitempty"`
	CurrentPlayerID uuid.UUID        `json:"currentPlayerId"`
	DealerID        uuid.UUID        `json:"dealerId"`
	LastTrickWinner uuid.UUID        `json:"lastTrickWinner,omitempty"`
	TurnID          int              `json:"turnId"`
	TrumpSuit       string           `json:"trumpSuit,omitempty"`
	TrumpCard       *models.Card     `json:"trumpCard,omitempty"`
	StockSize       int              `json:"stockSize"`
	Trick           []ObfTrickCard   `json:"trick"`
	Players         []ObfPlayerState `json:"players"`
	HouseRules      HouseRules       `json:"houseRules"`
}

// GetCurrentObfuscatedGameState builds the state visible to forUser. uuid.Nil
// yields the spectator view with every hand hidden. Assumes lock is held.
func (g *BeziqueGame) GetCurrentObfuscatedGameState(forUser uuid.UUID) ObfGameState {
	obf := ObfGameState{
		GameID:     g.ID,
		Started:    g.Started,
		GameOver:   g.GameOver,
		TurnID:     g.TurnID,
		Trick:      []ObfTrickCard{},
		HouseRules: g.HouseRules,
	}

	if !g.Started || g.Engine == nil {
		for _, p := range g.Players {
			obf.Players = append(obf.Players, ObfPlayerState{
				PlayerID:  p.ID,
				Username:  username(p),
				Seat:      p.Seat,
				Connected: p.Connected,
				Table:     []*models.Card{},
			})
		}
		return obf
	}

	ctx := g.Engine.Context()
	obf.Round = g.Engine.Round()
	obf.Phase = g.Engine.Phase().String()
	obf.StockSize = len(ctx.DrawDeck)
	obf.TrumpSuit = ctx.TrumpSuit.String()
	obf.DealerID = g.EngineToPlayer[g.Engine.Dealer()]
	if ctx.TrumpExposed {
		obf.TrumpCard = g.cards.model(ctx.TrumpCard)
	}
	if ctx.LastTrickWinner >= 0 {
		obf.LastTrickWinner = g.EngineToPlayer[ctx.LastTrickWinner]
	}
	if !g.GameOver {
		obf.CurrentPlayerID = g.actingPlayerID()
		obf.Expect = g.expectedAction()
	}

	cards, seats := g.Engine.TrickCards()
	for i, c := range cards {
		obf.Trick = append(obf.Trick, ObfTrickCard{
			PlayerID: g.EngineToPlayer[seats[i]],
			Card:     g.cards.model(c),
		})
	}

	acting := g.actingSeat()
	for _, p := range g.Players {
		seat := g.PlayerToEngine[p.ID]
		ep := g.Engine.Player(seat)
		ps := ObfPlayerState{
			PlayerID:      p.ID,
			Username:      username(p),
			Seat:          seat,
			Connected:     p.Connected,
			IsCurrentTurn: !g.GameOver && seat == acting,
			HandSize:      len(ep.Hand),
			Table:         g.cards.toModels(ep.Table),
			WonPileSize:   len(ep.WonPile),
			RoundScore:    ep.RoundScore,
			TotalScore:    ep.TotalScore,
			SwappedSeven:  ep.HasSwappedTrumpSeven,
		}
		if forUser != uuid.Nil && p.ID == forUser {
			ps.RevealedHand = g.cards.toModels(ep.Hand)
			if ps.IsCurrentTurn && g.Engine.State() == engine.StatePlay {
				for _, c := range g.Engine.LegalMoves() {
					ps.LegalMoves = append(ps.LegalMoves, g.cards.byCard[c])
				}
			}
		}
		obf.Players = append(obf.Players, ps)
	}
	return obf
}

func username(p *models.Player) string {
	if p.User == nil {
		return ""
	}
	return p.User.Username
}
