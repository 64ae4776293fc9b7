// engine_adapter.go: bridge between engine.GameEngine and BeziqueGame.
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/bezique/engine"
	"github.com/jason-s-yu/bezique/service/internal/models"
)

// HouseRules are the per-table settings chosen when the table is created.
type HouseRules struct {
	PlayerCount         int           `json:"playerCount"`
	DeckCount           int           `json:"deckCount"`
	TargetScore         int           `json:"targetScore"`
	Advanced            bool          `json:"advanced"` // Ace/Ten bonus at round end
	TurnTimerSec        int           `json:"turnTimerSec"`
	AutoDraw            bool          `json:"autoDraw"` // draw right after the meld step
	ForfeitOnDisconnect bool          `json:"forfeitOnDisconnect"`
	SnapshotTTL         time.Duration `json:"-"`
}

// DefaultHouseRules is a two-player, four-deck game to 1000.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		PlayerCount:         2,
		DeckCount:           4,
		TargetScore:         1000,
		TurnTimerSec:        30,
		AutoDraw:            true,
		ForfeitOnDisconnect: true,
		SnapshotTTL:         24 * time.Hour,
	}
}

// mapHouseRulesToEngine maps service HouseRules to engine.Config.
func (g *BeziqueGame) mapHouseRulesToEngine() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.PlayerCount = uint8(g.HouseRules.PlayerCount)
	if g.HouseRules.DeckCount > 0 {
		cfg.DeckCount = uint8(g.HouseRules.DeckCount)
	}
	if g.HouseRules.TargetScore > 0 {
		cfg.TargetScore = uint32(g.HouseRules.TargetScore)
	}
	if g.HouseRules.Advanced {
		cfg.Mode = engine.ModeAdvanced
	}
	return cfg
}

// cardRegistry gives every physical card of a game a stable UUID so clients
// can name cards without knowing the engine encoding.
type cardRegistry struct {
	byID   map[uuid.UUID]engine.Card
	byCard map[engine.Card]uuid.UUID
}

func newCardRegistry(gameID uuid.UUID, deckCount uint8) cardRegistry {
	deck := engine.BuildDeck(deckCount)
	r := cardRegistry{
		byID:   make(map[uuid.UUID]engine.Card, len(deck)),
		byCard: make(map[engine.Card]uuid.UUID, len(deck)),
	}
	for _, c := range deck {
		id := uuid.NewSHA1(gameID, []byte{byte(c)})
		r.byID[id] = c
		r.byCard[c] = id
	}
	return r
}

func (r cardRegistry) lookup(id uuid.UUID) (engine.Card, bool) {
	c, ok := r.byID[id]
	return c, ok
}

func (r cardRegistry) model(c engine.Card) *models.Card {
	m := &models.Card{
		ID:   r.byCard[c],
		Code: c.String(),
		Rank: c.Rank().String(),
		Copy: int(c.Copy()),
	}
	if !c.IsJoker() {
		m.Suit = c.Suit().String()
	}
	return m
}

func (r cardRegistry) toModels(cs []engine.Card) []*models.Card {
	out := make([]*models.Card, len(cs))
	for i, c := range cs {
		out[i] = r.model(c)
	}
	return out
}

// actingSeat is the seat whose input the engine waits for, or -1 when any
// player may continue (between rounds) or nobody can.
func (g *BeziqueGame) actingSeat() int {
	switch g.Engine.State() {
	case engine.StatePlay:
		return g.Engine.CurrentPlayer()
	case engine.StateMeld, engine.StateDraw:
		return g.Engine.Context().LastTrickWinner
	default:
		return -1
	}
}

func (g *BeziqueGame) actingPlayerID() uuid.UUID {
	seat := g.actingSeat()
	if seat < 0 || seat >= len(g.EngineToPlayer) {
		return uuid.Nil
	}
	return g.EngineToPlayer[seat]
}

// expectedAction names what the engine waits for, as sent to clients.
func (g *BeziqueGame) expectedAction() string {
	switch g.Engine.State() {
	case engine.StatePlay:
		return "play"
	case engine.StateMeld:
		return "meld"
	case engine.StateDraw:
		return "draw"
	case engine.StateDeal:
		return "next_round"
	default:
		return ""
	}
}

// dispatchEngineEvents drains the engine outbox and turns each event into
// client messages. Assumes lock is held.
func (g *BeziqueGame) dispatchEngineEvents() {
	for _, ev := range g.Engine.DrainEvents() {
		var user *EventUser
		if ev.PlayerID >= 0 && ev.PlayerID < len(g.EngineToPlayer) {
			user = &EventUser{ID: g.EngineToPlayer[ev.PlayerID]}
		}

		switch ev.Kind {
		case engine.EventRoundStarted:
			g.fireEvent(GameEvent{
				Type: EventGameRoundStart,
				User: user,
				Card: g.cards.model(ev.Cards[0]),
				Payload: map[string]interface{}{
					"round":     g.Engine.Round(),
					"trumpSuit": g.Engine.TrumpSuit().String(),
					"stockSize": len(g.Engine.Context().DrawDeck),
				},
			})
			g.logAction(uuid.Nil, string(EventGameRoundStart), map[string]interface{}{"round": g.Engine.Round(), "trump": ev.Cards[0].String()})
			g.sendPrivateHands()

		case engine.EventTrickEnded:
			g.fireEvent(GameEvent{
				Type:    EventGameTrickEnd,
				User:    user,
				Cards:   g.cards.toModels(ev.Cards),
				Payload: map[string]interface{}{"final": ev.Final, "roundScores": g.roundScores()},
			})
			g.logAction(user.ID, string(EventGameTrickEnd), map[string]interface{}{"final": ev.Final})

		case engine.EventPhaseChanged:
			g.fireEvent(GameEvent{
				Type:    EventGamePhaseChange,
				Payload: map[string]interface{}{"phase": ev.Phase.String()},
			})
			g.logAction(uuid.Nil, string(EventGamePhaseChange), map[string]interface{}{"phase": ev.Phase.String()})
			g.sendPrivateHands()

		case engine.EventMeldDeclared:
			g.fireEvent(GameEvent{
				Type:    EventPlayerMeld,
				User:    user,
				Cards:   g.cards.toModels(ev.Cards),
				Payload: map[string]interface{}{"meld": ev.Meld.String(), "points": ev.Points},
			})
			g.logAction(user.ID, string(EventPlayerMeld), map[string]interface{}{"meld": ev.Meld.String(), "points": ev.Points})

		case engine.EventTrumpSevenSwapped:
			g.fireEvent(GameEvent{
				Type: EventPlayerSwapSeven,
				User: user,
				Card: g.cards.model(ev.Cards[0]),
			})
			g.logAction(user.ID, string(EventPlayerSwapSeven), nil)
			g.sendPrivateHand(ev.PlayerID)

		case engine.EventRoundEnded:
			g.fireEvent(GameEvent{
				Type: EventGameRoundEnd,
				User: user,
				Payload: map[string]interface{}{
					"round":  g.Engine.Round(),
					"scores": g.scoresByPlayer(ev.Scores),
				},
			})
			g.logAction(uuid.Nil, string(EventGameRoundEnd), map[string]interface{}{"round": g.Engine.Round(), "scores": g.scoresByPlayer(ev.Scores)})
			g.saveSnapshot()

		case engine.EventGameEnded:
			g.EndGame(ev.PlayerID)
		}
	}
}

func (g *BeziqueGame) roundScores() map[string]int {
	out := make(map[string]int, len(g.EngineToPlayer))
	for seat, id := range g.EngineToPlayer {
		out[id.String()] = g.Engine.Player(seat).RoundScore
	}
	return out
}

func (g *BeziqueGame) scoresByPlayer(scores []int) map[string]int {
	out := make(map[string]int, len(scores))
	for seat, s := range scores {
		if seat < len(g.EngineToPlayer) {
			out[g.EngineToPlayer[seat].String()] = s
		}
	}
	return out
}

// sendPrivateHands refreshes every player's view of their own cards.
func (g *BeziqueGame) sendPrivateHands() {
	for seat := range g.EngineToPlayer {
		g.sendPrivateHand(seat)
	}
}

// sendPrivateHand sends a seat its hand and table, plus the legal cards when
// it is their turn to play.
func (g *BeziqueGame) sendPrivateHand(seat int) {
	p := g.Engine.Player(seat)
	if p == nil {
		return
	}
	payload := map[string]interface{}{
		"table":      g.cards.toModels(p.Table),
		"roundScore": p.RoundScore,
	}
	if g.actingSeat() == seat && g.Engine.State() == engine.StatePlay {
		legal := g.Engine.LegalMoves()
		ids := make([]uuid.UUID, len(legal))
		for i, c := range legal {
			ids[i] = g.cards.byCard[c]
		}
		payload["legal"] = ids
	}
	g.fireEventToPlayer(g.EngineToPlayer[seat], GameEvent{
		Type:    EventPrivateHand,
		Cards:   g.cards.toModels(p.Hand),
		Payload: payload,
	})
}

// advance runs the engine steps that need no player input: resolving a full
// trick, the automatic draw and closing a finished round. Then the next turn
// is announced. Assumes lock is held.
func (g *BeziqueGame) advance() {
	if g.Engine.TrickComplete() {
		if _, err := g.Engine.ResolveTrick(); err != nil {
			g.log().WithError(err).Error("resolve trick")
			return
		}
	}
	g.dispatchEngineEvents()

	if g.Engine.State() == engine.StateDraw && g.HouseRules.AutoDraw {
		if err := g.drawCards(); err != nil {
			g.log().WithError(err).Error("auto draw")
			return
		}
	}

	if g.Engine.State() == engine.StateRoundEnd {
		before := make([]int, g.Engine.PlayerCount())
		for i := range before {
			before[i] = g.Engine.Player(i).TotalScore
		}
		round := g.Engine.Round()
		if _, err := g.Engine.EndRound(); err != nil {
			g.log().WithError(err).Error("end round")
			return
		}
		added := make([]int, len(before))
		for i := range added {
			added[i] = g.Engine.Player(i).TotalScore - before[i]
		}
		g.recordRound(round, added)
		g.dispatchEngineEvents()
	}

	if !g.GameOver {
		g.onTurnAdvanced()
	}
}

// drawCards runs the draw step and tells everyone about it.
func (g *BeziqueGame) drawCards() error {
	actor := g.actingPlayerID()
	if err := g.Engine.DrawCards(); err != nil {
		return err
	}
	stock := len(g.Engine.Context().DrawDeck)
	g.fireEvent(GameEvent{
		Type:    EventGameDraw,
		User:    &EventUser{ID: actor},
		Payload: map[string]interface{}{"stockSize": stock, "trumpExposed": g.Engine.Context().TrumpExposed},
	})
	g.logAction(actor, string(EventGameDraw), map[string]interface{}{"stockSize": stock})
	g.sendPrivateHands()
	g.dispatchEngineEvents()
	return nil
}

// onTurnAdvanced bumps the turn counter, arms the timer and announces the turn.
func (g *BeziqueGame) onTurnAdvanced() {
	g.TurnID++
	g.scheduleNextTurnTimer()
	g.broadcastPlayerTurn()
}

func (g *BeziqueGame) broadcastPlayerTurn() {
	if g.GameOver || !g.Started {
		return
	}
	current := g.actingPlayerID()
	g.fireEvent(GameEvent{
		Type: EventGamePlayerTurn,
		User: &EventUser{ID: current},
		Payload: map[string]interface{}{
			"turn":   g.TurnID,
			"expect": g.expectedAction(),
			"phase":  g.Engine.Phase().String(),
		},
	})
	if seat := g.actingSeat(); seat >= 0 && g.Engine.State() == engine.StatePlay {
		g.sendPrivateHand(seat)
	}
}

func (g *BeziqueGame) stopTurnTimer() {
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}
}

// scheduleNextTurnTimer arms the timer for the current turn. A stale timer
// does nothing because TurnID has moved on.
func (g *BeziqueGame) scheduleNextTurnTimer() {
	g.stopTurnTimer()
	if g.TurnDuration <= 0 || g.GameOver || !g.Started {
		return
	}
	expected := g.TurnID
	actor := g.actingPlayerID()
	g.turnTimer = time.AfterFunc(g.TurnDuration, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.GameOver || !g.Started || g.TurnID != expected {
			return
		}
		g.handleTimeout(actor)
	})
}

// handleTimeout makes the minimal move for whoever is due: the first legal
// card, no meld, the draw, or the next deal. Assumes lock is held.
func (g *BeziqueGame) handleTimeout(playerID uuid.UUID) {
	log := g.log().WithFields(logrus.Fields{"player": playerID, "turn": g.TurnID, "state": g.Engine.State().String()})
	log.Info("turn timed out")
	g.logAction(playerID, "player_timeout", map[string]interface{}{"turn": g.TurnID})

	var err error
	switch g.Engine.State() {
	case engine.StatePlay:
		moves := g.Engine.LegalMoves()
		if len(moves) == 0 {
			return
		}
		err = g.playCard(playerID, moves[0])
	case engine.StateMeld:
		err = g.skipMeld(playerID)
	case engine.StateDraw:
		err = g.drawCards()
	case engine.StateDeal:
		err = g.startNextRound(playerID)
	default:
		return
	}
	if err != nil {
		log.WithError(err).Error("timeout move rejected")
		return
	}
	g.advance()
}
