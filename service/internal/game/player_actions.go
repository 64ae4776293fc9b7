// internal/game/player_actions.go
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jason-s-yu/bezique/engine"
	"github.com/jason-s-yu/bezique/service/internal/models"
)

// Client action types.
const (
	ActionPlay      = "action_play"
	ActionMeld      = "action_meld"
	ActionSkipMeld  = "action_skip_meld"
	ActionSwapSeven = "action_swap_seven"
	ActionDraw      = "action_draw"
	ActionNextRound = "action_next_round"
)

var (
	errNotRunning  = errors.New("game is not in progress")
	errNotYourTurn = errors.New("not your turn")
	errNotSeated   = errors.New("not seated at this table")
	errUnknownCard = errors.New("unknown card id")
)

// HandlePlayerAction validates and applies one client action, then runs the
// engine forward to the next decision. Assumes lock is held by caller.
func (g *BeziqueGame) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) {
	if g.getPlayerByID(playerID) == nil {
		g.log().WithField("player", playerID).Warn("action from unseated player")
		return
	}
	if !g.Started || g.GameOver {
		g.failAction(playerID, action.ActionType, errNotRunning)
		return
	}
	g.lastSeen[playerID] = time.Now()

	var err error
	switch action.ActionType {
	case ActionPlay:
		var c engine.Card
		if c, err = g.cardFromPayload(action.Payload, "card"); err == nil {
			err = g.playCard(playerID, c)
		}
	case ActionMeld:
		err = g.declareMeld(playerID, action.Payload)
	case ActionSkipMeld:
		err = g.skipMeld(playerID)
	case ActionSwapSeven:
		err = g.swapTrumpSeven(playerID)
	case ActionDraw:
		if err = g.requireActor(playerID); err == nil {
			err = g.drawCards()
		}
	case ActionNextRound:
		err = g.startNextRound(playerID)
	default:
		err = fmt.Errorf("unknown action %q", action.ActionType)
	}
	if err != nil {
		g.failAction(playerID, action.ActionType, err)
		return
	}
	g.advance()
}

// requireActor checks playerID is the seat the engine is waiting for.
func (g *BeziqueGame) requireActor(playerID uuid.UUID) error {
	if g.actingPlayerID() == playerID {
		return nil
	}
	switch g.Engine.State() {
	case engine.StateMeld, engine.StateDraw:
		return engine.ErrNotTrickWinner
	default:
		return errNotYourTurn
	}
}

// playCard plays c from playerID's hand or table.
func (g *BeziqueGame) playCard(playerID uuid.UUID, c engine.Card) error {
	if err := g.requireActor(playerID); err != nil {
		return err
	}
	if err := g.Engine.PlayCard(c); err != nil {
		return err
	}
	g.fireEvent(GameEvent{
		Type: EventPlayerPlay,
		User: &EventUser{ID: playerID},
		Card: g.cards.model(c),
	})
	g.logAction(playerID, ActionPlay, map[string]interface{}{"card": c.String()})
	return nil
}

// startNextRound deals the next round. Any seated player may trigger it.
func (g *BeziqueGame) startNextRound(playerID uuid.UUID) error {
	if err := g.Engine.StartNextRound(); err != nil {
		return err
	}
	g.logAction(playerID, ActionNextRound, map[string]interface{}{"round": g.Engine.Round()})
	g.dispatchEngineEvents()
	return nil
}

// cardFromPayload resolves the card id stored under key.
func (g *BeziqueGame) cardFromPayload(payload map[string]interface{}, key string) (engine.Card, error) {
	raw, ok := payload[key].(string)
	if !ok {
		return 0, fmt.Errorf("missing %q", key)
	}
	return g.parseCardID(raw)
}

func (g *BeziqueGame) parseCardID(raw string) (engine.Card, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errUnknownCard, raw)
	}
	c, ok := g.cards.lookup(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", errUnknownCard, raw)
	}
	return c, nil
}
