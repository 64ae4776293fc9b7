// internal/game/special_actions.go
package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/bezique/engine"
)

// declareMeld handles action_meld: {"meld": name, "cards": [id, ...]}. With
// no cards the best meld on offer is declared, provided it matches "meld"
// when that is given.
func (g *BeziqueGame) declareMeld(playerID uuid.UUID, payload map[string]interface{}) error {
	if err := g.requireActor(playerID); err != nil {
		return err
	}
	name, _ := payload["meld"].(string)
	rawCards, _ := payload["cards"].([]interface{})

	if len(rawCards) == 0 {
		best, found := g.Engine.BestAvailableMeld()
		if !found || (name != "" && best.Type.String() != name) {
			return fmt.Errorf("%w: nothing to declare", engine.ErrInvalidMeld)
		}
		return g.Engine.DeclareMeld(best.Cards, best.Type)
	}

	t, ok := engine.ParseMeldType(name)
	if !ok {
		return fmt.Errorf("%w: unknown meld %q", engine.ErrInvalidMeld, name)
	}
	cards := make([]engine.Card, 0, len(rawCards))
	for _, rc := range rawCards {
		s, ok := rc.(string)
		if !ok {
			return fmt.Errorf("%w: %v", errUnknownCard, rc)
		}
		c, err := g.parseCardID(s)
		if err != nil {
			return err
		}
		cards = append(cards, c)
	}
	return g.Engine.DeclareMeld(cards, t)
}

// skipMeld passes on melding for the trick winner.
func (g *BeziqueGame) skipMeld(playerID uuid.UUID) error {
	if err := g.requireActor(playerID); err != nil {
		return err
	}
	if err := g.Engine.SkipMeld(); err != nil {
		return err
	}
	g.fireEvent(GameEvent{Type: EventPlayerSkipMeld, User: &EventUser{ID: playerID}})
	g.logAction(playerID, ActionSkipMeld, nil)
	return nil
}

// swapTrumpSeven exchanges the trick winner's trump Seven for the trump card.
func (g *BeziqueGame) swapTrumpSeven(playerID uuid.UUID) error {
	if err := g.requireActor(playerID); err != nil {
		return err
	}
	return g.Engine.SwapTrumpSeven()
}
