// internal/game/game_test.go
package game

import (
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/bezique/engine"
	"github.com/jason-s-yu/bezique/service/internal/models"
)

// mockBroadcaster captures game events for testing assertions.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[uuid.UUID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[uuid.UUID][]GameEvent),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = []GameEvent{}
	mb.playerEvents = make(map[uuid.UUID][]GameEvent)
}

func (mb *mockBroadcaster) getLastPlayerEvent(playerID uuid.UUID) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[playerID]
	if len(events) == 0 {
		return nil
	}
	return &events[len(events)-1]
}

func (mb *mockBroadcaster) findEventByType(eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i := len(mb.allEvents) - 1; i >= 0; i-- {
		if mb.allEvents[i].Type == eventType {
			return &mb.allEvents[i]
		}
	}
	return nil
}

func (mb *mockBroadcaster) findPlayerEventByType(playerID uuid.UUID, eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[playerID]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventType {
			return &events[i]
		}
	}
	return nil
}

// setupTestGame seats numPlayers connected players and starts a seeded game
// with the turn timer off unless rules ask for one.
func setupTestGame(t *testing.T, numPlayers int, rules *HouseRules) (*BeziqueGame, []*models.Player, *mockBroadcaster) {
	t.Helper()
	g := NewBeziqueGame()
	g.Seed = 42
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	g.HouseRules.TurnTimerSec = 0
	if rules != nil {
		g.HouseRules = *rules
	}
	g.HouseRules.PlayerCount = numPlayers
	if g.HouseRules.TurnTimerSec > 0 {
		g.TurnDuration = 50 * time.Millisecond
	}

	players := make([]*models.Player, numPlayers)
	for i := range players {
		players[i] = &models.Player{
			ID:        uuid.New(),
			Connected: true,
			User:      &models.User{ID: uuid.New(), Username: "Player" + string(rune('A'+i))},
		}
		require.NoError(t, g.AddPlayer(players[i]))
	}
	require.NoError(t, g.Start())
	require.True(t, g.Started)
	return g, players, mb
}

// act sends one action under the game lock.
func act(g *BeziqueGame, playerID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.HandlePlayerAction(playerID, models.GameAction{ActionType: actionType, Payload: payload})
}

func cardPayload(g *BeziqueGame, c engine.Card) map[string]interface{} {
	return map[string]interface{}{"card": g.cards.byCard[c].String()}
}

// playOneStep makes the minimal move for whoever the game waits on.
func playOneStep(t *testing.T, g *BeziqueGame) {
	t.Helper()
	g.Mu.Lock()
	state := g.Engine.State()
	actor := g.actingPlayerID()
	var legal []engine.Card
	if state == engine.StatePlay {
		legal = g.Engine.LegalMoves()
	}
	anyone := g.Players[0].ID
	g.Mu.Unlock()

	switch state {
	case engine.StatePlay:
		require.NotEmpty(t, legal)
		act(g, actor, ActionPlay, cardPayload(g, legal[0]))
	case engine.StateMeld:
		act(g, actor, ActionSkipMeld, nil)
	case engine.StateDraw:
		act(g, actor, ActionDraw, nil)
	case engine.StateDeal:
		act(g, anyone, ActionNextRound, nil)
	default:
		t.Fatalf("unexpected state %s", state)
	}
}

func TestStartDealsAndAnnounces(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, nil)

	start := mb.findEventByType(EventGameRoundStart)
	require.NotNil(t, start)
	require.NotNil(t, start.Card, "trump card is public")
	assert.Equal(t, 1, start.Payload["round"])

	for _, p := range players {
		hand := mb.findPlayerEventByType(p.ID, EventPrivateHand)
		require.NotNil(t, hand, "player %s got no hand", p.ID)
		assert.Len(t, hand.Cards, engine.HandSize)
	}

	turn := mb.findEventByType(EventGamePlayerTurn)
	require.NotNil(t, turn)
	assert.Equal(t, "play", turn.Payload["expect"])
	assert.Equal(t, g.actingPlayerID(), turn.User.ID)
	assert.Equal(t, players[1].ID, turn.User.ID, "player after the dealer leads")
}

func TestStartNeedsFullTable(t *testing.T) {
	g := NewBeziqueGame()
	require.NoError(t, g.AddPlayer(&models.Player{ID: uuid.New(), Connected: true}))
	assert.Error(t, g.Start())
	assert.False(t, g.Started)
}

func TestAddPlayerAfterStart(t *testing.T) {
	g, players, _ := setupTestGame(t, 2, nil)
	err := g.AddPlayer(&models.Player{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrGameStarted)

	// A seated player may rejoin.
	assert.NoError(t, g.AddPlayer(&models.Player{ID: players[0].ID}))
}

func TestOutOfTurnRejected(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, nil)
	waiting := players[0]
	require.NotEqual(t, waiting.ID, g.actingPlayerID())

	card := g.Engine.Player(0).Hand[0]
	act(g, waiting.ID, ActionPlay, cardPayload(g, card))

	fail := mb.getLastPlayerEvent(waiting.ID)
	require.NotNil(t, fail)
	assert.Equal(t, EventPrivateFail, fail.Type)
	assert.Len(t, g.Engine.Player(0).Hand, engine.HandSize, "rejected play leaves the hand alone")
}

func TestUnknownCardRejected(t *testing.T) {
	g, _, mb := setupTestGame(t, 2, nil)
	actor := g.actingPlayerID()

	act(g, actor, ActionPlay, map[string]interface{}{"card": uuid.NewString()})
	fail := mb.getLastPlayerEvent(actor)
	require.NotNil(t, fail)
	assert.Equal(t, EventPrivateFail, fail.Type)

	act(g, actor, ActionPlay, map[string]interface{}{})
	assert.Equal(t, EventPrivateFail, mb.getLastPlayerEvent(actor).Type)

	act(g, actor, "action_shuffle", nil)
	assert.Equal(t, EventPrivateFail, mb.getLastPlayerEvent(actor).Type)
}

func TestTrickThenMeldThenDraw(t *testing.T) {
	g, _, mb := setupTestGame(t, 2, nil)
	mb.clear()

	playOneStep(t, g)
	assert.NotNil(t, mb.findEventByType(EventPlayerPlay))
	playOneStep(t, g)

	trickEnd := mb.findEventByType(EventGameTrickEnd)
	require.NotNil(t, trickEnd)
	assert.Len(t, trickEnd.Cards, 2)
	assert.Equal(t, engine.StateMeld, g.Engine.State())
	assert.Equal(t, trickEnd.User.ID, g.actingPlayerID(), "trick winner melds")

	turn := mb.findEventByType(EventGamePlayerTurn)
	require.NotNil(t, turn)
	assert.Equal(t, "meld", turn.Payload["expect"])

	// Only the trick winner may skip.
	other := g.EngineToPlayer[1-g.PlayerToEngine[trickEnd.User.ID]]
	act(g, other, ActionSkipMeld, nil)
	assert.Equal(t, EventPrivateFail, mb.getLastPlayerEvent(other).Type)
	assert.Equal(t, engine.StateMeld, g.Engine.State())

	act(g, trickEnd.User.ID, ActionSkipMeld, nil)
	assert.NotNil(t, mb.findEventByType(EventPlayerSkipMeld))
	draw := mb.findEventByType(EventGameDraw)
	require.NotNil(t, draw, "auto draw follows the meld step")
	assert.Equal(t, engine.StatePlay, g.Engine.State())
	for seat := range g.EngineToPlayer {
		assert.Equal(t, engine.HandSize, g.Engine.Player(seat).CardsHeld())
	}
}

func TestManualDraw(t *testing.T) {
	rules := DefaultHouseRules()
	rules.TurnTimerSec = 0
	rules.AutoDraw = false
	g, _, mb := setupTestGame(t, 2, &rules)

	playOneStep(t, g)
	playOneStep(t, g)
	playOneStep(t, g) // skip meld
	require.Equal(t, engine.StateDraw, g.Engine.State())

	mb.clear()
	playOneStep(t, g)
	assert.NotNil(t, mb.findEventByType(EventGameDraw))
	assert.Equal(t, engine.StatePlay, g.Engine.State())
}

func TestDeclareBestMeldWithoutCards(t *testing.T) {
	g, _, mb := setupTestGame(t, 2, nil)
	playOneStep(t, g)
	playOneStep(t, g)
	require.Equal(t, engine.StateMeld, g.Engine.State())

	g.Mu.Lock()
	winner := g.actingPlayerID()
	p := g.Engine.Player(g.PlayerToEngine[winner])
	// Give the winner a bezique to declare.
	p.Hand[0] = engine.NewCard(engine.SuitSpades, engine.RankQueen, 0)
	p.Hand[1] = engine.NewCard(engine.SuitDiamonds, engine.RankJack, 0)
	_, ok := g.Engine.BestAvailableMeld()
	g.Mu.Unlock()
	require.True(t, ok)

	act(g, winner, ActionMeld, map[string]interface{}{})
	meld := mb.findEventByType(EventPlayerMeld)
	require.NotNil(t, meld)
	assert.Equal(t, winner, meld.User.ID)
	assert.NotEmpty(t, p.Table)
}

func TestDeclareMeldWithBadCards(t *testing.T) {
	g, _, mb := setupTestGame(t, 2, nil)
	playOneStep(t, g)
	playOneStep(t, g)
	winner := g.actingPlayerID()

	act(g, winner, ActionMeld, map[string]interface{}{
		"meld":  "bezique",
		"cards": []interface{}{uuid.NewString(), uuid.NewString()},
	})
	assert.Equal(t, EventPrivateFail, mb.getLastPlayerEvent(winner).Type)

	act(g, winner, ActionMeld, map[string]interface{}{"meld": "royal_flush", "cards": []interface{}{"x"}})
	assert.Equal(t, EventPrivateFail, mb.getLastPlayerEvent(winner).Type)
	assert.Equal(t, engine.StateMeld, g.Engine.State())
}

func TestSwapSevenOutsideMeldStep(t *testing.T) {
	g, _, mb := setupTestGame(t, 2, nil)
	actor := g.actingPlayerID()
	act(g, actor, ActionSwapSeven, nil)
	fail := mb.getLastPlayerEvent(actor)
	require.NotNil(t, fail)
	assert.Equal(t, EventPrivateFail, fail.Type)
}

func TestObfuscatedStateHidesHands(t *testing.T) {
	g, players, _ := setupTestGame(t, 2, nil)

	g.Mu.Lock()
	own := g.GetCurrentObfuscatedGameState(players[0].ID)
	spectator := g.GetCurrentObfuscatedGameState(uuid.Nil)
	g.Mu.Unlock()

	assert.Equal(t, g.ID, own.GameID)
	require.Len(t, own.Players, 2)
	assert.Len(t, own.Players[0].RevealedHand, engine.HandSize)
	assert.Empty(t, own.Players[1].RevealedHand)
	assert.Equal(t, engine.HandSize, own.Players[1].HandSize)
	assert.NotNil(t, own.TrumpCard)
	assert.Equal(t, "play", own.Expect)
	assert.Equal(t, players[1].ID, own.CurrentPlayerID)
	assert.Empty(t, own.Players[0].LegalMoves, "legal moves only for the player to act")

	for _, ps := range spectator.Players {
		assert.Empty(t, ps.RevealedHand)
	}

	g.Mu.Lock()
	actorView := g.GetCurrentObfuscatedGameState(players[1].ID)
	g.Mu.Unlock()
	assert.Len(t, actorView.Players[1].LegalMoves, engine.HandSize)
}

func TestFullGameReachesEnd(t *testing.T) {
	rules := DefaultHouseRules()
	rules.TurnTimerSec = 0
	rules.TargetScore = 10
	g, players, mb := setupTestGame(t, 2, &rules)

	var ended bool
	var endScores map[uuid.UUID]int
	g.OnGameEnd = func(_ uuid.UUID, _ uuid.UUID, scores map[uuid.UUID]int) {
		ended = true
		endScores = scores
	}

	for steps := 0; !g.GameOver; steps++ {
		require.Less(t, steps, 5000, "game did not finish")
		playOneStep(t, g)
	}

	assert.True(t, ended)
	assert.Len(t, endScores, 2)
	assert.NotNil(t, mb.findEventByType(EventGamePhaseChange))
	assert.NotNil(t, mb.findEventByType(EventGameRoundEnd))
	end := mb.findEventByType(EventGameEnd)
	require.NotNil(t, end)
	assert.Contains(t, []uuid.UUID{players[0].ID, players[1].ID}, end.User.ID)

	act(g, players[0].ID, ActionNextRound, nil)
	assert.Equal(t, EventPrivateFail, mb.getLastPlayerEvent(players[0].ID).Type)
}

func TestFourPlayerRound(t *testing.T) {
	rules := DefaultHouseRules()
	rules.TurnTimerSec = 0
	rules.TargetScore = 1 << 20
	g, _, mb := setupTestGame(t, 4, &rules)

	for steps := 0; g.Engine.State() != engine.StateDeal; steps++ {
		require.Less(t, steps, 5000, "round did not finish")
		playOneStep(t, g)
	}
	assert.NotNil(t, mb.findEventByType(EventGameRoundEnd))
	assert.Equal(t, 1, g.Engine.Dealer(), "deal passes left")

	turn := mb.findEventByType(EventGamePlayerTurn)
	require.NotNil(t, turn)
	assert.Equal(t, "next_round", turn.Payload["expect"])

	playOneStep(t, g)
	assert.Equal(t, 2, g.Engine.Round())
	assert.Equal(t, engine.StatePlay, g.Engine.State())
}

func TestTimeoutPlaysForPlayer(t *testing.T) {
	rules := DefaultHouseRules()
	rules.TurnTimerSec = 1
	g, _, mb := setupTestGame(t, 2, &rules)
	defer func() {
		g.Mu.Lock()
		g.GameOver = true
		g.stopTurnTimer()
		g.Mu.Unlock()
	}()

	assert.Eventually(t, func() bool {
		return mb.findEventByType(EventPlayerPlay) != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStaleTimerIgnored(t *testing.T) {
	rules := DefaultHouseRules()
	rules.TurnTimerSec = 1
	g, _, mb := setupTestGame(t, 2, &rules)

	g.Mu.Lock()
	g.TurnDuration = time.Hour
	g.TurnID++ // the armed 50ms timer is now stale
	g.Mu.Unlock()

	time.Sleep(150 * time.Millisecond)
	assert.Nil(t, mb.findEventByType(EventPlayerPlay))

	g.Mu.Lock()
	g.stopTurnTimer()
	g.Mu.Unlock()
}

func TestDisconnectForfeits(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, nil)

	g.Mu.Lock()
	g.HandleDisconnect(players[0].ID, nil)
	g.Mu.Unlock()

	assert.True(t, g.GameOver)
	end := mb.findEventByType(EventGameEnd)
	require.NotNil(t, end)
	assert.Equal(t, players[1].ID, end.User.ID)
	assert.Equal(t, engine.StateGameOver, g.Engine.State())
}

func TestStaleSocketCloseAfterReconnect(t *testing.T) {
	g, players, _ := setupTestGame(t, 2, nil)
	p0 := players[0].ID
	fresh := &websocket.Conn{}

	g.Mu.Lock()
	g.HandleReconnect(p0, fresh)
	// The socket that was replaced closes late.
	g.HandleDisconnect(p0, nil)
	g.Mu.Unlock()

	assert.True(t, players[0].Connected)
	assert.Same(t, fresh, players[0].Conn)
	assert.False(t, g.GameOver)

	g.Mu.Lock()
	g.HandleDisconnect(p0, fresh)
	g.Mu.Unlock()

	assert.False(t, players[0].Connected)
	assert.True(t, g.GameOver)
}

func TestDisconnectWithoutForfeitResyncs(t *testing.T) {
	rules := DefaultHouseRules()
	rules.TurnTimerSec = 0
	rules.ForfeitOnDisconnect = false
	g, players, mb := setupTestGame(t, 2, &rules)

	g.Mu.Lock()
	g.HandleDisconnect(players[0].ID, nil)
	g.Mu.Unlock()

	assert.False(t, g.GameOver)
	st := mb.findPlayerEventByType(players[1].ID, EventPrivateSyncState)
	require.NotNil(t, st)
	require.NotNil(t, st.State)
	assert.False(t, st.State.Players[0].Connected)

	g.Mu.Lock()
	g.HandleReconnect(players[0].ID, nil)
	g.Mu.Unlock()
	resync := mb.findPlayerEventByType(players[0].ID, EventPrivateSyncState)
	require.NotNil(t, resync)
	assert.Len(t, resync.State.Players[0].RevealedHand, engine.HandSize)
}

func TestTablePassword(t *testing.T) {
	g := NewBeziqueGame()
	assert.False(t, g.IsPrivate())
	assert.True(t, g.CheckPassword("anything"))

	require.NoError(t, g.SetPassword("hunter2"))
	assert.True(t, g.IsPrivate())
	assert.True(t, g.CheckPassword("hunter2"))
	assert.False(t, g.CheckPassword("hunter3"))
}

func TestCardRegistryStable(t *testing.T) {
	id := uuid.New()
	a := newCardRegistry(id, 4)
	b := newCardRegistry(id, 4)
	assert.Len(t, a.byID, 4*(engine.CardsPerSubDeck+engine.JokersPerSubDeck))
	assert.Equal(t, a.byCard, b.byCard)

	qs := engine.NewCard(engine.SuitSpades, engine.RankQueen, 2)
	m := a.model(qs)
	assert.Equal(t, "QS", m.Code)
	assert.Equal(t, 2, m.Copy)
	back, ok := a.lookup(m.ID)
	require.True(t, ok)
	assert.Equal(t, qs, back)

	joker := a.model(engine.NewJoker(1))
	assert.Empty(t, joker.Suit)

	other := newCardRegistry(uuid.New(), 4)
	assert.NotEqual(t, a.byCard[qs], other.byCard[qs], "ids differ across games")
}
