// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/bezique/engine"
	"github.com/jason-s-yu/bezique/service/internal/auth"
	"github.com/jason-s-yu/bezique/service/internal/cache"
	"github.com/jason-s-yu/bezique/service/internal/database"
	"github.com/jason-s-yu/bezique/service/internal/models"
)

// OnGameEndFunc is called once a game finishes with the winner (uuid.Nil when
// none) and the final totals.
type OnGameEndFunc func(lobbyID uuid.UUID, winner uuid.UUID, scores map[uuid.UUID]int)

// GameEventType names an event sent to clients.
type GameEventType string

const (
	EventGameRoundStart   GameEventType = "game_round_start"    // Public: new deal, dealer and trump card.
	EventPrivateHand      GameEventType = "private_hand"        // Private: the player's hand and table.
	EventGamePlayerTurn   GameEventType = "game_player_turn"    // Public: who acts next and what is expected.
	EventPlayerPlay       GameEventType = "player_play"         // Public: a card played to the trick.
	EventGameTrickEnd     GameEventType = "game_trick_end"      // Public: trick winner and cards.
	EventPlayerMeld       GameEventType = "player_meld"         // Public: meld declared.
	EventPlayerSkipMeld   GameEventType = "player_skip_meld"    // Public: trick winner passed on melding.
	EventPlayerSwapSeven  GameEventType = "player_swap_seven"   // Public: trump seven exchanged for the trump card.
	EventGameDraw         GameEventType = "game_draw"           // Public: cards drawn, stock size.
	EventGamePhaseChange  GameEventType = "game_phase_change"   // Public: last nine cards begin.
	EventGameRoundEnd     GameEventType = "game_round_end"      // Public: round and total scores.
	EventPrivateSyncState GameEventType = "private_sync_state"  // Private: full obfuscated state.
	EventPrivateFail      GameEventType = "private_action_fail" // Private: action rejected.
	EventGameEnd          GameEventType = "game_end"            // Public: final results.
)

// EventUser identifies a user within a GameEvent payload.
type EventUser struct {
	ID uuid.UUID `json:"id"`
}

// GameEvent is the envelope for every message sent to clients.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	User    *EventUser             `json:"user,omitempty"`
	Card    *models.Card           `json:"card,omitempty"`
	Cards   []*models.Card         `json:"cards,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *ObfGameState          `json:"state,omitempty"`
}

// ErrGameStarted is returned when joining a table that is already in play.
var ErrGameStarted = errors.New("game already started")

// BeziqueGame wraps one engine instance with players, connections, timers
// and persistence.
type BeziqueGame struct {
	ID      uuid.UUID
	LobbyID uuid.UUID

	HouseRules HouseRules
	Players    []*models.Player

	Engine         *engine.GameEngine
	Seed           uint64 // zero seeds from the clock
	PlayerToEngine map[uuid.UUID]int
	EngineToPlayer []uuid.UUID
	cards          cardRegistry

	TurnID       int
	TurnDuration time.Duration // zero derives it from HouseRules.TurnTimerSec at Start
	turnTimer    *time.Timer
	actionIndex  int

	Started  bool
	GameOver bool

	passwordHash string
	lastSeen     map[uuid.UUID]time.Time
	Mu           sync.Mutex

	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
	OnGameEnd           OnGameEndFunc
}

// NewBeziqueGame returns an empty table with default house rules.
func NewBeziqueGame() *BeziqueGame {
	id, _ := uuid.NewV7()
	return &BeziqueGame{
		ID:             id,
		HouseRules:     DefaultHouseRules(),
		PlayerToEngine: make(map[uuid.UUID]int),
		lastSeen:       make(map[uuid.UUID]time.Time),
	}
}

func (g *BeziqueGame) log() *logrus.Entry {
	return logrus.WithField("game", g.ID)
}

// SetPassword makes the table private. An empty password makes it public.
func (g *BeziqueGame) SetPassword(password string) error {
	if password == "" {
		g.passwordHash = ""
		return nil
	}
	h, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash table password: %w", err)
	}
	g.passwordHash = h
	return nil
}

// IsPrivate reports whether joining needs a password.
func (g *BeziqueGame) IsPrivate() bool { return g.passwordHash != "" }

// CheckPassword validates a join attempt.
func (g *BeziqueGame) CheckPassword(password string) bool {
	return g.passwordHash == "" || auth.CheckPassword(g.passwordHash, password)
}

// AddPlayer seats a new player before the start, or reattaches a returning
// one. Assumes lock is held by caller.
func (g *BeziqueGame) AddPlayer(p *models.Player) error {
	if existing := g.getPlayerByID(p.ID); existing != nil {
		existing.Conn = p.Conn
		existing.Connected = true
		if p.User != nil {
			existing.User = p.User
		}
		g.lastSeen[p.ID] = time.Now()
		g.logAction(p.ID, "player_rejoin", nil)
		return nil
	}
	if g.Started || g.GameOver {
		return ErrGameStarted
	}
	if len(g.Players) >= g.HouseRules.PlayerCount {
		return fmt.Errorf("table is full (%d players)", g.HouseRules.PlayerCount)
	}
	p.Seat = len(g.Players)
	g.Players = append(g.Players, p)
	g.lastSeen[p.ID] = time.Now()
	g.log().WithFields(logrus.Fields{"player": p.ID, "seat": p.Seat}).Info("player seated")
	g.logAction(p.ID, "player_add", map[string]interface{}{"seat": p.Seat})
	return nil
}

// Start deals the first round once every seat is filled.
func (g *BeziqueGame) Start() error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Started || g.GameOver {
		return ErrGameStarted
	}
	if len(g.Players) != g.HouseRules.PlayerCount {
		return fmt.Errorf("need %d players, have %d", g.HouseRules.PlayerCount, len(g.Players))
	}

	seed := g.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	g.Engine = engine.NewGameEngine(engine.NewSeededRNG(seed))
	cfg := g.mapHouseRulesToEngine()
	if err := g.Engine.Initialize(cfg); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	g.cards = newCardRegistry(g.ID, cfg.DeckCount)

	g.EngineToPlayer = make([]uuid.UUID, len(g.Players))
	for i, p := range g.Players {
		g.PlayerToEngine[p.ID] = i
		g.EngineToPlayer[i] = p.ID
	}

	switch {
	case g.HouseRules.TurnTimerSec <= 0:
		g.TurnDuration = 0
	case g.TurnDuration <= 0:
		g.TurnDuration = time.Duration(g.HouseRules.TurnTimerSec) * time.Second
	}

	g.Started = true
	g.log().WithField("seed", seed).Info("game started")
	g.logAction(uuid.Nil, "game_start", map[string]interface{}{"seed": seed, "rules": g.HouseRules})

	g.dispatchEngineEvents()
	g.onTurnAdvanced()
	return nil
}

// fireEvent broadcasts to every connected player. Assumes lock is held.
func (g *BeziqueGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn == nil {
		g.log().WithField("event", ev.Type).Warn("BroadcastFn is nil")
		return
	}
	g.BroadcastFn(ev)
}

// fireEventToPlayer sends to one connected player. Assumes lock is held.
func (g *BeziqueGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		g.log().WithField("event", ev.Type).Warn("BroadcastToPlayerFn is nil")
		return
	}
	if p := g.getPlayerByID(playerID); p != nil && p.Connected {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

func (g *BeziqueGame) failAction(playerID uuid.UUID, actionType string, err error) {
	g.log().WithFields(logrus.Fields{"player": playerID, "action": actionType}).WithError(err).Debug("action rejected")
	g.fireEventToPlayer(playerID, GameEvent{
		Type:    EventPrivateFail,
		Payload: map[string]interface{}{"action": actionType, "message": err.Error()},
	})
}

// HandleDisconnect marks a player gone when conn is still their socket; the
// close of a socket already replaced by HandleReconnect is ignored. With
// ForfeitOnDisconnect the game ends in favour of the others. Assumes lock is
// held by caller.
func (g *BeziqueGame) HandleDisconnect(playerID uuid.UUID, conn *websocket.Conn) {
	p := g.getPlayerByID(playerID)
	if p == nil || !p.Connected {
		return
	}
	if p.Conn != conn {
		g.log().WithField("player", playerID).Debug("stale socket closed")
		return
	}
	p.Connected = false
	p.Conn = nil
	g.logAction(playerID, "player_disconnect", nil)
	g.log().WithField("player", playerID).Info("player disconnected")

	if !g.Started || g.GameOver {
		return
	}
	if g.HouseRules.ForfeitOnDisconnect {
		if err := g.Engine.Forfeit(g.PlayerToEngine[playerID]); err != nil {
			g.log().WithError(err).Error("forfeit failed")
			return
		}
		g.dispatchEngineEvents()
		return
	}
	g.broadcastSyncStateToAll()
}

// HandleReconnect reattaches conn and resyncs the player. Assumes lock is
// held by caller.
func (g *BeziqueGame) HandleReconnect(playerID uuid.UUID, conn *websocket.Conn) {
	p := g.getPlayerByID(playerID)
	if p == nil {
		if conn != nil {
			conn.Close(websocket.StatusPolicyViolation, "not seated at this table")
		}
		return
	}
	p.Connected = true
	p.Conn = conn
	g.lastSeen[playerID] = time.Now()
	g.logAction(playerID, "player_reconnect", nil)
	g.sendSyncState(playerID)
	if g.Started && !g.GameOver && g.actingPlayerID() == playerID {
		g.scheduleNextTurnTimer()
	}
}

func (g *BeziqueGame) sendSyncState(playerID uuid.UUID) {
	state := g.GetCurrentObfuscatedGameState(playerID)
	g.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateSyncState, State: &state})
}

func (g *BeziqueGame) broadcastSyncStateToAll() {
	for _, p := range g.Players {
		if p.Connected {
			g.sendSyncState(p.ID)
		}
	}
}

// EndGame stops timers, broadcasts results, persists them and fires
// OnGameEnd. winnerSeat is -1 when there is no winner. Assumes lock is held.
func (g *BeziqueGame) EndGame(winnerSeat int) {
	if g.GameOver {
		return
	}
	g.GameOver = true
	g.stopTurnTimer()

	scores := make(map[uuid.UUID]int, len(g.Players))
	payloadScores := make(map[string]int, len(g.Players))
	for seat, id := range g.EngineToPlayer {
		total := g.Engine.Player(seat).TotalScore
		scores[id] = total
		payloadScores[id.String()] = total
	}
	winner := uuid.Nil
	if winnerSeat >= 0 && winnerSeat < len(g.EngineToPlayer) {
		winner = g.EngineToPlayer[winnerSeat]
	}

	g.logAction(uuid.Nil, string(EventGameEnd), map[string]interface{}{"winner": winner, "scores": payloadScores})
	g.persistFinalGameState(winner, payloadScores)
	g.fireEvent(GameEvent{
		Type:    EventGameEnd,
		User:    &EventUser{ID: winner},
		Payload: map[string]interface{}{"winner": winner.String(), "scores": payloadScores, "rounds": g.Engine.Round()},
	})
	if g.OnGameEnd != nil {
		g.OnGameEnd(g.LobbyID, winner, scores)
	}
	g.log().WithFields(logrus.Fields{"winner": winner, "scores": payloadScores}).Info("game ended")
}

// persistFinalGameState stores the final result in postgres and a public
// snapshot in redis, both in the background.
func (g *BeziqueGame) persistFinalGameState(winner uuid.UUID, scores map[string]int) {
	snapshot := map[string]interface{}{
		"winner":     winner,
		"scores":     scores,
		"rounds":     g.Engine.Round(),
		"houseRules": g.HouseRules,
	}
	if database.DB != nil {
		go database.StoreFinalGameStateInDB(context.Background(), g.ID, snapshot)
	}
	g.saveSnapshot()
}

// saveSnapshot publishes the spectator view of the game to redis.
func (g *BeziqueGame) saveSnapshot() {
	if cache.Rdb == nil {
		return
	}
	state := g.GetCurrentObfuscatedGameState(uuid.Nil)
	ttl := g.HouseRules.SnapshotTTL
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.SaveSnapshot(ctx, state.GameID, state, ttl); err != nil {
			logrus.WithField("game", state.GameID).WithError(err).Warn("snapshot not saved")
		}
	}()
}

// recordRound persists the scores of the round that just ended.
func (g *BeziqueGame) recordRound(round int, added []int) {
	if database.DB == nil {
		return
	}
	results := make([]database.PlayerRoundResult, len(g.EngineToPlayer))
	for seat, id := range g.EngineToPlayer {
		results[seat] = database.PlayerRoundResult{
			PlayerID:   id,
			Seat:       seat,
			RoundScore: added[seat],
			TotalScore: g.Engine.Player(seat).TotalScore,
		}
	}
	go func(id uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.RecordRoundResult(ctx, id, round, results); err != nil {
			logrus.WithField("game", id).WithError(err).Error("round result not stored")
		}
	}(g.ID)
}

// getPlayerByID finds a seated player. Assumes lock is held.
func (g *BeziqueGame) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// logAction appends to the redis action history in the background.
// Assumes lock is held by caller.
func (g *BeziqueGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	if cache.Rdb == nil {
		return
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			logrus.WithFields(logrus.Fields{"game": rec.GameID, "action": rec.ActionType}).WithError(err).Warn("action not published")
		}
	}(record)
}
