package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/bezique/service/internal/game"
)

const writeTimeout = 2 * time.Second

// GameStore holds the live tables of this process.
type GameStore struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*game.BeziqueGame
}

func NewGameStore() *GameStore {
	return &GameStore{games: make(map[uuid.UUID]*game.BeziqueGame)}
}

// NewGame builds a table with broadcast wiring to its players' sockets. The
// table is not visible until Add, so callers finish configuring it first.
func (s *GameStore) NewGame(rules game.HouseRules) *game.BeziqueGame {
	g := game.NewBeziqueGame()
	g.LobbyID = g.ID
	g.HouseRules = rules
	g.BroadcastFn = func(ev game.GameEvent) { broadcast(g, ev) }
	g.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.GameEvent) { sendTo(g, playerID, ev) }
	return g
}

// Add registers g. Finished tables stay listed until Remove so their results
// can be read.
func (s *GameStore) Add(g *game.BeziqueGame) {
	s.mu.Lock()
	s.games[g.ID] = g
	s.mu.Unlock()
}

func (s *GameStore) Get(id uuid.UUID) (*game.BeziqueGame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	return g, ok
}

func (s *GameStore) Remove(id uuid.UUID) {
	s.mu.Lock()
	delete(s.games, id)
	s.mu.Unlock()
}

// List returns the tables ordered by id, which is creation order for v7 ids.
func (s *GameStore) List() []*game.BeziqueGame {
	s.mu.RLock()
	out := make([]*game.BeziqueGame, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// broadcast writes ev to every connected player. Called with the game lock held.
func broadcast(g *game.BeziqueGame, ev game.GameEvent) {
	for _, p := range g.Players {
		if p.Connected && p.Conn != nil {
			write(g, p.ID, p.Conn, ev)
		}
	}
}

func sendTo(g *game.BeziqueGame, playerID uuid.UUID, ev game.GameEvent) {
	for _, p := range g.Players {
		if p.ID == playerID && p.Conn != nil {
			write(g, p.ID, p.Conn, ev)
			return
		}
	}
}

func write(g *game.BeziqueGame, playerID uuid.UUID, conn *websocket.Conn, ev game.GameEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, conn, ev); err != nil {
		logrus.WithFields(logrus.Fields{"game": g.ID, "player": playerID, "event": ev.Type}).WithError(err).Debug("write failed")
	}
}
