// Package handlers exposes tables over HTTP and websockets.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/bezique/engine"
	"github.com/jason-s-yu/bezique/service/internal/auth"
	"github.com/jason-s-yu/bezique/service/internal/cache"
	"github.com/jason-s-yu/bezique/service/internal/config"
	"github.com/jason-s-yu/bezique/service/internal/database"
	"github.com/jason-s-yu/bezique/service/internal/game"
	"github.com/jason-s-yu/bezique/service/internal/models"
)

// finishedTableTTL is how long a finished table stays readable in memory.
const finishedTableTTL = 10 * time.Minute

type Handler struct {
	store *GameStore
	cfg   config.Config
}

func NewHandler(store *GameStore, cfg config.Config) *Handler {
	return &Handler{store: store, cfg: cfg}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.POST("/auth/guest", h.GuestLogin)

	t := e.Group("/tables")
	t.GET("", h.ListTables)
	t.POST("", h.CreateTable, RequireAuth())
	t.GET("/:id", h.GetTable)
	t.GET("/:id/actions", h.TableActions)
	t.GET("/:id/ws", h.TableSocket, RequireAuth())
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

type guestRequest struct {
	Username string `json:"username"`
}

type guestResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type createTableRequest struct {
	Rules    game.HouseRules `json:"rules"`
	Password string          `json:"password"`
}

// TableSummary is the lobby listing entry for a table.
type TableSummary struct {
	ID       uuid.UUID       `json:"id"`
	Seated   int             `json:"seated"`
	Started  bool            `json:"started"`
	GameOver bool            `json:"gameOver"`
	Private  bool            `json:"private"`
	Rules    game.HouseRules `json:"rules"`
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"postgres": database.DB != nil,
		"redis":    cache.Rdb != nil,
	})
}

// GuestLogin issues a token for a new guest identity.
func (h *Handler) GuestLogin(c echo.Context) error {
	var req guestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	token, err := auth.CreateJWT(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, guestResponse{
		Token: token,
		User:  models.User{ID: id, Username: req.Username, IsGuest: true},
	})
}

func (h *Handler) defaultRules() game.HouseRules {
	rules := game.DefaultHouseRules()
	rules.TurnTimerSec = int(h.cfg.TurnTimer / time.Second)
	return rules
}

func validateRules(r game.HouseRules) error {
	switch {
	case r.PlayerCount != 2 && r.PlayerCount != 4:
		return errors.New("playerCount must be 2 or 4")
	case r.DeckCount < 1 || r.DeckCount > engine.MaxDeckCount:
		return errors.New("deckCount out of range")
	case r.TargetScore <= 0:
		return errors.New("targetScore must be positive")
	case r.TurnTimerSec < 0:
		return errors.New("turnTimerSec must not be negative")
	}
	return nil
}

func (h *Handler) CreateTable(c echo.Context) error {
	req := createTableRequest{Rules: h.defaultRules()}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := validateRules(req.Rules); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	req.Rules.SnapshotTTL = h.cfg.SnapshotTTL

	g := h.store.NewGame(req.Rules)
	if err := g.SetPassword(req.Password); err != nil {
		return err
	}
	g.OnGameEnd = func(_ uuid.UUID, winner uuid.UUID, _ map[uuid.UUID]int) {
		logrus.WithFields(logrus.Fields{"game": g.ID, "winner": winner}).Info("table finished")
		time.AfterFunc(finishedTableTTL, func() { h.store.Remove(g.ID) })
	}
	h.store.Add(g)

	logrus.WithFields(logrus.Fields{"game": g.ID, "creator": c.Get(ctxUserID)}).Info("table created")
	return c.JSON(http.StatusCreated, summarize(g))
}

func summarize(g *game.BeziqueGame) TableSummary {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return TableSummary{
		ID:       g.ID,
		Seated:   len(g.Players),
		Started:  g.Started,
		GameOver: g.GameOver,
		Private:  g.IsPrivate(),
		Rules:    g.HouseRules,
	}
}

func (h *Handler) ListTables(c echo.Context) error {
	games := h.store.List()
	out := make([]TableSummary, len(games))
	for i, g := range games {
		out[i] = summarize(g)
	}
	return c.JSON(http.StatusOK, out)
}

func tableID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}

func badTableID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid table id"})
}

// GetTable returns the live state as the caller may see it, or the last
// snapshot from redis once the table is gone from memory.
func (h *Handler) GetTable(c echo.Context) error {
	id, ok := tableID(c)
	if !ok {
		return badTableID(c)
	}
	if g, ok := h.store.Get(id); ok {
		g.Mu.Lock()
		state := g.GetCurrentObfuscatedGameState(optionalUser(c))
		g.Mu.Unlock()
		return c.JSON(http.StatusOK, state)
	}
	if cache.Rdb != nil {
		var snap game.ObfGameState
		found, err := cache.LoadSnapshot(c.Request().Context(), id, &snap)
		if err != nil {
			return err
		}
		if found {
			return c.JSON(http.StatusOK, snap)
		}
	}
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: "table not found"})
}

// TableActions returns the recorded action history of a table.
func (h *Handler) TableActions(c echo.Context) error {
	id, ok := tableID(c)
	if !ok {
		return badTableID(c)
	}
	actions, err := cache.GameActions(c.Request().Context(), id)
	if errors.Is(err, cache.ErrNoClient) {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "action history disabled"})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actions)
}

// TableSocket seats the caller (or reattaches them) and relays their
// actions until the socket closes. The game starts once every seat is taken.
func (h *Handler) TableSocket(c echo.Context) error {
	id, ok := tableID(c)
	if !ok {
		return badTableID(c)
	}
	g, found := h.store.Get(id)
	if !found {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "table not found"})
	}
	userID := c.Get(ctxUserID).(uuid.UUID)

	g.Mu.Lock()
	seated := false
	for _, p := range g.Players {
		seated = seated || p.ID == userID
	}
	allowed := seated || g.CheckPassword(c.QueryParam("password"))
	g.Mu.Unlock()
	if !allowed {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "wrong table password"})
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), nil)
	if err != nil {
		logrus.WithField("game", id).WithError(err).Debug("websocket accept failed")
		return nil
	}
	defer conn.CloseNow()
	log := logrus.WithFields(logrus.Fields{"game": id, "player": userID})

	g.Mu.Lock()
	if seated {
		g.HandleReconnect(userID, conn)
	} else {
		user := &models.User{ID: userID, Username: c.QueryParam("name"), IsGuest: true}
		err = g.AddPlayer(models.NewPlayer(user, conn))
	}
	ready := !g.Started && len(g.Players) == g.HouseRules.PlayerCount
	g.Mu.Unlock()
	if err != nil {
		conn.Close(websocket.StatusPolicyViolation, err.Error())
		return nil
	}
	if ready {
		if err := g.Start(); err != nil && !errors.Is(err, game.ErrGameStarted) {
			log.WithError(err).Error("start failed")
		}
	}

	ctx := c.Request().Context()
	for {
		var action models.GameAction
		if err := wsjson.Read(ctx, conn, &action); err != nil {
			if websocket.CloseStatus(err) == -1 {
				log.WithError(err).Debug("read ended")
			}
			break
		}
		g.Mu.Lock()
		g.HandlePlayerAction(userID, action)
		g.Mu.Unlock()
	}

	g.Mu.Lock()
	g.HandleDisconnect(userID, conn)
	g.Mu.Unlock()
	return nil
}
