// Package engine implements the Bezique rules: dealing, tricks, melds,
// drawing, the last-nine-cards phase and scoring.
//
// The engine is single-threaded and performs no I/O. Every mutating call
// either succeeds or returns an error and leaves the game unchanged; events
// it produces are queued on an outbox the caller drains with DrainEvents.
package engine

import (
	"fmt"
	"math/rand/v2"
)

// Player is one seat's cards and scores.
type Player struct {
	ID                   int
	Hand                 []Card
	Table                []Card // declared melds; still playable
	WonPile              []Card
	RoundScore           int
	TotalScore           int
	HasSwappedTrumpSeven bool
	MeldHistory          map[MeldType][]Card
}

// CardsHeld is the number of cards the player can still play.
func (p *Player) CardsHeld() int { return len(p.Hand) + len(p.Table) }

func (p *Player) resetRound() {
	p.Hand = p.Hand[:0]
	p.Table = nil
	p.WonPile = nil
	p.RoundScore = 0
	p.HasSwappedTrumpSeven = false
	p.MeldHistory = nil
}

// GameContext is the shared table state of the current round.
type GameContext struct {
	DrawDeck        []Card // hidden stock; top is the last element
	TrumpCard       Card   // turned up under the stock while TrumpExposed
	TrumpExposed    bool
	TrumpSuit       Suit
	CurrentPhase    Phase
	CurrentPlayer   int
	LastTrickWinner int // -1 before the first trick of a round
}

// GameEngine drives one game from Initialize to StateGameOver.
type GameEngine struct {
	rng     RNG
	cfg     Config
	players []*Player
	ctx     GameContext
	state   State

	trick      []Card
	trickOrder []int // seats expected to play the current trick, leader first

	dealer int
	round  int
	events []Event
}

// globalRNG adapts the auto-seeded math/rand/v2 source.
type globalRNG struct{}

func (globalRNG) IntN(n int) int { return rand.IntN(n) }

// NewGameEngine returns an uninitialized engine. A nil rng uses the
// process-wide random source.
func NewGameEngine(rng RNG) *GameEngine {
	if rng == nil {
		rng = globalRNG{}
	}
	return &GameEngine{rng: rng, state: StateUninitialized}
}

// ---------------------------------------------------------------------------
// Setup
// ---------------------------------------------------------------------------

// Initialize validates cfg, seats the players and deals the first round.
func (e *GameEngine) Initialize(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	e.cfg = cfg
	e.players = make([]*Player, cfg.PlayerCount)
	for i := range e.players {
		e.players[i] = &Player{ID: i}
	}
	e.dealer = int(cfg.Dealer)
	e.round = 0
	e.events = nil
	e.deal()
	return nil
}

// deal shuffles a fresh deck, deals HandSize cards to every player starting
// left of the dealer, turns up the trump card and hands the lead to the
// player after the dealer.
func (e *GameEngine) deal() {
	e.state = StateDeal
	e.round++
	n := len(e.players)
	for _, p := range e.players {
		p.resetRound()
	}

	deck := BuildDeck(e.cfg.DeckCount)
	Shuffle(deck, e.rng)
	for range HandSize {
		for i := 1; i <= n; i++ {
			c, _ := popCard(&deck)
			p := e.players[(e.dealer+i)%n]
			p.Hand = append(p.Hand, c)
		}
	}

	e.state = StateTrumpSelection
	trump, _ := popCard(&deck)
	// A joker cannot name a suit; it goes to the bottom and the next card turns.
	for trump.IsJoker() {
		deck = append([]Card{trump}, deck...)
		trump, _ = popCard(&deck)
	}

	e.ctx = GameContext{
		DrawDeck:        deck,
		TrumpCard:       trump,
		TrumpExposed:    true,
		TrumpSuit:       trump.Suit(),
		CurrentPhase:    PhaseNormal,
		CurrentPlayer:   AdvanceTurn(e.dealer, n),
		LastTrickWinner: -1,
	}
	if trump.Rank() == RankSeven {
		e.players[e.dealer].RoundScore += DealerSevenBonus
	}
	e.emit(Event{Kind: EventRoundStarted, PlayerID: e.dealer, Cards: []Card{trump}})

	e.startTrick()
	e.state = StatePlay
}

func (e *GameEngine) requireInit() error {
	if e.state == StateUninitialized {
		return ErrNotInitialized
	}
	return nil
}

func (e *GameEngine) requireState(want State) error {
	if err := e.requireInit(); err != nil {
		return err
	}
	if e.state != want {
		return fmt.Errorf("%w: in %s, need %s", ErrWrongState, e.state, want)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (e *GameEngine) Config() Config      { return e.cfg }
func (e *GameEngine) State() State        { return e.state }
func (e *GameEngine) Phase() Phase        { return e.ctx.CurrentPhase }
func (e *GameEngine) CurrentPlayer() int  { return e.ctx.CurrentPlayer }
func (e *GameEngine) Dealer() int         { return e.dealer }
func (e *GameEngine) Round() int          { return e.round }
func (e *GameEngine) TrumpSuit() Suit     { return e.ctx.TrumpSuit }
func (e *GameEngine) PlayerCount() int    { return len(e.players) }
func (e *GameEngine) TrickComplete() bool { return e.state == StateTrickComplete }

// Context returns the live round context. Callers must not mutate it.
func (e *GameEngine) Context() *GameContext { return &e.ctx }

// Player returns seat i, or nil when out of range.
func (e *GameEngine) Player(i int) *Player {
	if i < 0 || i >= len(e.players) {
		return nil
	}
	return e.players[i]
}

// Players returns the live seats in seat order.
func (e *GameEngine) Players() []*Player { return e.players }

// TrickCards returns the cards played to the current trick and the seat that
// played each one.
func (e *GameEngine) TrickCards() ([]Card, []int) {
	cards := append([]Card(nil), e.trick...)
	seats := append([]int(nil), e.trickOrder[:len(e.trick)]...)
	return cards, seats
}

// CardCount sums every card the round knows about: hands, tables, won piles,
// the trick in progress, the hidden stock and the exposed trump card. It
// equals Config.DeckSize for the whole round.
func (e *GameEngine) CardCount() int {
	n := len(e.ctx.DrawDeck) + len(e.trick)
	if e.ctx.TrumpExposed {
		n++
	}
	for _, p := range e.players {
		n += len(p.Hand) + len(p.Table) + len(p.WonPile)
	}
	return n
}

// CheckWinner reports the first seat whose total has reached the target.
func (e *GameEngine) CheckWinner() (int, bool) {
	return CheckForWinner(e.players, int(e.cfg.TargetScore))
}

// LegalMoves lists the cards the current player may play. Empty outside
// StatePlay.
func (e *GameEngine) LegalMoves() []Card {
	if e.state != StatePlay {
		return nil
	}
	p := e.players[e.ctx.CurrentPlayer]
	if e.ctx.CurrentPhase == PhaseLastNine {
		return LegalMoves(p.Hand, e.trick, e.ctx.TrumpSuit)
	}
	out := make([]Card, 0, p.CardsHeld())
	out = append(out, p.Hand...)
	return append(out, p.Table...)
}

// BestAvailableMeld suggests the highest-scoring declaration for the trick
// winner while melding is open.
func (e *GameEngine) BestAvailableMeld() (Meld, bool) {
	if e.state != StateMeld || e.ctx.CurrentPhase != PhaseNormal {
		return Meld{}, false
	}
	return FindBestMeld(e.players[e.ctx.LastTrickWinner], e.ctx.TrumpSuit)
}
