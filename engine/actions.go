package engine

import "fmt"

// PlayCard plays c for the current player from hand or table. In the last
// nine cards the follow rules apply. When every expected seat has played the
// engine moves to StateTrickComplete and waits for ResolveTrick.
func (e *GameEngine) PlayCard(c Card) error {
	if err := e.requireState(StatePlay); err != nil {
		return err
	}
	seat := e.ctx.CurrentPlayer
	p := e.players[seat]

	handIdx, tableIdx := indexOfCard(p.Hand, c), indexOfCard(p.Table, c)
	if handIdx < 0 && tableIdx < 0 {
		return fmt.Errorf("%w: player %d, %s", ErrCardNotHeld, seat, c)
	}
	if e.ctx.CurrentPhase == PhaseLastNine && !containsCard(LegalMoves(p.Hand, e.trick, e.ctx.TrumpSuit), c) {
		return fmt.Errorf("%w: player %d, %s", ErrIllegalMove, seat, c)
	}

	if handIdx >= 0 {
		p.Hand = removeCardAt(p.Hand, handIdx)
	} else {
		p.Table = removeCardAt(p.Table, tableIdx)
	}
	e.trick = append(e.trick, c)

	if len(e.trick) == len(e.trickOrder) {
		e.state = StateTrickComplete
		return nil
	}
	e.ctx.CurrentPlayer = e.trickOrder[len(e.trick)]
	return nil
}

// ResolveTrick scores the completed trick and hands the lead to its winner.
// Before the last nine the winner may then meld; during them the next trick
// starts at once, or the round ends after the final trick.
func (e *GameEngine) ResolveTrick() (int, error) {
	if err := e.requireState(StateTrickComplete); err != nil {
		return -1, err
	}
	winner := e.trickOrder[TrickWinner(e.trick, e.ctx.TrumpSuit)]

	final := e.ctx.CurrentPhase == PhaseLastNine
	for _, p := range e.players {
		if p.CardsHeld() > 0 {
			final = false
			break
		}
	}

	AwardTrickBonuses(e.players, e.trickOrder, e.trick, e.ctx.TrumpSuit, winner, final)
	e.players[winner].WonPile = append(e.players[winner].WonPile, e.trick...)
	e.ctx.LastTrickWinner = winner
	e.ctx.CurrentPlayer = SetLeader(winner)
	e.emit(Event{Kind: EventTrickEnded, PlayerID: winner, Final: final, Cards: e.trick})
	e.trick = nil

	switch {
	case final:
		e.state = StateRoundEnd
	case e.ctx.CurrentPhase == PhaseNormal:
		e.state = StateMeld
	default:
		e.startTrick()
		e.state = StatePlay
	}
	return winner, nil
}

// DeclareMeld declares a meld for the last trick winner. The declaration is
// atomic; on success melding closes and the draw follows.
func (e *GameEngine) DeclareMeld(cards []Card, t MeldType) error {
	if err := e.requireInit(); err != nil {
		return err
	}
	if e.ctx.CurrentPhase == PhaseLastNine {
		return ErrMeldingClosed
	}
	if err := e.requireState(StateMeld); err != nil {
		return err
	}
	seat := e.ctx.LastTrickWinner
	p := e.players[seat]

	if !TryExecuteMeld(p, cards, t, e.ctx.TrumpSuit) {
		switch {
		case !ValidateMeld(t, cards, e.ctx.TrumpSuit):
			return fmt.Errorf("%w: %s from %v", ErrInvalidMeld, t, cards)
		case !CanUseCardsForMeld(p, cards, t):
			return fmt.Errorf("%w: %s from %v", ErrMeldCardsReused, t, cards)
		default:
			return fmt.Errorf("%w: player %d, %v", ErrCardNotHeld, seat, cards)
		}
	}

	e.emit(Event{
		Kind:     EventMeldDeclared,
		PlayerID: seat,
		Meld:     t,
		Points:   t.Points(),
		Cards:    append([]Card(nil), cards...),
	})
	e.state = StateDraw
	return nil
}

// SkipMeld passes on melding.
func (e *GameEngine) SkipMeld() error {
	if err := e.requireInit(); err != nil {
		return err
	}
	if e.ctx.CurrentPhase == PhaseLastNine {
		return ErrMeldingClosed
	}
	if err := e.requireState(StateMeld); err != nil {
		return err
	}
	e.state = StateDraw
	return nil
}

// SwapTrumpSeven exchanges the trick winner's trump Seven for the turned-up
// trump card. Allowed once per round per player while the trump is exposed;
// melding stays open afterwards.
func (e *GameEngine) SwapTrumpSeven() error {
	if err := e.requireState(StateMeld); err != nil {
		return err
	}
	seat := e.ctx.LastTrickWinner
	p := e.players[seat]
	if p.HasSwappedTrumpSeven {
		return fmt.Errorf("%w: player %d already swapped this round", ErrSwapUnavailable, seat)
	}
	if !e.ctx.TrumpExposed || e.ctx.TrumpCard.Rank() == RankSeven {
		return fmt.Errorf("%w: no trump card to take", ErrSwapUnavailable)
	}
	idx := -1
	for i, c := range p.Hand {
		if !c.IsJoker() && c.Suit() == e.ctx.TrumpSuit && c.Rank() == RankSeven {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: player %d holds no trump seven", ErrSwapUnavailable, seat)
	}

	p.Hand[idx], e.ctx.TrumpCard = e.ctx.TrumpCard, p.Hand[idx]
	p.RoundScore += SwapSevenBonus
	p.HasSwappedTrumpSeven = true
	e.emit(Event{Kind: EventTrumpSevenSwapped, PlayerID: seat, Cards: []Card{e.ctx.TrumpCard}})
	return nil
}

// DrawCards refills hands after a trick, winner first. When only one card per
// player remains the final draw runs instead: the exposed trump card goes out
// last, tables return to hands and the last nine cards begin.
func (e *GameEngine) DrawCards() error {
	if err := e.requireState(StateDraw); err != nil {
		return err
	}
	winner := e.ctx.LastTrickWinner
	if finalDrawDue(e.ctx.remainingCards(), len(e.players)) {
		ExecuteFinalDraw(e.players, &e.ctx, winner)
		e.ctx.CurrentPhase = PhaseLastNine
		e.emit(Event{Kind: EventPhaseChanged, PlayerID: winner, Phase: PhaseLastNine})
	} else {
		ExecuteDraw(e.players, &e.ctx, winner)
	}
	e.startTrick()
	e.state = StatePlay
	return nil
}

// StartNewTrick replans the next trick from the current leader. It is only
// allowed in StatePlay before any card of the trick has been played.
func (e *GameEngine) StartNewTrick() error {
	if err := e.requireState(StatePlay); err != nil {
		return err
	}
	if len(e.trick) > 0 {
		return fmt.Errorf("%w: %d cards already played to the trick", ErrWrongState, len(e.trick))
	}
	e.startTrick()
	return nil
}

// startTrick clears the trick and plans its play order from the current
// leader, skipping seats with nothing left to play.
func (e *GameEngine) startTrick() {
	e.trick = e.trick[:0]
	e.trickOrder = e.trickOrder[:0]
	for _, seat := range trickOrder(e.ctx.CurrentPlayer, len(e.players)) {
		if e.players[seat].CardsHeld() > 0 {
			e.trickOrder = append(e.trickOrder, seat)
		}
	}
	if len(e.trickOrder) > 0 {
		e.ctx.CurrentPlayer = e.trickOrder[0]
	}
}

// EndRound folds round scores into totals and returns the seat that gained
// the most this round. If any total has reached the target the game ends
// and the highest total wins; otherwise the deal passes left.
func (e *GameEngine) EndRound() (int, error) {
	if err := e.requireState(StateRoundEnd); err != nil {
		return -1, err
	}
	added := ApplyRoundScores(e.players, e.cfg.Mode)
	roundWinner := 0
	for i := range added {
		if added[i] > added[roundWinner] {
			roundWinner = i
		}
	}
	totals := e.totals()
	e.emit(Event{Kind: EventRoundEnded, PlayerID: roundWinner, Scores: totals})

	if _, ok := e.CheckWinner(); ok {
		e.state = StateGameOver
		e.emit(Event{Kind: EventGameEnded, PlayerID: WinnerID(e.players), Scores: totals})
		return roundWinner, nil
	}
	e.dealer = AdvanceTurn(e.dealer, len(e.players))
	e.state = StateDeal
	return roundWinner, nil
}

// StartNextRound deals the next round after EndRound.
func (e *GameEngine) StartNextRound() error {
	if err := e.requireState(StateDeal); err != nil {
		return err
	}
	e.deal()
	return nil
}

// Forfeit ends the game with seat conceding; the highest total among the
// remaining seats wins.
func (e *GameEngine) Forfeit(seat int) error {
	if err := e.requireInit(); err != nil {
		return err
	}
	if e.state == StateGameOver {
		return fmt.Errorf("%w: game already over", ErrWrongState)
	}
	if seat < 0 || seat >= len(e.players) {
		return fmt.Errorf("%w: no seat %d", ErrWrongState, seat)
	}
	winner := -1
	for i, p := range e.players {
		if i == seat {
			continue
		}
		if winner < 0 || p.TotalScore > e.players[winner].TotalScore {
			winner = i
		}
	}
	e.state = StateGameOver
	e.emit(Event{Kind: EventGameEnded, PlayerID: winner, Scores: e.totals()})
	return nil
}

func (e *GameEngine) totals() []int {
	out := make([]int, len(e.players))
	for i, p := range e.players {
		out[i] = p.TotalScore
	}
	return out
}
