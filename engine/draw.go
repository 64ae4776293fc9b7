package engine

// ShouldTransitionToEndgame reports whether the remaining undrawn cards,
// counting the exposed trump card, exactly cover one final draw.
func ShouldTransitionToEndgame(remaining, playerCount int) bool {
	return remaining == playerCount
}

// finalDrawDue also covers deck/player parities that skip the exact count.
func finalDrawDue(remaining, playerCount int) bool {
	return ShouldTransitionToEndgame(remaining, playerCount) || remaining < playerCount
}

// remainingCards is the hidden stock plus the trump card while it is exposed.
func (ctx *GameContext) remainingCards() int {
	n := len(ctx.DrawDeck)
	if ctx.TrumpExposed {
		n++
	}
	return n
}

// ExecuteDraw runs one normal draw: winner first, then the others in seat
// order, one card each from the top of the stock. Drawing from an empty stock
// does nothing.
func ExecuteDraw(players []*Player, ctx *GameContext, winner int) {
	n := len(players)
	for i := 0; i < n; i++ {
		p := players[(winner+i)%n]
		if c, ok := popCard(&ctx.DrawDeck); ok {
			p.Hand = append(p.Hand, c)
		}
	}
}

// ExecuteFinalDraw hands out the last hidden cards, winner first, and gives
// the exposed trump card to the next player once the hidden stock is gone.
// Only that one player receives the real trump card; players after them get
// nothing rather than a second copy, so CardCount is unchanged. Every
// player's table then returns to their hand.
func ExecuteFinalDraw(players []*Player, ctx *GameContext, winner int) {
	n := len(players)
	for i := 0; i < n; i++ {
		p := players[(winner+i)%n]
		if c, ok := popCard(&ctx.DrawDeck); ok {
			p.Hand = append(p.Hand, c)
			continue
		}
		if ctx.TrumpExposed {
			p.Hand = append(p.Hand, ctx.TrumpCard)
			ctx.TrumpExposed = false
		}
	}
	ReclaimTableCards(players)
}

// ReclaimTableCards moves every player's melded cards back into their hand.
func ReclaimTableCards(players []*Player) {
	for _, p := range players {
		p.Hand = append(p.Hand, p.Table...)
		p.Table = nil
	}
}
