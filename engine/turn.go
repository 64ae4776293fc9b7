package engine

// AdvanceTurn returns the next player after current in seat order.
func AdvanceTurn(current, playerCount int) int {
	return (current + 1) % playerCount
}

// SetLeader returns the player who leads the next trick: always the winner.
func SetLeader(winnerID int) int {
	return winnerID
}

// trickOrder lists seats in play order starting from leader.
func trickOrder(leader, playerCount int) []int {
	order := make([]int, 0, playerCount)
	for i := 0; i < playerCount; i++ {
		order = append(order, (leader+i)%playerCount)
	}
	return order
}
