package game

// finalizeRound applies contract scoring and archives the round.
//
// The contractor team scores its card points when it made the bid and
// loses the bid value otherwise. The defenders score their card points
// unless the opposing-team bid rule is enforced, they sit at 100 or
// more, and they never bid this round. Kitty discard points always go
// to the defenders; they are a forfeit by the contractor rather than
// card points the defenders played for, so the shutout clause does not
// touch them.
func (g *Game) finalizeRound() *RoundSummary {
	contractor := *g.ContractorTeam
	defender := contractor.Opponent()
	bid := g.CurrentBid

	cpts := g.RoundScores[contractor]
	opts := g.RoundScores[defender]

	contractMade := cpts >= bid.Points
	contractorDelta := cpts
	if !contractMade {
		contractorDelta = -bid.Points
	}

	shutOut := g.EnforceOpposingBid && g.TeamScores[defender] >= 100 && g.OpposingTeamBid == 0
	defenderDelta := opts
	if shutOut {
		defenderDelta = 0
	}

	kittyPoints := 0
	if g.KittyEnabled && len(g.KittyDiscards) > 0 {
		for _, c := range g.KittyDiscards {
			kittyPoints += c.Points()
		}
		defenderDelta += kittyPoints
	}

	g.TeamScores[contractor] += contractorDelta
	g.TeamScores[defender] += defenderDelta

	g.Rounds = append(g.Rounds, g.CurrentRound)

	return &RoundSummary{
		Round:            g.RoundNum,
		ContractorTeam:   contractor,
		BidPoints:        bid.Points,
		ContractorPoints: cpts,
		DefenderPoints:   opts,
		KittyPoints:      kittyPoints,
		ContractorDelta:  contractorDelta,
		DefenderDelta:    defenderDelta,
		ContractMade:     contractMade,
		DefenderShutOut:  shutOut,
		TeamScores:       g.TeamScores.Clone(),
	}
}

// checkGameEnd finishes the game when either team's cumulative score has
// crossed the target in either direction. Reaching the positive target
// wins; falling to the negative target hands the win to the other team.
func (g *Game) checkGameEnd() bool {
	t1, t2 := g.TeamScores[Team1], g.TeamScores[Team2]
	target := g.ScoreTarget

	var winner Team
	switch {
	case t1 >= target || t2 >= target:
		winner = Team1
		if t2 > t1 {
			winner = Team2
		}
	case t1 <= -target:
		winner = Team2
	case t2 <= -target:
		winner = Team1
	default:
		return false
	}

	g.Phase = PhaseFinished
	g.WinnerTeam = &winner
	return true
}

// StartNextRound deals the next round after a round completed without
// ending the game. The dealer rotates clockwise and bids first.
func (g *Game) StartNextRound() {
	g.RoundNum++
	g.rotateDealer()
	g.beginRound()
}
