package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/acadien/deuxcents/internal/bot"
	"github.com/acadien/deuxcents/internal/deck"
	"github.com/acadien/deuxcents/internal/game"
	"github.com/acadien/deuxcents/internal/lobby"
	"github.com/acadien/deuxcents/internal/transcript"
)

// Pacing delays. Disabled wholesale when the service runs with
// INTEGRATION_TEST set.
const (
	botCommitDelay  = 1 * time.Second
	trickClearDelay = 2 * time.Second
	tableResetDelay = 3 * time.Second
)

// botStepLimit bounds the iterative bot loop within one lane turn. A
// full game is well under this.
const botStepLimit = 1000

// lane serializes every mutation of one game on a single goroutine.
// Client handlers and the timer supervisor post closures to the inbox;
// bot turns are advanced iteratively after each committed event.
type lane struct {
	game     *game.Game
	table    *lobby.Table
	lobbyID  string
	policies map[string]bot.Policy

	rooms *Rooms
	tr    *transcript.Transcript
	clock quartz.Clock
	log   *log.Logger

	inbox   chan func()
	ctx     context.Context
	cancel  context.CancelFunc
	pacing  bool
	cleanup func(l *lane)
}

func newLane(g *game.Game, table *lobby.Table, lobbyID string, policies map[string]bot.Policy,
	rooms *Rooms, tr *transcript.Transcript, clock quartz.Clock, logger *log.Logger,
	pacing bool, cleanup func(l *lane)) *lane {

	ctx, cancel := context.WithCancel(context.Background())
	return &lane{
		game:     g,
		table:    table,
		lobbyID:  lobbyID,
		policies: policies,
		rooms:    rooms,
		tr:       tr,
		clock:    clock,
		log:      logger.WithPrefix("lane").With("game", g.ID),
		inbox:    make(chan func(), 128),
		ctx:      ctx,
		cancel:   cancel,
		pacing:   pacing,
		cleanup:  cleanup,
	}
}

// run consumes the inbox until the lane is cancelled
func (l *lane) run() {
	for {
		select {
		case act := <-l.inbox:
			act()
		case <-l.ctx.Done():
			return
		}
	}
}

// post queues work onto the lane. Safe from any goroutine.
func (l *lane) post(act func()) {
	select {
	case l.inbox <- act:
	case <-l.ctx.Done():
	default:
		l.log.Warn("lane inbox full, dropping event")
	}
}

// pause blocks the lane (and only this lane) for a pacing delay
func (l *lane) pause(d time.Duration) {
	if !l.pacing {
		return
	}
	fired := make(chan struct{})
	timer := l.clock.AfterFunc(d, func() { close(fired) })
	defer timer.Stop()
	select {
	case <-fired:
	case <-l.ctx.Done():
	}
}

// broadcast routes an event by game phase: running games go to the
// players and spectators, finished games to the table room.
func (l *lane) broadcast(mt MessageType, data any) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		l.log.Error("failed to build message", "type", mt, "error", err)
		return
	}
	if l.game.Phase != game.PhaseFinished {
		l.rooms.Broadcast(msg, GameRoom(l.game.ID), SpectatorRoom(l.table.ID))
		return
	}
	l.rooms.Broadcast(msg, TableRoom(l.table.ID))
}

// record appends a transcript entry with a full snapshot
func (l *lane) record(kind transcript.Kind, payload any, snap game.Snapshot) {
	l.tr.Append(l.clock.Now(), kind, payload, snap)
}

// start deals the first round and opens play
func (l *lane) start() {
	l.game.Start()
	snap := l.game.Snapshot()
	l.record(transcript.KindGameStart, nil, snap)
	l.record(transcript.KindRoundStart, map[string]any{"round": l.game.RoundNum}, snap)
	l.broadcast(MessageTypeGameStarted, GameStartedData{Game: snap})
	l.log.Info("game started", "table", l.table.ID, "variant", int(l.game.Variant), "target", l.game.ScoreTarget)
	l.advanceBots()
}

// makeBid applies a bid or, when points is zero, a pass
func (l *lane) makeBid(playerID string, points int, suit deck.Suit, reply *Connection) {
	if l.game.Phase == game.PhaseFinished {
		return
	}
	var res *game.BidResult
	var err error
	if points == 0 {
		res, err = l.game.PassBid(playerID)
	} else {
		res, err = l.game.MakeBid(playerID, points, suit)
	}
	if err != nil {
		l.reject(reply, err)
		return
	}
	l.afterBid(playerID, points, suit, res)
	l.advanceBots()
}

func (l *lane) afterBid(playerID string, points int, suit deck.Suit, res *game.BidResult) {
	snap := l.game.Snapshot()
	if points == 0 {
		l.record(transcript.KindBidPass, map[string]any{"playerId": playerID}, snap)
		l.broadcast(MessageTypeBidMade, BidMadeData{Game: snap, PlayerID: playerID, Passed: true})
	} else {
		payload := map[string]any{"playerId": playerID, "points": points, "suit": suit.String()}
		l.record(transcript.KindBidMade, payload, snap)
		l.broadcast(MessageTypeBidMade, BidMadeData{
			Game: snap, PlayerID: playerID, Points: points, Suit: suit.String(),
		})
	}

	switch {
	case res.AllPassed:
		// Redeal under the rotated dealer.
		snap = l.game.Snapshot()
		l.resetPolicies()
		l.record(transcript.KindRoundStart, map[string]any{"round": l.game.RoundNum, "redeal": true}, snap)
		l.broadcast(MessageTypeGameUpdated, GameUpdatedData{Game: snap})
	case res.Completed:
		winning := l.game.CurrentBid
		l.record(transcript.KindBiddingComplete, map[string]any{
			"playerId": winning.PlayerID, "points": winning.Points, "suit": winning.Suit.String(),
		}, snap)
		l.broadcast(MessageTypeGameUpdated, GameUpdatedData{Game: snap})
	}
}

// takeKitty hands the kitty to the contract holder
func (l *lane) takeKitty(playerID string, reply *Connection) {
	if l.game.Phase == game.PhaseFinished {
		return
	}
	if err := l.game.TakeKitty(playerID); err != nil {
		l.reject(reply, err)
		return
	}
	snap := l.game.Snapshot()
	l.record(transcript.KindKittyPick, map[string]any{"playerId": playerID}, snap)
	l.broadcast(MessageTypeGameUpdated, GameUpdatedData{Game: snap})
	l.advanceBots()
}

// discardToKitty buries four cards and opens play
func (l *lane) discardToKitty(playerID string, cardIDs []string, trump deck.Suit, reply *Connection) {
	if l.game.Phase == game.PhaseFinished {
		return
	}
	if err := l.game.DiscardKitty(playerID, cardIDs, trump); err != nil {
		l.reject(reply, err)
		return
	}
	snap := l.game.Snapshot()
	l.record(transcript.KindKittyDiscard, map[string]any{
		"playerId": playerID, "cards": cardIDs, "trumpSuit": trump.String(),
	}, snap)
	l.broadcast(MessageTypeGameUpdated, GameUpdatedData{Game: snap})
	l.advanceBots()
}

// playCard applies one card play and everything that cascades from it
func (l *lane) playCard(playerID, cardID string, reply *Connection) {
	if l.game.Phase == game.PhaseFinished {
		return
	}
	lead := l.leadSuitFor(cardID)
	res, err := l.game.PlayCard(playerID, cardID)
	if err != nil {
		l.reject(reply, err)
		return
	}
	l.observePlay(playerID, cardID, lead)

	snap := l.game.Snapshot()
	l.record(transcript.KindCardPlayed, map[string]any{"playerId": playerID, "card": cardID}, snap)
	l.broadcast(MessageTypeCardPlayed, CardPlayedData{Game: snap, PlayerID: playerID, Card: cardID})

	if res.TrickCompleted {
		l.record(transcript.KindTrickComplete, map[string]any{
			"winnerId": res.Trick.WinnerID, "points": res.Trick.Points,
		}, snap)
		l.broadcast(MessageTypeTrickCompleted, TrickCompletedData{
			Game: snap, WinnerID: res.Trick.WinnerID, Points: res.Trick.Points,
		})
		if err := l.game.CheckConservation(); err != nil {
			l.fatal(err)
			return
		}
		// Let clients show the completed trick before it is cleared.
		l.pause(trickClearDelay)
	}

	if res.RoundCompleted {
		snap = l.game.Snapshot()
		l.record(transcript.KindRoundComplete, res.Summary, snap)
		l.broadcast(MessageTypeRoundCompleted, RoundCompletedData{Game: snap, Summary: *res.Summary})

		if res.GameEnded {
			l.finish(transcript.KindGameComplete, nil)
			return
		}
		l.game.StartNextRound()
		snap = l.game.Snapshot()
		l.resetPolicies()
		l.record(transcript.KindRoundStart, map[string]any{"round": l.game.RoundNum}, snap)
		l.broadcast(MessageTypeGameUpdated, GameUpdatedData{Game: snap})
	}
	l.advanceBots()
}

// exit removes a human mid-game; the game cannot continue short-handed
func (l *lane) exit(playerName string) {
	if l.game.Phase == game.PhaseFinished {
		return
	}
	snap := l.game.Snapshot()
	l.record(transcript.KindPlayerExit, map[string]any{"playerName": playerName}, snap)
	l.broadcast(MessageTypePlayerExitedGame, PlayerExitedData{GameID: l.game.ID, PlayerName: playerName})
	l.finish(transcript.KindGameComplete, map[string]any{"reason": "player_exit", "playerName": playerName})
}

// expireTurn is the supervisor hand-off: verify the deadline on the
// lane (the player may have acted since the scan) and terminate.
func (l *lane) expireTurn(now time.Time) {
	if l.game.Phase == game.PhaseFinished || !l.game.TurnExpired(now) {
		return
	}
	playerID := l.game.CurrentTurnID
	l.log.Warn("turn expired", "player", playerID, "phase", l.game.Phase)

	snap := l.game.Snapshot()
	l.broadcast(MessageTypeGameTimeout, GameTimeoutData{GameID: l.game.ID, PlayerID: playerID, Game: snap})
	l.finish(transcript.KindGameComplete, map[string]any{"reason": "timeout", "playerId": playerID})
}

// finish closes the game, records the final entry, notifies the
// audiences, and schedules the table reset.
func (l *lane) finish(kind transcript.Kind, payload any) {
	l.game.Finish()
	snap := l.game.Snapshot()
	l.record(kind, payload, snap)
	l.tr.Close(l.clock.Now())

	var winner game.Team
	if l.game.WinnerTeam != nil {
		winner = *l.game.WinnerTeam
	}
	ended, err := NewMessage(MessageTypeGameEnded, GameEndedData{Game: snap, WinnerTeam: winner})
	if err == nil {
		l.rooms.Broadcast(ended, GameRoom(l.game.ID))
		spec, _ := NewMessage(MessageTypeGameEndedSpec, GameEndedData{Game: snap, WinnerTeam: winner})
		l.rooms.Broadcast(spec, SpectatorRoom(l.table.ID))
	}

	l.pause(tableResetDelay)
	l.cleanup(l)
	l.cancel()
}

// fatal handles an invariant violation: log loudly and end the game
func (l *lane) fatal(err error) {
	l.log.Error("invariant violation, terminating game", "error", err)
	l.finish(transcript.KindGameComplete, map[string]any{"reason": "invariant_violation", "error": err.Error()})
}

// reject surfaces a recoverable legality error to the offending socket
func (l *lane) reject(reply *Connection, err error) {
	l.log.Debug("rejected action", "error", err)
	if reply != nil {
		reply.sendError(err)
	}
}

// advanceBots steps bot turns until a human holds the turn or the
// phase stops play. Each committed decision re-enters the same switch,
// so chained bot turns stay iterative, not recursive.
func (l *lane) advanceBots() {
	for i := 0; i < botStepLimit; i++ {
		if l.game.Phase == game.PhaseFinished {
			return
		}
		p := l.game.CurrentPlayer()
		if p == nil || !p.IsBot {
			return
		}
		policy := l.policies[p.ID]
		if policy == nil {
			l.log.Error("bot without policy", "player", p.ID)
			return
		}

		l.pause(botCommitDelay)
		if l.ctx.Err() != nil {
			return
		}

		switch l.game.Phase {
		case game.PhaseBidding:
			d := policy.ChooseBid(l.game.BidViewFor(p.ID))
			if d.Pass {
				res, err := l.game.PassBid(p.ID)
				if err != nil {
					l.fatal(game.Errorf(game.CodeInvariantBroken, "bot pass rejected: %v", err))
					return
				}
				l.afterBid(p.ID, 0, deck.Hearts, res)
			} else {
				res, err := l.game.MakeBid(p.ID, d.Points, d.Suit)
				if err != nil {
					// A policy can suggest an illegal raise; passing is
					// always legal.
					res, err = l.game.PassBid(p.ID)
					if err != nil {
						l.fatal(game.Errorf(game.CodeInvariantBroken, "bot fallback pass rejected: %v", err))
						return
					}
					l.afterBid(p.ID, 0, deck.Hearts, res)
				} else {
					l.afterBid(p.ID, d.Points, d.Suit, res)
				}
			}

		case game.PhaseKitty:
			if err := l.game.TakeKitty(p.ID); err != nil {
				l.fatal(game.Errorf(game.CodeInvariantBroken, "bot kitty pick rejected: %v", err))
				return
			}
			snap := l.game.Snapshot()
			l.record(transcript.KindKittyPick, map[string]any{"playerId": p.ID}, snap)
			l.broadcast(MessageTypeGameUpdated, GameUpdatedData{Game: snap})

			d := policy.ChooseKitty(l.game.KittyViewFor(p.ID))
			if err := l.game.DiscardKitty(p.ID, d.DiscardIDs, d.Trump); err != nil {
				l.fatal(game.Errorf(game.CodeInvariantBroken, "bot kitty discard rejected: %v", err))
				return
			}
			snap = l.game.Snapshot()
			l.record(transcript.KindKittyDiscard, map[string]any{
				"playerId": p.ID, "cards": d.DiscardIDs, "trumpSuit": d.Trump.String(),
			}, snap)
			l.broadcast(MessageTypeGameUpdated, GameUpdatedData{Game: snap})

		case game.PhasePlaying:
			card := policy.ChooseCard(l.game.PlayViewFor(p.ID))
			l.playCard(p.ID, card.ID, nil)
			return // playCard already re-enters advanceBots

		default:
			return
		}
	}
	l.log.Error("bot step limit reached, suspending bot advance")
}

// observePlay feeds a committed card play to every tracking policy
func (l *lane) observePlay(playerID, cardID string, lead deck.Suit) {
	p := l.game.PlayerByID(playerID)
	if p == nil {
		return
	}
	card, err := deck.ParseCard(cardID)
	if err != nil {
		return
	}
	for _, policy := range l.policies {
		policy.ObservePlay(p.Position, card, lead)
	}
}

// leadSuitFor resolves the lead suit the play will be judged against:
// the current trick's lead, or the played card's own suit on a lead.
func (l *lane) leadSuitFor(cardID string) deck.Suit {
	if s, ok := l.game.CurrentTrick.LeadSuit(); ok {
		return s
	}
	if card, err := deck.ParseCard(cardID); err == nil {
		return card.Suit
	}
	return deck.Hearts
}

// resetPolicies clears per-round tracking in every bot policy
func (l *lane) resetPolicies() {
	for _, policy := range l.policies {
		policy.OnRoundStart()
	}
}
