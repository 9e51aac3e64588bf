package server

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadien/deuxcents/internal/game"
	"github.com/acadien/deuxcents/internal/lobby"
)

// startBotGame seats three bots next to the human and starts the game,
// returning the table and game ids.
func startBotGame(t *testing.T, s *Service, human *Connection) (string, game.Snapshot) {
	t.Helper()
	require.NoError(t, s.CreateTable(human, CreateTableData{TableName: "solo run"}))
	joined := decodeData[TableJoinedData](t, recvType(t, human, MessageTypeTableJoined))
	tableID := joined.Table.ID

	for pos := 1; pos <= 3; pos++ {
		require.NoError(t, s.AddBot(human, AddBotData{TableID: tableID, Position: pos}))
	}
	require.NoError(t, s.StartGame(human, StartGameData{TableID: tableID}))
	started := decodeData[GameStartedData](t, recvType(t, human, MessageTypeGameStarted))
	return tableID, started.Game
}

// gameState extracts the snapshot carried by a game event, when any
func gameState(t *testing.T, msg *Message) (game.Snapshot, bool) {
	t.Helper()
	switch msg.Type {
	case MessageTypeGameStarted, MessageTypeGameUpdated:
		return decodeData[GameUpdatedData](t, msg).Game, true
	case MessageTypeBidMade:
		return decodeData[BidMadeData](t, msg).Game, true
	case MessageTypeCardPlayed:
		return decodeData[CardPlayedData](t, msg).Game, true
	case MessageTypeTrickCompleted:
		return decodeData[TrickCompletedData](t, msg).Game, true
	case MessageTypeRoundCompleted:
		return decodeData[RoundCompletedData](t, msg).Game, true
	}
	return game.Snapshot{}, false
}

// legalCard picks a card the engine must accept: follow the lead suit
// when held, otherwise any card.
func legalCard(snap game.Snapshot, playerID string) string {
	for _, p := range snap.Players {
		if p.ID != playerID {
			continue
		}
		if snap.CurrentTrick != nil {
			if lead, ok := snap.CurrentTrick.LeadSuit(); ok {
				for _, c := range p.Hand {
					if c.Suit == lead {
						return c.ID
					}
				}
			}
		}
		if len(p.Hand) > 0 {
			return p.Hand[0].ID
		}
	}
	return ""
}

// A human plays a whole game against three bots by reacting to the
// event stream the way a client would. Snapshots can repeat a state the
// human already acted on; those duplicate actions bounce off the engine
// as error events and are ignored here.
func TestFullGameAgainstBots(t *testing.T) {
	s := newTestService()
	human := joinedConn(t, s, "rene")
	tableID, opening := startBotGame(t, s, human)
	gameID := opening.ID
	humanID := human.PlayerID()

	react := func(snap game.Snapshot) {
		if snap.CurrentPlayerID != humanID {
			return
		}
		switch snap.Phase {
		case game.PhaseBidding:
			if snap.CurrentBid == nil {
				_ = s.MakeBid(human, MakeBidData{GameID: gameID, Points: 50, Suit: "hearts"})
			} else {
				_ = s.MakeBid(human, MakeBidData{GameID: gameID, Points: 0})
			}
		case game.PhasePlaying:
			if card := legalCard(snap, humanID); card != "" {
				_ = s.PlayCard(human, PlayCardData{GameID: gameID, Card: card})
			}
		}
	}

	tbl, ok := s.Registry().Table(lobby.DefaultLobby, tableID)
	require.True(t, ok)
	require.Equal(t, gameID, tbl.GameID())

	var ended *GameEndedData
	// Seat 0 bids first, so the opening snapshot is already the
	// human's turn.
	react(opening)
	for i := 0; i < 20000 && ended == nil; i++ {
		msg := recv(t, human)
		if msg.Type == MessageTypeGameEnded {
			d := decodeData[GameEndedData](t, msg)
			ended = &d
			break
		}
		if snap, ok := gameState(t, msg); ok {
			react(snap)
		}
	}
	require.NotNil(t, ended, "game never finished")

	assert.Equal(t, game.PhaseFinished, ended.Game.Phase)
	assert.Contains(t, []game.Team{game.Team1, game.Team2}, ended.WinnerTeam)
	// Games end by a team reaching the target or its opponents falling
	// to the negative target.
	winnerScore := ended.Game.TeamScores[ended.WinnerTeam]
	loserScore := ended.Game.TeamScores[ended.WinnerTeam.Opponent()]
	assert.True(t, winnerScore >= ended.Game.ScoreTarget || loserScore <= -ended.Game.ScoreTarget,
		"scores %d / %d never crossed the %d target", winnerScore, loserScore, ended.Game.ScoreTarget)

	tr, ok := s.Store().Get(gameID)
	require.True(t, ok)
	assert.False(t, tr.EndedAt.IsZero())
	assert.Greater(t, tr.Len(), 10)

	// The table returns to the lobby as an all-bot table.
	require.Eventually(t, func() bool { return tbl.GameID() == "" }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		for _, p := range tbl.Players() {
			if !p.IsBot {
				return false
			}
		}
		return tbl.Full()
	}, 5*time.Second, 10*time.Millisecond)
	assert.Empty(t, human.GameID())
}

// The first bid comes from seat 0, so the game cannot auto-start
// without seat 0 having bid; the human must be the one reacting.
func TestGameStartedSnapshotOpensOnHuman(t *testing.T) {
	s := newTestService()
	human := joinedConn(t, s, "rene")
	require.NoError(t, s.CreateTable(human, CreateTableData{}))
	joined := decodeData[TableJoinedData](t, recvType(t, human, MessageTypeTableJoined))
	for pos := 1; pos <= 3; pos++ {
		require.NoError(t, s.AddBot(human, AddBotData{TableID: joined.Table.ID, Position: pos}))
	}
	require.NoError(t, s.StartGame(human, StartGameData{TableID: joined.Table.ID}))
	started := decodeData[GameStartedData](t, recvType(t, human, MessageTypeGameStarted))

	assert.Equal(t, human.PlayerID(), started.Game.CurrentPlayerID)
	assert.Equal(t, game.PhaseBidding, started.Game.Phase)
	assert.Equal(t, human.PlayerID(), started.Game.DealerID)
}

func TestExitGameEndsIt(t *testing.T) {
	s := newTestService()
	human := joinedConn(t, s, "rene")
	tableID, opening := startBotGame(t, s, human)
	gameID := opening.ID

	require.NoError(t, s.ExitGame(human, ExitGameData{GameID: gameID}))
	exited := decodeData[PlayerExitedData](t, recvType(t, human, MessageTypePlayerExitedGame))
	assert.Equal(t, "rene", exited.PlayerName)
	recvType(t, human, MessageTypeGameEnded)

	tr, ok := s.Store().Get(gameID)
	require.True(t, ok)
	assert.False(t, tr.EndedAt.IsZero())

	tbl, ok := s.Registry().Table(lobby.DefaultLobby, tableID)
	require.True(t, ok)
	require.Eventually(t, func() bool { return tbl.GameID() == "" }, 5*time.Second, 10*time.Millisecond)
}

// A stalled turn is detected by the supervisor scan and terminates the
// game.
func TestTurnTimeout(t *testing.T) {
	mock := quartz.NewMock(t)
	s := NewService(testLogger(), ServiceOptions{
		Clock:  mock,
		Pacing: false,
		Seed:   func() int64 { return 42 },
	})
	sup := NewSupervisor(s, mock, testLogger())

	human := joinedConn(t, s, "rene")
	tableID, opening := startBotGame(t, s, human)
	gameID := opening.ID

	// Seat 0 holds the opening bid and never acts.
	mock.Advance(31 * time.Second)
	sup.Scan()

	timeout := decodeData[GameTimeoutData](t, recvType(t, human, MessageTypeGameTimeout))
	assert.Equal(t, gameID, timeout.GameID)
	assert.Equal(t, human.PlayerID(), timeout.PlayerID)
	recvType(t, human, MessageTypeGameEnded)

	tr, ok := s.Store().Get(gameID)
	require.True(t, ok)
	assert.False(t, tr.EndedAt.IsZero())

	tbl, ok := s.Registry().Table(lobby.DefaultLobby, tableID)
	require.True(t, ok)
	require.Eventually(t, func() bool { return tbl.GameID() == "" }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return len(s.Lanes()) == 0 }, 5*time.Second, 10*time.Millisecond)
}

// A pass rides the same lane path as a bid and is announced as one
func TestHumanPassAnnounced(t *testing.T) {
	s := newTestService()
	human := joinedConn(t, s, "rene")
	_, opening := startBotGame(t, s, human)

	require.NoError(t, s.MakeBid(human, MakeBidData{GameID: opening.ID, Points: 0}))
	bid := decodeData[BidMadeData](t, recvType(t, human, MessageTypeBidMade))
	assert.Equal(t, human.PlayerID(), bid.PlayerID)
	assert.True(t, bid.Passed)
	assert.Zero(t, bid.Points)
}

// A fresh scan before the deadline leaves the game alone
func TestScanBeforeDeadlineIsHarmless(t *testing.T) {
	mock := quartz.NewMock(t)
	s := NewService(testLogger(), ServiceOptions{
		Clock:  mock,
		Pacing: false,
		Seed:   func() int64 { return 42 },
	})
	sup := NewSupervisor(s, mock, testLogger())

	human := joinedConn(t, s, "rene")
	_, opening := startBotGame(t, s, human)
	gameID := opening.ID

	mock.Advance(5 * time.Second)
	sup.Scan()

	// The lane must still be live and accept the bid.
	require.NoError(t, s.MakeBid(human, MakeBidData{GameID: gameID, Points: 50, Suit: "hearts"}))
	bid := decodeData[BidMadeData](t, recvType(t, human, MessageTypeBidMade))
	assert.Equal(t, human.PlayerID(), bid.PlayerID)
	assert.Equal(t, 50, bid.Points)
}
