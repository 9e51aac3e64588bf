package server

import (
	"encoding/json"
	"time"

	"github.com/acadien/deuxcents/internal/game"
	"github.com/acadien/deuxcents/internal/lobby"
	"github.com/acadien/deuxcents/internal/transcript"
)

// Message is the WebSocket envelope shared by both directions
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server payloads

type JoinLobbyData struct {
	PlayerName string `json:"playerName"`
	LobbyID    string `json:"lobbyId,omitempty"`
}

type ListTablesData struct {
	LobbyID string `json:"lobbyId,omitempty"`
}

type CreateTableData struct {
	TableID                    string `json:"tableId"`
	TableName                  string `json:"tableName"`
	TimeoutDuration            *int   `json:"timeoutDuration,omitempty"`
	DeckVariant                string `json:"deckVariant,omitempty"`
	ScoreTarget                *int   `json:"scoreTarget,omitempty"`
	HasKitty                   *bool  `json:"hasKitty,omitempty"`
	AllowPointCardDiscards     *bool  `json:"allowPointCardDiscards,omitempty"`
	EnforceOpposingTeamBidRule *bool  `json:"enforceOpposingTeamBidRule,omitempty"`
	IsPrivate                  bool   `json:"isPrivate,omitempty"`
	Password                   string `json:"password,omitempty"`
}

type JoinTableData struct {
	TableID  string `json:"tableId"`
	Password string `json:"password,omitempty"`
}

type LeaveTableData struct {
	TableID string `json:"tableId"`
}

type SpectateData struct {
	TableID string `json:"tableId"`
}

type AddBotData struct {
	TableID  string `json:"tableId"`
	Position int    `json:"position"`
	Skill    string `json:"skill,omitempty"`
}

type RemoveBotData struct {
	TableID string `json:"tableId"`
	BotID   string `json:"botId"`
}

type MovePlayerData struct {
	TableID     string `json:"tableId"`
	NewPosition int    `json:"newPosition"`
}

type UpdateConfigData struct {
	TableID                    string `json:"tableId"`
	TimeoutDuration            *int   `json:"timeoutDuration,omitempty"`
	DeckVariant                string `json:"deckVariant,omitempty"`
	ScoreTarget                *int   `json:"scoreTarget,omitempty"`
	HasKitty                   *bool  `json:"hasKitty,omitempty"`
	AllowPointCardDiscards     *bool  `json:"allowPointCardDiscards,omitempty"`
	EnforceOpposingTeamBidRule *bool  `json:"enforceOpposingTeamBidRule,omitempty"`
}

type StartGameData struct {
	TableID string `json:"tableId"`
}

type MakeBidData struct {
	GameID string `json:"gameId"`
	Points int    `json:"points"`
	Suit   string `json:"suit,omitempty"`
}

type TakeKittyData struct {
	GameID string `json:"gameId"`
}

type DiscardToKittyData struct {
	GameID    string   `json:"gameId"`
	Cards     []string `json:"cards"`
	TrumpSuit string   `json:"trumpSuit"`
}

type PlayCardData struct {
	GameID string `json:"gameId"`
	Card   string `json:"card"`
}

type ExitGameData struct {
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

type GetTranscriptData struct {
	GameID string `json:"gameId"`
}

// Server → Client payloads

type LobbyJoinedData struct {
	PlayerName string            `json:"playerName"`
	LobbyID    string            `json:"lobbyId"`
	Tables     []lobby.TableInfo `json:"tables"`
}

type LobbyUpdatedData struct {
	LobbyID string            `json:"lobbyId"`
	Tables  []lobby.TableInfo `json:"tables"`
}

// TableState is the full table payload used by table_joined and
// table_updated.
type TableState struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Creator    string            `json:"creator"`
	Private    bool              `json:"isPrivate"`
	Players    []TableSeat       `json:"players"`
	Spectators []string          `json:"spectators"`
	GameID     string            `json:"gameId,omitempty"`
	Config     lobby.TableConfig `json:"config"`
}

type TableSeat struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	IsBot    bool   `json:"isBot"`
	Skill    string `json:"skill,omitempty"`
}

type TableJoinedData struct {
	Table    TableState `json:"table"`
	Position int        `json:"position"`
}

type TableUpdatedData struct {
	Table TableState `json:"table"`
}

type TableLeftData struct {
	TableID string `json:"tableId"`
}

type TableDeletedData struct {
	TableID string `json:"tableId"`
}

type PlayerJoinedData struct {
	TableID    string     `json:"tableId"`
	PlayerName string     `json:"playerName"`
	Position   int        `json:"position"`
	Table      TableState `json:"table"`
}

type PlayerLeftData struct {
	TableID    string     `json:"tableId"`
	PlayerName string     `json:"playerName"`
	Table      TableState `json:"table"`
}

type SpectatorData struct {
	TableID    string `json:"tableId"`
	PlayerName string `json:"playerName"`
}

type GameStartedData struct {
	Game game.Snapshot `json:"game"`
}

type GameUpdatedData struct {
	Game game.Snapshot `json:"game"`
}

type BidMadeData struct {
	Game     game.Snapshot `json:"game"`
	PlayerID string        `json:"playerId"`
	Points   int           `json:"points"`
	Suit     string        `json:"suit,omitempty"`
	Passed   bool          `json:"passed"`
}

type CardPlayedData struct {
	Game     game.Snapshot `json:"game"`
	PlayerID string        `json:"playerId"`
	Card     string        `json:"card"`
}

type TrickCompletedData struct {
	Game     game.Snapshot `json:"game"`
	WinnerID string        `json:"winnerId"`
	Points   int           `json:"points"`
}

type RoundCompletedData struct {
	Game    game.Snapshot     `json:"game"`
	Summary game.RoundSummary `json:"summary"`
}

type GameEndedData struct {
	Game       game.Snapshot `json:"game"`
	WinnerTeam game.Team     `json:"winnerTeam"`
}

type PlayerExitedData struct {
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

type GameTimeoutData struct {
	GameID   string        `json:"gameId"`
	PlayerID string        `json:"playerId"`
	Game     game.Snapshot `json:"game"`
}

type GameTranscriptData struct {
	Transcript *transcript.Transcript `json:"transcript"`
}

type AllTranscriptsData struct {
	Transcripts []transcript.Summary `json:"transcripts"`
}

type ErrorData struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	GameID  string `json:"gameId,omitempty"`
	Phase   string `json:"phase,omitempty"`
}
