package server

// MessageType identifies a WebSocket message with type safety
type MessageType string

const (
	// Client to server messages
	MessageTypeJoinLobby       MessageType = "join_lobby"
	MessageTypeListTables      MessageType = "list_tables"
	MessageTypeCreateTable     MessageType = "create_table"
	MessageTypeJoinTable       MessageType = "join_table"
	MessageTypeLeaveTable      MessageType = "leave_table"
	MessageTypeJoinAsSpectator MessageType = "join_as_spectator"
	MessageTypeAddBot          MessageType = "add_bot"
	MessageTypeRemoveBot       MessageType = "remove_bot"
	MessageTypeMovePlayer      MessageType = "move_player"
	MessageTypeUpdateConfig    MessageType = "update_table_config"
	MessageTypeStartGame       MessageType = "start_game"
	MessageTypeMakeBid         MessageType = "make_bid"
	MessageTypeTakeKitty       MessageType = "take_kitty"
	MessageTypeDiscardToKitty  MessageType = "discard_to_kitty"
	MessageTypePlayCard        MessageType = "play_card"
	MessageTypeExitGame        MessageType = "exit_game"
	MessageTypeGetTranscript   MessageType = "get_game_transcript"
	MessageTypeAllTranscripts  MessageType = "get_all_transcripts"

	// Server to client messages
	MessageTypeLobbyJoined       MessageType = "lobby_joined"
	MessageTypeLobbyUpdated      MessageType = "lobby_updated"
	MessageTypeTableJoined       MessageType = "table_joined"
	MessageTypeTableUpdated      MessageType = "table_updated"
	MessageTypeTableLeft         MessageType = "table_left"
	MessageTypeTableDeleted      MessageType = "table_deleted"
	MessageTypePlayerJoined      MessageType = "player_joined_table"
	MessageTypePlayerLeft        MessageType = "player_left_table"
	MessageTypeSpectatorJoined   MessageType = "spectator_joined"
	MessageTypeSpectatorLeft     MessageType = "spectator_left"
	MessageTypeGameStarted       MessageType = "game_started"
	MessageTypeGameUpdated       MessageType = "game_updated"
	MessageTypeBidMade           MessageType = "bid_made"
	MessageTypeCardPlayed        MessageType = "card_played"
	MessageTypeTrickCompleted    MessageType = "trick_completed"
	MessageTypeRoundCompleted    MessageType = "round_completed"
	MessageTypeGameEnded         MessageType = "game_ended"
	MessageTypeGameEndedSpec     MessageType = "game_ended_for_spectator"
	MessageTypePlayerExitedGame  MessageType = "player_exited_game"
	MessageTypeGameTimeout       MessageType = "game_timeout"
	MessageTypeGameTranscript    MessageType = "game_transcript"
	MessageTypeAllTranscriptList MessageType = "all_transcripts"
	MessageTypeError             MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}
