package game

import "fmt"

// ErrorCode is a stable machine-readable error identifier
type ErrorCode string

const (
	CodeNotYourTurn     ErrorCode = "not_your_turn"
	CodeWrongPhase      ErrorCode = "wrong_phase"
	CodeAlreadyPassed   ErrorCode = "already_passed"
	CodeIllegalBid      ErrorCode = "illegal_bid"
	CodeCardNotHeld     ErrorCode = "card_not_held"
	CodeFollowSuit      ErrorCode = "follow_suit"
	CodeIllegalDiscard  ErrorCode = "illegal_discard"
	CodeUnknownPlayer   ErrorCode = "unknown_player"
	CodeNotInGame       ErrorCode = "not_in_game"
	CodeNotCreator      ErrorCode = "not_creator"
	CodeTableFull       ErrorCode = "table_full"
	CodePositionTaken   ErrorCode = "position_taken"
	CodeTableExists     ErrorCode = "table_exists"
	CodeTableNotFound   ErrorCode = "table_not_found"
	CodeGameNotFound    ErrorCode = "game_not_found"
	CodeGameStarted     ErrorCode = "game_started"
	CodeWrongPassword   ErrorCode = "wrong_password"
	CodeCannotSpectate  ErrorCode = "cannot_spectate"
	CodeAlreadyInGame   ErrorCode = "already_in_game"
	CodeInvalidConfig   ErrorCode = "invalid_config"
	CodeInvariantBroken ErrorCode = "invariant_broken"
)

// Error is a typed engine error carrying the offending game id and phase
// alongside a stable code. Legality and authorization errors are
// recovered locally; invariant errors are fatal to the game.
type Error struct {
	Code   ErrorCode
	GameID string
	Phase  Phase
	Msg    string
}

func (e *Error) Error() string {
	if e.GameID != "" {
		return fmt.Sprintf("%s: %s (game=%s phase=%s)", e.Code, e.Msg, e.GameID, e.Phase)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Fatal reports whether the error must terminate the game
func (e *Error) Fatal() bool {
	return e.Code == CodeInvariantBroken
}

// Errorf builds a typed error without game context
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// errf builds a typed error bound to this game's id and phase
func (g *Game) errf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, GameID: g.ID, Phase: g.Phase, Msg: fmt.Sprintf(format, args...)}
}
