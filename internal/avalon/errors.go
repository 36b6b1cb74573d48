package avalon

import errorsmod "cosmossdk.io/errors"

// Codespace is the ABCI codespace of every rejection raised by the engine.
const Codespace = "avalon"

// Sentinel errors. Codes are grouped by ErrorKind and are part of the wire
// contract with clients; never renumber.
var (
	ErrInvalidRequest = errorsmod.Register(Codespace, 2, "invalid request")
	ErrGameNotFound   = errorsmod.Register(Codespace, 3, "game not found")

	ErrWrongPhase = errorsmod.Register(Codespace, 10, "action not allowed in current phase")

	ErrNotCreator      = errorsmod.Register(Codespace, 20, "only the creator can perform this action")
	ErrNotLeader       = errorsmod.Register(Codespace, 21, "not the team leader")
	ErrNotAssassin     = errorsmod.Register(Codespace, 22, "not the assassin")
	ErrNotOnTeam       = errorsmod.Register(Codespace, 23, "not on the quest team")
	ErrRoleNotRevealed = errorsmod.Register(Codespace, 24, "role not revealed")

	ErrGameFull            = errorsmod.Register(Codespace, 30, "game is full")
	ErrPlayerAlreadyInGame = errorsmod.Register(Codespace, 31, "player already in game")
	ErrPlayerNotInGame     = errorsmod.Register(Codespace, 32, "player not in game")
	ErrInvalidTeamSize     = errorsmod.Register(Codespace, 33, "invalid team size")
	ErrInvalidTeam         = errorsmod.Register(Codespace, 34, "invalid team composition")

	ErrAlreadyVoted    = errorsmod.Register(Codespace, 40, "already voted")
	ErrAlreadyRevealed = errorsmod.Register(Codespace, 41, "role already revealed")

	ErrInvalidMerkleProof = errorsmod.Register(Codespace, 50, "invalid merkle proof")
	ErrRoleMismatch       = errorsmod.Register(Codespace, 51, "role and alignment disagree")

	ErrGoodMustSucceed = errorsmod.Register(Codespace, 60, "good players must vote success")

	ErrNotEnoughPlayers       = errorsmod.Register(Codespace, 70, "not enough players to start")
	ErrUnsupportedPlayerCount = errorsmod.Register(Codespace, 71, "unsupported player count")
	ErrInvalidSeed            = errorsmod.Register(Codespace, 72, "invalid seed or commitment")
)

// ErrorKind classifies a rejection so clients can explain it without parsing
// the log text.
type ErrorKind string

const (
	KindUnknown        ErrorKind = ""
	KindInvalidRequest ErrorKind = "invalid_request"
	KindPhaseMismatch  ErrorKind = "phase_mismatch"
	KindAuthorization  ErrorKind = "authorization"
	KindMembership     ErrorKind = "membership"
	KindSequencing     ErrorKind = "sequencing"
	KindIntegrity      ErrorKind = "integrity"
	KindRuleViolation  ErrorKind = "rule_violation"
	KindConfiguration  ErrorKind = "configuration"
)

var errorKinds = []struct {
	err  *errorsmod.Error
	kind ErrorKind
}{
	{ErrInvalidRequest, KindInvalidRequest},
	{ErrGameNotFound, KindMembership},
	{ErrWrongPhase, KindPhaseMismatch},
	{ErrNotCreator, KindAuthorization},
	{ErrNotLeader, KindAuthorization},
	{ErrNotAssassin, KindAuthorization},
	{ErrNotOnTeam, KindAuthorization},
	{ErrRoleNotRevealed, KindAuthorization},
	{ErrGameFull, KindMembership},
	{ErrPlayerAlreadyInGame, KindMembership},
	{ErrPlayerNotInGame, KindMembership},
	{ErrInvalidTeamSize, KindMembership},
	{ErrInvalidTeam, KindMembership},
	{ErrAlreadyVoted, KindSequencing},
	{ErrAlreadyRevealed, KindSequencing},
	{ErrInvalidMerkleProof, KindIntegrity},
	{ErrRoleMismatch, KindIntegrity},
	{ErrGoodMustSucceed, KindRuleViolation},
	{ErrNotEnoughPlayers, KindConfiguration},
	{ErrUnsupportedPlayerCount, KindConfiguration},
	{ErrInvalidSeed, KindConfiguration},
}

// KindOf returns the kind of a (possibly wrapped) engine error, or
// KindUnknown for anything else.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	for _, ek := range errorKinds {
		if errorsmod.IsOf(err, ek.err) {
			return ek.kind
		}
	}
	return KindUnknown
}
