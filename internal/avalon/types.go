package avalon

import (
	"fmt"
	"strings"
)

const (
	MaxPlayers = 10
	MinPlayers = 5
	NumQuests  = 5

	// MaxVoteAttempts rejected proposals on a single quest hand the game to Evil.
	MaxVoteAttempts = 5
	// QuestsToWin successful (or failed) quests decide the quest phase.
	QuestsToWin = 3

	// SeedSize is the byte length of both the randomness seed and the
	// role commitment root.
	SeedSize = 32
)

type Phase string

const (
	PhaseLobby          Phase = "lobby"
	PhaseRoleAssignment Phase = "roleAssignment"
	PhaseTeamBuilding   Phase = "teamBuilding"
	PhaseVoting         Phase = "voting"
	PhaseQuest          Phase = "quest"
	PhaseAssassination  Phase = "assassination"
	PhaseEnded          Phase = "ended"
)

// Role is a secret character card. The numeric value is the tag hashed into
// commitment leaves and must not be renumbered.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleMerlin
	RolePercival
	RoleServant
	RoleMorgana
	RoleAssassin
	RoleMinion
)

var roleNames = [...]string{"unknown", "merlin", "percival", "servant", "morgana", "assassin", "minion"}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// Tag is the byte bound into commitment leaves.
func (r Role) Tag() byte { return byte(r) }

// Alignment returns the faction a role belongs to.
func (r Role) Alignment() Alignment {
	switch r {
	case RoleMerlin, RolePercival, RoleServant:
		return AlignmentGood
	case RoleMorgana, RoleAssassin, RoleMinion:
		return AlignmentEvil
	default:
		return AlignmentUnknown
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if int(r) >= len(roleNames) {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(roleNames[r]), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range roleNames {
		if n == s {
			return Role(i), nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", s)
}

type Alignment uint8

const (
	AlignmentUnknown Alignment = iota
	AlignmentGood
	AlignmentEvil
)

var alignmentNames = [...]string{"unknown", "good", "evil"}

func (a Alignment) String() string {
	if int(a) < len(alignmentNames) {
		return alignmentNames[a]
	}
	return fmt.Sprintf("alignment(%d)", uint8(a))
}

func (a Alignment) Tag() byte { return byte(a) }

func (a Alignment) MarshalText() ([]byte, error) {
	if int(a) >= len(alignmentNames) {
		return nil, fmt.Errorf("invalid alignment %d", uint8(a))
	}
	return []byte(alignmentNames[a]), nil
}

func (a *Alignment) UnmarshalText(b []byte) error {
	v, err := ParseAlignment(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func ParseAlignment(s string) (Alignment, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range alignmentNames {
		if n == s {
			return Alignment(i), nil
		}
	}
	return AlignmentUnknown, fmt.Errorf("unknown alignment %q", s)
}

// TeamVote is a tri-state approval slot: 0 = not cast.
type TeamVote uint8

const (
	TeamVoteUnset TeamVote = iota
	TeamVoteApprove
	TeamVoteReject
)

// QuestVote is a tri-state quest card slot: 0 = not cast.
type QuestVote uint8

const (
	QuestVoteUnset QuestVote = iota
	QuestVoteSuccess
	QuestVoteFail
)

type QuestOutcome uint8

const (
	OutcomeUnset QuestOutcome = iota
	OutcomePassed
	OutcomeFailed
)

func (o QuestOutcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unset"
	}
}

type Player struct {
	Identity  string    `json:"identity"`
	Role      Role      `json:"role"`
	Alignment Alignment `json:"alignment"`
	// Ready is set once the player's role reveal has been accepted.
	Ready bool `json:"ready"`

	TeamVotesCast      uint8 `json:"teamVotesCast"`
	QuestsParticipated uint8 `json:"questsParticipated"`

	// Known lists the identities this player's role lets them see. Fixed when
	// the reveal phase closes.
	Known []string `json:"known,omitempty"`
}

func (p *Player) Revealed() bool {
	return p != nil && p.Role != RoleUnknown
}

type Quest struct {
	RequiredPlayers uint8 `json:"requiredPlayers"`
	FailsRequired   uint8 `json:"failsRequired"`

	// Team holds the proposed team in proposal order. Empty until proposed.
	Team []string `json:"team,omitempty"`

	// Vote slots are indexed by roster position.
	TeamVotes  [MaxPlayers]TeamVote  `json:"teamVotes"`
	QuestVotes [MaxPlayers]QuestVote `json:"questVotes"`

	Outcome      QuestOutcome `json:"outcome"`
	VoteAttempts uint8        `json:"voteAttempts"`
}

// GameParams are arbiter-level settings carried with the game. The rules
// engine does not read them.
type GameParams struct {
	// StallTimeoutSecs, when non-zero, is the minimum idle time before the
	// advance-phase escape valve is accepted.
	StallTimeoutSecs uint64 `json:"stallTimeoutSecs,omitempty"`
}

type Game struct {
	ID      uint64     `json:"id"`
	Creator string     `json:"creator"`
	Params  GameParams `json:"params"`
	Phase   Phase      `json:"phase"`

	Players     [MaxPlayers]*Player `json:"players"`
	PlayerCount uint8               `json:"playerCount"`

	CurrentQuest uint8            `json:"currentQuest"`
	Quests       [NumQuests]Quest `json:"quests"`
	LeaderIndex  uint8            `json:"leaderIndex"`

	SuccessfulQuests uint8 `json:"successfulQuests"`
	FailedQuests     uint8 `json:"failedQuests"`

	// Winner is AlignmentUnknown while the game is ongoing.
	Winner Alignment `json:"winner,omitempty"`

	CreatedAt    int64 `json:"createdAt"`
	LastActionAt int64 `json:"lastActionAt"`

	Seed       []byte `json:"seed,omitempty"`
	Commitment []byte `json:"commitment,omitempty"`
}
