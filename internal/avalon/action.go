package avalon

type ActionKind string

const (
	ActionCreate       ActionKind = "create"
	ActionJoin         ActionKind = "join"
	ActionStart        ActionKind = "start"
	ActionRevealRole   ActionKind = "reveal_role"
	ActionProposeTeam  ActionKind = "propose_team"
	ActionVoteTeam     ActionKind = "vote_team"
	ActionQuestVote    ActionKind = "quest_vote"
	ActionAssassinate  ActionKind = "assassinate"
	ActionAdvancePhase ActionKind = "advance_phase"
)

// Action is one submitted move. Only the fields of its Kind are read.
type Action struct {
	Kind  ActionKind
	Actor string
	// Now is the caller's clock, stamped into LastActionAt.
	Now int64

	// create
	GameID uint64
	Params GameParams

	// start
	Seed       []byte
	Commitment []byte

	// reveal_role
	Role      Role
	Alignment Alignment
	Proof     [][]byte

	// propose_team
	Team []string

	// vote_team
	Approve bool

	// quest_vote
	Success bool

	// assassinate
	Target string
}

// Apply is the single transition function: it returns the state after act,
// or a typed rejection with g untouched. ActionCreate takes a nil g.
func Apply(g *Game, act Action) (*Game, error) {
	switch act.Kind {
	case ActionCreate:
		if g != nil {
			return nil, ErrInvalidRequest.Wrapf("create on existing game %d", g.ID)
		}
		next, err := NewGame(act.GameID, act.Actor, act.Now)
		if err != nil {
			return nil, err
		}
		next.Params = act.Params
		return next, nil
	case ActionJoin:
		return Join(g, act.Actor, act.Now)
	case ActionStart:
		return Start(g, act.Actor, act.Seed, act.Commitment, act.Now)
	case ActionRevealRole:
		return RevealRole(g, act.Actor, act.Role, act.Alignment, act.Proof, act.Now)
	case ActionProposeTeam:
		return ProposeTeam(g, act.Actor, act.Team, act.Now)
	case ActionVoteTeam:
		return VoteTeam(g, act.Actor, act.Approve, act.Now)
	case ActionQuestVote:
		return SubmitQuestVote(g, act.Actor, act.Success, act.Now)
	case ActionAssassinate:
		return Assassinate(g, act.Actor, act.Target, act.Now)
	case ActionAdvancePhase:
		return AdvancePhase(g, act.Actor, act.Now)
	default:
		return nil, ErrInvalidRequest.Wrapf("unknown action %q", act.Kind)
	}
}
