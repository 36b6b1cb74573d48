package avalon

import "onchainavalon/internal/commit"

// Every operation validates against g, then applies its effect to a clone.
// g itself is never modified, so a rejected action leaves no trace.

func requirePhase(g *Game, want Phase, op string) error {
	if g == nil {
		return ErrInvalidRequest.Wrap("nil game")
	}
	if g.Phase != want {
		return ErrWrongPhase.Wrapf("%s requires phase %s, game is in %s", op, want, g.Phase)
	}
	return nil
}

func requireMember(g *Game, identity string) (int, error) {
	if identity == "" {
		return -1, ErrInvalidRequest.Wrap("missing identity")
	}
	idx := g.PlayerIndex(identity)
	if idx < 0 {
		return -1, ErrPlayerNotInGame.Wrapf("%q", identity)
	}
	return idx, nil
}

// Join appends actor to the roster.
func Join(g *Game, actor string, now int64) (*Game, error) {
	if err := requirePhase(g, PhaseLobby, "join"); err != nil {
		return nil, err
	}
	if actor == "" {
		return nil, ErrInvalidRequest.Wrap("missing identity")
	}
	if g.PlayerCount >= MaxPlayers {
		return nil, ErrGameFull.Wrapf("%d/%d seats taken", g.PlayerCount, MaxPlayers)
	}
	if g.PlayerIndex(actor) >= 0 {
		return nil, ErrPlayerAlreadyInGame.Wrapf("%q", actor)
	}

	next := g.Clone()
	next.Players[next.PlayerCount] = &Player{
		Identity:  actor,
		Role:      RoleUnknown,
		Alignment: AlignmentUnknown,
	}
	next.PlayerCount++
	next.LastActionAt = now
	return next, nil
}

// Start closes the lobby, sizes the quests for the final roster and records
// the externally supplied seed and role commitment root.
func Start(g *Game, actor string, seed, commitment []byte, now int64) (*Game, error) {
	if err := requirePhase(g, PhaseLobby, "start"); err != nil {
		return nil, err
	}
	if actor != g.Creator {
		return nil, ErrNotCreator.Wrapf("%q is not the creator", actor)
	}
	if g.PlayerCount < MinPlayers {
		return nil, ErrNotEnoughPlayers.Wrapf("have %d, need %d", g.PlayerCount, MinPlayers)
	}
	sizes, fails, err := QuestTable(g.PlayerCount)
	if err != nil {
		return nil, err
	}
	if len(seed) != SeedSize {
		return nil, ErrInvalidSeed.Wrapf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	if len(commitment) != SeedSize {
		return nil, ErrInvalidSeed.Wrapf("commitment must be %d bytes, got %d", SeedSize, len(commitment))
	}

	next := g.Clone()
	for i := range next.Quests {
		next.Quests[i] = Quest{RequiredPlayers: sizes[i], FailsRequired: fails[i]}
	}
	next.CurrentQuest = 0
	next.LeaderIndex = 0
	next.Seed = cloneBytes(seed)
	next.Commitment = cloneBytes(commitment)
	next.Phase = PhaseRoleAssignment
	next.LastActionAt = now
	return next, nil
}

// RevealRole accepts actor's claimed role once the Merkle proof reconstructs
// the recorded commitment root. The last reveal opens team building.
func RevealRole(g *Game, actor string, role Role, alignment Alignment, proof [][]byte, now int64) (*Game, error) {
	if err := requirePhase(g, PhaseRoleAssignment, "reveal role"); err != nil {
		return nil, err
	}
	idx, err := requireMember(g, actor)
	if err != nil {
		return nil, err
	}
	if g.Players[idx].Revealed() {
		return nil, ErrAlreadyRevealed.Wrapf("%q revealed %s", actor, g.Players[idx].Role)
	}
	if role == RoleUnknown || role.Alignment() != alignment {
		return nil, ErrRoleMismatch.Wrapf("role %s cannot be %s", role, alignment)
	}
	if !commit.Verify([]byte(actor), role.Tag(), alignment.Tag(), g.Seed, proof, g.Commitment) {
		return nil, ErrInvalidMerkleProof.Wrapf("reveal by %q", actor)
	}

	next := g.Clone()
	p := next.Players[idx]
	p.Role = role
	p.Alignment = alignment
	p.Ready = true
	if next.allRevealed() {
		next.closeReveals()
	}
	next.LastActionAt = now
	return next, nil
}

// ProposeTeam records the leader's team for the active quest and opens voting.
// Only players who proved their role can be sent on a quest.
func ProposeTeam(g *Game, actor string, team []string, now int64) (*Game, error) {
	if err := requirePhase(g, PhaseTeamBuilding, "propose team"); err != nil {
		return nil, err
	}
	idx, err := requireMember(g, actor)
	if err != nil {
		return nil, err
	}
	if idx != int(g.LeaderIndex) {
		return nil, ErrNotLeader.Wrapf("leader is %q", g.Leader())
	}
	q := g.ActiveQuest()
	if len(team) != int(q.RequiredPlayers) {
		return nil, ErrInvalidTeamSize.Wrapf("quest %d needs %d, got %d", g.CurrentQuest+1, q.RequiredPlayers, len(team))
	}
	seen := make(map[string]bool, len(team))
	for _, m := range team {
		midx := g.PlayerIndex(m)
		if midx < 0 {
			return nil, ErrPlayerNotInGame.Wrapf("team member %q", m)
		}
		if !g.Players[midx].Revealed() {
			return nil, ErrRoleNotRevealed.Wrapf("team member %q cannot go on a quest", m)
		}
		if seen[m] {
			return nil, ErrInvalidTeam.Wrapf("%q listed twice", m)
		}
		seen[m] = true
	}

	next := g.Clone()
	nq := next.ActiveQuest()
	nq.Team = cloneStrings(team)
	nq.TeamVotes = [MaxPlayers]TeamVote{}
	next.Phase = PhaseVoting
	next.LastActionAt = now
	return next, nil
}

// VoteTeam records actor's approval. When the whole roster has voted the
// proposal is tallied: a strict majority approves; otherwise the leader
// rotates, and the fifth rejection on one quest hands the game to Evil.
func VoteTeam(g *Game, actor string, approve bool, now int64) (*Game, error) {
	if err := requirePhase(g, PhaseVoting, "vote team"); err != nil {
		return nil, err
	}
	idx, err := requireMember(g, actor)
	if err != nil {
		return nil, err
	}
	if g.ActiveQuest().TeamVotes[idx] != TeamVoteUnset {
		return nil, ErrAlreadyVoted.Wrapf("%q on quest %d team", actor, g.CurrentQuest+1)
	}

	next := g.Clone()
	q := next.ActiveQuest()
	if approve {
		q.TeamVotes[idx] = TeamVoteApprove
	} else {
		q.TeamVotes[idx] = TeamVoteReject
	}
	next.Players[idx].TeamVotesCast++
	next.LastActionAt = now

	approvals, cast := 0, 0
	for i := 0; i < int(next.PlayerCount); i++ {
		switch q.TeamVotes[i] {
		case TeamVoteApprove:
			approvals++
			cast++
		case TeamVoteReject:
			cast++
		}
	}
	if cast < int(next.PlayerCount) {
		return next, nil
	}

	if approvals > cast-approvals {
		next.Phase = PhaseQuest
		q.QuestVotes = [MaxPlayers]QuestVote{}
		return next, nil
	}

	q.VoteAttempts++
	if q.VoteAttempts >= MaxVoteAttempts {
		next.endWith(AlignmentEvil)
		return next, nil
	}
	q.TeamVotes = [MaxPlayers]TeamVote{}
	q.Team = nil
	next.rotateLeader()
	next.Phase = PhaseTeamBuilding
	return next, nil
}

// SubmitQuestVote records a team member's quest card. Good players may only
// play success. The last card resolves the quest.
func SubmitQuestVote(g *Game, actor string, success bool, now int64) (*Game, error) {
	if err := requirePhase(g, PhaseQuest, "quest vote"); err != nil {
		return nil, err
	}
	idx, err := requireMember(g, actor)
	if err != nil {
		return nil, err
	}
	q := g.ActiveQuest()
	if !q.onTeam(actor) {
		return nil, ErrNotOnTeam.Wrapf("%q on quest %d", actor, g.CurrentQuest+1)
	}
	if q.QuestVotes[idx] != QuestVoteUnset {
		return nil, ErrAlreadyVoted.Wrapf("%q on quest %d", actor, g.CurrentQuest+1)
	}
	p := g.Players[idx]
	if !p.Revealed() {
		return nil, ErrRoleNotRevealed.Wrapf("%q cannot play a quest card", actor)
	}
	if p.Alignment == AlignmentGood && !success {
		return nil, ErrGoodMustSucceed.Wrapf("%q", actor)
	}

	next := g.Clone()
	nq := next.ActiveQuest()
	if success {
		nq.QuestVotes[idx] = QuestVoteSuccess
	} else {
		nq.QuestVotes[idx] = QuestVoteFail
	}
	next.Players[idx].QuestsParticipated++
	next.LastActionAt = now

	for _, m := range nq.Team {
		if nq.QuestVotes[next.PlayerIndex(m)] == QuestVoteUnset {
			return next, nil
		}
	}
	resolveQuest(next)
	return next, nil
}

// Assassinate ends the game: Evil wins if target is Merlin, Good otherwise.
func Assassinate(g *Game, actor, target string, now int64) (*Game, error) {
	if err := requirePhase(g, PhaseAssassination, "assassinate"); err != nil {
		return nil, err
	}
	idx, err := requireMember(g, actor)
	if err != nil {
		return nil, err
	}
	if !g.Players[idx].Revealed() {
		return nil, ErrRoleNotRevealed.Wrapf("%q", actor)
	}
	if g.Players[idx].Role != RoleAssassin {
		return nil, ErrNotAssassin.Wrapf("%q", actor)
	}
	tidx, err := requireMember(g, target)
	if err != nil {
		return nil, err
	}

	next := g.Clone()
	if next.Players[tidx].Role == RoleMerlin {
		next.endWith(AlignmentEvil)
	} else {
		next.endWith(AlignmentGood)
	}
	next.LastActionAt = now
	return next, nil
}

// AdvancePhase is the escape valve for stalled rounds. It forces the reveal
// phase closed, or rotates the leader during team building. In any other phase
// it returns an unchanged copy.
//
// Any caller may invoke it. Callers that need a stricter trust model gate it
// before it reaches the engine.
func AdvancePhase(g *Game, actor string, now int64) (*Game, error) {
	if g == nil {
		return nil, ErrInvalidRequest.Wrap("nil game")
	}
	if actor == "" {
		return nil, ErrInvalidRequest.Wrap("missing identity")
	}

	next := g.Clone()
	switch g.Phase {
	case PhaseRoleAssignment:
		next.closeReveals()
	case PhaseTeamBuilding:
		next.rotateLeader()
	default:
		return next, nil
	}
	next.LastActionAt = now
	return next, nil
}
