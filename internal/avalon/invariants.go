package avalon

import "fmt"

// Validate checks the structural invariants every accepted action preserves.
func (g *Game) Validate() error {
	if g == nil {
		return fmt.Errorf("nil game")
	}
	if g.PlayerCount > MaxPlayers {
		return fmt.Errorf("player count %d exceeds %d", g.PlayerCount, MaxPlayers)
	}
	active := g.Phase != PhaseLobby
	if active && (g.PlayerCount < MinPlayers) {
		return fmt.Errorf("phase %s with %d players", g.Phase, g.PlayerCount)
	}

	seen := make(map[string]bool, g.PlayerCount)
	for i := 0; i < MaxPlayers; i++ {
		p := g.Players[i]
		if i >= int(g.PlayerCount) {
			if p != nil {
				return fmt.Errorf("slot %d occupied beyond player count", i)
			}
			continue
		}
		if p == nil || p.Identity == "" {
			return fmt.Errorf("slot %d empty within player count", i)
		}
		if seen[p.Identity] {
			return fmt.Errorf("duplicate identity %q", p.Identity)
		}
		seen[p.Identity] = true
		if p.Revealed() && p.Role.Alignment() != p.Alignment {
			return fmt.Errorf("player %q role %s with alignment %s", p.Identity, p.Role, p.Alignment)
		}
	}

	if g.CurrentQuest >= NumQuests {
		return fmt.Errorf("current quest %d out of range", g.CurrentQuest)
	}
	if int(g.SuccessfulQuests)+int(g.FailedQuests) > NumQuests {
		return fmt.Errorf("quest counters %d+%d exceed %d", g.SuccessfulQuests, g.FailedQuests, NumQuests)
	}
	if g.PlayerCount > 0 && g.LeaderIndex >= g.PlayerCount {
		return fmt.Errorf("leader index %d out of range", g.LeaderIndex)
	}

	for qi := range g.Quests {
		q := &g.Quests[qi]
		if len(q.Team) > int(q.RequiredPlayers) {
			return fmt.Errorf("quest %d team larger than required", qi)
		}
		for _, m := range q.Team {
			if !g.Player(m).Revealed() {
				return fmt.Errorf("quest %d team member %q not revealed", qi, m)
			}
		}
		if q.VoteAttempts > MaxVoteAttempts {
			return fmt.Errorf("quest %d vote attempts %d", qi, q.VoteAttempts)
		}
		for i := 0; i < MaxPlayers; i++ {
			if i >= int(g.PlayerCount) && (q.TeamVotes[i] != TeamVoteUnset || q.QuestVotes[i] != QuestVoteUnset) {
				return fmt.Errorf("quest %d vote in empty slot %d", qi, i)
			}
			if q.QuestVotes[i] != QuestVoteUnset && !q.onTeam(g.Players[i].Identity) {
				return fmt.Errorf("quest %d card from non-member %q", qi, g.Players[i].Identity)
			}
			if q.QuestVotes[i] == QuestVoteFail && g.Players[i].Alignment == AlignmentGood {
				return fmt.Errorf("quest %d fail card from good player %q", qi, g.Players[i].Identity)
			}
		}
	}

	if g.Phase == PhaseAssassination && g.assassinIndex() < 0 {
		return fmt.Errorf("assassination phase without a revealed assassin")
	}
	if (g.Winner != AlignmentUnknown) != (g.Phase == PhaseEnded) {
		return fmt.Errorf("winner %s in phase %s", g.Winner, g.Phase)
	}
	return nil
}
