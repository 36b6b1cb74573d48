package app

import (
	"fmt"
	"sort"
	"strings"

	abci "github.com/cometbft/cometbft/abci/types"

	"onchainavalon/internal/avalon"
	"onchainavalon/internal/commit"
)

func newEvent(typ string, attrs map[string]string) abci.Event {
	ev := abci.Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: attrs[k], Index: true})
	}
	return ev
}

func okEvent(typ string, attrs map[string]string) *abci.ExecTxResult {
	return &abci.ExecTxResult{
		Code:   0,
		Events: []abci.Event{newEvent(typ, attrs)},
	}
}

func u64(v uint64) string { return fmt.Sprintf("%d", v) }

func u8(v uint8) string { return fmt.Sprintf("%d", v) }

// transitionEvents describes the move from prev to next caused by act. Quest
// cards are never disclosed: QuestVoteCast names only the voter, and the fail
// count appears once the quest resolves.
func transitionEvents(prev, next *avalon.Game, act avalon.Action) []abci.Event {
	gid := u64(next.ID)
	var evs []abci.Event

	switch act.Kind {
	case avalon.ActionJoin:
		evs = append(evs, newEvent("PlayerJoined", map[string]string{
			"gameId":      gid,
			"player":      act.Actor,
			"playerCount": u8(next.PlayerCount),
		}))

	case avalon.ActionStart:
		evs = append(evs, newEvent("GameStarted", map[string]string{
			"gameId":      gid,
			"playerCount": u8(next.PlayerCount),
			"leader":      next.Leader(),
			"commitment":  commit.FormatHex(next.Commitment),
		}))

	case avalon.ActionRevealRole:
		evs = append(evs, newEvent("RoleRevealed", map[string]string{
			"gameId": gid,
			"player": act.Actor,
		}))

	case avalon.ActionProposeTeam:
		evs = append(evs, newEvent("TeamProposed", map[string]string{
			"gameId": gid,
			"quest":  u8(next.CurrentQuest),
			"leader": act.Actor,
			"team":   strings.Join(act.Team, ","),
		}))

	case avalon.ActionVoteTeam:
		evs = append(evs, newEvent("TeamVoteCast", map[string]string{
			"gameId":  gid,
			"player":  act.Actor,
			"approve": fmt.Sprintf("%t", act.Approve),
		}))
		pq := prev.ActiveQuest()
		switch {
		case next.Phase == avalon.PhaseQuest:
			evs = append(evs, newEvent("TeamApproved", map[string]string{
				"gameId": gid,
				"quest":  u8(next.CurrentQuest),
				"team":   strings.Join(pq.Team, ","),
			}))
		case next.Quests[prev.CurrentQuest].VoteAttempts > pq.VoteAttempts:
			evs = append(evs, newEvent("TeamRejected", map[string]string{
				"gameId":  gid,
				"quest":   u8(prev.CurrentQuest),
				"attempt": u8(next.Quests[prev.CurrentQuest].VoteAttempts),
			}))
		}

	case avalon.ActionQuestVote:
		evs = append(evs, newEvent("QuestVoteCast", map[string]string{
			"gameId": gid,
			"player": act.Actor,
		}))
		resolved := next.Quests[prev.CurrentQuest]
		if resolved.Outcome != avalon.OutcomeUnset {
			evs = append(evs, newEvent("QuestResolved", map[string]string{
				"gameId":           gid,
				"quest":            u8(prev.CurrentQuest),
				"outcome":          resolved.Outcome.String(),
				"fails":            fmt.Sprintf("%d", resolved.FailCount()),
				"successfulQuests": u8(next.SuccessfulQuests),
				"failedQuests":     u8(next.FailedQuests),
			}))
		}

	case avalon.ActionAssassinate:
		target := next.Player(act.Target)
		evs = append(evs, newEvent("AssassinationAttempted", map[string]string{
			"gameId":   gid,
			"assassin": act.Actor,
			"target":   act.Target,
			"hit":      fmt.Sprintf("%t", target != nil && target.Role == avalon.RoleMerlin),
		}))

	case avalon.ActionAdvancePhase:
		evs = append(evs, newEvent("PhaseAdvanced", map[string]string{
			"gameId": gid,
			"caller": act.Actor,
			"from":   string(prev.Phase),
			"to":     string(next.Phase),
		}))
	}

	if prev.Phase == avalon.PhaseRoleAssignment && next.Phase == avalon.PhaseTeamBuilding {
		revealed := 0
		for _, p := range next.Roster() {
			if p.Revealed() {
				revealed++
			}
		}
		evs = append(evs, newEvent("RolesRevealed", map[string]string{
			"gameId":   gid,
			"revealed": fmt.Sprintf("%d", revealed),
			"players":  u8(next.PlayerCount),
		}))
	}
	if next.Phase != avalon.PhaseEnded && prev.LeaderIndex != next.LeaderIndex {
		evs = append(evs, newEvent("LeaderRotated", map[string]string{
			"gameId": gid,
			"leader": next.Leader(),
		}))
	}
	if winner, ok := next.WinnerAlignment(); ok && !prev.IsTerminal() {
		evs = append(evs, newEvent("GameEnded", map[string]string{
			"gameId":           gid,
			"winner":           winner.String(),
			"successfulQuests": u8(next.SuccessfulQuests),
			"failedQuests":     u8(next.FailedQuests),
		}))
	}
	return evs
}
