package avalon

// questSizing is indexed by player count.
var questSizing = map[uint8]struct {
	sizes [NumQuests]uint8
	fails [NumQuests]uint8
}{
	5:  {sizes: [NumQuests]uint8{2, 3, 2, 3, 3}, fails: [NumQuests]uint8{1, 1, 1, 1, 1}},
	6:  {sizes: [NumQuests]uint8{2, 3, 4, 3, 4}, fails: [NumQuests]uint8{1, 1, 1, 1, 1}},
	7:  {sizes: [NumQuests]uint8{2, 3, 3, 4, 4}, fails: [NumQuests]uint8{1, 1, 1, 2, 1}},
	8:  {sizes: [NumQuests]uint8{3, 4, 4, 5, 5}, fails: [NumQuests]uint8{1, 1, 1, 2, 1}},
	9:  {sizes: [NumQuests]uint8{3, 4, 4, 5, 5}, fails: [NumQuests]uint8{1, 1, 1, 2, 1}},
	10: {sizes: [NumQuests]uint8{3, 4, 4, 5, 5}, fails: [NumQuests]uint8{1, 1, 1, 2, 1}},
}

// QuestTable returns the team size and fails-needed of each quest for a
// player count.
func QuestTable(playerCount uint8) (sizes, fails [NumQuests]uint8, err error) {
	t, ok := questSizing[playerCount]
	if !ok {
		return sizes, fails, ErrUnsupportedPlayerCount.Wrapf("%d players (want %d..%d)", playerCount, MinPlayers, MaxPlayers)
	}
	return t.sizes, t.fails, nil
}

// resolveQuest tallies the active quest once every team member has voted and
// routes the game to the next quest, the assassination or the end.
func resolveQuest(g *Game) {
	q := &g.Quests[g.CurrentQuest]

	if questPasses(uint8(q.FailCount()), q.FailsRequired) {
		q.Outcome = OutcomePassed
		g.SuccessfulQuests++
	} else {
		q.Outcome = OutcomeFailed
		g.FailedQuests++
	}

	switch {
	case g.SuccessfulQuests >= QuestsToWin:
		// Evil still gets one shot at Merlin, but only through an Assassin
		// who proved the card.
		if g.assassinIndex() < 0 {
			g.endWith(AlignmentGood)
		} else {
			g.Phase = PhaseAssassination
		}
	case g.FailedQuests >= QuestsToWin:
		g.endWith(AlignmentEvil)
	default:
		g.CurrentQuest++
		g.rotateLeader()
		next := &g.Quests[g.CurrentQuest]
		next.Team = nil
		next.TeamVotes = [MaxPlayers]TeamVote{}
		next.QuestVotes = [MaxPlayers]QuestVote{}
		g.Phase = PhaseTeamBuilding
	}
}

// largestTeam is the biggest team any quest of g still needs.
func (g *Game) largestTeam() int {
	n := 0
	for i := int(g.CurrentQuest); i < NumQuests; i++ {
		if r := int(g.Quests[i].RequiredPlayers); r > n {
			n = r
		}
	}
	return n
}

func questPasses(fails, failsRequired uint8) bool {
	return fails < failsRequired
}

// FailCount returns the number of fail cards cast on q.
func (q *Quest) FailCount() int {
	n := 0
	for _, v := range q.QuestVotes {
		if v == QuestVoteFail {
			n++
		}
	}
	return n
}

func (q *Quest) onTeam(identity string) bool {
	for _, m := range q.Team {
		if m == identity {
			return true
		}
	}
	return false
}
