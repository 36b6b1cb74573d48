package avalon

// NewGame creates a game in the lobby. Quest slots stay zeroed until Start.
func NewGame(id uint64, creator string, now int64) (*Game, error) {
	if creator == "" {
		return nil, ErrInvalidRequest.Wrap("missing creator")
	}
	return &Game{
		ID:           id,
		Creator:      creator,
		Phase:        PhaseLobby,
		CreatedAt:    now,
		LastActionAt: now,
	}, nil
}

// Clone returns a deep copy of g.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	out := *g
	for i, p := range g.Players {
		if p == nil {
			continue
		}
		cp := *p
		cp.Known = cloneStrings(p.Known)
		out.Players[i] = &cp
	}
	for i := range g.Quests {
		out.Quests[i].Team = cloneStrings(g.Quests[i].Team)
	}
	out.Seed = cloneBytes(g.Seed)
	out.Commitment = cloneBytes(g.Commitment)
	return &out
}

// IsTerminal reports whether the game has ended.
func (g *Game) IsTerminal() bool {
	return g != nil && g.Phase == PhaseEnded
}

// WinnerAlignment returns the winning faction once the game has ended.
func (g *Game) WinnerAlignment() (Alignment, bool) {
	if !g.IsTerminal() || g.Winner == AlignmentUnknown {
		return AlignmentUnknown, false
	}
	return g.Winner, true
}

// PlayerIndex returns the roster slot of identity, or -1.
func (g *Game) PlayerIndex(identity string) int {
	if identity == "" {
		return -1
	}
	for i := 0; i < int(g.PlayerCount) && i < MaxPlayers; i++ {
		if p := g.Players[i]; p != nil && p.Identity == identity {
			return i
		}
	}
	return -1
}

func (g *Game) Player(identity string) *Player {
	idx := g.PlayerIndex(identity)
	if idx < 0 {
		return nil
	}
	return g.Players[idx]
}

// Roster returns the occupied slots in join order.
func (g *Game) Roster() []*Player {
	out := make([]*Player, 0, g.PlayerCount)
	for i := 0; i < int(g.PlayerCount) && i < MaxPlayers; i++ {
		if g.Players[i] != nil {
			out = append(out, g.Players[i])
		}
	}
	return out
}

// Leader returns the identity of the current leader, or "" with an empty roster.
func (g *Game) Leader() string {
	if g.PlayerCount == 0 || int(g.LeaderIndex) >= MaxPlayers {
		return ""
	}
	if p := g.Players[g.LeaderIndex]; p != nil {
		return p.Identity
	}
	return ""
}

func (g *Game) ActiveQuest() *Quest {
	return &g.Quests[g.CurrentQuest]
}

func (g *Game) allRevealed() bool {
	for _, p := range g.Roster() {
		if !p.Revealed() {
			return false
		}
	}
	return true
}

func (g *Game) rotateLeader() {
	if g.PlayerCount == 0 {
		return
	}
	g.LeaderIndex = (g.LeaderIndex + 1) % g.PlayerCount
}

func (g *Game) endWith(winner Alignment) {
	g.Winner = winner
	g.Phase = PhaseEnded
}

// closeReveals ends the reveal phase and fixes every revealed player's
// knowledge set against the roster as it stands. When too few players
// revealed to staff every quest, Good cannot complete its quests and the
// game goes to Evil.
func (g *Game) closeReveals() {
	roster := g.Roster()
	revealed := 0
	for i, p := range roster {
		if p.Revealed() {
			p.Known = DeriveKnowledge(roster, i)
			revealed++
		}
	}
	if revealed < g.largestTeam() {
		g.endWith(AlignmentEvil)
		return
	}
	g.Phase = PhaseTeamBuilding
}

// assassinIndex returns the roster slot of the revealed Assassin, or -1.
func (g *Game) assassinIndex() int {
	for i, p := range g.Roster() {
		if p.Role == RoleAssassin {
			return i
		}
	}
	return -1
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneBytes(in []byte) []byte {
	if in == nil {
		return nil
	}
	return append([]byte(nil), in...)
}
