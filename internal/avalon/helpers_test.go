package avalon

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"onchainavalon/internal/commit"
)

var fiveRoles = []Role{RoleMerlin, RolePercival, RoleServant, RoleMorgana, RoleAssassin}

var sevenRoles = []Role{RoleMerlin, RolePercival, RoleServant, RoleServant, RoleMorgana, RoleAssassin, RoleMinion}

// testTable drives a single game through Apply, validating every accepted
// state and checking that rejected actions leave the game untouched.
type testTable struct {
	g      *Game
	ids    []string
	roles  []Role
	seed   []byte
	root   []byte
	proofs [][][]byte
	now    int64
}

func testIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%d", i+1)
	}
	return ids
}

// newLobby creates a game owned by p1 with len(roles) joined players and a
// commitment to roles dealt in roster order.
func newLobby(t *testing.T, roles []Role) *testTable {
	t.Helper()
	ids := testIDs(len(roles))
	seed := bytes.Repeat([]byte{0x5a}, SeedSize)

	leaves := make([][]byte, len(ids))
	for i, id := range ids {
		leaves[i] = commit.Leaf([]byte(id), roles[i].Tag(), roles[i].Alignment().Tag(), seed)
	}
	root, proofs, err := commit.BuildTree(leaves)
	require.NoError(t, err)

	g, err := NewGame(1, ids[0], 1000)
	require.NoError(t, err)
	tt := &testTable{g: g, ids: ids, roles: roles, seed: seed, root: root, proofs: proofs, now: 1000}
	for _, id := range ids {
		tt.apply(t, Action{Kind: ActionJoin, Actor: id})
	}
	return tt
}

func newStarted(t *testing.T, roles []Role) *testTable {
	t.Helper()
	tt := newLobby(t, roles)
	tt.apply(t, Action{Kind: ActionStart, Actor: tt.ids[0], Seed: tt.seed, Commitment: tt.root})
	return tt
}

func newRevealed(t *testing.T, roles []Role) *testTable {
	t.Helper()
	tt := newStarted(t, roles)
	for i := range tt.ids {
		tt.reveal(t, i)
	}
	require.Equal(t, PhaseTeamBuilding, tt.g.Phase)
	return tt
}

func (tt *testTable) apply(t *testing.T, act Action) {
	t.Helper()
	tt.now++
	act.Now = tt.now
	before := tt.g.Clone()
	next, err := Apply(tt.g, act)
	require.NoError(t, err, "%s by %s", act.Kind, act.Actor)
	require.NoError(t, next.Validate())
	require.Equal(t, before, tt.g, "input game mutated by %s", act.Kind)
	tt.g = next
}

// reject applies act, expects target and checks the game did not change.
func (tt *testTable) reject(t *testing.T, act Action, target error) {
	t.Helper()
	before := tt.g.Clone()
	next, err := Apply(tt.g, act)
	require.Error(t, err)
	require.ErrorIs(t, err, target)
	require.Nil(t, next)
	require.Equal(t, before, tt.g)
}

func (tt *testTable) reveal(t *testing.T, i int) {
	t.Helper()
	tt.apply(t, Action{
		Kind:      ActionRevealRole,
		Actor:     tt.ids[i],
		Role:      tt.roles[i],
		Alignment: tt.roles[i].Alignment(),
		Proof:     tt.proofs[i],
	})
}

func (tt *testTable) propose(t *testing.T, team ...string) {
	t.Helper()
	tt.apply(t, Action{Kind: ActionProposeTeam, Actor: tt.g.Leader(), Team: team})
}

func (tt *testTable) voteAll(t *testing.T, approve bool) {
	t.Helper()
	for _, id := range tt.ids {
		tt.apply(t, Action{Kind: ActionVoteTeam, Actor: id, Approve: approve})
	}
}

// runQuest proposes team, approves it unanimously and plays a success card
// for every member except those listed in fails.
func (tt *testTable) runQuest(t *testing.T, team []string, fails ...string) {
	t.Helper()
	tt.propose(t, team...)
	tt.voteAll(t, true)
	require.Equal(t, PhaseQuest, tt.g.Phase)
	failing := make(map[string]bool, len(fails))
	for _, f := range fails {
		failing[f] = true
	}
	for _, m := range team {
		tt.apply(t, Action{Kind: ActionQuestVote, Actor: m, Success: !failing[m]})
	}
}
