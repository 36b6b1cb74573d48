// Package assign is the arbiter-side half of the role commitment: it deals
// roles from a seed and publishes the commitment root plus each player's
// private proof. The rules engine never calls it.
package assign

import (
	"fmt"

	"onchainavalon/internal/avalon"
	"onchainavalon/internal/commit"
)

// distribution lists the roles dealt for each player count.
var distribution = map[int][]avalon.Role{
	5:  {avalon.RoleMerlin, avalon.RolePercival, avalon.RoleServant, avalon.RoleMorgana, avalon.RoleAssassin},
	6:  {avalon.RoleMerlin, avalon.RolePercival, avalon.RoleServant, avalon.RoleServant, avalon.RoleMorgana, avalon.RoleAssassin},
	7:  {avalon.RoleMerlin, avalon.RolePercival, avalon.RoleServant, avalon.RoleServant, avalon.RoleMorgana, avalon.RoleAssassin, avalon.RoleMinion},
	8:  {avalon.RoleMerlin, avalon.RolePercival, avalon.RoleServant, avalon.RoleServant, avalon.RoleServant, avalon.RoleMorgana, avalon.RoleAssassin, avalon.RoleMinion},
	9:  {avalon.RoleMerlin, avalon.RolePercival, avalon.RoleServant, avalon.RoleServant, avalon.RoleServant, avalon.RoleServant, avalon.RoleMorgana, avalon.RoleAssassin, avalon.RoleMinion},
	10: {avalon.RoleMerlin, avalon.RolePercival, avalon.RoleServant, avalon.RoleServant, avalon.RoleServant, avalon.RoleServant, avalon.RoleMorgana, avalon.RoleAssassin, avalon.RoleMinion, avalon.RoleMinion},
}

// Distribution returns a copy of the roles dealt for playerCount.
func Distribution(playerCount int) ([]avalon.Role, error) {
	roles, ok := distribution[playerCount]
	if !ok {
		return nil, fmt.Errorf("assign: invalid player count %d (want %d..%d)", playerCount, avalon.MinPlayers, avalon.MaxPlayers)
	}
	return append([]avalon.Role(nil), roles...), nil
}

// Shuffle deals roles with a seeded Fisher-Yates shuffle. The same seed always
// yields the same permutation.
func Shuffle(roles []avalon.Role, seed []byte) ([]avalon.Role, error) {
	rng, err := NewDeterministicRng(seed)
	if err != nil {
		return nil, err
	}
	out := append([]avalon.Role(nil), roles...)
	for i := len(out) - 1; i > 0; i-- {
		j, err := rng.NextIndex(i, i+1)
		if err != nil {
			return nil, err
		}
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Seat is one player's private share of an assignment.
type Seat struct {
	Identity  string           `json:"identity"`
	Index     int              `json:"index"`
	Role      avalon.Role      `json:"role"`
	Alignment avalon.Alignment `json:"alignment"`
	Proof     [][]byte         `json:"proof"`
}

// Assignment is everything the arbiter produces for one game. Only Root is
// published; each Seat goes to its player alone.
type Assignment struct {
	Seed  []byte `json:"seed"`
	Root  []byte `json:"root"`
	Seats []Seat `json:"seats"`
}

// Assign deals roles to identities (in roster order) and commits to them.
func Assign(identities []string, seed []byte) (*Assignment, error) {
	if len(seed) != avalon.SeedSize {
		return nil, fmt.Errorf("assign: seed must be %d bytes, got %d", avalon.SeedSize, len(seed))
	}
	roles, err := Distribution(len(identities))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(identities))
	for _, id := range identities {
		if id == "" {
			return nil, fmt.Errorf("assign: empty identity")
		}
		if seen[id] {
			return nil, fmt.Errorf("assign: duplicate identity %q", id)
		}
		seen[id] = true
	}

	dealt, err := Shuffle(roles, seed)
	if err != nil {
		return nil, err
	}
	return Commit(identities, dealt, seed)
}

// Commit builds the commitment for an explicit role deal.
func Commit(identities []string, roles []avalon.Role, seed []byte) (*Assignment, error) {
	if len(identities) != len(roles) {
		return nil, fmt.Errorf("assign: %d identities for %d roles", len(identities), len(roles))
	}
	leaves := make([][]byte, len(identities))
	for i, id := range identities {
		leaves[i] = commit.Leaf([]byte(id), roles[i].Tag(), roles[i].Alignment().Tag(), seed)
	}
	root, proofs, err := commit.BuildTree(leaves)
	if err != nil {
		return nil, err
	}

	a := &Assignment{
		Seed:  append([]byte(nil), seed...),
		Root:  root,
		Seats: make([]Seat, len(identities)),
	}
	for i, id := range identities {
		a.Seats[i] = Seat{
			Identity:  id,
			Index:     i,
			Role:      roles[i],
			Alignment: roles[i].Alignment(),
			Proof:     proofs[i],
		}
	}
	return a, nil
}

// SeatOf returns identity's seat, or nil.
func (a *Assignment) SeatOf(identity string) *Seat {
	for i := range a.Seats {
		if a.Seats[i].Identity == identity {
			return &a.Seats[i]
		}
	}
	return nil
}
