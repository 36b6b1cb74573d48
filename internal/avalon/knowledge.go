package avalon

import "sort"

// DeriveKnowledge returns the identities the player at roster[idx] is allowed
// to see:
//   - Merlin sees every Evil player.
//   - Percival sees Merlin and Morgana without learning which is which.
//   - Evil roles see the other Evil players.
//   - Servants see nobody.
//
// The result is sorted by identity so its order carries no role information.
func DeriveKnowledge(roster []*Player, idx int) []string {
	if idx < 0 || idx >= len(roster) || roster[idx] == nil {
		return nil
	}
	self := roster[idx]

	var match func(i int, p *Player) bool
	switch self.Role {
	case RoleMerlin:
		match = func(_ int, p *Player) bool { return p.Alignment == AlignmentEvil }
	case RolePercival:
		match = func(_ int, p *Player) bool { return p.Role == RoleMerlin || p.Role == RoleMorgana }
	case RoleMorgana, RoleAssassin, RoleMinion:
		match = func(i int, p *Player) bool { return i != idx && p.Alignment == AlignmentEvil }
	default:
		return nil
	}

	var known []string
	for i, p := range roster {
		if p != nil && match(i, p) {
			known = append(known, p.Identity)
		}
	}
	sort.Strings(known)
	return known
}
