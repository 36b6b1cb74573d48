package app

import (
	"onchainavalon/internal/avalon"
)

// maxStallTimeoutSecs bounds stallTimeoutSecs at game creation (one week).
const maxStallTimeoutSecs uint64 = 7 * 24 * 60 * 60

// stallDeadline returns the earliest block time at which advance_phase is
// accepted for g. A zero stall timeout leaves the escape valve open.
func stallDeadline(g *avalon.Game) (int64, error) {
	if g == nil || g.Params.StallTimeoutSecs == 0 {
		return 0, nil
	}
	return addInt64AndU64Checked(g.LastActionAt, g.Params.StallTimeoutSecs, "stall deadline")
}

// requireStalled gates avalon/advance_phase until the game has been idle for
// its stall timeout.
func requireStalled(g *avalon.Game, nowUnix int64) error {
	deadline, err := stallDeadline(g)
	if err != nil {
		return ErrInternal.Wrap(err.Error())
	}
	if nowUnix < deadline {
		return ErrNotStalled.Wrapf("last action at %d, advance allowed from %d (now %d)", g.LastActionAt, deadline, nowUnix)
	}
	return nil
}
