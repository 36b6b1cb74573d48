package app

import (
	errorsmod "cosmossdk.io/errors"

	"onchainavalon/internal/avalon"
)

// Codespace for rejections raised by the app before a tx reaches the engine.
const Codespace = "avalond"

var (
	ErrTxDecode       = errorsmod.Register(Codespace, 2, "malformed tx")
	ErrUnknownTxType  = errorsmod.Register(Codespace, 3, "unknown tx type")
	ErrUnauthorized   = errorsmod.Register(Codespace, 4, "unauthorized")
	ErrInvalidNonce   = errorsmod.Register(Codespace, 5, "invalid tx.nonce")
	ErrAccountExists  = errorsmod.Register(Codespace, 6, "account already registered")
	ErrNotStalled     = errorsmod.Register(Codespace, 7, "game is not stalled")
	ErrInternal       = errorsmod.Register(Codespace, 8, "internal error")
	ErrIndexerMissing = errorsmod.Register(Codespace, 9, "event index not configured")
)

var appErrorKinds = []struct {
	err  *errorsmod.Error
	kind avalon.ErrorKind
}{
	{ErrTxDecode, avalon.KindInvalidRequest},
	{ErrUnknownTxType, avalon.KindInvalidRequest},
	{ErrUnauthorized, avalon.KindAuthorization},
	{ErrInvalidNonce, avalon.KindSequencing},
	{ErrAccountExists, avalon.KindMembership},
	{ErrNotStalled, avalon.KindSequencing},
}

// kindOf classifies err against the engine taxonomy, then the app's own errors.
func kindOf(err error) avalon.ErrorKind {
	if k := avalon.KindOf(err); k != avalon.KindUnknown {
		return k
	}
	for _, ek := range appErrorKinds {
		if errorsmod.IsOf(err, ek.err) {
			return ek.kind
		}
	}
	return avalon.KindUnknown
}
