package codec

import (
	"encoding/json"
	"fmt"
)

// TxEnvelope is the transaction container.
//
// CometBFT transactions are opaque bytes; avalond uses JSON-encoded txs.
type TxEnvelope struct {
	// Basic routing.
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Tx auth:
	// - Nonce: included in the signed message for replay protection (must increase per signer).
	// - Signer: registered account id. For avalon txs this is the acting player.
	// - Sig: Ed25519 signature over (type, nonce, signer, sha256(value)).
	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

// ---- Auth ----

// Account pubkey registration for tx authentication.
type AuthRegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"` // base64 (32 bytes)
}

// ---- Avalon ----
//
// Every avalon payload names its actor in Player; it must match the envelope
// signer.

type AvalonCreateGameTx struct {
	Player string `json:"player"`
	// Optional: minimum idle seconds before avalon/advance_phase is accepted.
	StallTimeoutSecs uint64 `json:"stallTimeoutSecs,omitempty"`
}

type AvalonJoinTx struct {
	Player string `json:"player"`
	GameID uint64 `json:"gameId"`
}

type AvalonStartTx struct {
	Player     string `json:"player"`
	GameID     uint64 `json:"gameId"`
	Seed       []byte `json:"seed"`       // base64 (32 bytes)
	Commitment []byte `json:"commitment"` // base64 Merkle root (32 bytes)
}

type AvalonRevealRoleTx struct {
	Player    string   `json:"player"`
	GameID    uint64   `json:"gameId"`
	Role      string   `json:"role"`      // merlin|percival|servant|morgana|assassin|minion
	Alignment string   `json:"alignment"` // good|evil
	Proof     [][]byte `json:"proof"`     // base64 sibling hashes, leaf to root
}

type AvalonProposeTeamTx struct {
	Player string   `json:"player"`
	GameID uint64   `json:"gameId"`
	Team   []string `json:"team"`
}

type AvalonVoteTeamTx struct {
	Player  string `json:"player"`
	GameID  uint64 `json:"gameId"`
	Approve bool   `json:"approve"`
}

type AvalonQuestVoteTx struct {
	Player  string `json:"player"`
	GameID  uint64 `json:"gameId"`
	Success bool   `json:"success"`
}

type AvalonAssassinateTx struct {
	Player string `json:"player"`
	GameID uint64 `json:"gameId"`
	Target string `json:"target"`
}

type AvalonAdvancePhaseTx struct {
	Player string `json:"player"`
	GameID uint64 `json:"gameId"`
}
