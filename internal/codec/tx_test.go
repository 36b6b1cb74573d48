package codec

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestDecodeTxEnvelope_OK(t *testing.T) {
	b, err := json.Marshal(map[string]any{
		"type":  "avalon/join",
		"value": map[string]any{"player": "alice", "gameId": 3},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	env, err := DecodeTxEnvelope(b)
	if err != nil {
		t.Fatalf("DecodeTxEnvelope: %v", err)
	}
	if env.Type != "avalon/join" {
		t.Fatalf("unexpected type: %q", env.Type)
	}

	var v AvalonJoinTx
	if err := json.Unmarshal(env.Value, &v); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if v.Player != "alice" || v.GameID != 3 {
		t.Fatalf("unexpected value: %+v", v)
	}
}

func TestDecodeTxEnvelope_IgnoresUnknownFields(t *testing.T) {
	b, err := json.Marshal(map[string]any{
		"type":  "avalon/join",
		"nonce": "7",
		"extra": true,
		"value": map[string]any{"player": "alice", "gameId": 1},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	env, err := DecodeTxEnvelope(b)
	if err != nil {
		t.Fatalf("DecodeTxEnvelope: %v", err)
	}
	if env.Nonce != "7" {
		t.Fatalf("unexpected nonce: %q", env.Nonce)
	}
}

func TestDecodeTxEnvelope_MissingType(t *testing.T) {
	b, err := json.Marshal(map[string]any{
		"value": map[string]any{"x": 1},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	_, err = DecodeTxEnvelope(b)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestDecodeTxEnvelope_InvalidJSON(t *testing.T) {
	_, err := DecodeTxEnvelope([]byte("{not json"))
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestRevealRoleTx_ProofIsBase64(t *testing.T) {
	in := AvalonRevealRoleTx{
		Player:    "alice",
		GameID:    1,
		Role:      "merlin",
		Alignment: "good",
		Proof:     [][]byte{bytes.Repeat([]byte{0xaa}, 32), bytes.Repeat([]byte{0xbb}, 32)},
	}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	proof, ok := raw["proof"].([]any)
	if !ok || len(proof) != 2 {
		t.Fatalf("expected 2-element proof array, got %#v", raw["proof"])
	}
	if _, ok := proof[0].(string); !ok {
		t.Fatalf("expected base64 string proof element, got %#v", proof[0])
	}

	var out AvalonRevealRoleTx
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !bytes.Equal(out.Proof[1], in.Proof[1]) {
		t.Fatalf("proof mismatch after decode")
	}
}
