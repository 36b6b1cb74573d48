package app

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"

	"onchainavalon/internal/assign"
	"onchainavalon/internal/codec"
)

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func txBytes(t *testing.T, typ string, value any) []byte {
	t.Helper()
	return mustMarshal(t, map[string]any{
		"type":  typ,
		"value": value,
	})
}

var testNonce atomic.Uint64

func testEd25519Key(id string) (ed25519.PublicKey, ed25519.PrivateKey) {
	seed := sha256.Sum256([]byte("avalon-test-key/" + id))
	priv := ed25519.NewKeyFromSeed(seed[:])
	return priv.Public().(ed25519.PublicKey), priv
}

// txBytesSigned signs value as signer with a fresh, increasing nonce.
func txBytesSigned(t *testing.T, typ string, value any, signer string) []byte {
	t.Helper()
	valueBytes := mustMarshal(t, value)
	nonce := strconv.FormatUint(testNonce.Add(1), 10)
	_, priv := testEd25519Key(signer)
	sig := ed25519.Sign(priv, txAuthSignBytesV0(typ, valueBytes, nonce, signer))
	return mustMarshal(t, codec.TxEnvelope{
		Type:   typ,
		Value:  valueBytes,
		Nonce:  nonce,
		Signer: signer,
		Sig:    sig,
	})
}

func findEvent(events []abci.Event, typ string) *abci.Event {
	for i := range events {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	return nil
}

func attr(ev *abci.Event, key string) string {
	if ev == nil {
		return ""
	}
	for _, a := range ev.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

func parseU64(t *testing.T, s string) uint64 {
	t.Helper()
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		t.Fatalf("parse uint64 %q: %v", s, err)
	}
	return n
}

func newTestApp(t *testing.T, opts ...Option) *AvalonApp {
	t.Helper()
	a, err := New(t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func mustOk(t *testing.T, res *abci.ExecTxResult) *abci.ExecTxResult {
	t.Helper()
	if res.Code != 0 {
		t.Fatalf("expected ok, got code=%d codespace=%q log=%q", res.Code, res.Codespace, res.Log)
	}
	return res
}

func mustFail(t *testing.T, res *abci.ExecTxResult, codespace string, code uint32) *abci.ExecTxResult {
	t.Helper()
	if res.Code == 0 {
		t.Fatalf("expected rejection %s/%d, got ok", codespace, code)
	}
	if res.Codespace != codespace || res.Code != code {
		t.Fatalf("expected %s/%d, got %s/%d log=%q", codespace, code, res.Codespace, res.Code, res.Log)
	}
	return res
}

func registerTestAccount(t *testing.T, a *AvalonApp, height int64, account string) {
	t.Helper()
	pub, _ := testEd25519Key(account)
	mustOk(t, a.deliverTx(txBytesSigned(t, "auth/register_account", map[string]any{
		"account": account,
		"pubKey":  []byte(pub),
	}, account), height, 0))
}

func gameTx(t *testing.T, a *AvalonApp, typ, player string, gameID uint64, extra map[string]any, now int64) *abci.ExecTxResult {
	t.Helper()
	value := map[string]any{"player": player, "gameId": gameID}
	for k, v := range extra {
		value[k] = v
	}
	return a.deliverTx(txBytesSigned(t, typ, value, player), 1, now)
}

// testTable is a started game whose roles were dealt by assign.Assign.
type testTable struct {
	a       *AvalonApp
	gameID  uint64
	players []string
	asg     *assign.Assignment
	now     int64
}

func (tt *testTable) tx(t *testing.T, typ, player string, extra map[string]any) *abci.ExecTxResult {
	t.Helper()
	tt.now++
	return gameTx(t, tt.a, typ, player, tt.gameID, extra, tt.now)
}

func (tt *testTable) seatWith(t *testing.T, pred func(s assign.Seat) bool) assign.Seat {
	t.Helper()
	for _, s := range tt.asg.Seats {
		if pred(s) {
			return s
		}
	}
	t.Fatalf("no seat matches")
	return assign.Seat{}
}

func (tt *testTable) revealAll(t *testing.T) {
	t.Helper()
	tt.revealFirst(t, len(tt.asg.Seats))
}

// revealFirst reveals the first n seats in roster order.
func (tt *testTable) revealFirst(t *testing.T, n int) {
	t.Helper()
	for _, s := range tt.asg.Seats[:n] {
		mustOk(t, tt.tx(t, "avalon/reveal_role", s.Identity, map[string]any{
			"role":      s.Role.String(),
			"alignment": s.Alignment.String(),
			"proof":     s.Proof,
		}))
	}
}

func setupStartedGame(t *testing.T, a *AvalonApp, n int, stallTimeoutSecs uint64) *testTable {
	t.Helper()
	players := make([]string, n)
	for i := range players {
		players[i] = "p" + strconv.Itoa(i+1)
		registerTestAccount(t, a, 1, players[i])
	}

	createRes := mustOk(t, a.deliverTx(txBytesSigned(t, "avalon/create_game", map[string]any{
		"player":           players[0],
		"stallTimeoutSecs": stallTimeoutSecs,
	}, players[0]), 1, 100))
	gameID := parseU64(t, attr(findEvent(createRes.Events, "GameCreated"), "gameId"))

	tt := &testTable{a: a, gameID: gameID, players: players, now: 100}
	for _, p := range players {
		mustOk(t, tt.tx(t, "avalon/join", p, nil))
	}

	seed := bytes.Repeat([]byte{0x3c}, 32)
	asg, err := assign.Assign(players, seed)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	tt.asg = asg
	mustOk(t, tt.tx(t, "avalon/start", players[0], map[string]any{
		"seed":       asg.Seed,
		"commitment": asg.Root,
	}))
	return tt
}
