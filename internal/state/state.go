package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"onchainavalon/internal/avalon"
)

type State struct {
	Height int64 `json:"height"`

	NextGameID  uint64                  `json:"nextGameId"`
	AccountKeys map[string][]byte       `json:"accountKeys,omitempty"` // addr -> ed25519 pubkey (32 bytes)
	NonceMax    map[string]uint64       `json:"nonceMax,omitempty"`    // signer -> last accepted tx.nonce (u64), for replay protection
	Games       map[uint64]*avalon.Game `json:"games"`
}

func NewState() *State {
	return &State{
		Height:      0,
		NextGameID:  1,
		AccountKeys: map[string][]byte{},
		NonceMax:    map[string]uint64{},
		Games:       map[uint64]*avalon.Game{},
	}
}

func (s *State) normalize() {
	if s.AccountKeys == nil {
		s.AccountKeys = map[string][]byte{}
	}
	if s.NonceMax == nil {
		s.NonceMax = map[string]uint64{}
	}
	if s.Games == nil {
		s.Games = map[uint64]*avalon.Game{}
	}
	if s.NextGameID == 0 {
		s.NextGameID = 1
	}
}

func Load(home string) (*State, error) {
	path := filepath.Join(home, "state.json")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	st.normalize()
	return &st, nil
}

func (s *State) Save(home string) error {
	if err := os.MkdirAll(home, 0o755); err != nil {
		return fmt.Errorf("mkdir home: %w", err)
	}
	path := filepath.Join(home, "state.json")
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	// state.json is replaced atomically.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Clone returns a deep copy of state suitable for staged tx execution.
func (s *State) Clone() (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("state is nil")
	}
	out := &State{
		Height:      s.Height,
		NextGameID:  s.NextGameID,
		AccountKeys: make(map[string][]byte, len(s.AccountKeys)),
		NonceMax:    make(map[string]uint64, len(s.NonceMax)),
		Games:       make(map[uint64]*avalon.Game, len(s.Games)),
	}
	for k, v := range s.AccountKeys {
		out.AccountKeys[k] = append([]byte(nil), v...)
	}
	for k, v := range s.NonceMax {
		out.NonceMax[k] = v
	}
	for id, g := range s.Games {
		out.Games[id] = g.Clone()
	}
	out.normalize()
	return out, nil
}

// Game returns the game with id, or nil.
func (s *State) Game(id uint64) *avalon.Game {
	return s.Games[id]
}

// GameIDs returns every game id in ascending order.
func (s *State) GameIDs() []uint64 {
	ids := make([]uint64, 0, len(s.Games))
	for id := range s.Games {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *State) AppHash() []byte {
	// encoding/json does NOT guarantee map key order, so maps are normalized
	// into sorted slices before hashing.
	type accountKeyKV struct {
		Addr   string `json:"addr"`
		PubKey []byte `json:"pubKey"`
	}
	type nonceKV struct {
		Signer string `json:"signer"`
		Nonce  uint64 `json:"nonce"`
	}
	type gameKV struct {
		ID   uint64       `json:"id"`
		Game *avalon.Game `json:"game"`
	}

	accountKeys := make([]accountKeyKV, 0, len(s.AccountKeys))
	for k, v := range s.AccountKeys {
		accountKeys = append(accountKeys, accountKeyKV{Addr: k, PubKey: v})
	}
	sort.Slice(accountKeys, func(i, j int) bool { return accountKeys[i].Addr < accountKeys[j].Addr })

	nonces := make([]nonceKV, 0, len(s.NonceMax))
	for k, v := range s.NonceMax {
		nonces = append(nonces, nonceKV{Signer: k, Nonce: v})
	}
	sort.Slice(nonces, func(i, j int) bool { return nonces[i].Signer < nonces[j].Signer })

	games := make([]gameKV, 0, len(s.Games))
	for _, id := range s.GameIDs() {
		games = append(games, gameKV{ID: id, Game: s.Games[id]})
	}

	normalized := struct {
		Height      int64          `json:"height"`
		NextGameID  uint64         `json:"nextGameId"`
		AccountKeys []accountKeyKV `json:"accountKeys,omitempty"`
		NonceMax    []nonceKV      `json:"nonceMax,omitempty"`
		Games       []gameKV       `json:"games"`
	}{
		Height:      s.Height,
		NextGameID:  s.NextGameID,
		AccountKeys: accountKeys,
		NonceMax:    nonces,
		Games:       games,
	}

	b, _ := json.Marshal(normalized)
	sum := sha256.Sum256(b)
	return sum[:]
}
