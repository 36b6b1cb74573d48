package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/cometbft/cometbft/libs/log"

	"onchainavalon/internal/avalon"
	"onchainavalon/internal/codec"
	"onchainavalon/internal/indexer"
	"onchainavalon/internal/state"
)

const (
	AppVersion uint64 = 1
)

// EventIndex receives the events of each committed block and serves them back
// per game.
type EventIndex interface {
	Record(ctx context.Context, events []indexer.Event) error
	GameEvents(ctx context.Context, gameID uint64, limit int) ([]indexer.Event, error)
	LastHeight(ctx context.Context) (int64, error)
}

type AvalonApp struct {
	*abci.BaseApplication

	home   string
	logger log.Logger
	index  EventIndex

	mu       sync.Mutex
	st       *state.State
	lastHash []byte
	// pending holds the events of the block being finalized until Commit.
	pending []indexer.Event
}

type Option func(*AvalonApp)

func WithLogger(logger log.Logger) Option {
	return func(a *AvalonApp) {
		if logger != nil {
			a.logger = logger.With("module", "avalon")
		}
	}
}

// WithEventIndex enables the /game/<id>/events query and feeds idx on Commit.
func WithEventIndex(idx EventIndex) Option {
	return func(a *AvalonApp) { a.index = idx }
}

func New(home string, opts ...Option) (*AvalonApp, error) {
	appHome := filepath.Join(home, "app")
	st, err := state.Load(appHome)
	if err != nil {
		return nil, err
	}
	a := &AvalonApp{
		BaseApplication: abci.NewBaseApplication(),
		home:            home,
		logger:          log.NewNopLogger(),
		st:              st,
		lastHash:        st.AppHash(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *AvalonApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "Avalon arbiter",
		Version:          "v1",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

// CheckTx only validates structure. Signatures and game rules are checked in
// FinalizeBlock.
func (a *AvalonApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	env, err := codec.DecodeTxEnvelope(req.Tx)
	if err != nil {
		err = ErrTxDecode.Wrap(err.Error())
	} else if !knownTxType(env.Type) {
		err = ErrUnknownTxType.Wrap(env.Type)
	}
	if err != nil {
		codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
		return &abci.CheckTxResponse{Code: code, Codespace: codespace, Log: logMsg}, nil
	}
	return &abci.CheckTxResponse{Code: 0}, nil
}

func (a *AvalonApp) InitChain(_ context.Context, _ *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	return &abci.InitChainResponse{}, nil
}

func (a *AvalonApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.st.Height = req.Height
	nowUnix := req.Time.Unix()

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for i, txBytes := range req.Txs {
		res := a.deliverTx(txBytes, req.Height, nowUnix)
		if res.Code == 0 {
			a.queueEvents(req.Height, i, nowUnix, res.Events)
		}
		txResults = append(txResults, res)
	}

	a.lastHash = a.st.AppHash()

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.lastHash,
	}, nil
}

func (a *AvalonApp) Commit(ctx context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	appHome := filepath.Join(a.home, "app")
	if err := a.st.Save(appHome); err != nil {
		a.logger.Error("failed to persist state", "height", a.st.Height, "err", err)
		// Returning the error halts the node loudly.
		return nil, err
	}

	if a.index != nil && len(a.pending) > 0 {
		if err := a.index.Record(ctx, a.pending); err != nil {
			a.logger.Error("failed to index events", "height", a.st.Height, "events", len(a.pending), "err", err)
		}
	}
	a.pending = nil
	return &abci.CommitResponse{}, nil
}

// IndexLag returns how many committed heights lie past the last height the
// event index recorded. Blocks without game events are never recorded, so
// the value is an upper bound. It is 0 without an index.
func (a *AvalonApp) IndexLag(ctx context.Context) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.index == nil {
		return 0, nil
	}
	last, err := a.index.LastHeight(ctx)
	if err != nil {
		return 0, err
	}
	if last >= a.st.Height {
		return 0, nil
	}
	return a.st.Height - last, nil
}

func (a *AvalonApp) queueEvents(height int64, txIndex int, nowUnix int64, events []abci.Event) {
	if a.index == nil {
		return
	}
	for i, ev := range events {
		attrs := make(map[string]string, len(ev.Attributes))
		for _, kv := range ev.Attributes {
			attrs[kv.Key] = kv.Value
		}
		gameID, err := strconv.ParseUint(attrs["gameId"], 10, 64)
		if err != nil || gameID == 0 {
			continue
		}
		a.pending = append(a.pending, indexer.Event{
			GameID:     gameID,
			Height:     height,
			TxIndex:    txIndex,
			EventIndex: i,
			BlockTime:  nowUnix,
			Type:       ev.Type,
			Attributes: attrs,
		})
	}
}

func knownTxType(typ string) bool {
	switch typ {
	case "auth/register_account",
		"avalon/create_game",
		"avalon/join",
		"avalon/start",
		"avalon/reveal_role",
		"avalon/propose_team",
		"avalon/vote_team",
		"avalon/quest_vote",
		"avalon/assassinate",
		"avalon/advance_phase":
		return true
	}
	return false
}

// deliverTx executes one tx against a staged copy of state and commits the
// copy only on success, so a rejected tx consumes no nonce and leaves no
// partial writes.
func (a *AvalonApp) deliverTx(txBytes []byte, height int64, nowUnix int64) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return a.reject("", ErrTxDecode.Wrap(err.Error()))
	}

	staged, err := a.st.Clone()
	if err != nil {
		return a.reject(env.Type, ErrInternal.Wrap(err.Error()))
	}
	res, err := a.execTx(staged, env, nowUnix)
	if err != nil {
		return a.reject(env.Type, err)
	}
	a.st = staged
	return res
}

func (a *AvalonApp) reject(typ string, err error) *abci.ExecTxResult {
	codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
	kind := string(kindOf(err))
	if kind == "" {
		kind = "internal"
	}
	a.logger.Debug("rejected tx", "type", typ, "kind", kind, "codespace", codespace, "code", code, "err", logMsg)
	return &abci.ExecTxResult{
		Code:      code,
		Codespace: codespace,
		Log:       fmt.Sprintf("kind=%s: %s", kind, logMsg),
	}
}

func decodeValue(env codec.TxEnvelope, v any) error {
	if err := json.Unmarshal(env.Value, v); err != nil {
		return ErrTxDecode.Wrapf("bad %s value: %v", env.Type, err)
	}
	return nil
}

func (a *AvalonApp) execTx(st *state.State, env codec.TxEnvelope, nowUnix int64) (*abci.ExecTxResult, error) {
	switch env.Type {
	case "auth/register_account":
		var msg codec.AuthRegisterAccountTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := requireRegisterAccountAuth(env, msg); err != nil {
			return nil, err
		}
		if _, ok := st.AccountKeys[msg.Account]; ok {
			return nil, ErrAccountExists.Wrapf("%q", msg.Account)
		}
		if err := consumeNonce(st, env); err != nil {
			return nil, err
		}
		st.AccountKeys[msg.Account] = append([]byte(nil), msg.PubKey...)
		return okEvent("AccountRegistered", map[string]string{
			"account": msg.Account,
		}), nil

	case "avalon/create_game":
		var msg codec.AvalonCreateGameTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := a.authorize(st, env, msg.Player); err != nil {
			return nil, err
		}
		if msg.StallTimeoutSecs > maxStallTimeoutSecs {
			return nil, avalon.ErrInvalidRequest.Wrapf("stallTimeoutSecs %d exceeds %d", msg.StallTimeoutSecs, maxStallTimeoutSecs)
		}
		id := st.NextGameID
		g, err := avalon.Apply(nil, avalon.Action{
			Kind:   avalon.ActionCreate,
			Actor:  msg.Player,
			Now:    nowUnix,
			GameID: id,
			Params: avalon.GameParams{StallTimeoutSecs: msg.StallTimeoutSecs},
		})
		if err != nil {
			return nil, err
		}
		st.Games[id] = g
		st.NextGameID++
		return okEvent("GameCreated", map[string]string{
			"gameId":           u64(id),
			"creator":          msg.Player,
			"stallTimeoutSecs": u64(msg.StallTimeoutSecs),
		}), nil

	case "avalon/join":
		var msg codec.AvalonJoinTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.applyGameTx(st, env, msg.GameID, avalon.Action{Kind: avalon.ActionJoin, Actor: msg.Player, Now: nowUnix})

	case "avalon/start":
		var msg codec.AvalonStartTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.applyGameTx(st, env, msg.GameID, avalon.Action{
			Kind:       avalon.ActionStart,
			Actor:      msg.Player,
			Now:        nowUnix,
			Seed:       msg.Seed,
			Commitment: msg.Commitment,
		})

	case "avalon/reveal_role":
		var msg codec.AvalonRevealRoleTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		role, err := avalon.ParseRole(msg.Role)
		if err != nil {
			return nil, avalon.ErrInvalidRequest.Wrap(err.Error())
		}
		alignment, err := avalon.ParseAlignment(msg.Alignment)
		if err != nil {
			return nil, avalon.ErrInvalidRequest.Wrap(err.Error())
		}
		return a.applyGameTx(st, env, msg.GameID, avalon.Action{
			Kind:      avalon.ActionRevealRole,
			Actor:     msg.Player,
			Now:       nowUnix,
			Role:      role,
			Alignment: alignment,
			Proof:     msg.Proof,
		})

	case "avalon/propose_team":
		var msg codec.AvalonProposeTeamTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.applyGameTx(st, env, msg.GameID, avalon.Action{Kind: avalon.ActionProposeTeam, Actor: msg.Player, Now: nowUnix, Team: msg.Team})

	case "avalon/vote_team":
		var msg codec.AvalonVoteTeamTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.applyGameTx(st, env, msg.GameID, avalon.Action{Kind: avalon.ActionVoteTeam, Actor: msg.Player, Now: nowUnix, Approve: msg.Approve})

	case "avalon/quest_vote":
		var msg codec.AvalonQuestVoteTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.applyGameTx(st, env, msg.GameID, avalon.Action{Kind: avalon.ActionQuestVote, Actor: msg.Player, Now: nowUnix, Success: msg.Success})

	case "avalon/assassinate":
		var msg codec.AvalonAssassinateTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.applyGameTx(st, env, msg.GameID, avalon.Action{Kind: avalon.ActionAssassinate, Actor: msg.Player, Now: nowUnix, Target: msg.Target})

	case "avalon/advance_phase":
		var msg codec.AvalonAdvancePhaseTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.applyGameTx(st, env, msg.GameID, avalon.Action{Kind: avalon.ActionAdvancePhase, Actor: msg.Player, Now: nowUnix})

	default:
		return nil, ErrUnknownTxType.Wrap(env.Type)
	}
}

// authorize verifies that player signed env and consumes the envelope nonce.
func (a *AvalonApp) authorize(st *state.State, env codec.TxEnvelope, player string) error {
	if err := requireAccountAuth(st, env, player); err != nil {
		return err
	}
	return consumeNonce(st, env)
}

// applyGameTx runs one engine action on a game and stores the result.
func (a *AvalonApp) applyGameTx(st *state.State, env codec.TxEnvelope, gameID uint64, act avalon.Action) (*abci.ExecTxResult, error) {
	if err := a.authorize(st, env, act.Actor); err != nil {
		return nil, err
	}
	g := st.Game(gameID)
	if g == nil {
		return nil, avalon.ErrGameNotFound.Wrapf("game %d", gameID)
	}
	if act.Kind == avalon.ActionAdvancePhase {
		if err := requireStalled(g, act.Now); err != nil {
			return nil, err
		}
	}

	next, err := avalon.Apply(g, act)
	if err != nil {
		return nil, err
	}
	st.Games[gameID] = next

	if winner, ok := next.WinnerAlignment(); ok && !g.IsTerminal() {
		a.logger.Info("game ended", "gameId", gameID, "winner", winner.String(),
			"successfulQuests", next.SuccessfulQuests, "failedQuests", next.FailedQuests)
	}
	return &abci.ExecTxResult{Code: 0, Events: transitionEvents(g, next, act)}, nil
}
