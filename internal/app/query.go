package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"onchainavalon/internal/avalon"
	"onchainavalon/internal/commit"
)

// gameView is the public projection of a game. Individual quest cards and
// per-player knowledge are withheld; resolved quests expose their fail count.
type gameView struct {
	Game       *avalon.Game `json:"game"`
	Leader     string       `json:"leader"`
	QuestFails []int        `json:"questFails"`
}

type statusView struct {
	GameID           uint64       `json:"gameId"`
	Phase            avalon.Phase `json:"phase"`
	Terminal         bool         `json:"terminal"`
	Winner           string       `json:"winner,omitempty"`
	CurrentQuest     uint8        `json:"currentQuest"`
	SuccessfulQuests uint8        `json:"successfulQuests"`
	FailedQuests     uint8        `json:"failedQuests"`
	Leader           string       `json:"leader"`
	LastActionAt     int64        `json:"lastActionAt"`
	StallDeadline    int64        `json:"stallDeadline,omitempty"`
}

type playerView struct {
	GameID             uint64           `json:"gameId"`
	Identity           string           `json:"identity"`
	Index              int              `json:"index"`
	Role               avalon.Role      `json:"role"`
	Alignment          avalon.Alignment `json:"alignment"`
	Ready              bool             `json:"ready"`
	Known              []string         `json:"known"`
	TeamVotesCast      uint8            `json:"teamVotesCast"`
	QuestsParticipated uint8            `json:"questsParticipated"`
	IsLeader           bool             `json:"isLeader"`
}

func publicGame(g *avalon.Game) gameView {
	out := g.Clone()
	fails := make([]int, 0, avalon.NumQuests)
	for i := range out.Quests {
		q := &out.Quests[i]
		if q.Outcome != avalon.OutcomeUnset {
			fails = append(fails, q.FailCount())
		}
		q.QuestVotes = [avalon.MaxPlayers]avalon.QuestVote{}
	}
	for _, p := range out.Roster() {
		p.Known = nil
	}
	return gameView{Game: out, Leader: out.Leader(), QuestFails: fails}
}

func (a *AvalonApp) Query(ctx context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Paths:
	// - /games
	// - /game/<id>
	// - /game/<id>/status
	// - /game/<id>/player/<identity>
	// - /game/<id>/events
	// - /account/<addr>
	path := strings.TrimSpace(req.Path)
	switch {
	case path == "/games":
		return a.queryOK(a.st.GameIDs())
	case strings.HasPrefix(path, "/account/"):
		addr := strings.TrimPrefix(path, "/account/")
		pub := a.st.AccountKeys[addr]
		out := map[string]any{
			"addr":       addr,
			"registered": len(pub) > 0,
			"nonce":      a.st.NonceMax[addr],
		}
		if len(pub) > 0 {
			out["pubKey"] = commit.FormatHex(pub)
		}
		return a.queryOK(out)
	case strings.HasPrefix(path, "/game/"):
		return a.queryGame(ctx, strings.Split(strings.TrimPrefix(path, "/game/"), "/"))
	default:
		return a.queryErr(avalon.ErrInvalidRequest.Wrapf("unknown query path %q", path)), nil
	}
}

func (a *AvalonApp) queryGame(ctx context.Context, parts []string) (*abci.QueryResponse, error) {
	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return a.queryErr(avalon.ErrInvalidRequest.Wrapf("invalid game id %q", parts[0])), nil
	}
	g := a.st.Game(id)
	if g == nil {
		return a.queryErr(avalon.ErrGameNotFound.Wrapf("game %d", id)), nil
	}

	switch {
	case len(parts) == 1:
		return a.queryOK(publicGame(g))

	case len(parts) == 2 && parts[1] == "status":
		v := statusView{
			GameID:           g.ID,
			Phase:            g.Phase,
			Terminal:         g.IsTerminal(),
			CurrentQuest:     g.CurrentQuest,
			SuccessfulQuests: g.SuccessfulQuests,
			FailedQuests:     g.FailedQuests,
			Leader:           g.Leader(),
			LastActionAt:     g.LastActionAt,
		}
		if w, ok := g.WinnerAlignment(); ok {
			v.Winner = w.String()
		}
		if d, err := stallDeadline(g); err == nil {
			v.StallDeadline = d
		}
		return a.queryOK(v)

	case len(parts) == 3 && parts[1] == "player":
		idx := g.PlayerIndex(parts[2])
		if idx < 0 {
			return a.queryErr(avalon.ErrPlayerNotInGame.Wrapf("%q", parts[2])), nil
		}
		p := g.Players[idx]
		return a.queryOK(playerView{
			GameID:             g.ID,
			Identity:           p.Identity,
			Index:              idx,
			Role:               p.Role,
			Alignment:          p.Alignment,
			Ready:              p.Ready,
			Known:              p.Known,
			TeamVotesCast:      p.TeamVotesCast,
			QuestsParticipated: p.QuestsParticipated,
			IsLeader:           idx == int(g.LeaderIndex),
		})

	case len(parts) == 2 && parts[1] == "events":
		if a.index == nil {
			return a.queryErr(ErrIndexerMissing), nil
		}
		evs, err := a.index.GameEvents(ctx, id, 0)
		if err != nil {
			a.logger.Error("event index query failed", "gameId", id, "err", err)
			return a.queryErr(ErrInternal.Wrap(err.Error())), nil
		}
		return a.queryOK(evs)

	default:
		return a.queryErr(avalon.ErrInvalidRequest.Wrap("unknown game query")), nil
	}
}

func (a *AvalonApp) queryOK(v any) (*abci.QueryResponse, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return a.queryErr(ErrInternal.Wrap(err.Error())), nil
	}
	return &abci.QueryResponse{Code: 0, Value: b, Height: a.st.Height}, nil
}

func (a *AvalonApp) queryErr(err error) *abci.QueryResponse {
	codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
	return &abci.QueryResponse{Code: code, Codespace: codespace, Log: logMsg, Height: a.st.Height}
}
