package avalon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuestTable(t *testing.T) {
	cases := map[uint8]struct {
		sizes, fails [NumQuests]uint8
	}{
		5:  {[NumQuests]uint8{2, 3, 2, 3, 3}, [NumQuests]uint8{1, 1, 1, 1, 1}},
		6:  {[NumQuests]uint8{2, 3, 4, 3, 4}, [NumQuests]uint8{1, 1, 1, 1, 1}},
		7:  {[NumQuests]uint8{2, 3, 3, 4, 4}, [NumQuests]uint8{1, 1, 1, 2, 1}},
		8:  {[NumQuests]uint8{3, 4, 4, 5, 5}, [NumQuests]uint8{1, 1, 1, 2, 1}},
		9:  {[NumQuests]uint8{3, 4, 4, 5, 5}, [NumQuests]uint8{1, 1, 1, 2, 1}},
		10: {[NumQuests]uint8{3, 4, 4, 5, 5}, [NumQuests]uint8{1, 1, 1, 2, 1}},
	}
	for n, want := range cases {
		sizes, fails, err := QuestTable(n)
		require.NoError(t, err)
		require.Equal(t, want.sizes, sizes, "sizes for %d", n)
		require.Equal(t, want.fails, fails, "fails for %d", n)
		for _, s := range sizes {
			require.LessOrEqual(t, s, n)
		}
	}

	for _, n := range []uint8{0, 1, 4, 11, 255} {
		_, _, err := QuestTable(n)
		require.ErrorIs(t, err, ErrUnsupportedPlayerCount)
		require.Equal(t, KindConfiguration, KindOf(err))
	}
}

func TestQuestPasses(t *testing.T) {
	require.True(t, questPasses(0, 1))
	require.False(t, questPasses(1, 1))
	require.True(t, questPasses(1, 2))
	require.False(t, questPasses(2, 2))
	require.False(t, questPasses(3, 2))
}

func TestQuest_FailCount(t *testing.T) {
	q := Quest{}
	q.QuestVotes[0] = QuestVoteFail
	q.QuestVotes[3] = QuestVoteSuccess
	q.QuestVotes[9] = QuestVoteFail
	require.Equal(t, 2, q.FailCount())
}
