package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTitleSegment(t *testing.T) {
	t.Parallel()
	require.Equal(t, " titled Nickel Rush", titleSegment("Nickel Rush"))
	require.Equal(t, " titled Nickel Rush", titleSegment("  Nickel Rush "))
	require.Equal(t, "", titleSegment(""))
	require.Equal(t, "", titleSegment("   "))
}

func TestPromptsEmbedTitle(t *testing.T) {
	t.Parallel()
	initial, err := buildInitialPrompt("chunk body", "Nickel Rush", 400)
	require.NoError(t, err)
	require.Contains(t, initial, "from an article titled Nickel Rush.")
	require.Contains(t, initial, "between 200 and 400 words")
	require.True(t, strings.HasSuffix(initial, "Passage:\nchunk body\n\nSummary:\n"))

	continuation, err := buildContinuationPrompt("next body", "* previous", 63, "Nickel Rush", 400)
	require.NoError(t, err)
	require.Contains(t, continuation, "of an article titled Nickel Rush.")
	require.Contains(t, continuation, "Use roughly 63% of the words")
	require.Contains(t, continuation, "Previous passage summary:\n* previous\n\nNext passage:\nnext body\n")

	final, err := buildFinalPrompt("* a\n* b", "Nickel Rush", 400)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(final, "Write me a short article titled Nickel Rush incorporating"))
	require.Contains(t, final, "* a\n* b")
	require.Contains(t, final, "between 100 and 300 words")
	require.Contains(t, final, "Do not include a conclusion paragraph and do not repeat points.")
}

func TestPromptsWithoutTitle(t *testing.T) {
	t.Parallel()
	initial, err := buildInitialPrompt("body", "", 400)
	require.NoError(t, err)
	require.Contains(t, initial, "passages from an article. Provide")

	final, err := buildFinalPrompt("* a", "", 400)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(final, "Write me a short article incorporating"))
}

func TestPreviousChunkPercentage(t *testing.T) {
	tests := []struct {
		name       string
		soFar      int
		chunkWords int
		want       int
	}{
		{name: "even split", soFar: 500, chunkWords: 500, want: 50},
		{name: "rounds half up", soFar: 1, chunkWords: 7, want: 13},
		{name: "floored at two", soFar: 1, chunkWords: 1000, want: 2},
		{name: "nothing summarized yet", soFar: 0, chunkWords: 300, want: 2},
		{name: "capped below hundred", soFar: 100000, chunkWords: 1, want: 99},
		{name: "degenerate totals", soFar: 0, chunkWords: 0, want: 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, previousChunkPercentage(tt.soFar, tt.chunkWords))
		})
	}
}

func TestPreviousChunkPercentageBounds(t *testing.T) {
	t.Parallel()
	for soFar := 0; soFar < 3000; soFar += 37 {
		for chunk := 1; chunk < 3000; chunk += 53 {
			pct := previousChunkPercentage(soFar, chunk)
			require.GreaterOrEqual(t, pct, 2)
			require.Less(t, pct, 100)
		}
	}
}

func TestFinalLengthWordsStrictlyShorter(t *testing.T) {
	t.Parallel()
	for _, words := range []int{2, 3, 10, 133, 400, 1000} {
		got := finalLengthWords(words)
		require.Less(t, got, words)
		require.Positive(t, got)
	}
	require.Equal(t, 300, finalLengthWords(400))
}

func TestContinuationOverheadCountsTemplate(t *testing.T) {
	t.Parallel()
	require.Equal(t, len(strings.Fields(continuationPromptText)), continuationOverheadWords)
	require.Greater(t, continuationOverheadWords, 150)
}
