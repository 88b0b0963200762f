package summarizer

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func words(n int, word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func testProfile(maxTokens int) ModelProfile {
	return ModelProfile{Name: "test", MaxTokens: maxTokens, TokensPerWord: 4.0 / 3.0}
}

func TestMaxChunkWords(t *testing.T) {
	t.Parallel()
	profile := testProfile(4000)
	want := (4000 - float64(continuationOverheadWords+800)*(4.0/3.0)) / (4.0 / 3.0)
	require.InDelta(t, want, MaxChunkWords(400, profile), 1e-9)
	require.Greater(t, MaxChunkWords(400, profile), 75.0)
	require.LessOrEqual(t, MaxChunkWords(5000, profile), 0.0)
}

func TestChunksSingleChunkForShortArticle(t *testing.T) {
	t.Parallel()
	text := words(20, "alpha") + "\n" + words(30, "beta") + "\n\n  \n" + words(25, "gamma")

	chunks := slices.Collect(Chunks(text, 400, testProfile(4000)))

	require.Equal(t, []string{words(20, "alpha") + "\n" + words(30, "beta") + "\n" + words(25, "gamma")}, chunks)
}

func TestChunksRespectBudget(t *testing.T) {
	t.Parallel()
	profile := testProfile(2400)
	budget := MaxChunkWords(400, profile)
	require.Greater(t, budget, 100.0)

	var paragraphs []string
	for i := 0; i < 40; i++ {
		paragraphs = append(paragraphs, words(15+i%7*5, "w"))
	}
	chunks := slices.Collect(Chunks(strings.Join(paragraphs, "\n"), 400, profile))

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		require.LessOrEqual(t, float64(wordCount(chunk)), budget)
	}
}

func TestChunksPartitionParagraphsInOrder(t *testing.T) {
	t.Parallel()
	var paragraphs []string
	for i := 0; i < 25; i++ {
		paragraphs = append(paragraphs, strings.TrimSpace(strings.Repeat("p"+string(rune('a'+i))+" ", 10+i*3)))
	}
	text := "\n" + strings.Join(paragraphs, "\n\n") + "\n"

	var got []string
	for chunk := range Chunks(text, 400, testProfile(1900)) {
		got = append(got, strings.Split(chunk, "\n")...)
	}

	require.Equal(t, paragraphs, got)
}

func TestChunksOversizedParagraphStandsAlone(t *testing.T) {
	t.Parallel()
	profile := testProfile(2000)
	budget := int(MaxChunkWords(400, profile))
	require.Greater(t, budget, 10)

	big := words(budget+50, "huge")
	text := words(5, "before") + "\n" + big + "\n" + words(5, "after")

	chunks := slices.Collect(Chunks(text, 400, profile))

	require.Equal(t, []string{words(5, "before"), big, words(5, "after")}, chunks)
}

func TestChunksNonPositiveBudgetYieldsEveryParagraph(t *testing.T) {
	t.Parallel()
	text := "one two\nthree four\nfive"

	chunks := slices.Collect(Chunks(text, 10000, testProfile(4000)))

	require.Equal(t, []string{"one two", "three four", "five"}, chunks)
}

func TestChunksEmptyText(t *testing.T) {
	t.Parallel()
	require.Empty(t, slices.Collect(Chunks(" \n\n\t\n", 400, testProfile(4000))))
}

func TestChunksStopsWhenConsumerBreaks(t *testing.T) {
	t.Parallel()
	seen := 0
	for range Chunks("a\nb\nc", 10000, testProfile(4000)) {
		seen++
		break
	}
	require.Equal(t, 1, seen)
}
