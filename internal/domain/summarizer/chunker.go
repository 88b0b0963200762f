package summarizer

import (
	"iter"
	"strings"
)

// MaxChunkWords returns the per-chunk word budget for a model once the continuation
// prompt and twice the summary length (the embedded previous summary plus the new one)
// are reserved. It can be zero or negative when summaryWords is too large for the model.
func MaxChunkWords(summaryWords int, profile ModelProfile) float64 {
	rate := profile.rate()
	reservedWords := float64(continuationOverheadWords + 2*summaryWords)
	return (float64(profile.MaxTokens) - reservedWords*rate) / rate
}

// Chunks splits text into line-delimited paragraphs and greedily packs them into chunks
// that stay within MaxChunkWords. Paragraphs are never split, so a single paragraph
// larger than the budget is yielded alone. Empty paragraphs are dropped.
func Chunks(text string, summaryWords int, profile ModelProfile) iter.Seq[string] {
	maxWords := MaxChunkWords(summaryWords, profile)
	return func(yield func(string) bool) {
		var (
			current      []string
			currentWords int
		)
		for _, line := range strings.Split(text, "\n") {
			paragraph := strings.TrimSpace(line)
			if paragraph == "" {
				continue
			}
			words := wordCount(paragraph)
			if len(current) > 0 && float64(currentWords+words) > maxWords {
				if !yield(strings.Join(current, "\n")) {
					return
				}
				current = current[:0]
				currentWords = 0
			}
			current = append(current, paragraph)
			currentWords += words
		}
		if len(current) > 0 {
			yield(strings.Join(current, "\n"))
		}
	}
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
