package summarizer

import (
	"fmt"
	"math"
	"strings"
	"text/template"
)

const initialPromptText = `Help me summarize the following passages from an article{{.Title}}. Provide a brief summary of the main points, ideas and tones as bullet points. Make it between {{.MinWords}} and {{.MaxWords}} words.

Here is an example for reference:

Passage:

AFTER DAYBREAK, THE village of Labota begins to shudder with the roar of motorbikes. Thousands of riders in canary yellow helmets and dust-stained workwear pack its ramshackle, pothole-ridden main road, in places six or seven lanes wide, as it runs along the coast of Indonesia's Banda Sea. The mass of traffic crawls toward the Indonesia Morowali Industrial Park, better known as IMIP, the world's epicenter for nickel production.

Summary:

* Labota is a busy industrial town on the coast of Indonesia's Banda Sea and home to the Indonesia Morowali Industrial Park (IMIP), the world's epicenter for nickel production.

Passage:
{{.Chunk}}

Summary:
`

const continuationPromptText = `I have a summary of the previous passages of an article{{.Title}}. Help me compose a new summary that includes both the summary of the previous passages and the next passage. Provide a brief summary of the main points, ideas and tones as bullet points. Make it between {{.MinWords}} and {{.MaxWords}} words. Use roughly {{.Percentage}} of the words to summarize the previous passage summary, and the rest for the next passage.

Here is an example for reference:

Previous passage summary:
* Labota is a busy industrial town on the coast of Indonesia's Banda Sea and home to the Indonesia Morowali Industrial Park (IMIP), the world's epicenter for nickel production.

Next passage:

A decade ago, Labota was a fishing village; today it's been subsumed into a sprawling city centered around IMIP, a $15 billion, 3,000-hectare industrial complex containing steelworks, coal power plants, and manganese processors, with its own airport and seaport. Built as a joint venture between Chinese and Indonesian industrial companies, it is at the heart of Indonesia's push to supply the electric vehicle market with nickel, a core component of batteries.

Summary:

* Labota was a fishing village on the coast of Indonesia's Banda Sea that has turned into a busy industrial city over the last decade.
* It is now home to the Indonesia Morowali Industrial Park (IMIP), a $15 billion industrial complex and the world's epicenter for nickel production supplying the electric vehicle market.
* IMIP is a joint venture between Chinese and Indonesian industrial companies.

Previous passage summary:
{{.Previous}}

Next passage:
{{.Chunk}}

Summary:
`

const finalPromptText = `Write me a short article{{.Title}} incorporating the following points:

{{.TalkingPoints}}

Preserve the main points, ideas and tones. Make it between {{.MinWords}} and {{.MaxWords}} words. Do not include a conclusion paragraph and do not repeat points.
`

const minPreviousPercentage = 2

var (
	initialPrompt      = template.Must(template.New("initial").Parse(initialPromptText))
	continuationPrompt = template.Must(template.New("continuation").Parse(continuationPromptText))
	finalPrompt        = template.Must(template.New("final").Parse(finalPromptText))

	// continuationOverheadWords is the raw continuation template size, placeholders included.
	continuationOverheadWords = wordCount(continuationPromptText)
)

type promptData struct {
	Title         string
	MinWords      int
	MaxWords      int
	Percentage    string
	Chunk         string
	Previous      string
	TalkingPoints string
}

func titleSegment(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return " titled " + title
}

func buildInitialPrompt(chunk, title string, summaryWords int) (string, error) {
	return render(initialPrompt, promptData{
		Title:    titleSegment(title),
		MinWords: lowerBound(summaryWords, 200),
		MaxWords: summaryWords,
		Chunk:    chunk,
	})
}

func buildContinuationPrompt(chunk, previous string, percentage int, title string, summaryWords int) (string, error) {
	return render(continuationPrompt, promptData{
		Title:      titleSegment(title),
		MinWords:   lowerBound(summaryWords, 200),
		MaxWords:   summaryWords,
		Percentage: fmt.Sprintf("%d%%", percentage),
		Chunk:      chunk,
		Previous:   previous,
	})
}

func buildFinalPrompt(talkingPoints, title string, summaryWords int) (string, error) {
	target := finalLengthWords(summaryWords)
	return render(finalPrompt, promptData{
		Title:         titleSegment(title),
		MinWords:      lowerBound(target, 100),
		MaxWords:      target,
		TalkingPoints: talkingPoints,
	})
}

func render(tmpl *template.Template, data promptData) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}

// previousChunkPercentage is the share of the new summary that should cover what was
// already summarized. The result always lies in [2, 100).
func previousChunkPercentage(wordsSoFar, chunkWords int) int {
	total := wordsSoFar + chunkWords
	if total <= 0 {
		return minPreviousPercentage
	}
	pct := int(math.Round(100 * float64(wordsSoFar) / float64(total)))
	if pct >= 100 {
		pct = 99
	}
	return max(pct, minPreviousPercentage)
}

// finalLengthWords keeps the narrative strictly shorter than the bullet summary.
func finalLengthWords(summaryWords int) int {
	target := summaryWords * 3 / 4
	if target >= summaryWords {
		target = summaryWords - 1
	}
	return max(target, 1)
}

// lowerBound is the "between X and ..." floor: floor words, or half the ceiling for short targets.
func lowerBound(ceiling, floor int) int {
	if ceiling/2 < floor {
		return max(ceiling/2, 1)
	}
	return floor
}
