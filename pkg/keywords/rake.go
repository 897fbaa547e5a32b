// Package keywords ranks candidate key phrases with the RAKE algorithm
// (Rapid Automatic Keyword Extraction).
package keywords

import (
	"regexp"
	"sort"
	"strings"

	"github.com/amosWeiskopf/seoscout/pkg/utils"
)

var tokenRegex = regexp.MustCompile(`[\p{L}\p{N}_]+|[^\p{L}\p{N}_\s]+`)

// punctuation holds the ASCII punctuation characters. Only a token made of
// exactly one of them breaks a phrase; runs like "..." and non-ASCII dashes
// stay phrase words.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Phrase is a ranked candidate key phrase
type Phrase struct {
	Text  string  `json:"text" yaml:"text"`
	Score float64 `json:"score" yaml:"score"`
}

// Rank returns every candidate phrase of text ordered by descending score.
// Equal scores are ordered by descending phrase text. Repeated phrases are
// kept.
func Rank(text string) []Phrase {
	phrases := candidatePhrases(text)
	if len(phrases) == 0 {
		return nil
	}

	freq := make(map[string]float64)
	degree := make(map[string]float64)
	for _, phrase := range phrases {
		for _, word := range phrase {
			freq[word]++
			degree[word] += float64(len(phrase))
		}
	}

	ranked := make([]Phrase, 0, len(phrases))
	for _, phrase := range phrases {
		var score float64
		for _, word := range phrase {
			score += degree[word] / freq[word]
		}
		ranked = append(ranked, Phrase{Text: strings.Join(phrase, " "), Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Text > ranked[j].Text
	})
	return ranked
}

// Top returns the best ranked phrase of text.
func Top(text string) (string, bool) {
	ranked := Rank(text)
	if len(ranked) == 0 {
		return "", false
	}
	return ranked[0].Text, true
}

// candidatePhrases splits text into maximal runs of content words. Stop
// words and punctuation end a run.
func candidatePhrases(text string) [][]string {
	var phrases [][]string
	var current []string
	flush := func() {
		if len(current) > 0 {
			phrases = append(phrases, current)
			current = nil
		}
	}

	for _, tok := range tokenRegex.FindAllString(text, -1) {
		tok = strings.ToLower(tok)
		if utils.IsStopWord(tok) || isPunctuation(tok) {
			flush()
			continue
		}
		current = append(current, tok)
	}
	flush()
	return phrases
}

func isPunctuation(tok string) bool {
	return len(tok) == 1 && strings.Contains(punctuation, tok)
}
