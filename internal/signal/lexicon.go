package signal

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Lexicon is a keyword sentiment mapper. Input text is NFC-normalized and
// case-folded, then scanned for negative words first and positive words
// second. Negative hits win on mixed input. Matching is by substring, so
// "thanks!" and "thanksgiving" both hit "thanks".
//
// Thread-safety: a Lexicon is immutable after construction and safe for
// concurrent use.
type Lexicon struct {
	positive []string
	negative []string
	weight   float64
	neutral  float64
}

// NewLexicon builds a lexicon from word lists. Words are normalized the same
// way input text is, so callers can pass them in any case. A hit on the
// negative list maps to -weight, a hit on the positive list to +weight, and
// no hit at all to neutral.
func NewLexicon(positive, negative []string, weight, neutral float64) *Lexicon {
	return &Lexicon{
		positive: foldWords(positive),
		negative: foldWords(negative),
		weight:   weight,
		neutral:  neutral,
	}
}

// DefaultLexicon returns the stock sentiment lexicon: a small set of plainly
// positive and negative English words, unit weight, zero baseline.
func DefaultLexicon() *Lexicon {
	return NewLexicon(
		[]string{"good", "great", "love", "thanks", "smart"},
		[]string{"bad", "hate", "stupid", "ugly", "wrong"},
		1.0,
		0.0,
	)
}

// Map implements Mapper.
func (l *Lexicon) Map(text string) float64 {
	folded := foldText(text)
	for _, w := range l.negative {
		if strings.Contains(folded, w) {
			return -l.weight
		}
	}
	for _, w := range l.positive {
		if strings.Contains(folded, w) {
			return l.weight
		}
	}
	return l.neutral
}

// foldText canonicalizes text for matching. NFC first so composed and
// decomposed forms compare equal, then a full case fold.
func foldText(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

func foldWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, foldText(w))
	}
	return out
}
