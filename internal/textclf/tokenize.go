// Package textclf implements the trained complaint classifier: a TF-IDF
// vectorizer over word n-grams feeding a multinomial logistic regression.
package textclf

import (
	"strings"
	"unicode"
)

// minTokenRunes drops single-character tokens, matching the usual \w\w+ token rule.
const minTokenRunes = 2

// tokenize lower-cases text and splits it into runs of letters, digits and underscores.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minTokenRunes {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// terms expands tokens into all n-grams of length 1..ngramMax joined by a space.
func terms(text string, ngramMax int) []string {
	tokens := tokenize(text)
	if ngramMax < 1 {
		ngramMax = 1
	}

	out := make([]string, 0, len(tokens)*ngramMax)
	for n := 1; n <= ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
