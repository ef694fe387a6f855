package textclf

import (
	"math"
	"sort"
)

// SparseVector is a feature vector holding only non-zero entries.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Vectorizer turns text into L2-normalised TF-IDF vectors.
type Vectorizer struct {
	Vocabulary map[string]int
	IDF        []float64
	NgramMax   int
}

// fitVectorizer selects the maxFeatures most frequent terms of the corpus and
// computes smoothed inverse document frequencies for them.
func fitVectorizer(docs []string, maxFeatures, ngramMax int) *Vectorizer {
	termCount := make(map[string]int)
	docFreq := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range terms(doc, ngramMax) {
			termCount[term]++
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}

	vocab := make([]string, 0, len(termCount))
	for term := range termCount {
		vocab = append(vocab, term)
	}

	if maxFeatures > 0 && len(vocab) > maxFeatures {
		sort.Slice(vocab, func(i, j int) bool {
			if termCount[vocab[i]] != termCount[vocab[j]] {
				return termCount[vocab[i]] > termCount[vocab[j]]
			}
			return vocab[i] < vocab[j]
		})
		vocab = vocab[:maxFeatures]
	}
	sort.Strings(vocab)

	v := &Vectorizer{
		Vocabulary: make(map[string]int, len(vocab)),
		IDF:        make([]float64, len(vocab)),
		NgramMax:   ngramMax,
	}

	n := float64(len(docs))
	for i, term := range vocab {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return v
}

// Transform vectorises a single document. Unknown terms are ignored.
func (v *Vectorizer) Transform(text string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range terms(text, v.NgramMax) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var norm float64
	for _, idx := range vec.Indices {
		w := counts[idx] * v.IDF[idx]
		vec.Values = append(vec.Values, w)
		norm += w * w
	}

	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}

	return vec
}

// Features returns the vocabulary size.
func (v *Vectorizer) Features() int {
	return len(v.IDF)
}
