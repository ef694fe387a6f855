// Package training fits, evaluates and saves the complaint classifier.
package training

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/Veraticus/fixit/internal/common"
	"github.com/Veraticus/fixit/internal/dataset"
)

// Example is one labelled complaint.
type Example struct {
	Description string
	Category    string
}

// ExamplesFromTable extracts labelled examples from a reduced dataset,
// skipping rows with an empty description or category.
func ExamplesFromTable(t *dataset.Table) ([]Example, error) {
	descIdx := t.Column(dataset.FieldDescription)
	catIdx := t.Column(dataset.FieldCategory)
	if descIdx < 0 || catIdx < 0 {
		return nil, fmt.Errorf("%w: need %q and %q; available columns: [%s]",
			common.ErrUnknownColumns, dataset.FieldDescription, dataset.FieldCategory,
			strings.Join(t.Header, ", "))
	}

	examples := make([]Example, 0, len(t.Rows))
	for _, row := range t.Rows {
		desc := strings.TrimSpace(row[descIdx])
		cat := strings.TrimSpace(row[catIdx])
		if desc == "" || cat == "" {
			continue
		}
		examples = append(examples, Example{Description: desc, Category: cat})
	}
	return examples, nil
}

// FilterRare drops examples whose category has fewer than minSupport rows.
// It returns the kept examples and the support count of every dropped category.
func FilterRare(examples []Example, minSupport int) ([]Example, map[string]int) {
	counts := make(map[string]int)
	for _, ex := range examples {
		counts[ex.Category]++
	}

	dropped := make(map[string]int)
	for cat, n := range counts {
		if n < minSupport {
			dropped[cat] = n
		}
	}

	kept := make([]Example, 0, len(examples))
	for _, ex := range examples {
		if _, ok := dropped[ex.Category]; !ok {
			kept = append(kept, ex)
		}
	}
	return kept, dropped
}

// StratifiedSplit partitions examples into train and test sets so that each
// category contributes testFraction of its rows to the test set. Every
// category with at least two rows lands in both sets.
func StratifiedSplit(examples []Example, testFraction float64, seed int64) (train, test []Example) {
	byCategory := make(map[string][]Example)
	for _, ex := range examples {
		byCategory[ex.Category] = append(byCategory[ex.Category], ex)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	rng := rand.New(rand.NewSource(seed))
	for _, cat := range categories {
		group := byCategory[cat]
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })

		nTest := int(math.Round(float64(len(group)) * testFraction))
		if len(group) >= 2 {
			nTest = min(max(nTest, 1), len(group)-1)
		} else {
			nTest = 0
		}

		test = append(test, group[:nTest]...)
		train = append(train, group[nTest:]...)
	}

	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return train, test
}

func split(examples []Example) (docs, labels []string) {
	docs = make([]string, len(examples))
	labels = make([]string, len(examples))
	for i, ex := range examples {
		docs[i] = ex.Description
		labels[i] = ex.Category
	}
	return docs, labels
}
