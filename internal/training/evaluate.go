package training

import (
	"fmt"
	"sort"
)

// ClassMetrics holds per-category precision, recall and F1.
type ClassMetrics struct {
	Class     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarises held-out performance. It is informational only.
type Report struct {
	Classes     []ClassMetrics
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	Accuracy    float64
	Total       int
}

// Evaluate compares predicted labels against the truth.
func Evaluate(truth, predicted []string) (Report, error) {
	if len(truth) != len(predicted) {
		return Report{}, fmt.Errorf("got %d true labels but %d predictions", len(truth), len(predicted))
	}

	type counts struct{ tp, fp, fn, support int }
	per := make(map[string]*counts)
	get := func(label string) *counts {
		c, ok := per[label]
		if !ok {
			c = &counts{}
			per[label] = c
		}
		return c
	}

	correct := 0
	for i := range truth {
		t, p := truth[i], predicted[i]
		get(t).support++
		if t == p {
			correct++
			get(t).tp++
			continue
		}
		get(t).fn++
		get(p).fp++
	}

	report := Report{Total: len(truth)}
	if len(truth) > 0 {
		report.Accuracy = float64(correct) / float64(len(truth))
	}

	labels := make([]string, 0, len(per))
	for label := range per {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	report.MacroAvg.Class = "macro avg"
	report.WeightedAvg.Class = "weighted avg"

	for _, label := range labels {
		c := per[label]
		m := ClassMetrics{
			Class:     label,
			Precision: ratio(c.tp, c.tp+c.fp),
			Recall:    ratio(c.tp, c.tp+c.fn),
			Support:   c.support,
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		report.Classes = append(report.Classes, m)

		report.MacroAvg.Precision += m.Precision
		report.MacroAvg.Recall += m.Recall
		report.MacroAvg.F1 += m.F1
		w := float64(m.Support)
		report.WeightedAvg.Precision += w * m.Precision
		report.WeightedAvg.Recall += w * m.Recall
		report.WeightedAvg.F1 += w * m.F1
	}

	if n := float64(len(report.Classes)); n > 0 {
		report.MacroAvg.Precision /= n
		report.MacroAvg.Recall /= n
		report.MacroAvg.F1 /= n
	}
	if total := float64(report.Total); total > 0 {
		report.WeightedAvg.Precision /= total
		report.WeightedAvg.Recall /= total
		report.WeightedAvg.F1 /= total
	}
	report.MacroAvg.Support = report.Total
	report.WeightedAvg.Support = report.Total

	return report, nil
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
