package dataset

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"

	"github.com/Veraticus/fixit/internal/common"
)

// ReduceOptions controls dataset reduction.
type ReduceOptions struct {
	SampleSize int
	Seed       int64
}

// DefaultReduceOptions returns the working-set size used for training iterations.
func DefaultReduceOptions() ReduceOptions {
	return ReduceOptions{
		SampleSize: 20000,
		Seed:       42,
	}
}

// ReduceStats describes what Reduce did.
type ReduceStats struct {
	DescriptionColumn string
	CategoryColumn    string
	AgencyColumn      string
	InputRows         int
	CleanRows         int
	OutputRows        int
	Sampled           bool
}

// Reduce projects a raw export onto the description, category and optional
// agency columns, drops incomplete rows and draws a seeded uniform sample.
func Reduce(in *Table, opts ReduceOptions) (*Table, ReduceStats, error) {
	stats := ReduceStats{InputRows: len(in.Rows)}

	descIdx := DescriptionColumn.Match(in.Header)
	catIdx := CategoryColumn.Match(in.Header)
	agencyIdx := AgencyColumn.Match(in.Header)

	if descIdx < 0 || catIdx < 0 {
		return nil, stats, fmt.Errorf("%w: found %s=%s, %s=%s; available columns: [%s]",
			common.ErrUnknownColumns,
			FieldDescription, columnName(in.Header, descIdx),
			FieldCategory, columnName(in.Header, catIdx),
			strings.Join(in.Header, ", "))
	}

	keep := []int{descIdx, catIdx}
	header := []string{FieldDescription, FieldCategory}
	stats.DescriptionColumn = in.Header[descIdx]
	stats.CategoryColumn = in.Header[catIdx]
	if agencyIdx >= 0 {
		keep = append(keep, agencyIdx)
		header = append(header, FieldAgency)
		stats.AgencyColumn = in.Header[agencyIdx]
	}

	rows := make([][]string, 0, len(in.Rows))
	for _, row := range in.Rows {
		out := make([]string, len(keep))
		complete := true
		for i, idx := range keep {
			v := strings.TrimSpace(row[idx])
			if v == "" {
				complete = false
				break
			}
			out[i] = v
		}
		if complete {
			rows = append(rows, out)
		}
	}
	stats.CleanRows = len(rows)

	if opts.SampleSize <= 0 || len(rows) < opts.SampleSize {
		slog.Info("Dataset smaller than sample size, keeping all rows",
			"rows", len(rows),
			"sample_size", opts.SampleSize)
	} else {
		rows = sample(rows, opts.SampleSize, opts.Seed)
		stats.Sampled = true
	}
	stats.OutputRows = len(rows)

	return &Table{Header: header, Rows: rows}, stats, nil
}

// sample draws n rows uniformly without replacement, preserving input order.
func sample(rows [][]string, n int, seed int64) [][]string {
	rng := rand.New(rand.NewSource(seed))
	picked := rng.Perm(len(rows))[:n]
	sort.Ints(picked)

	out := make([][]string, n)
	for i, idx := range picked {
		out[i] = rows[idx]
	}
	return out
}

func columnName(header []string, idx int) string {
	if idx < 0 {
		return "<none>"
	}
	return header[idx]
}
