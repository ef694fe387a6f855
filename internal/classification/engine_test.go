package classification

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Veraticus/fixit/internal/department"
	"github.com/Veraticus/fixit/internal/model"
	"github.com/Veraticus/fixit/internal/textclf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPredictor returns a fixed answer and counts calls.
type stubPredictor struct {
	err      error
	category string
	calls    int
	mu       sync.Mutex
}

func (s *stubPredictor) Predict(string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.category, s.err
}

type panickingPredictor struct{}

func (panickingPredictor) Predict(string) (string, error) {
	panic("model exploded")
}

var (
	utilitiesResult = model.ClassificationResult{
		Category:   "Water/Utilities",
		Department: "Utilities Department",
		Summary:    "Water or plumbing issue detected",
		Tier:       model.TierRule,
	}
	trafficResult = model.ClassificationResult{
		Category:   "Traffic/Infrastructure",
		Department: "Traffic Department",
		Summary:    "Road or traffic infrastructure issue",
		Tier:       model.TierRule,
	}
	sanitationResult = model.ClassificationResult{
		Category:   "Sanitation",
		Department: "Sanitation Department",
		Summary:    "Garbage or waste management issue",
		Tier:       model.TierRule,
	}
	defaultResult = model.ClassificationResult{
		Category:   "Other",
		Department: "General Administration",
		Summary:    "Issue reported",
		Tier:       model.TierDefault,
	}
)

func TestClassify_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		predictor Predictor
		input     string
		want      model.ClassificationResult
	}{
		{
			name:  "pothole routes to traffic",
			input: "There's a huge pothole on Main Street",
			want:  trafficResult,
		},
		{
			name:  "sewage pipe routes to utilities",
			input: "Sewage pipe burst in basement",
			want:  utilitiesResult,
		},
		{
			name:      "no keyword falls through to the model",
			predictor: &stubPredictor{category: "Noise - Street/Sidewalk"},
			input:     "Loud music from bar at 2am",
			want: model.ClassificationResult{
				Category:   "Noise - Street/Sidewalk",
				Department: "Police Department",
				Summary:    "Complaint classified as Noise - Street/Sidewalk",
				Tier:       model.TierModel,
			},
		},
		{
			name:  "empty input without model",
			input: "",
			want:  defaultResult,
		},
		{
			name:  "sanitation keyword",
			input: "Overflowing garbage bins behind the school",
			want:  sanitationResult,
		},
		{
			name:      "model category outside the table goes to the default department",
			predictor: &stubPredictor{category: "Rodent"},
			input:     "rats in the alley",
			want: model.ClassificationResult{
				Category:   "Rodent",
				Department: "General Administration",
				Summary:    "Complaint classified as Rodent",
				Tier:       model.TierModel,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := New(WithPredictor(tt.predictor))
			assert.Equal(t, tt.want, engine.Classify(tt.input))
		})
	}
}

func TestClassify_RulePrecedence(t *testing.T) {
	predictor := &stubPredictor{category: "Graffiti"}

	for _, engine := range []*Engine{New(), New(WithPredictor(predictor))} {
		// utilities beats sanitation regardless of word order
		assert.Equal(t, utilitiesResult, engine.Classify("water leak near the trash pile"))
		assert.Equal(t, utilitiesResult, engine.Classify("trash pile near a water leak"))
		// traffic beats sanitation
		assert.Equal(t, trafficResult, engine.Classify("litter all over the road"))
		// utilities beats traffic
		assert.Equal(t, utilitiesResult, engine.Classify("road is flooding"))
	}

	assert.Zero(t, predictor.calls, "model must not run when a rule matches")
}

func TestClassify_CaseInsensitive(t *testing.T) {
	engine := New()

	for _, in := range []string{"WATER LEAK", "water leak", "Water Leak", "wAtEr LeAk"} {
		assert.Equal(t, utilitiesResult, engine.Classify(in), in)
	}
	assert.Equal(t, trafficResult, engine.Classify("The STREET LIGHT is out"))
}

func TestClassify_SubstringSemantics(t *testing.T) {
	engine := New()

	// keywords match inside longer words
	assert.Equal(t, utilitiesResult, engine.Classify("the drainage ditch overflowed"))
	assert.Equal(t, trafficResult, engine.Classify("a broad crack in the sidewalk"))
	// multi-word keywords must appear as a phrase
	assert.Equal(t, defaultResult, engine.Classify("the light on my street is broken"))
}

func TestClassify_Totality(t *testing.T) {
	engine := New()

	inputs := []string{
		"",
		"   ",
		"12345 !!! ???",
		"\x00\xff\xfe",
		"🙂🙂🙂",
		strings.Repeat("lorem ipsum ", 100000),
		strings.Repeat("x", 1<<20) + " water",
	}

	for i, in := range inputs {
		result := engine.Classify(in)
		assert.NotEmpty(t, result.Category, "input %d", i)
		assert.NotEmpty(t, result.Department, "input %d", i)
		assert.NotEmpty(t, result.Summary, "input %d", i)
	}
}

func TestClassify_ModelAbsent(t *testing.T) {
	engine := New()
	assert.False(t, engine.HasModel())

	got := engine.Classify("illegible gibberish with no keywords")
	assert.Equal(t, "Other", got.Category)
	assert.Equal(t, "General Administration", got.Department)
}

func TestClassify_ModelFailure(t *testing.T) {
	tests := []struct {
		name      string
		predictor Predictor
	}{
		{"error", &stubPredictor{err: errors.New("inference failed")}},
		{"empty category", &stubPredictor{category: ""}},
		{"panic", panickingPredictor{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := New(WithPredictor(tt.predictor))
			assert.True(t, engine.HasModel())
			assert.Equal(t, defaultResult, engine.Classify("illegible gibberish with no keywords"))
			// rules are unaffected by a broken model
			assert.Equal(t, utilitiesResult, engine.Classify("water leak"))
		})
	}
}

// flakyPredictor fails on its first call only.
type flakyPredictor struct {
	calls int
}

func (f *flakyPredictor) Predict(string) (string, error) {
	f.calls++
	if f.calls == 1 {
		return "", errors.New("transient")
	}
	return "Graffiti", nil
}

func TestClassify_TransientModelFailure(t *testing.T) {
	engine := New(WithPredictor(&flakyPredictor{}))

	assert.Equal(t, defaultResult, engine.Classify("tags sprayed on the wall"))

	got := engine.Classify("tags sprayed on the wall")
	assert.Equal(t, "Graffiti", got.Category)
	assert.Equal(t, "Municipality Department", got.Department)
}

func TestClassify_ModelSeesRawDescription(t *testing.T) {
	var seen string
	engine := New(WithPredictor(predictorFunc(func(d string) (string, error) {
		seen = d
		return "Vending", nil
	})))

	engine.Classify("Unlicensed VENDOR Outside")
	assert.Equal(t, "Unlicensed VENDOR Outside", seen)
}

type predictorFunc func(string) (string, error)

func (f predictorFunc) Predict(d string) (string, error) { return f(d) }

func TestNew_CustomRulesAndLookup(t *testing.T) {
	lookup, err := department.New(department.Table{
		Default: "City Clerk",
		Departments: []department.Entry{
			{Name: "Parks Department", Categories: []string{"Fallen Tree"}},
		},
	})
	require.NoError(t, err)

	engine := New(
		WithLookup(lookup),
		WithRules([]Rule{{
			Name:       "trees",
			Keywords:   []string{"TREE"},
			Category:   "Fallen Tree",
			Department: "Parks Department",
			Summary:    "Tree issue",
		}}),
		WithPredictor(&stubPredictor{category: "Unknown"}),
	)

	assert.Equal(t, "Fallen Tree", engine.Classify("a tree fell on my car").Category)
	// default rules are replaced, not extended
	got := engine.Classify("water leak")
	assert.Equal(t, model.TierModel, got.Tier)
	assert.Equal(t, "City Clerk", got.Department)
}

func TestNew_EmptyRules(t *testing.T) {
	engine := New(WithRules(nil))
	assert.Equal(t, defaultResult, engine.Classify("water leak"))
}

func TestClassify_Concurrent(t *testing.T) {
	engine := New(WithPredictor(&stubPredictor{category: "Drinking"}))

	inputs := []string{"water leak", "pothole", "trash", "people drinking in the park", ""}
	want := []string{"Water/Utilities", "Traffic/Infrastructure", "Sanitation", "Drinking", "Drinking"}

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				idx := i % len(inputs)
				got := engine.Classify(inputs[idx])
				if got.Category != want[idx] {
					t.Errorf("Classify(%q) = %q, want %q", inputs[idx], got.Category, want[idx])
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestLoadModel(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		assert.Nil(t, LoadModel(""))
	})

	t.Run("missing artifact", func(t *testing.T) {
		assert.Nil(t, LoadModel(filepath.Join(t.TempDir(), "department_model.json")))
	})

	t.Run("trained artifact", func(t *testing.T) {
		var docs, labels []string
		for i := 0; i < 10; i++ {
			docs = append(docs, fmt.Sprintf("loud music party %d", i), fmt.Sprintf("dog starving abuse %d", i))
			labels = append(labels, "Noise - Street/Sidewalk", "Animal Abuse")
		}
		opts := textclf.DefaultOptions()
		opts.Epochs = 30
		p, err := textclf.Fit(docs, labels, opts)
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "department_model.json")
		require.NoError(t, p.Save(path))

		predictor := LoadModel(path)
		require.NotNil(t, predictor)

		engine := New(WithPredictor(predictor))
		got := engine.Classify("loud music from the party next door")
		assert.Equal(t, "Noise - Street/Sidewalk", got.Category)
		assert.Equal(t, "Police Department", got.Department)

		got = engine.Classify("someone is starving a dog")
		assert.Equal(t, "Animal Abuse", got.Category)
		assert.Equal(t, "Animal Control Department", got.Department)
	})
}
