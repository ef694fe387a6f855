package textclf

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"punctuation and case", "Loud music, from BAR at 2am!", []string{"loud", "music", "from", "bar", "at", "2am"}},
		{"single characters dropped", "a b cd e", []string{"cd"}},
		{"empty", "", []string{}},
		{"no word characters", "!!! ... ???", []string{}},
		{"unicode letters", "Café über", []string{"café", "über"}},
		{"underscore joins", "snake_case word", []string{"snake_case", "word"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.in))
		})
	}
}

func TestTerms(t *testing.T) {
	assert.Equal(t,
		[]string{"loud", "music", "now", "loud music", "music now"},
		terms("loud music now", 2))
	assert.Equal(t, []string{"loud", "music"}, terms("loud music", 1))
	assert.Equal(t, []string{"loud"}, terms("loud", 0))
}

func TestVectorizer(t *testing.T) {
	docs := []string{
		"dog barking loudly",
		"dog left outside",
		"car parked in driveway",
	}

	t.Run("idf favours rare terms", func(t *testing.T) {
		v := fitVectorizer(docs, 0, 1)
		dog := v.IDF[v.Vocabulary["dog"]]
		car := v.IDF[v.Vocabulary["car"]]
		assert.Less(t, dog, car)
		assert.InDelta(t, math.Log(4.0/3.0)+1, dog, 1e-9)
	})

	t.Run("vectors are l2 normalised", func(t *testing.T) {
		v := fitVectorizer(docs, 0, 2)
		x := v.Transform("dog barking loudly at the car")
		require.NotEmpty(t, x.Indices)
		var norm float64
		for _, val := range x.Values {
			norm += val * val
		}
		assert.InDelta(t, 1.0, norm, 1e-9)
	})

	t.Run("unknown text is the zero vector", func(t *testing.T) {
		v := fitVectorizer(docs, 0, 2)
		x := v.Transform("zzz qqq")
		assert.Empty(t, x.Indices)
		assert.Empty(t, x.Values)
	})

	t.Run("max features keeps most frequent terms", func(t *testing.T) {
		v := fitVectorizer(docs, 1, 1)
		assert.Equal(t, 1, v.Features())
		_, ok := v.Vocabulary["dog"]
		assert.True(t, ok)
	})
}

func trainingCorpus() ([]string, []string) {
	var docs, labels []string
	add := func(label string, texts ...string) {
		for _, text := range texts {
			docs = append(docs, text)
			labels = append(labels, label)
		}
	}

	add("Noise - Street/Sidewalk",
		"loud music from the bar at night",
		"people shouting loud music outside",
		"loud party music all night long",
		"music blasting from speakers outside",
		"loud music and shouting from club",
		"neighbors playing loud music late",
	)
	add("Animal Abuse",
		"dog left chained without food",
		"neighbor is beating his dog",
		"cat abandoned without food or shelter",
		"dog locked in hot car",
		"horse starving in field without food",
		"dog chained outside in freezing cold",
	)
	add("Illegal Parking",
		"car parked on the sidewalk",
		"vehicle parked in bus stop",
		"truck parked blocking the hydrant",
		"car double parked all day",
		"van parked in handicap spot without permit",
		"cars parked on crosswalk",
	)
	return docs, labels
}

func TestFit_Predict(t *testing.T) {
	docs, labels := trainingCorpus()
	opts := DefaultOptions()
	opts.Epochs = 40

	var epochs []int
	opts.OnEpoch = func(epoch int, loss float64) {
		epochs = append(epochs, epoch)
		assert.False(t, math.IsNaN(loss))
	}

	p, err := Fit(docs, labels, opts)
	require.NoError(t, err)
	assert.Len(t, epochs, 40)
	assert.Equal(t, []string{"Animal Abuse", "Illegal Parking", "Noise - Street/Sidewalk"}, p.Classes())
	assert.Equal(t, len(docs), p.TrainingRows)

	tests := []struct {
		in   string
		want string
	}{
		{"Loud music from bar at 2am", "Noise - Street/Sidewalk"},
		{"my neighbor keeps his dog chained without food", "Animal Abuse"},
		{"someone parked their car on the sidewalk again", "Illegal Parking"},
	}
	for _, tt := range tests {
		got, err := p.Predict(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}

	batch, err := p.PredictBatch([]string{"loud music", "dog without food"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Noise - Street/Sidewalk", "Animal Abuse"}, batch)
}

func TestFit_Deterministic(t *testing.T) {
	docs, labels := trainingCorpus()
	opts := DefaultOptions()
	opts.Epochs = 5

	a, err := Fit(docs, labels, opts)
	require.NoError(t, err)
	b, err := Fit(docs, labels, opts)
	require.NoError(t, err)

	assert.Equal(t, a.Model.Weights, b.Model.Weights)
	assert.Equal(t, a.Model.Bias, b.Model.Bias)
}

func TestFit_Errors(t *testing.T) {
	_, err := Fit(nil, nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)

	_, err = Fit([]string{"a"}, []string{"x", "y"}, DefaultOptions())
	assert.Error(t, err)
}

func TestPredict_Uninitialised(t *testing.T) {
	var p *Pipeline
	_, err := p.Predict("anything")
	assert.Error(t, err)

	_, err = (&Pipeline{}).Predict("anything")
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	docs, labels := trainingCorpus()
	opts := DefaultOptions()
	opts.Epochs = 10
	p, err := Fit(docs, labels, opts)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "models", "department_model.json")
	require.NoError(t, p.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p.Classes(), loaded.Classes())
	assert.Equal(t, p.TrainingRows, loaded.TrainingRows)
	assert.True(t, p.TrainedAt.Equal(loaded.TrainedAt))

	for _, doc := range docs {
		want, err := p.Predict(doc)
		require.NoError(t, err)
		got, err := loaded.Predict(doc)
		require.NoError(t, err)
		assert.Equal(t, want, got, doc)
	}

	// Saving again overwrites in place.
	require.NoError(t, loaded.Save(path))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoad_Failures(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.json"))
		assert.Error(t, err)
	})

	t.Run("corrupt json", func(t *testing.T) {
		_, err := Load(write("corrupt.json", "{not json"))
		assert.Error(t, err)
	})

	t.Run("wrong version", func(t *testing.T) {
		_, err := Load(write("v9.json", `{"version":9,"classes":["a"],"ngram_max":1,"weights":[[]],"bias":[0]}`))
		assert.ErrorIs(t, err, ErrIncompatibleArtifact)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := Load(write("dims.json", `{"version":1,"classes":["a","b"],"ngram_max":1,"idf":[1],"weights":[[0.1]],"bias":[0,0]}`))
		assert.ErrorIs(t, err, ErrIncompatibleArtifact)
	})

	t.Run("vocabulary out of range", func(t *testing.T) {
		_, err := Load(write("vocab.json", `{"version":1,"classes":["a"],"ngram_max":1,"idf":[1],"vocabulary":{"dog":3},"weights":[[0.1]],"bias":[0]}`))
		assert.ErrorIs(t, err, ErrIncompatibleArtifact)
	})
}
