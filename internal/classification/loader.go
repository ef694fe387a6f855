package classification

import (
	"log/slog"

	"github.com/Veraticus/fixit/internal/textclf"
)

// LoadModel loads the trained classifier at path. Any failure is logged and
// reported as an absent model (nil) so the engine runs on rules alone.
func LoadModel(path string) Predictor {
	if path == "" {
		slog.Info("No model path configured, model tier disabled")
		return nil
	}

	p, err := textclf.Load(path)
	if err != nil {
		slog.Warn("Trained model unavailable, model tier disabled", "path", path, "error", err)
		return nil
	}

	slog.Info("Loaded trained model",
		"path", path,
		"classes", len(p.Classes()),
		"features", p.Vectorizer.Features(),
		"trained_at", p.TrainedAt)
	return p
}
