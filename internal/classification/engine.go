// Package classification routes free-text complaint descriptions to a
// category and a responsible department.
//
// Classification is a cascade, first match wins:
//
//  1. keyword rules, checked in order against the case-folded description
//  2. the trained model, if one is loaded, on the raw description
//  3. the fixed default ("Other", "General Administration")
//
// Classify never fails. A missing or misbehaving model degrades to the default tier.
package classification

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/fixit/internal/department"
	"github.com/Veraticus/fixit/internal/model"
)

// Predictor is a trained text-to-category model.
type Predictor interface {
	Predict(description string) (string, error)
}

// Engine classifies complaint descriptions. It is immutable after New and
// safe for concurrent use.
type Engine struct {
	predictor Predictor
	lookup    *department.Lookup
	logger    *slog.Logger
	rules     *ruleSet
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	predictor Predictor
	lookup    *department.Lookup
	logger    *slog.Logger
	rules     []Rule
}

// WithPredictor enables the model tier. A nil predictor leaves it disabled.
func WithPredictor(p Predictor) Option {
	return func(c *engineConfig) { c.predictor = p }
}

// WithLookup sets the department table used for model predictions.
func WithLookup(l *department.Lookup) Option {
	return func(c *engineConfig) { c.lookup = l }
}

// WithRules replaces the built-in keyword rules.
func WithRules(rules []Rule) Option {
	return func(c *engineConfig) { c.rules = rules }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *engineConfig) { c.logger = l }
}

// New builds an engine. Without options it runs the default rules, no model
// and the built-in department table.
func New(opts ...Option) *Engine {
	cfg := engineConfig{rules: DefaultRules()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.lookup == nil {
		cfg.lookup = department.Default()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	rules := make([]Rule, len(cfg.rules))
	copy(rules, cfg.rules)

	return &Engine{
		predictor: cfg.predictor,
		lookup:    cfg.lookup,
		logger:    cfg.logger,
		rules:     newRuleSet(rules),
	}
}

// HasModel reports whether the model tier is enabled.
func (e *Engine) HasModel() bool {
	return e.predictor != nil
}

// Classify maps description to a routing outcome.
func (e *Engine) Classify(description string) model.ClassificationResult {
	if rule, ok := e.rules.match(fold(description)); ok {
		e.logger.Debug("classified by rule", "rule", rule.Name, "category", rule.Category)
		return model.ClassificationResult{
			Category:   rule.Category,
			Department: rule.Department,
			Summary:    rule.Summary,
			Tier:       model.TierRule,
		}
	}

	if category, ok := e.predict(description); ok {
		e.logger.Debug("classified by model", "category", category)
		return model.ClassificationResult{
			Category:   category,
			Department: e.lookup.Resolve(category),
			Summary:    fmt.Sprintf("Complaint classified as %s", category),
			Tier:       model.TierModel,
		}
	}

	return model.DefaultClassification()
}

// predict invokes the model and converts every failure mode, including a
// panic inside the model, into ok == false.
func (e *Engine) predict(description string) (category string, ok bool) {
	if e.predictor == nil {
		return "", false
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("model prediction panicked, using default", "panic", r)
			category, ok = "", false
		}
	}()

	category, err := e.predictor.Predict(description)
	if err != nil {
		e.logger.Warn("model prediction failed, using default", "error", err)
		return "", false
	}
	if category == "" {
		e.logger.Warn("model returned an empty category, using default")
		return "", false
	}
	return category, true
}
